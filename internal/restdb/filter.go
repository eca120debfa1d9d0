package restdb

import (
	"net/url"
	"strings"
)

// Query builds a PostgREST filter expression. Conditions use the
// field=operator.value query-string syntax; Select and Order control the
// projection and ordering. The zero value is an empty query.
type Query struct {
	parts []string
}

func (q Query) with(part string) Query {
	parts := make([]string, len(q.parts), len(q.parts)+1)
	copy(parts, q.parts)
	return Query{parts: append(parts, part)}
}

// Eq filters rows where field equals value.
func (q Query) Eq(field, value string) Query {
	return q.with(url.QueryEscape(field) + "=eq." + url.QueryEscape(value))
}

// Neq filters rows where field differs from value.
func (q Query) Neq(field, value string) Query {
	return q.with(url.QueryEscape(field) + "=neq." + url.QueryEscape(value))
}

// In filters rows where field is one of values.
func (q Query) In(field string, values []string) Query {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = url.QueryEscape(v)
	}
	return q.with(url.QueryEscape(field) + "=in.(" + strings.Join(escaped, ",") + ")")
}

// Is filters on IS semantics, used for booleans and null checks
// (e.g. Is("is_active", "true")).
func (q Query) Is(field, value string) Query {
	return q.with(url.QueryEscape(field) + "=is." + url.QueryEscape(value))
}

// Select projects the listed fields instead of the full row.
func (q Query) Select(fields ...string) Query {
	return q.with("select=" + url.QueryEscape(strings.Join(fields, ",")))
}

// Order sorts ascending on field.
func (q Query) Order(field string) Query {
	return q.with("order=" + url.QueryEscape(field))
}

// OrderDesc sorts descending on field.
func (q Query) OrderDesc(field string) Query {
	return q.with("order=" + url.QueryEscape(field) + ".desc")
}

// Encode renders the query string without a leading "?".
func (q Query) Encode() string {
	return strings.Join(q.parts, "&")
}
