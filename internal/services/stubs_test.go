package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"festguide/internal/models"
	"festguide/internal/restdb"
)

// stubIdentity stands in for the session resolver.
type stubIdentity struct {
	identity      models.Identity
	authenticated bool
	token         string
}

func (s *stubIdentity) Current() (models.Identity, bool) { return s.identity, s.authenticated }
func (s *stubIdentity) Token() string                    { return s.token }

// stubFavorites stands in for the favorites store in scheduler tests.
type stubFavorites struct {
	ids []string
}

func (s *stubFavorites) EventIDs() []string { return s.ids }

// stubPrefs stands in for the preference store.
type stubPrefs struct {
	values map[string]bool
}

func (s *stubPrefs) GetBool(key string, def bool) bool {
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

// favoritesBackend is an in-memory user_favorites collection behind an
// httptest server.
type favoritesBackend struct {
	srv *httptest.Server

	mu     sync.Mutex
	rows   map[string]models.Favorite // keyed by row id
	nextID int
	hits   int
	fail   bool

	// insertGate, when non-nil, blocks inserts until closed; insertStarted
	// signals that the insert request arrived.
	insertGate    chan struct{}
	insertStarted chan struct{}
}

func newFavoritesBackend() *favoritesBackend {
	b := &favoritesBackend{rows: map[string]models.Favorite{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/user_favorites", b.handle)
	b.srv = httptest.NewServer(mux)
	return b
}

func (b *favoritesBackend) client() *restdb.Client {
	return restdb.NewClient(restdb.Config{
		BaseURL:    b.srv.URL,
		AnonKey:    "anon",
		HTTPClient: b.srv.Client(),
	})
}

func (b *favoritesBackend) rowCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.rows)
}

func (b *favoritesBackend) hitCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits
}

func (b *favoritesBackend) seed(f models.Favorite) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rows[f.ID] = f
}

// idFilter extracts X from an id=eq.X query parameter.
func idFilter(r *http.Request) string {
	return strings.TrimPrefix(r.URL.Query().Get("id"), "eq.")
}

func (b *favoritesBackend) handle(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.hits++
	fail := b.fail
	b.mu.Unlock()
	if fail {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	switch r.Method {
	case http.MethodGet:
		b.mu.Lock()
		list := make([]models.Favorite, 0, len(b.rows))
		for _, f := range b.rows {
			list = append(list, f)
		}
		b.mu.Unlock()
		json.NewEncoder(w).Encode(list)

	case http.MethodPost:
		if b.insertStarted != nil {
			b.insertStarted <- struct{}{}
		}
		if b.insertGate != nil {
			<-b.insertGate
		}
		var body struct {
			UserID  string `json:"user_id"`
			EventID string `json:"event_id"`
		}
		json.NewDecoder(r.Body).Decode(&body)

		b.mu.Lock()
		b.nextID++
		created := models.Favorite{ID: fmt.Sprintf("fav-%d", b.nextID), EventID: body.EventID}
		b.rows[created.ID] = created
		b.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode([]models.Favorite{created})

	case http.MethodPatch:
		var patch struct {
			Note string `json:"note"`
		}
		json.NewDecoder(r.Body).Decode(&patch)

		b.mu.Lock()
		if f, ok := b.rows[idFilter(r)]; ok {
			f.Note = patch.Note
			b.rows[f.ID] = f
		}
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)

	case http.MethodDelete:
		b.mu.Lock()
		delete(b.rows, idFilter(r))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
