package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"festguide/internal/models"
	"festguide/internal/prefs"
	"festguide/internal/restdb"
)

var tickNow = time.Date(2026, 8, 31, 18, 0, 0, 0, time.UTC)

type eventRow struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Artist    string  `json:"artist,omitempty"`
	StartTime *string `json:"start_time"`
	Stage     string  `json:"stage,omitempty"`
}

func startingIn(d time.Duration) *string {
	s := tickNow.Add(d).Format(time.RFC3339)
	return &s
}

// newEventsBackend serves the events collection with fixed rows.
func newEventsBackend(status int, rows []eventRow) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/rest/v1/events", func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			http.Error(w, "unavailable", status)
			return
		}
		json.NewEncoder(w).Encode(rows)
	})
	return httptest.NewServer(mux)
}

func newTestScheduler(srv *httptest.Server, favoriteIDs []string, enabled bool) (*ReminderScheduler, *Inbox) {
	db := restdb.NewClient(restdb.Config{
		BaseURL:    srv.URL,
		AnonKey:    "anon",
		HTTPClient: srv.Client(),
	})
	session := &stubIdentity{
		identity:      models.Identity{ID: "u1"},
		authenticated: true,
		token:         "tok",
	}
	inbox := NewInbox()
	preferences := &stubPrefs{values: map[string]bool{prefs.KeyRemindersEnabled: enabled}}
	scheduler := NewReminderScheduler(db, session, &stubFavorites{ids: favoriteIDs}, inbox, preferences)
	scheduler.now = func() time.Time { return tickNow }
	return scheduler, inbox
}

func TestTickFiresInsideLeadWindow(t *testing.T) {
	srv := newEventsBackend(http.StatusOK, []eventRow{
		{ID: "a", Title: "Sunset Set", Artist: "DJ Aurora", StartTime: startingIn(10 * time.Minute), Stage: "Main Stage"},
	})
	defer srv.Close()
	scheduler, inbox := newTestScheduler(srv, []string{"a"}, true)

	fired, err := scheduler.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}

	list := inbox.List()
	if len(list) != 1 {
		t.Fatalf("inbox = %d entries, want 1", len(list))
	}
	if !strings.Contains(list[0].Title, "DJ Aurora") || !strings.Contains(list[0].Title, "10 min") {
		t.Errorf("title = %q", list[0].Title)
	}
	if !strings.Contains(list[0].Description, "Main Stage") {
		t.Errorf("description = %q", list[0].Description)
	}
}

func TestTickIgnoresEventsOutsideWindow(t *testing.T) {
	srv := newEventsBackend(http.StatusOK, []eventRow{
		{ID: "far", Title: "Later", StartTime: startingIn(20 * time.Minute)},
		{ID: "past", Title: "Started", StartTime: startingIn(-time.Minute)},
		{ID: "tba", Title: "No Time Yet", StartTime: nil},
	})
	defer srv.Close()
	scheduler, inbox := newTestScheduler(srv, []string{"far", "past", "tba"}, true)

	fired, err := scheduler.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if fired != 0 || inbox.UnreadCount() != 0 {
		t.Errorf("fired = %d, unread = %d, want 0/0", fired, inbox.UnreadCount())
	}
}

func TestTickDedupesAcrossConsecutiveTicks(t *testing.T) {
	srv := newEventsBackend(http.StatusOK, []eventRow{
		{ID: "a", Title: "Sunset Set", StartTime: startingIn(5 * time.Minute)},
	})
	defer srv.Close()
	scheduler, inbox := newTestScheduler(srv, []string{"a"}, true)

	for i := 0; i < 2; i++ {
		if _, err := scheduler.Tick(context.Background()); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if got := len(inbox.List()); got != 1 {
		t.Errorf("notifications = %d, want exactly 1", got)
	}
}

func TestTickOnlyNotifiesImminentFavorite(t *testing.T) {
	srv := newEventsBackend(http.StatusOK, []eventRow{
		{ID: "a", Title: "Set A", Artist: "Imminente", StartTime: startingIn(12 * time.Minute)},
		{ID: "b", Title: "Set B", Artist: "Dopo", StartTime: startingIn(30 * time.Minute)},
	})
	defer srv.Close()
	scheduler, inbox := newTestScheduler(srv, []string{"a", "b"}, true)

	fired, err := scheduler.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}

	list := inbox.List()
	if !strings.Contains(list[0].Title, "Imminente") || !strings.Contains(list[0].Title, "12 min") {
		t.Errorf("title = %q", list[0].Title)
	}
	for _, n := range list {
		if strings.Contains(n.Title, "Dopo") {
			t.Errorf("event outside window notified: %q", n.Title)
		}
	}
}

func TestTickFetchFailureRaisesNothing(t *testing.T) {
	srv := newEventsBackend(http.StatusInternalServerError, nil)
	defer srv.Close()
	scheduler, inbox := newTestScheduler(srv, []string{"a"}, true)

	if _, err := scheduler.Tick(context.Background()); err == nil {
		t.Fatal("want error from failing backend")
	}
	if inbox.UnreadCount() != 0 {
		t.Errorf("unread = %d, want 0", inbox.UnreadCount())
	}
}

func TestRefreshActivationPredicate(t *testing.T) {
	srv := newEventsBackend(http.StatusOK, nil)
	defer srv.Close()

	// All conditions hold: scheduler activates.
	scheduler, _ := newTestScheduler(srv, []string{"a"}, true)
	scheduler.Refresh()
	if !scheduler.Active() {
		t.Error("scheduler should be active with identity, favorites and enabled preference")
	}
	scheduler.Stop()
	if scheduler.Active() {
		t.Error("scheduler should stop on Stop")
	}

	// Preference disabled: stays inactive.
	disabled, _ := newTestScheduler(srv, []string{"a"}, false)
	disabled.Refresh()
	if disabled.Active() {
		t.Error("scheduler must not activate with reminders disabled")
	}

	// No favorites: stays inactive.
	empty, _ := newTestScheduler(srv, nil, true)
	empty.Refresh()
	if empty.Active() {
		t.Error("scheduler must not activate with no favorites")
	}
}

func TestReactivationStartsFreshDedupeSet(t *testing.T) {
	srv := newEventsBackend(http.StatusOK, []eventRow{
		{ID: "a", Title: "Sunset Set", StartTime: startingIn(5 * time.Minute)},
	})
	defer srv.Close()
	scheduler, inbox := newTestScheduler(srv, []string{"a"}, true)

	scheduler.Refresh()
	waitFor(t, func() bool { return len(inbox.List()) == 1 })
	scheduler.Stop()

	scheduler.Refresh()
	waitFor(t, func() bool { return len(inbox.List()) == 2 })
	scheduler.Stop()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
