package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"festguide/internal/models"
)

func newTestFavorites(backend *favoritesBackend, authenticated bool) *FavoritesStore {
	session := &stubIdentity{
		identity:      models.Identity{ID: "u1", Email: "user@fest.it"},
		authenticated: authenticated,
		token:         "tok",
	}
	return NewFavoritesStore(backend.client(), session)
}

func TestToggleTwiceRestoresOriginalState(t *testing.T) {
	backend := newFavoritesBackend()
	defer backend.srv.Close()
	store := newTestFavorites(backend, true)

	if err := store.Toggle(context.Background(), "ev1"); err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !store.IsFavorite("ev1") {
		t.Fatal("ev1 should be a favorite after first toggle")
	}
	if backend.rowCount() != 1 {
		t.Fatalf("remote rows = %d, want 1", backend.rowCount())
	}

	if err := store.Toggle(context.Background(), "ev1"); err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if store.IsFavorite("ev1") {
		t.Error("ev1 should not be a favorite after second toggle")
	}
	if backend.rowCount() != 0 {
		t.Errorf("remote rows = %d, want 0", backend.rowCount())
	}
}

func TestToggleWithoutIdentityIsNoop(t *testing.T) {
	backend := newFavoritesBackend()
	defer backend.srv.Close()
	store := newTestFavorites(backend, false)

	if err := store.Toggle(context.Background(), "ev1"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if backend.hitCount() != 0 {
		t.Errorf("backend hits = %d, want 0", backend.hitCount())
	}
}

func TestToggleRejectsOverlappingCallForSameEvent(t *testing.T) {
	backend := newFavoritesBackend()
	backend.insertGate = make(chan struct{})
	backend.insertStarted = make(chan struct{}, 1)
	defer backend.srv.Close()
	store := newTestFavorites(backend, true)

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- store.Toggle(context.Background(), "ev1")
	}()

	// Wait until the first toggle's insert is in flight.
	select {
	case <-backend.insertStarted:
	case <-time.After(5 * time.Second):
		t.Fatal("first toggle never reached the backend")
	}

	if err := store.Toggle(context.Background(), "ev1"); !errors.Is(err, ErrToggleInFlight) {
		t.Errorf("second toggle error = %v, want ErrToggleInFlight", err)
	}

	close(backend.insertGate)
	if err := <-firstDone; err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !store.IsFavorite("ev1") {
		t.Error("ev1 should be a favorite once the first toggle completes")
	}
}

func TestToggleRemoteFailureLeavesLocalStateUnchanged(t *testing.T) {
	backend := newFavoritesBackend()
	defer backend.srv.Close()
	store := newTestFavorites(backend, true)

	backend.fail = true
	if err := store.Toggle(context.Background(), "ev1"); err == nil {
		t.Fatal("want error from failing backend")
	}
	if store.IsFavorite("ev1") {
		t.Error("local set must not change when the remote write fails")
	}
}

func TestLoadReplacesSetAndFailureKeepsPrior(t *testing.T) {
	backend := newFavoritesBackend()
	defer backend.srv.Close()
	backend.seed(models.Favorite{ID: "row1", EventID: "ev1", Note: "front row"})

	store := newTestFavorites(backend, true)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !store.IsFavorite("ev1") || store.Note("ev1") != "front row" {
		t.Fatalf("loaded state wrong: favorite=%v note=%q", store.IsFavorite("ev1"), store.Note("ev1"))
	}

	backend.fail = true
	if err := store.Load(context.Background()); err == nil {
		t.Fatal("want error from failing backend")
	}
	if !store.IsFavorite("ev1") {
		t.Error("failed load must keep the prior set")
	}
}

func TestLoadWithoutIdentityClearsSet(t *testing.T) {
	backend := newFavoritesBackend()
	defer backend.srv.Close()
	backend.seed(models.Favorite{ID: "row1", EventID: "ev1"})

	session := &stubIdentity{identity: models.Identity{ID: "u1"}, authenticated: true, token: "tok"}
	store := NewFavoritesStore(backend.client(), session)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	session.authenticated = false
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load after sign-out: %v", err)
	}
	if store.IsFavorite("ev1") {
		t.Error("set should be empty without an identity")
	}
	if len(store.EventIDs()) != 0 {
		t.Errorf("EventIDs = %v, want empty", store.EventIDs())
	}
}

func TestUpdateNote(t *testing.T) {
	backend := newFavoritesBackend()
	defer backend.srv.Close()
	store := newTestFavorites(backend, true)

	if err := store.Toggle(context.Background(), "ev1"); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if err := store.UpdateNote(context.Background(), "ev1", "bring earplugs"); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if store.Note("ev1") != "bring earplugs" {
		t.Errorf("Note = %q", store.Note("ev1"))
	}

	backend.mu.Lock()
	var remote string
	for _, f := range backend.rows {
		remote = f.Note
	}
	backend.mu.Unlock()
	if remote != "bring earplugs" {
		t.Errorf("remote note = %q", remote)
	}
}

func TestUpdateNoteWithoutFavoriteIsNoop(t *testing.T) {
	backend := newFavoritesBackend()
	defer backend.srv.Close()
	store := newTestFavorites(backend, true)

	if err := store.UpdateNote(context.Background(), "unknown", "note"); err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if backend.hitCount() != 0 {
		t.Errorf("backend hits = %d, want 0", backend.hitCount())
	}
	if store.Note("unknown") != "" {
		t.Errorf("Note = %q, want empty", store.Note("unknown"))
	}
}
