package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"festguide/internal/models"
	"festguide/internal/restdb"
)

// ErrToggleInFlight is returned when a toggle for the same event is still
// waiting on its round trip. The local set is the source of truth for the
// insert-vs-delete decision, so overlapping toggles must be rejected rather
// than raced.
var ErrToggleInFlight = errors.New("favorite toggle already in progress for this event")

// identitySource is the slice of the session resolver the favorites store
// needs.
type identitySource interface {
	Current() (models.Identity, bool)
	Token() string
}

// FavoritesStore keeps the signed-in user's favorited events and notes in
// sync with the user_favorites collection.
type FavoritesStore struct {
	db      *restdb.Client
	session identitySource

	mu       sync.Mutex
	items    map[string]models.Favorite // keyed by event id
	inflight map[string]struct{}
	onChange func()
}

// NewFavoritesStore constructs an empty store.
func NewFavoritesStore(db *restdb.Client, session identitySource) *FavoritesStore {
	return &FavoritesStore{
		db:       db,
		session:  session,
		items:    map[string]models.Favorite{},
		inflight: map[string]struct{}{},
	}
}

// SetOnChange registers fn to run after the set of favorites changes. Wire it
// during startup, before any load or toggle.
func (s *FavoritesStore) SetOnChange(fn func()) {
	s.onChange = fn
}

// Load replaces the local set with the remote one. With no identity present
// the set is simply cleared. A fetch failure leaves the prior set untouched.
func (s *FavoritesStore) Load(ctx context.Context) error {
	identity, ok := s.session.Current()
	if !ok {
		s.mu.Lock()
		changed := len(s.items) > 0
		s.items = map[string]models.Favorite{}
		s.mu.Unlock()
		if changed {
			s.notify()
		}
		return nil
	}

	var rows []models.Favorite
	q := restdb.Query{}.
		Select("id", "event_id", "note").
		Eq("user_id", identity.ID)
	if err := s.db.FetchMany(ctx, "user_favorites", q, &rows, restdb.WithToken(s.session.Token())); err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}

	items := make(map[string]models.Favorite, len(rows))
	for _, f := range rows {
		items[f.EventID] = f
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	s.notify()
	return nil
}

// IsFavorite reports whether eventID is in the loaded set.
func (s *FavoritesStore) IsFavorite(eventID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[eventID]
	return ok
}

// Note returns the free-text note for eventID, empty when absent.
func (s *FavoritesStore) Note(eventID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[eventID].Note
}

// EventIDs returns the favorited event ids.
func (s *FavoritesStore) EventIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	return ids
}

// All returns a snapshot of the favorites.
func (s *FavoritesStore) All() []models.Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Favorite, 0, len(s.items))
	for _, f := range s.items {
		out = append(out, f)
	}
	return out
}

// Toggle flips membership for eventID: delete when present, insert when not.
// At most one toggle per event may be in flight; a concurrent second call
// gets ErrToggleInFlight. Local state only changes after the remote write
// succeeds.
func (s *FavoritesStore) Toggle(ctx context.Context, eventID string) error {
	identity, ok := s.session.Current()
	if !ok {
		return nil
	}

	s.mu.Lock()
	if _, busy := s.inflight[eventID]; busy {
		s.mu.Unlock()
		return ErrToggleInFlight
	}
	s.inflight[eventID] = struct{}{}
	existing, present := s.items[eventID]
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inflight, eventID)
		s.mu.Unlock()
	}()

	token := restdb.WithToken(s.session.Token())
	if present {
		q := restdb.Query{}.Eq("id", existing.ID)
		if err := s.db.Delete(ctx, "user_favorites", q, token); err != nil {
			return fmt.Errorf("remove favorite: %w", err)
		}
		s.mu.Lock()
		delete(s.items, eventID)
		s.mu.Unlock()
	} else {
		row := map[string]string{"user_id": identity.ID, "event_id": eventID}
		var created models.Favorite
		if err := s.db.Insert(ctx, "user_favorites", row, &created, token); err != nil {
			return fmt.Errorf("add favorite: %w", err)
		}
		s.mu.Lock()
		s.items[created.EventID] = created
		s.mu.Unlock()
	}
	s.notify()
	return nil
}

// UpdateNote sets the note on an existing favorite. Without one it is a
// no-op.
func (s *FavoritesStore) UpdateNote(ctx context.Context, eventID, note string) error {
	if _, ok := s.session.Current(); !ok {
		return nil
	}

	s.mu.Lock()
	existing, present := s.items[eventID]
	s.mu.Unlock()
	if !present {
		return nil
	}

	q := restdb.Query{}.Eq("id", existing.ID)
	patch := map[string]string{"note": note}
	if err := s.db.Update(ctx, "user_favorites", q, patch, restdb.WithToken(s.session.Token())); err != nil {
		return fmt.Errorf("update favorite note: %w", err)
	}

	s.mu.Lock()
	existing.Note = note
	s.items[eventID] = existing
	s.mu.Unlock()
	return nil
}

func (s *FavoritesStore) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}
