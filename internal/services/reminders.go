package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"festguide/internal/models"
	"festguide/internal/prefs"
	"festguide/internal/restdb"
)

const (
	// reminderPollInterval is how often favorited events are checked.
	reminderPollInterval = time.Minute
	// reminderLeadWindow is how far before its start an event becomes
	// eligible for a reminder.
	reminderLeadWindow = 15 * time.Minute
)

// favoritesSource is the slice of the favorites store the scheduler needs.
type favoritesSource interface {
	EventIDs() []string
}

// preferenceSource exposes the persisted reminders-enabled flag.
type preferenceSource interface {
	GetBool(key string, def bool) bool
}

// ReminderScheduler polls the favorited events and raises one notification
// per event when its start time falls inside the lead window. Polling is
// best effort: a failed check is logged and skipped, never surfaced.
type ReminderScheduler struct {
	db        *restdb.Client
	session   identitySource
	favorites favoritesSource
	inbox     *Inbox
	prefs     preferenceSource

	mu       sync.Mutex
	cancel   context.CancelFunc
	notified map[string]struct{}

	// now is swapped out in tests.
	now func() time.Time
}

// NewReminderScheduler wires the scheduler to its collaborators. It starts
// inactive; call Refresh once the resolver and favorites store are ready.
func NewReminderScheduler(db *restdb.Client, session identitySource, favorites favoritesSource, inbox *Inbox, preferences preferenceSource) *ReminderScheduler {
	return &ReminderScheduler{
		db:        db,
		session:   session,
		favorites: favorites,
		inbox:     inbox,
		prefs:     preferences,
		notified:  map[string]struct{}{},
		now:       time.Now,
	}
}

// Refresh re-evaluates the activation predicate: an authenticated identity,
// a non-empty favorites set and the reminders preference enabled. Activation
// starts the polling goroutine with a fresh dedupe set; losing any condition
// stops it. An event already inside its window can therefore notify again
// after a deactivate/reactivate cycle.
func (r *ReminderScheduler) Refresh() {
	_, authenticated := r.session.Current()
	shouldRun := authenticated &&
		len(r.favorites.EventIDs()) > 0 &&
		r.prefs.GetBool(prefs.KeyRemindersEnabled, true)

	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case shouldRun && r.cancel == nil:
		ctx, cancel := context.WithCancel(context.Background())
		r.cancel = cancel
		r.notified = map[string]struct{}{}
		go r.run(ctx)
	case !shouldRun && r.cancel != nil:
		r.cancel()
		r.cancel = nil
	}
}

// Stop deactivates the scheduler regardless of the predicate.
func (r *ReminderScheduler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// Active reports whether the polling goroutine is running.
func (r *ReminderScheduler) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *ReminderScheduler) run(ctx context.Context) {
	// First check fires immediately on activation.
	if fired, err := r.Tick(ctx); err != nil {
		log.Printf("reminders: check skipped: %v", err)
	} else if fired > 0 {
		log.Printf("reminders: raised %d notification(s)", fired)
	}

	ticker := time.NewTicker(reminderPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if fired, err := r.Tick(ctx); err != nil {
				log.Printf("reminders: check skipped: %v", err)
			} else if fired > 0 {
				log.Printf("reminders: raised %d notification(s)", fired)
			}
		}
	}
}

// Tick runs one poll pass and returns how many notifications it raised. The
// caller decides what to do with the error; the polling loop just logs it.
func (r *ReminderScheduler) Tick(ctx context.Context) (int, error) {
	ids := r.favorites.EventIDs()
	if len(ids) == 0 {
		return 0, nil
	}

	var events []models.Event
	q := restdb.Query{}.
		In("id", ids).
		Select("id", "title", "artist", "start_time", "stage").
		Is("is_active", "true")
	if err := r.db.FetchMany(ctx, "events", q, &events, restdb.WithToken(r.session.Token())); err != nil {
		return 0, fmt.Errorf("fetch favorited events: %w", err)
	}

	now := r.now()
	fired := 0
	for _, event := range events {
		if event.StartTime == nil {
			continue
		}
		r.mu.Lock()
		_, seen := r.notified[event.ID]
		r.mu.Unlock()
		if seen {
			continue
		}

		delta := event.StartTime.Sub(now)
		if delta <= 0 || delta > reminderLeadWindow {
			continue
		}

		r.mu.Lock()
		r.notified[event.ID] = struct{}{}
		r.mu.Unlock()

		mins := int(math.Round(delta.Minutes()))
		title := fmt.Sprintf("⏰ %s tra %d min!", event.DisplayName(), mins)
		description := "Sta per iniziare — non perdertelo!"
		if event.Stage != "" {
			description = "Sul palco: " + event.Stage
		}
		r.inbox.Add(title, description)
		fired++
	}
	return fired, nil
}
