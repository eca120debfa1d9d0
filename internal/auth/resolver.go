package auth

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"festguide/internal/models"
	"festguide/internal/prefs"
	"festguide/internal/restdb"
)

// State is the resolver's position in its sign-in lifecycle.
type State int

const (
	// StateUnresolved means Bootstrap has not run yet.
	StateUnresolved State = iota
	// StateAnonymous means nobody is signed in.
	StateAnonymous
	// StateAuthenticated means a user is signed in and its admin flag is
	// known.
	StateAuthenticated
)

// Resolver tracks the current identity and its admin privilege for the whole
// application. It is constructed once at startup and handed to every
// component that needs to know who is signed in.
type Resolver struct {
	db      *restdb.Client
	gateway *Gateway
	prefs   *prefs.Store

	mu       sync.RWMutex
	state    State
	identity models.Identity
	session  *Session
	// signedInThisRun is true only after a sign-in in this process. Bootstrap
	// uses it to tell a restart from an in-run state change.
	signedInThisRun bool

	subscribers []func()
}

// NewResolver wires the resolver to the data API, the auth gateway and the
// durable preference store.
func NewResolver(db *restdb.Client, gateway *Gateway, store *prefs.Store) *Resolver {
	return &Resolver{db: db, gateway: gateway, prefs: store}
}

// OnChange registers fn to run after every state transition. Registration is
// not safe to call after Bootstrap; wire all subscribers during startup.
func (r *Resolver) OnChange(fn func()) {
	r.subscribers = append(r.subscribers, fn)
}

// Bootstrap restores a persisted session, applying the remember-me policy: a
// session left behind by a sign-in that declined persistence is discarded the
// next time the process starts.
func (r *Resolver) Bootstrap(ctx context.Context) {
	stored := r.loadPersistedSession()

	noRemember := r.prefs.GetBool(prefs.KeyNoRemember, false)
	if stored != nil && noRemember && !r.signedInThisRun {
		if err := r.prefs.Delete(prefs.KeyNoRemember); err != nil {
			log.Printf("prefs: clearing no-remember flag: %v", err)
		}
		r.clearPersistedSession()
		r.setAnonymous()
		return
	}

	if stored == nil || stored.IsExpired() {
		if stored != nil {
			r.clearPersistedSession()
		}
		r.setAnonymous()
		return
	}

	isAdmin := r.checkAdmin(ctx, stored.User.ID, stored.AccessToken)
	r.setAuthenticated(stored, isAdmin)
}

// SignIn authenticates with email/password. remember=false flags the session
// so the next process start forces a sign-out instead of restoring it.
func (r *Resolver) SignIn(ctx context.Context, email, password string, remember bool) error {
	session, err := r.gateway.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	return r.adopt(ctx, session, remember)
}

// SignUp registers a new user and, when the auth service immediately issues a
// session, signs it in.
func (r *Resolver) SignUp(ctx context.Context, email, password, username string, marketingConsent bool) error {
	session, err := r.gateway.SignUp(ctx, email, password, username, marketingConsent)
	if err != nil {
		return err
	}
	if session.AccessToken == "" {
		// Email confirmation pending; stay anonymous.
		return nil
	}
	return r.adopt(ctx, session, true)
}

func (r *Resolver) adopt(ctx context.Context, session *Session, remember bool) error {
	if remember {
		if err := r.prefs.Delete(prefs.KeyNoRemember); err != nil {
			log.Printf("prefs: clearing no-remember flag: %v", err)
		}
	} else {
		if err := r.prefs.Set(prefs.KeyNoRemember, "true"); err != nil {
			log.Printf("prefs: setting no-remember flag: %v", err)
		}
	}
	r.persistSession(session)

	r.mu.Lock()
	r.signedInThisRun = true
	r.mu.Unlock()

	isAdmin := r.checkAdmin(ctx, session.User.ID, session.AccessToken)
	r.setAuthenticated(session, isAdmin)
	return nil
}

// SignOut revokes the current session and transitions to Anonymous. The
// remote revocation is best effort; local state is cleared regardless.
func (r *Resolver) SignOut(ctx context.Context) error {
	r.mu.RLock()
	session := r.session
	r.mu.RUnlock()

	var err error
	if session != nil {
		err = r.gateway.SignOut(ctx, session.AccessToken)
	}
	r.clearPersistedSession()
	r.setAnonymous()
	return err
}

// State returns the current lifecycle state.
func (r *Resolver) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Current returns the signed-in identity, if any.
func (r *Resolver) Current() (models.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.identity, r.state == StateAuthenticated
}

// IsAdmin reports whether the current identity holds the admin role.
func (r *Resolver) IsAdmin() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state == StateAuthenticated && r.identity.IsAdmin
}

// Token returns the current access token, or "" when anonymous. Callers pass
// it to restdb.WithToken for authenticated data access.
func (r *Resolver) Token() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.session == nil {
		return ""
	}
	return r.session.AccessToken
}

// checkAdmin queries the role-assignment collection for an admin row. Any
// failure degrades to false: a transient role-lookup error must never lock a
// regular user out of the app.
func (r *Resolver) checkAdmin(ctx context.Context, userID, token string) bool {
	var roles []models.RoleAssignment
	q := restdb.Query{}.
		Eq("user_id", userID).
		Eq("role", "admin").
		Select("role")
	if err := r.db.FetchMany(ctx, "user_roles", q, &roles, restdb.WithToken(token)); err != nil {
		log.Printf("auth: admin role lookup failed, assuming non-admin: %v", err)
		return false
	}
	return len(roles) > 0
}

func (r *Resolver) setAuthenticated(session *Session, isAdmin bool) {
	r.mu.Lock()
	r.state = StateAuthenticated
	r.session = session
	r.identity = models.Identity{
		ID:      session.User.ID,
		Email:   session.User.Email,
		IsAdmin: isAdmin,
	}
	r.mu.Unlock()
	r.notify()
}

func (r *Resolver) setAnonymous() {
	r.mu.Lock()
	r.state = StateAnonymous
	r.session = nil
	r.identity = models.Identity{}
	r.mu.Unlock()
	r.notify()
}

func (r *Resolver) notify() {
	for _, fn := range r.subscribers {
		fn()
	}
}

func (r *Resolver) loadPersistedSession() *Session {
	raw, ok := r.prefs.Get(prefs.KeySession)
	if !ok || raw == "" {
		return nil
	}
	var session Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		log.Printf("auth: discarding unreadable persisted session: %v", err)
		return nil
	}
	if session.AccessToken == "" || session.User.ID == "" {
		return nil
	}
	return &session
}

func (r *Resolver) persistSession(session *Session) {
	raw, err := json.Marshal(session)
	if err != nil {
		log.Printf("auth: persisting session: %v", err)
		return
	}
	if err := r.prefs.Set(prefs.KeySession, string(raw)); err != nil {
		log.Printf("auth: persisting session: %v", err)
	}
}

func (r *Resolver) clearPersistedSession() {
	if err := r.prefs.Delete(prefs.KeySession); err != nil {
		log.Printf("auth: clearing persisted session: %v", err)
	}
}
