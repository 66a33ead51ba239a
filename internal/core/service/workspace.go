package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/speaky/gateway/internal/core/domain"
	"github.com/speaky/gateway/internal/core/ports"
)

// Deps are the collaborators shared by all workspaces.
type Deps struct {
	Remote   ports.Remote
	Sessions ports.SessionRepository
	Ledger   ports.LedgerRepository
	Guard    ports.SubmitGuard
	Catalog  ports.Catalog
	Events   ports.EventPublisher
	Log      zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
	// IdleTTL is how long an untouched workspace stays in memory. Zero keeps
	// workspaces until logout.
	IdleTTL time.Duration
}

// Workspace is the client core of one connected client: the auth flow until
// a session exists, then the session store and the view router.
type Workspace struct {
	id    string
	deps  Deps
	notes *Notifications
	log   zerolog.Logger
	// lastSeen is the unix nano time of the last request.
	lastSeen atomic.Int64

	mu     sync.RWMutex
	auth   *AuthFlow
	store  *SessionStore
	router *Router
	closed bool
}

func newWorkspace(id string, deps Deps) *Workspace {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	w := &Workspace{
		id:   id,
		deps: deps,
		log:  deps.Log.With().Str("client_id", id).Logger(),
	}
	w.notes = NewNotifications(NotificationLimit, func(n domain.Notification) {
		w.publish(domain.EventNotification, n)
	})
	w.notes.now = deps.Now
	var sessions ports.SessionRepository
	if deps.Sessions != nil {
		sessions = liveSessions{w: w}
	}
	w.auth = NewAuthFlow(id, deps.Remote.Auth, sessions, deps.Guard, w.notes, func(p domain.AuthProgress) {
		w.publish(domain.EventAuth, p)
	}, w.log)
	w.touch()
	return w
}

func (w *Workspace) touch() {
	w.lastSeen.Store(w.deps.Now().UnixNano())
}

func (w *Workspace) idleSince() time.Time {
	return time.Unix(0, w.lastSeen.Load())
}

func (w *Workspace) ID() string { return w.id }

func (w *Workspace) Notifications() *Notifications { return w.notes }

// Authenticated reports whether the workspace holds a session.
func (w *Workspace) Authenticated() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.store != nil
}

// Auth returns the sign-up flow. It fails once a session exists.
func (w *Workspace) Auth() (*AuthFlow, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return nil, domain.ErrWorkspaceClosed
	}
	if w.auth == nil {
		return nil, fmt.Errorf("already authenticated: %w", domain.ErrInvalidTransition)
	}
	return w.auth, nil
}

// Session returns the session store of an authenticated workspace.
func (w *Workspace) Session() (*SessionStore, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return nil, domain.ErrWorkspaceClosed
	}
	if w.store == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return w.store, nil
}

// Router returns the view router of an authenticated workspace.
func (w *Workspace) Router() (*Router, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return nil, domain.ErrWorkspaceClosed
	}
	if w.router == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return w.router, nil
}

// SubmitProfile finishes the sign-up. On success the auth progress is
// discarded and the chats view is mounted.
func (w *Workspace) SubmitProfile(ctx context.Context, nickname string) (domain.Snapshot, error) {
	flow, err := w.Auth()
	if err != nil {
		return domain.Snapshot{}, err
	}
	user, err := flow.SubmitProfile(ctx, nickname)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return w.authenticate(ctx, user)
}

// authenticate installs user as the session and mounts the default view.
func (w *Workspace) authenticate(ctx context.Context, user domain.User) (domain.Snapshot, error) {
	store, err := NewSessionStore(user)
	if err != nil {
		return domain.Snapshot{}, err
	}
	store.OnChange(w.persist)
	store.OnChange(func(s domain.Snapshot) {
		w.publish(domain.EventSession, s)
	})

	env := &panelEnv{
		clientID: w.id,
		store:    store,
		remote:   w.deps.Remote,
		ledger:   w.deps.Ledger,
		guard:    w.deps.Guard,
		catalog:  w.deps.Catalog,
		notes:    w.notes,
		now:      w.deps.Now,
		log:      w.log,
	}
	router := newRouter(env, func(v View) {
		w.publish(domain.EventView, map[string]any{"view": v.ID(), "access_denied": isDenied(v)})
	})

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return domain.Snapshot{}, domain.ErrWorkspaceClosed
	}
	if w.store != nil {
		w.mu.Unlock()
		return domain.Snapshot{}, fmt.Errorf("already authenticated: %w", domain.ErrInvalidTransition)
	}
	w.store, w.router, w.auth = store, router, nil
	w.mu.Unlock()

	snap := store.Current()
	w.publish(domain.EventSession, snap)
	if _, err := router.SetView(ctx, domain.DefaultView); err != nil {
		return domain.Snapshot{}, err
	}
	w.log.Info().Int64("user_id", snap.User.ID).Msg("session started")
	return snap, nil
}

func (w *Workspace) persist(s domain.Snapshot) {
	if w.deps.Sessions == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := w.save(ctx, s.User); err != nil {
		w.log.Error().Err(err).Uint64("version", s.Version).Msg("failed to persist session")
	}
}

// save writes user unless the workspace is closed. The read lock is held
// across the write, so close waits for it and a logout deletes what it wrote.
func (w *Workspace) save(ctx context.Context, user domain.User) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.log.Debug().Msg("workspace closed, session write dropped")
		return nil
	}
	return w.deps.Sessions.Save(ctx, w.id, user)
}

func (w *Workspace) publish(t domain.EventType, payload any) {
	if w.deps.Events == nil {
		return
	}
	w.mu.RLock()
	closed := w.closed
	w.mu.RUnlock()
	if closed {
		return
	}
	w.deps.Events.Publish(domain.Event{ClientID: w.id, Type: t, Payload: payload, At: w.deps.Now().UTC()})
}

// liveSessions hands the auth flow a repository whose writes go through save.
type liveSessions struct {
	w *Workspace
}

func (s liveSessions) Save(ctx context.Context, _ string, user domain.User) error {
	return s.w.save(ctx, user)
}

func (s liveSessions) Load(ctx context.Context, clientID string) (domain.User, error) {
	return s.w.deps.Sessions.Load(ctx, clientID)
}

func (s liveSessions) Delete(ctx context.Context, clientID string) error {
	return s.w.deps.Sessions.Delete(ctx, clientID)
}

func (w *Workspace) close() {
	w.mu.Lock()
	w.closed = true
	w.auth, w.store, w.router = nil, nil, nil
	w.mu.Unlock()
}

func isDenied(v View) bool {
	_, ok := v.(AccessDeniedView)
	return ok
}
