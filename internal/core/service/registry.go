package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/speaky/gateway/internal/api/metrics"
	"github.com/speaky/gateway/internal/core/domain"
)

// Registry owns the workspaces of all connected clients.
type Registry struct {
	deps  Deps
	newID func() string

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

func NewRegistry(deps Deps) *Registry {
	return &Registry{
		deps:       deps,
		newID:      uuid.NewString,
		workspaces: make(map[string]*Workspace),
	}
}

// Open creates a workspace for a new client, positioned at the phone step.
func (r *Registry) Open(_ context.Context) *Workspace {
	w := newWorkspace(r.newID(), r.deps)
	r.mu.Lock()
	r.workspaces[w.id] = w
	r.mu.Unlock()
	metrics.ActiveWorkspaces.Inc()
	r.deps.Log.Info().Str("client_id", w.id).Msg("workspace opened")
	return w
}

// Resolve returns the workspace of clientID. A client unknown to this process
// is restored from its persisted session, refreshed through login when the
// auth service answers. Without a persisted session a fresh workspace is
// created under the same id.
func (r *Registry) Resolve(ctx context.Context, clientID string) (*Workspace, error) {
	if clientID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	if w, ok := r.lookup(clientID); ok {
		w.touch()
		return w, nil
	}

	w := newWorkspace(clientID, r.deps)
	user, found, err := r.restore(ctx, clientID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if existing, ok := r.workspaces[clientID]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.workspaces[clientID] = w
	r.mu.Unlock()
	metrics.ActiveWorkspaces.Inc()

	if found {
		if _, err := w.authenticate(ctx, user); err != nil {
			r.drop(clientID)
			if errors.Is(err, domain.ErrInvalidSession) {
				return r.reset(ctx, clientID, err)
			}
			return nil, fmt.Errorf("restore session: %w", err)
		}
		r.deps.Log.Info().Str("client_id", clientID).Int64("user_id", user.ID).Msg("workspace restored")
	}
	return w, nil
}

func (r *Registry) restore(ctx context.Context, clientID string) (domain.User, bool, error) {
	if r.deps.Sessions == nil {
		return domain.User{}, false, nil
	}
	saved, err := r.deps.Sessions.Load(ctx, clientID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.User{}, false, nil
	}
	if errors.Is(err, domain.ErrInvalidSession) {
		r.deps.Log.Warn().Err(err).Str("client_id", clientID).Msg("discarding unreadable session")
		if err := r.deps.Sessions.Delete(ctx, clientID); err != nil {
			r.deps.Log.Error().Err(err).Str("client_id", clientID).Msg("failed to delete unreadable session")
		}
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, fmt.Errorf("load session: %w", err)
	}

	fresh, err := r.deps.Remote.Auth.Login(ctx, saved.Phone)
	if err != nil {
		r.deps.Log.Warn().Err(err).Str("client_id", clientID).Msg("login refresh failed, using persisted session")
		return saved, true, nil
	}
	fresh = fresh.Normalize()
	if err := r.deps.Sessions.Save(ctx, clientID, fresh); err != nil {
		r.deps.Log.Error().Err(err).Str("client_id", clientID).Msg("failed to persist refreshed session")
	}
	return fresh, true, nil
}

// reset drops a persisted session that no longer passes validation and hands
// the client a fresh workspace in its place.
func (r *Registry) reset(ctx context.Context, clientID string, cause error) (*Workspace, error) {
	r.deps.Log.Warn().Err(cause).Str("client_id", clientID).Msg("discarding invalid session")
	if err := r.deps.Sessions.Delete(ctx, clientID); err != nil {
		r.deps.Log.Error().Err(err).Str("client_id", clientID).Msg("failed to delete invalid session")
	}
	w := newWorkspace(clientID, r.deps)
	r.mu.Lock()
	if existing, ok := r.workspaces[clientID]; ok {
		r.mu.Unlock()
		return existing, nil
	}
	r.workspaces[clientID] = w
	r.mu.Unlock()
	metrics.ActiveWorkspaces.Inc()
	return w, nil
}

// Close logs the client out: the workspace is discarded and the persisted
// session deleted.
func (r *Registry) Close(ctx context.Context, clientID string) error {
	w, ok := r.drop(clientID)
	if ok {
		w.close()
	}
	if r.deps.Sessions != nil {
		if err := r.deps.Sessions.Delete(ctx, clientID); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
	}
	r.deps.Log.Info().Str("client_id", clientID).Msg("workspace closed")
	return nil
}

// Sweep evicts the workspaces no request has touched for IdleTTL and returns
// how many were evicted. The persisted sessions stay, so an evicted client is
// restored on its next request.
func (r *Registry) Sweep(now time.Time) int {
	if r.deps.IdleTTL <= 0 {
		return 0
	}
	cutoff := now.Add(-r.deps.IdleTTL)

	r.mu.Lock()
	var idle []*Workspace
	for id, w := range r.workspaces {
		if w.idleSince().Before(cutoff) {
			idle = append(idle, w)
			delete(r.workspaces, id)
		}
	}
	r.mu.Unlock()

	for _, w := range idle {
		metrics.ActiveWorkspaces.Dec()
		w.close()
		r.deps.Log.Debug().Str("client_id", w.id).Msg("idle workspace evicted")
	}
	if len(idle) > 0 {
		r.deps.Log.Info().Int("evicted", len(idle)).Msg("idle workspaces swept")
	}
	return len(idle)
}

// StartSweeper runs Sweep every interval until ctx is done.
func (r *Registry) StartSweeper(ctx context.Context, every time.Duration) {
	if r.deps.IdleTTL <= 0 || every <= 0 {
		return
	}
	now := r.deps.Now
	if now == nil {
		now = time.Now
	}
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.Sweep(now())
			}
		}
	}()
}

// Len returns the number of workspaces held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

func (r *Registry) lookup(clientID string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workspaces[clientID]
	return w, ok
}

func (r *Registry) drop(clientID string) (*Workspace, bool) {
	r.mu.Lock()
	w, ok := r.workspaces[clientID]
	delete(r.workspaces, clientID)
	r.mu.Unlock()
	if ok {
		metrics.ActiveWorkspaces.Dec()
	}
	return w, ok
}
