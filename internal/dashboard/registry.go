package dashboard

import (
	"context"
	"log"
	"sync"
	"time"

	"wavenote-api/internal/service"

	"github.com/google/uuid"
)

const loadTimeout = 10 * time.Second

// Registry owns one Dashboard per signed-in user.
type Registry struct {
	mu         sync.RWMutex
	dashboards map[uuid.UUID]*Dashboard
	tasks      service.TaskService
	opts       Options
}

func NewRegistry(tasks service.TaskService, opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Registry{
		dashboards: make(map[uuid.UUID]*Dashboard),
		tasks:      tasks,
		opts:       opts,
	}
}

// For returns the user's dashboard, creating and loading it on first use.
func (r *Registry) For(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	if d, ok := r.lookup(userID); ok {
		return d, nil
	}

	d := New(userID, r.tasks, r.opts)
	if err := d.Refresh(ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.dashboards[userID]; ok {
		return existing, nil
	}
	r.dashboards[userID] = d
	return d, nil
}

func (r *Registry) lookup(userID uuid.UUID) (*Dashboard, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.dashboards[userID]
	return d, ok
}

// Refresh reloads the list of the user's dashboard, if one is held. The
// dialog is left alone. A dashboard that fails to reload is dropped so the
// next request builds a fresh one.
func (r *Registry) Refresh(ctx context.Context, userID uuid.UUID) error {
	d, ok := r.lookup(userID)
	if !ok {
		return nil
	}
	if err := d.Refresh(ctx); err != nil {
		r.Drop(userID)
		return err
	}
	return nil
}

func (r *Registry) Drop(userID uuid.UUID) {
	r.mu.Lock()
	delete(r.dashboards, userID)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.dashboards)
}

// HandleAuthEvent loads a dashboard when a user signs in and forgets it on
// logout. Signing in again from another client reloads the list of an
// existing dashboard without touching its dialog.
func (r *Registry) HandleAuthEvent(event service.AuthEvent) {
	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return
	}

	switch event.Type {
	case service.AuthSignedUp, service.AuthLoggedIn:
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		if _, ok := r.lookup(userID); ok {
			err = r.Refresh(ctx, userID)
		} else {
			_, err = r.For(ctx, userID)
		}
		if err != nil {
			r.opts.Logger.Printf("Failed to load dashboard for %s: %v", userID, err)
		}
	case service.AuthLoggedOut:
		r.Drop(userID)
	}
}
