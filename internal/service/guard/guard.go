// internal/service/guard/guard.go
package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dinerozz/focus-guard-backend/internal/entity"
	"github.com/dinerozz/focus-guard-backend/internal/store"
)

// CooldownGuard enforces minimum spacing between interventions and honors
// explicit snooze windows. The dispatcher records a fire before attempting
// delivery so overlapping work can never double-fire.
type CooldownGuard interface {
	Load(ctx context.Context) error
	CanFire(domain string, now time.Time, requiredInterval time.Duration) bool
	RecordFire(ctx context.Context, domain string, now time.Time) error
	Snooze(ctx context.Context, until time.Time) error
	CancelSnooze(ctx context.Context) error
	State() entity.InterventionState
}

type cooldownGuard struct {
	mu    sync.Mutex
	store store.Store
	log   *slog.Logger
	state entity.InterventionState
}

func NewCooldownGuard(st store.Store, log *slog.Logger) CooldownGuard {
	return &cooldownGuard{store: st, log: log}
}

func (g *cooldownGuard) Load(ctx context.Context) error {
	var stored entity.InterventionState
	err := g.store.Get(ctx, store.KeyIntervention, &stored)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load intervention state: %w", err)
	}

	g.mu.Lock()
	g.state = stored
	g.mu.Unlock()
	return nil
}

func (g *cooldownGuard) CanFire(domain string, now time.Time, requiredInterval time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if now.Before(g.state.SnoozeUntil) {
		return false
	}

	if g.state.LastInterventionDomain == domain &&
		!g.state.LastInterventionTime.IsZero() &&
		now.Sub(g.state.LastInterventionTime) < requiredInterval {
		return false
	}

	return true
}

// RecordFire updates and persists the intervention state. Persistence
// failures are non-fatal: the in-memory state already moved, which is what
// prevents a double fire within this process's lifetime.
func (g *cooldownGuard) RecordFire(ctx context.Context, domain string, now time.Time) error {
	g.mu.Lock()
	g.state.LastInterventionTime = now
	g.state.LastInterventionDomain = domain
	state := g.state
	g.mu.Unlock()

	if err := store.SetWithRetry(ctx, g.store, store.KeyIntervention, state); err != nil {
		g.log.Warn("failed to persist intervention state", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (g *cooldownGuard) Snooze(ctx context.Context, until time.Time) error {
	g.mu.Lock()
	g.state.SnoozeUntil = until
	state := g.state
	g.mu.Unlock()

	if err := store.SetWithRetry(ctx, g.store, store.KeyIntervention, state); err != nil {
		return fmt.Errorf("failed to persist snooze: %w", err)
	}
	return nil
}

func (g *cooldownGuard) CancelSnooze(ctx context.Context) error {
	return g.Snooze(ctx, time.Time{})
}

func (g *cooldownGuard) State() entity.InterventionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}
