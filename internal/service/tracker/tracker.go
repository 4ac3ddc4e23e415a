// internal/service/tracker/tracker.go
package tracker

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

// SessionTracker accumulates active browsing time per calendar day and domain.
// It exclusively owns the single ActiveSession and is the only writer of the
// ledger record.
type SessionTracker interface {
	Load(ctx context.Context) error
	StartSession(ctx context.Context, domain string) error
	StopSession(ctx context.Context) error
	GetElapsedToday(domain string) int64
	ActiveDomain() string
	Flush(ctx context.Context) error
	Maintain(ctx context.Context) error
	Snapshot() entity.TimeLedger
}

type sessionTracker struct {
	mu            sync.Mutex
	store         store.Store
	log           *slog.Logger
	retentionDays int
	now           func() time.Time

	ledger  entity.TimeLedger
	session *entity.ActiveSession
}

func NewSessionTracker(st store.Store, log *slog.Logger, retentionDays int) SessionTracker {
	return &sessionTracker{
		store:         st,
		log:           log,
		retentionDays: retentionDays,
		now:           time.Now,
		ledger:        entity.TimeLedger{},
	}
}

// Load restores the persisted ledger. A missing record is a fresh install,
// not an error.
func (t *sessionTracker) Load(ctx context.Context) error {
	var stored entity.TimeLedger
	err := t.store.Get(ctx, store.KeyLedger, &stored)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load ledger: %w", err)
	}

	t.mu.Lock()
	t.mergeLocked(stored)
	t.mu.Unlock()
	return nil
}

func (t *sessionTracker) StartSession(ctx context.Context, domain string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session != nil && t.session.Domain == domain {
		return nil
	}

	err := t.flushLocked(ctx)
	t.session = &entity.ActiveSession{Domain: domain, StartAt: t.now()}
	return err
}

func (t *sessionTracker) StopSession(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	err := t.flushLocked(ctx)
	t.session = nil
	return err
}

// GetElapsedToday never mutates state; repeated calls without an intervening
// tick return identical values.
func (t *sessionTracker) GetElapsedToday(domain string) int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	elapsed := t.ledger.Get(entity.DayKey(now), domain)
	if t.session != nil && t.session.Domain == domain {
		elapsed += now.Sub(t.session.StartAt).Milliseconds()
	}
	return elapsed
}

func (t *sessionTracker) ActiveDomain() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session == nil {
		return ""
	}
	return t.session.Domain
}

// Flush commits the open span and immediately restarts the session under the
// same domain, bounding data loss to one flush interval without waiting for a
// domain switch.
func (t *sessionTracker) Flush(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flushLocked(ctx)
}

// flushLocked folds the open span into the in-memory ledger and persists it.
// The in-memory accumulation happens before the write, and the session start
// is advanced first, so a failed write never corrupts session state or double
// counts time; at most one flush interval is lost on crash.
func (t *sessionTracker) flushLocked(ctx context.Context) error {
	if t.session != nil {
		now := t.now()
		span := now.Sub(t.session.StartAt).Milliseconds()
		t.ledger.Add(entity.DayKey(now), t.session.Domain, span)
		t.session.StartAt = now
	}

	return t.persistLocked(ctx)
}

// Maintain prunes ledger days older than the retention window and persists.
func (t *sessionTracker) Maintain(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if removed := t.ledger.Prune(t.cutoffLocked()); removed > 0 {
		t.log.Info("pruned ledger days past retention", slog.Int("days", removed))
	}
	return t.persistLocked(ctx)
}

func (t *sessionTracker) Snapshot() entity.TimeLedger {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := entity.TimeLedger{}
	for day, times := range t.ledger {
		copied := entity.DomainTimes{}
		for domain, ms := range times {
			copied[domain] = ms
		}
		snap[day] = copied
	}

	if t.session != nil {
		now := t.now()
		snap.Add(entity.DayKey(now), t.session.Domain, now.Sub(t.session.StartAt).Milliseconds())
	}
	return snap
}

// persistLocked does a read-merge-write of the whole ledger record so a
// concurrent import by another collaborator is folded in rather than
// blind-overwritten.
func (t *sessionTracker) persistLocked(ctx context.Context) error {
	var stored entity.TimeLedger
	err := t.store.Get(ctx, store.KeyLedger, &stored)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		t.log.Warn("ledger read before flush failed, writing local state", slog.String("error", err.Error()))
	} else if stored != nil {
		t.mergeLocked(stored)
	}

	if err := store.SetWithRetry(ctx, t.store, store.KeyLedger, t.ledger); err != nil {
		return fmt.Errorf("failed to persist ledger: %w", err)
	}
	return nil
}

// mergeLocked folds a stored ledger into memory. Within-day values are
// monotonic while the process runs, so the larger value wins per cell; days
// we have never seen are adopted unless already past retention.
func (t *sessionTracker) mergeLocked(stored entity.TimeLedger) {
	cutoff := t.cutoffLocked()
	for day, times := range stored {
		if day < cutoff {
			continue
		}
		for domain, ms := range times {
			if ms > t.ledger.Get(day, domain) {
				t.ledger[day] = ensure(t.ledger[day])
				t.ledger[day][domain] = ms
			}
		}
	}
}

func (t *sessionTracker) cutoffLocked() string {
	return entity.DayKey(t.now().AddDate(0, 0, -t.retentionDays))
}

func ensure(times entity.DomainTimes) entity.DomainTimes {
	if times == nil {
		return entity.DomainTimes{}
	}
	return times
}
