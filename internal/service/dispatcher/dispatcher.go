// internal/service/dispatcher/dispatcher.go
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dinerozz/focus-guard-backend/config"
	"github.com/dinerozz/focus-guard-backend/internal/entity"
	"github.com/dinerozz/focus-guard-backend/internal/service/delivery"
	"github.com/dinerozz/focus-guard-backend/internal/service/goal"
	"github.com/dinerozz/focus-guard-backend/internal/service/guard"
	"github.com/dinerozz/focus-guard-backend/internal/service/schedule"
	"github.com/dinerozz/focus-guard-backend/internal/service/sites"
	"github.com/dinerozz/focus-guard-backend/internal/service/tabs"
	"github.com/dinerozz/focus-guard-backend/internal/service/threshold"
	"github.com/dinerozz/focus-guard-backend/internal/service/tracker"
)

// Dispatcher composes the scheduler: per tick it emits at most one popup
// decision and zero or more goal notifications. One loop, no parallel ticks.
type Dispatcher interface {
	Run(ctx context.Context)
	Tick(ctx context.Context)
	HandleEvent(ctx context.Context, event entity.TabEvent) error
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Paused() bool
}

type dispatcher struct {
	tracker  tracker.SessionTracker
	schedule schedule.ScheduleService
	guard    guard.CooldownGuard
	goals    goal.GoalService
	registry tabs.Registry
	matcher  sites.Matcher
	notifier delivery.Notifier
	log      *slog.Logger

	tickInterval    time.Duration
	flushInterval   time.Duration
	baselineMinTime time.Duration
	tierTable       entity.TierTable
	now             func() time.Time

	// inFlight serializes ticks: persistence is asynchronous and a tick that
	// outlives its interval must not overlap the next one.
	inFlight atomic.Bool

	mu     sync.Mutex
	paused bool
}

type Deps struct {
	Tracker  tracker.SessionTracker
	Schedule schedule.ScheduleService
	Guard    guard.CooldownGuard
	Goals    goal.GoalService
	Registry tabs.Registry
	Matcher  sites.Matcher
	Notifier delivery.Notifier
	Log      *slog.Logger
}

func NewDispatcher(deps Deps, cfg config.SchedulerConfig) Dispatcher {
	return &dispatcher{
		tracker:         deps.Tracker,
		schedule:        deps.Schedule,
		guard:           deps.Guard,
		goals:           deps.Goals,
		registry:        deps.Registry,
		matcher:         deps.Matcher,
		notifier:        deps.Notifier,
		log:             deps.Log,
		tickInterval:    cfg.TickInterval,
		flushInterval:   cfg.FlushInterval,
		baselineMinTime: cfg.BaselineMinTime,
		tierTable:       entity.DefaultTierTable(),
		now:             time.Now,
	}
}

// Run drives the polling loop until ctx is canceled. Timers are single-shot
// and re-armed only after the tick body returns, so ticks cannot overlap by
// construction; the inFlight flag additionally guards event-driven work.
func (d *dispatcher) Run(ctx context.Context) {
	tick := time.NewTimer(d.tickInterval)
	flush := time.NewTimer(d.flushInterval)
	maintain := time.NewTimer(24 * time.Hour)
	defer tick.Stop()
	defer flush.Stop()
	defer maintain.Stop()

	d.log.Info("intervention scheduler started",
		slog.Duration("tick", d.tickInterval),
		slog.Duration("flush", d.flushInterval))

	for {
		select {
		case <-ctx.Done():
			if err := d.tracker.StopSession(context.Background()); err != nil {
				d.log.Warn("final flush failed", slog.String("error", err.Error()))
			}
			d.log.Info("intervention scheduler stopped")
			return
		case <-tick.C:
			d.Tick(ctx)
			tick.Reset(d.tickInterval)
		case <-flush.C:
			if err := d.tracker.Flush(ctx); err != nil {
				d.log.Warn("periodic flush failed", slog.String("error", err.Error()))
			}
			flush.Reset(d.flushInterval)
		case <-maintain.C:
			if err := d.tracker.Maintain(ctx); err != nil {
				d.log.Warn("ledger maintenance failed", slog.String("error", err.Error()))
			}
			maintain.Reset(24 * time.Hour)
		}
	}
}

// Tick runs one scheduler iteration. Failures inside a tick are contained so
// they can never prevent subsequent ticks.
func (d *dispatcher) Tick(ctx context.Context) {
	if !d.inFlight.CompareAndSwap(false, true) {
		d.log.Warn("tick skipped, previous tick still in flight")
		return
	}
	defer d.inFlight.Store(false)

	defer func() {
		if r := recover(); r != nil {
			d.log.Error("tick panicked", slog.Any("panic", r))
		}
	}()

	now := d.now()

	// user explicitly opted out: goal checks are skipped too
	if d.Paused() {
		return
	}

	if d.schedule.IsTrackingBlocked(now) {
		if err := d.tracker.StopSession(ctx); err != nil {
			d.log.Warn("stop session during block window failed", slog.String("error", err.Error()))
		}
		return
	}

	domain, tabID := d.reconcileSession(ctx)

	if domain != "" {
		d.runPopupPath(ctx, now, domain, tabID)
	}

	// goal notifications are independent of the popup path and of suppression
	d.runGoalChecks(ctx, now)
}

// reconcileSession aligns the tracker's session with the browser state and
// returns the active tracked domain, empty when none.
func (d *dispatcher) reconcileSession(ctx context.Context) (string, int) {
	tabID, url, ok := d.registry.ActiveURL()
	if !ok {
		d.stopSessionLogged(ctx)
		return "", 0
	}

	match := d.matcher.Match(url)
	if match == nil {
		d.stopSessionLogged(ctx)
		return "", 0
	}

	if err := d.tracker.StartSession(ctx, match.Domain); err != nil {
		d.log.Warn("start session failed", slog.String("domain", match.Domain), slog.String("error", err.Error()))
	}
	return match.Domain, tabID
}

func (d *dispatcher) runPopupPath(ctx context.Context, now time.Time, domain string, tabID int) {
	elapsed := time.Duration(d.tracker.GetElapsedToday(domain)) * time.Millisecond

	adjustedMinTime := time.Duration(float64(d.baselineMinTime) * d.schedule.ThresholdMultiplier(now))
	if elapsed < adjustedMinTime {
		return
	}

	tier, ok := threshold.Evaluate(elapsed, d.tierTable)
	if !ok {
		return
	}

	if d.schedule.IsSuppressed(now) {
		return
	}

	if !d.guard.CanFire(domain, now, tier.RepeatInterval) {
		return
	}

	// record before attempting delivery so an overlapping attempt can never
	// double-fire
	if err := d.guard.RecordFire(ctx, domain, now); err != nil {
		d.log.Warn("record intervention state failed", slog.String("error", err.Error()))
	}

	decision := entity.InterventionDecision{
		Domain:    domain,
		TabID:     tabID,
		Tier:      tier,
		ElapsedMs: elapsed.Milliseconds(),
		Interval:  tier.RepeatInterval,
	}
	d.log.Info("dispatching intervention",
		slog.String("domain", decision.Domain),
		slog.String("tier", tier.Name),
		slog.Int64("elapsedMs", decision.ElapsedMs))

	if d.notifier.AttemptOverlay(ctx, tabID, domain, decision.ElapsedMs, tier.Name) {
		return
	}

	if _, err := d.notifier.ShowSystemNotification(ctx,
		"Focus check",
		fmt.Sprintf("You have spent %d minutes on %s today", elapsed.Milliseconds()/60_000, domain),
		domain,
	); err != nil {
		d.log.Warn("system notification delivery failed", slog.String("error", err.Error()))
	}
}

func (d *dispatcher) runGoalChecks(ctx context.Context, now time.Time) {
	for _, n := range d.goals.Check(ctx, now) {
		title := "Goal progress"
		if n.Percentage >= 100 {
			title = "Goal limit reached"
		}
		body := fmt.Sprintf("%d%% of your %s budget used", n.Threshold, n.Type)
		if _, err := d.notifier.ShowSystemNotification(ctx, title, body, n.Domain); err != nil {
			d.log.Warn("goal notification delivery failed",
				slog.String("goalId", n.GoalID),
				slog.String("error", err.Error()))
		}
	}
}

// HandleEvent mirrors one browser event and reconciles the session right
// away rather than waiting for the next tick.
func (d *dispatcher) HandleEvent(ctx context.Context, event entity.TabEvent) error {
	if !event.Type.Valid() {
		return fmt.Errorf("unsupported tab event type: %s", event.Type)
	}

	if err := d.registry.Apply(event); err != nil {
		return err
	}

	if d.Paused() || d.schedule.IsTrackingBlocked(d.now()) {
		d.stopSessionLogged(ctx)
		return nil
	}

	d.reconcileSession(ctx)
	return nil
}

// Pause is a cooperative transition: the open session is flushed so at most
// one flush interval of time can be lost.
func (d *dispatcher) Pause(ctx context.Context) error {
	d.mu.Lock()
	d.paused = true
	d.mu.Unlock()

	return d.tracker.StopSession(ctx)
}

func (d *dispatcher) Resume(ctx context.Context) error {
	d.mu.Lock()
	d.paused = false
	d.mu.Unlock()

	d.reconcileSession(ctx)
	return nil
}

func (d *dispatcher) Paused() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.paused
}

func (d *dispatcher) stopSessionLogged(ctx context.Context) {
	if err := d.tracker.StopSession(ctx); err != nil {
		d.log.Warn("stop session failed", slog.String("error", err.Error()))
	}
}
