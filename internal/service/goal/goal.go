// internal/service/goal/goal.go
package goal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dinerozz/focus-guard-backend/internal/entity"
	"github.com/dinerozz/focus-guard-backend/internal/service/tracker"
	"github.com/dinerozz/focus-guard-backend/internal/store"
	"github.com/google/uuid"
)

// GoalService computes goal progress against the time ledger and raises
// at-most-once-per-day-per-threshold notifications. It runs every tick
// independently of popup suppression.
type GoalService interface {
	Load(ctx context.Context) error
	Goals() []entity.Goal
	CreateGoal(ctx context.Context, goal entity.Goal) (*entity.Goal, error)
	UpdateGoal(ctx context.Context, goal entity.Goal) (*entity.Goal, error)
	DeleteGoal(ctx context.Context, id string) error
	Progress(now time.Time) []entity.GoalProgress
	Check(ctx context.Context, now time.Time) []entity.GoalNotification
}

type goalService struct {
	mu         sync.Mutex
	store      store.Store
	tracker    tracker.SessionTracker
	log        *slog.Logger
	historyCap int
	cfg        entity.GoalConfig
}

func NewGoalService(st store.Store, tr tracker.SessionTracker, log *slog.Logger, historyCap int) GoalService {
	return &goalService{
		store:      st,
		tracker:    tr,
		log:        log,
		historyCap: historyCap,
	}
}

func (s *goalService) Load(ctx context.Context) error {
	var stored entity.GoalConfig
	err := s.store.Get(ctx, store.KeyGoals, &stored)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load goals: %w", err)
	}

	s.mu.Lock()
	s.cfg = stored
	s.mu.Unlock()
	return nil
}

func (s *goalService) Goals() []entity.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Goal(nil), s.cfg.Goals...)
}

func (s *goalService) CreateGoal(ctx context.Context, goal entity.Goal) (*entity.Goal, error) {
	if err := validateGoal(goal); err != nil {
		return nil, err
	}

	goal.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg.Goals = append(s.cfg.Goals, goal)
	if err := s.persistLocked(ctx); err != nil {
		return nil, err
	}
	return &goal, nil
}

func (s *goalService) UpdateGoal(ctx context.Context, goal entity.Goal) (*entity.Goal, error) {
	if err := validateGoal(goal); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cfg.Goals {
		if s.cfg.Goals[i].ID == goal.ID {
			s.cfg.Goals[i] = goal
			if err := s.persistLocked(ctx); err != nil {
				return nil, err
			}
			return &goal, nil
		}
	}
	return nil, fmt.Errorf("goal not found")
}

func (s *goalService) DeleteGoal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cfg.Goals {
		if s.cfg.Goals[i].ID == id {
			s.cfg.Goals = append(s.cfg.Goals[:i], s.cfg.Goals[i+1:]...)
			return s.persistLocked(ctx)
		}
	}
	return fmt.Errorf("goal not found")
}

// Progress computes the current state of every enabled goal. Percentages are
// the true unclamped ratio; display clamping belongs to the popup.
func (s *goalService) Progress(now time.Time) []entity.GoalProgress {
	ledger := s.tracker.Snapshot()

	s.mu.Lock()
	goals := append([]entity.Goal(nil), s.cfg.Goals...)
	s.mu.Unlock()

	progress := make([]entity.GoalProgress, 0, len(goals))
	for _, g := range goals {
		if !g.Enabled || g.TargetMs() <= 0 {
			continue
		}
		progress = append(progress, computeProgress(g, ledger, now))
	}
	return progress
}

// Check raises every threshold crossing not yet delivered today and records
// it, guaranteeing at-most-once delivery per (goal, threshold, day). History
// beyond the cap is evicted oldest-first.
func (s *goalService) Check(ctx context.Context, now time.Time) []entity.GoalNotification {
	ledger := s.tracker.Snapshot()
	day := entity.DayKey(now)

	s.mu.Lock()
	defer s.mu.Unlock()

	var raised []entity.GoalNotification
	for _, g := range s.cfg.Goals {
		if !g.Enabled || g.TargetMs() <= 0 {
			continue
		}

		prog := computeProgress(g, ledger, now)
		for _, th := range g.NotifyAt {
			if prog.Percentage < float64(th) {
				continue
			}
			key := entity.GoalHistoryKey(g.ID, th, day)
			if s.historySeenLocked(key) {
				continue
			}

			raised = append(raised, entity.GoalNotification{
				GoalID:     g.ID,
				Type:       g.Type,
				Domain:     g.Domain,
				Threshold:  th,
				Percentage: prog.Percentage,
				Day:        day,
			})
			s.recordHistoryLocked(key)
		}
	}

	if len(raised) > 0 {
		if err := s.persistLocked(ctx); err != nil {
			s.log.Warn("failed to persist goal history", slog.String("error", err.Error()))
		}
	}
	return raised
}

func (s *goalService) historySeenLocked(key string) bool {
	for _, h := range s.cfg.History {
		if h == key {
			return true
		}
	}
	return false
}

func (s *goalService) recordHistoryLocked(key string) {
	s.cfg.History = append(s.cfg.History, key)
	if over := len(s.cfg.History) - s.historyCap; over > 0 {
		s.cfg.History = append([]string(nil), s.cfg.History[over:]...)
	}
}

func (s *goalService) persistLocked(ctx context.Context) error {
	if err := store.SetWithRetry(ctx, s.store, store.KeyGoals, s.cfg); err != nil {
		return fmt.Errorf("failed to persist goals: %w", err)
	}
	return nil
}

func computeProgress(g entity.Goal, ledger entity.TimeLedger, now time.Time) entity.GoalProgress {
	var current int64

	switch g.Type {
	case entity.GoalSiteLimit:
		current = ledger.Get(entity.DayKey(now), g.Domain)
	case entity.GoalWeeklyLimit:
		for _, day := range entity.TrailingDayKeys(now, entity.WeeklyWindowDays) {
			if g.Domain != "" {
				current += ledger.Get(day, g.Domain)
			} else {
				current += ledger.DayTotal(day)
			}
		}
	default: // daily_limit
		if g.Domain != "" {
			current = ledger.Get(entity.DayKey(now), g.Domain)
		} else {
			current = ledger.DayTotal(entity.DayKey(now))
		}
	}

	target := g.TargetMs()
	return entity.GoalProgress{
		GoalID:     g.ID,
		Type:       g.Type,
		Domain:     g.Domain,
		CurrentMs:  current,
		TargetMs:   target,
		Percentage: 100 * float64(current) / float64(target),
		Exceeded:   current > target,
	}
}

func validateGoal(goal entity.Goal) error {
	if !goal.Type.Valid() {
		return fmt.Errorf("invalid goal type: %s", goal.Type)
	}
	if goal.TargetMinutes <= 0 {
		return fmt.Errorf("goal target must be positive")
	}
	if goal.Type == entity.GoalSiteLimit && goal.Domain == "" {
		return fmt.Errorf("site limit goals require a domain")
	}
	for _, th := range goal.NotifyAt {
		if th <= 0 {
			return fmt.Errorf("notify thresholds must be positive percentages")
		}
	}
	return nil
}
