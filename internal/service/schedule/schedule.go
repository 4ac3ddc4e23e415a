// internal/service/schedule/schedule.go
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dinerozz/focus-guard-backend/internal/entity"
	"github.com/dinerozz/focus-guard-backend/internal/store"
	"github.com/dinerozz/focus-guard-backend/pkg/utils"
	"github.com/google/uuid"
)

// multiplierFloor keeps simultaneously active rules from compounding the
// effective threshold down to zero.
const multiplierFloor = 0.1

// workHoursFactor is the fixed halving applied while work hours are active.
const workHoursFactor = 0.5

// ScheduleService evaluates time-window rules against a wall-clock instant.
// Suppression withholds popups but keeps tracking; blocked tracking makes the
// tracker itself inert for the window.
type ScheduleService interface {
	Load(ctx context.Context) error
	IsSuppressed(now time.Time) bool
	IsTrackingBlocked(now time.Time) bool
	ThresholdMultiplier(now time.Time) float64

	Config() entity.ScheduleConfig
	UpdateQuickSettings(ctx context.Context, qs entity.QuickSettings) error
	AddRule(ctx context.Context, rule entity.ScheduleRule) (*entity.ScheduleRule, error)
	UpdateRule(ctx context.Context, rule entity.ScheduleRule) (*entity.ScheduleRule, error)
	DeleteRule(ctx context.Context, id string) error
}

type scheduleService struct {
	mu    sync.RWMutex
	store store.Store
	log   *slog.Logger
	cfg   entity.ScheduleConfig
}

func NewScheduleService(st store.Store, log *slog.Logger) ScheduleService {
	return &scheduleService{
		store: st,
		log:   log,
		cfg:   entity.ScheduleConfig{QuickSettings: entity.DefaultQuickSettings()},
	}
}

func (s *scheduleService) Load(ctx context.Context) error {
	var stored entity.ScheduleConfig
	err := s.store.Get(ctx, store.KeySchedule, &stored)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load schedule config: %w", err)
	}

	s.mu.Lock()
	s.cfg = stored
	s.mu.Unlock()
	return nil
}

// IsSuppressed reports whether any enabled suppress rule, including the
// quiet-hours quick setting, is active at now.
func (s *scheduleService) IsSuppressed(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	qs := s.cfg.QuickSettings
	if qs.QuietHoursEnabled && windowActive(now, qs.QuietHoursStart, qs.QuietHoursEnd, nil) {
		return true
	}

	for _, rule := range s.cfg.Rules {
		if rule.Action == entity.ActionSuppress && ruleActive(rule, now) {
			return true
		}
	}
	return false
}

func (s *scheduleService) IsTrackingBlocked(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rule := range s.cfg.Rules {
		if rule.Action == entity.ActionBlockTracking && ruleActive(rule, now) {
			return true
		}
	}
	return false
}

// ThresholdMultiplier composes, in fixed order: the weekend-mode multiplier,
// the work-hours halving factor, then each active adjust_threshold rule. The
// result scales only the minimum-time-before-intervention baseline, never the
// tier table, and is clamped to a floor so stacked rules cannot zero it.
func (s *scheduleService) ThresholdMultiplier(now time.Time) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	multiplier := 1.0
	qs := s.cfg.QuickSettings

	if qs.WeekendModeEnabled && entity.IsWeekend(now) && qs.WeekendModeMultiplier > 0 {
		multiplier *= qs.WeekendModeMultiplier
	}

	if qs.WorkHoursEnabled && windowActive(now, qs.WorkHoursStart, qs.WorkHoursEnd, qs.WorkDays) {
		multiplier *= workHoursFactor
	}

	for _, rule := range s.cfg.Rules {
		if rule.Action == entity.ActionAdjustThreshold && rule.ThresholdMultiplier > 0 && ruleActive(rule, now) {
			multiplier *= rule.ThresholdMultiplier
		}
	}

	if multiplier < multiplierFloor {
		return multiplierFloor
	}
	return multiplier
}

func (s *scheduleService) Config() entity.ScheduleConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg := s.cfg
	cfg.Rules = append([]entity.ScheduleRule(nil), s.cfg.Rules...)
	return cfg
}

func (s *scheduleService) UpdateQuickSettings(ctx context.Context, qs entity.QuickSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg.QuickSettings = qs
	return s.persistLocked(ctx)
}

func (s *scheduleService) AddRule(ctx context.Context, rule entity.ScheduleRule) (*entity.ScheduleRule, error) {
	if !rule.Action.Valid() {
		return nil, fmt.Errorf("invalid rule action: %s", rule.Action)
	}

	rule.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cfg.Rules = append(s.cfg.Rules, rule)
	if err := s.persistLocked(ctx); err != nil {
		return nil, err
	}
	return &rule, nil
}

func (s *scheduleService) UpdateRule(ctx context.Context, rule entity.ScheduleRule) (*entity.ScheduleRule, error) {
	if !rule.Action.Valid() {
		return nil, fmt.Errorf("invalid rule action: %s", rule.Action)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cfg.Rules {
		if s.cfg.Rules[i].ID == rule.ID {
			s.cfg.Rules[i] = rule
			if err := s.persistLocked(ctx); err != nil {
				return nil, err
			}
			return &rule, nil
		}
	}
	return nil, fmt.Errorf("rule not found")
}

func (s *scheduleService) DeleteRule(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cfg.Rules {
		if s.cfg.Rules[i].ID == id {
			s.cfg.Rules = append(s.cfg.Rules[:i], s.cfg.Rules[i+1:]...)
			return s.persistLocked(ctx)
		}
	}
	return fmt.Errorf("rule not found")
}

func (s *scheduleService) persistLocked(ctx context.Context) error {
	if err := store.SetWithRetry(ctx, s.store, store.KeySchedule, s.cfg); err != nil {
		return fmt.Errorf("failed to persist schedule config: %w", err)
	}
	return nil
}

// ruleActive evaluates one rule against now. A malformed time string fails
// closed: the rule is simply inactive.
func ruleActive(rule entity.ScheduleRule, now time.Time) bool {
	if !rule.Enabled {
		return false
	}
	return windowActive(now, rule.StartTime, rule.EndTime, rule.Days)
}

// windowActive checks weekday membership and the [start, end) clock window
// with overnight wraparound. A nil day list means every day.
func windowActive(now time.Time, startStr, endStr string, days []int) bool {
	if days != nil && !containsDay(days, int(now.Weekday())) {
		return false
	}

	start, err := utils.ParseClock(startStr)
	if err != nil {
		return false
	}
	end, err := utils.ParseClock(endStr)
	if err != nil {
		return false
	}

	return utils.InClockWindow(utils.MinuteOfDay(now), start, end)
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
