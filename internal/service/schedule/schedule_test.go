package schedule

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dinerozz/focus-guard-backend/internal/entity"
	"github.com/dinerozz/focus-guard-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) ScheduleService {
	t.Helper()
	return NewScheduleService(store.NewMemoryStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// at returns a time on the given weekday at "HH:MM". 2024-01-01 is a Monday.
func at(t *testing.T, weekday time.Weekday, clock string) time.Time {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // Monday
	parsed, err := time.Parse("15:04", clock)
	require.NoError(t, err)

	day := base.AddDate(0, 0, (int(weekday)-int(time.Monday)+7)%7)
	return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, time.UTC)
}

func allDays() []int { return []int{0, 1, 2, 3, 4, 5, 6} }

func TestQuietHoursOvernightWraparound(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.UpdateQuickSettings(context.Background(), entity.QuickSettings{
		QuietHoursEnabled: true,
		QuietHoursStart:   "22:00",
		QuietHoursEnd:     "08:00",
	}))

	assert.True(t, svc.IsSuppressed(at(t, time.Monday, "23:30")))
	assert.True(t, svc.IsSuppressed(at(t, time.Monday, "03:00")))
	assert.False(t, svc.IsSuppressed(at(t, time.Monday, "12:00")))
}

func TestSuppressRuleRespectsDayList(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.AddRule(context.Background(), entity.ScheduleRule{
		Enabled:   true,
		StartTime: "09:00",
		EndTime:   "17:00",
		Days:      []int{int(time.Monday)},
		Action:    entity.ActionSuppress,
	})
	require.NoError(t, err)

	assert.True(t, svc.IsSuppressed(at(t, time.Monday, "10:00")))
	assert.False(t, svc.IsSuppressed(at(t, time.Tuesday, "10:00")))
	assert.False(t, svc.IsSuppressed(at(t, time.Monday, "17:00")), "end of window is exclusive")
}

func TestMalformedRuleFailsClosed(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.AddRule(context.Background(), entity.ScheduleRule{
		Enabled:   true,
		StartTime: "25:99",
		EndTime:   "banana",
		Days:      allDays(),
		Action:    entity.ActionSuppress,
	})
	require.NoError(t, err)

	for hour := 0; hour < 24; hour++ {
		now := time.Date(2024, 1, 1, hour, 30, 0, 0, time.UTC)
		assert.False(t, svc.IsSuppressed(now), "malformed rule must be inactive at %s", now)
	}
}

func TestDisabledRuleIsInactive(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.AddRule(context.Background(), entity.ScheduleRule{
		Enabled:   false,
		StartTime: "00:00",
		EndTime:   "23:59",
		Days:      allDays(),
		Action:    entity.ActionBlockTracking,
	})
	require.NoError(t, err)

	assert.False(t, svc.IsTrackingBlocked(at(t, time.Monday, "12:00")))
}

func TestTrackingBlockedIsDistinctFromSuppression(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.AddRule(context.Background(), entity.ScheduleRule{
		Enabled:   true,
		StartTime: "13:00",
		EndTime:   "14:00",
		Days:      allDays(),
		Action:    entity.ActionBlockTracking,
	})
	require.NoError(t, err)

	now := at(t, time.Wednesday, "13:30")
	assert.True(t, svc.IsTrackingBlocked(now))
	assert.False(t, svc.IsSuppressed(now))
}

func TestThresholdMultiplierComposition(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.UpdateQuickSettings(context.Background(), entity.QuickSettings{
		WeekendModeEnabled:    true,
		WeekendModeMultiplier: 2.0,
		WorkHoursEnabled:      true,
		WorkHoursStart:        "09:00",
		WorkHoursEnd:          "17:00",
		WorkDays:              []int{1, 2, 3, 4, 5},
	}))
	_, err := svc.AddRule(context.Background(), entity.ScheduleRule{
		Enabled:             true,
		StartTime:           "00:00",
		EndTime:             "23:59",
		Days:                allDays(),
		Action:              entity.ActionAdjustThreshold,
		ThresholdMultiplier: 3.0,
	})
	require.NoError(t, err)

	// weekday inside work hours: 0.5 * 3.0
	assert.InDelta(t, 1.5, svc.ThresholdMultiplier(at(t, time.Tuesday, "10:00")), 1e-9)
	// weekday outside work hours: custom rule only
	assert.InDelta(t, 3.0, svc.ThresholdMultiplier(at(t, time.Tuesday, "20:00")), 1e-9)
	// weekend outside work days: 2.0 * 3.0
	assert.InDelta(t, 6.0, svc.ThresholdMultiplier(at(t, time.Saturday, "10:00")), 1e-9)
}

func TestThresholdMultiplierFloor(t *testing.T) {
	svc := newTestService(t)
	for i := 0; i < 3; i++ {
		_, err := svc.AddRule(context.Background(), entity.ScheduleRule{
			Enabled:             true,
			StartTime:           "00:00",
			EndTime:             "23:59",
			Days:                allDays(),
			Action:              entity.ActionAdjustThreshold,
			ThresholdMultiplier: 0.1,
		})
		require.NoError(t, err)
	}

	got := svc.ThresholdMultiplier(at(t, time.Monday, "12:00"))
	assert.InDelta(t, multiplierFloor, got, 1e-9, "stacked rules must not compound below the floor")
}

func TestMultiplierScalesBaselineNotTierTable(t *testing.T) {
	svc := newTestService(t)
	// no active rules: identity multiplier
	assert.InDelta(t, 1.0, svc.ThresholdMultiplier(at(t, time.Monday, "12:00")), 1e-9)
}

func TestRuleCRUDAndPersistence(t *testing.T) {
	mem := store.NewMemoryStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewScheduleService(mem, log)
	ctx := context.Background()

	rule, err := svc.AddRule(ctx, entity.ScheduleRule{
		Enabled:   true,
		StartTime: "08:00",
		EndTime:   "09:00",
		Days:      allDays(),
		Action:    entity.ActionSuppress,
	})
	require.NoError(t, err)
	require.NotEmpty(t, rule.ID)

	rule.EndTime = "10:00"
	_, err = svc.UpdateRule(ctx, *rule)
	require.NoError(t, err)

	// a fresh service sees the persisted config
	reloaded := NewScheduleService(mem, log)
	require.NoError(t, reloaded.Load(ctx))
	cfg := reloaded.Config()
	require.Len(t, cfg.Rules, 1)
	assert.Equal(t, "10:00", cfg.Rules[0].EndTime)

	require.NoError(t, svc.DeleteRule(ctx, rule.ID))
	assert.Empty(t, svc.Config().Rules)

	_, err = svc.UpdateRule(ctx, entity.ScheduleRule{ID: "missing", Action: entity.ActionSuppress})
	assert.Error(t, err)
}
