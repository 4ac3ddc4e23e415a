package goal

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

// ledgerStub satisfies tracker.SessionTracker with a fixed ledger.
type ledgerStub struct {
	ledger entity.TimeLedger
}

func (s *ledgerStub) Load(context.Context) error                 { return nil }
func (s *ledgerStub) StartSession(context.Context, string) error { return nil }
func (s *ledgerStub) StopSession(context.Context) error          { return nil }
func (s *ledgerStub) GetElapsedToday(string) int64               { return 0 }
func (s *ledgerStub) ActiveDomain() string                       { return "" }
func (s *ledgerStub) Flush(context.Context) error                { return nil }
func (s *ledgerStub) Maintain(context.Context) error             { return nil }
func (s *ledgerStub) Snapshot() entity.TimeLedger                { return s.ledger }

var testNow = time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC)

func minutes(m int) int64 { return int64(m) * 60_000 }

func newTestService(t *testing.T, ledger entity.TimeLedger) (GoalService, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	svc := NewGoalService(mem, &ledgerStub{ledger: ledger}, slog.New(slog.NewTextHandler(io.Discard, nil)), 100)
	return svc, mem
}

func TestDailyGoalNotifiesOncePerThreshold(t *testing.T) {
	today := entity.DayKey(testNow)
	svc, _ := newTestService(t, entity.TimeLedger{
		today: {"youtube.com": minutes(20), "reddit.com": minutes(11)},
	})
	ctx := context.Background()

	created, err := svc.CreateGoal(ctx, entity.Goal{
		Type:          entity.GoalDailyLimit,
		TargetMinutes: 60,
		NotifyAt:      []int{50, 80, 100},
		Enabled:       true,
	})
	require.NoError(t, err)

	// 31 of 60 minutes = 51.6%: crosses only the 50 threshold
	raised := svc.Check(ctx, testNow)
	require.Len(t, raised, 1)
	assert.Equal(t, created.ID, raised[0].GoalID)
	assert.Equal(t, 50, raised[0].Threshold)
	assert.InDelta(t, 51.66, raised[0].Percentage, 0.1)

	// a later same-day check with slightly more time does not re-notify
	svc2 := svc.(*goalService)
	svc2.tracker = &ledgerStub{ledger: entity.TimeLedger{
		today: {"youtube.com": minutes(21), "reddit.com": minutes(11)},
	}}
	assert.Empty(t, svc.Check(ctx, testNow))
}

func TestNotificationResetsOnNewDay(t *testing.T) {
	today := entity.DayKey(testNow)
	svc, _ := newTestService(t, entity.TimeLedger{
		today: {"youtube.com": minutes(40)},
	})
	ctx := context.Background()

	_, err := svc.CreateGoal(ctx, entity.Goal{
		Type:          entity.GoalDailyLimit,
		TargetMinutes: 30,
		NotifyAt:      []int{100},
		Enabled:       true,
	})
	require.NoError(t, err)

	require.Len(t, svc.Check(ctx, testNow), 1)
	require.Empty(t, svc.Check(ctx, testNow))

	// same ledger state on the next calendar day notifies again
	tomorrow := testNow.AddDate(0, 0, 1)
	svc.(*goalService).tracker = &ledgerStub{ledger: entity.TimeLedger{
		entity.DayKey(tomorrow): {"youtube.com": minutes(40)},
	}}
	assert.Len(t, svc.Check(ctx, tomorrow), 1)
}

func TestSiteGoalScopedToDomain(t *testing.T) {
	today := entity.DayKey(testNow)
	svc, _ := newTestService(t, entity.TimeLedger{
		today: {"youtube.com": minutes(25), "reddit.com": minutes(300)},
	})
	ctx := context.Background()

	_, err := svc.CreateGoal(ctx, entity.Goal{
		Type:          entity.GoalSiteLimit,
		TargetMinutes: 50,
		Domain:        "youtube.com",
		NotifyAt:      []int{80},
		Enabled:       true,
	})
	require.NoError(t, err)

	// only youtube counts: 25/50 = 50%, below the 80 threshold
	assert.Empty(t, svc.Check(ctx, testNow))

	progress := svc.Progress(testNow)
	require.Len(t, progress, 1)
	assert.Equal(t, minutes(25), progress[0].CurrentMs)
	assert.False(t, progress[0].Exceeded)
}

func TestWeeklyGoalSumsTrailingWindow(t *testing.T) {
	ledger := entity.TimeLedger{}
	for i := 0; i < 10; i++ {
		ledger.Add(entity.DayKey(testNow.AddDate(0, 0, -i)), "youtube.com", minutes(60))
	}
	svc, _ := newTestService(t, ledger)
	ctx := context.Background()

	_, err := svc.CreateGoal(ctx, entity.Goal{
		Type:          entity.GoalWeeklyLimit,
		TargetMinutes: 600,
		Domain:        "youtube.com",
		NotifyAt:      []int{50},
		Enabled:       true,
	})
	require.NoError(t, err)

	progress := svc.Progress(testNow)
	require.Len(t, progress, 1)
	// only 7 of the 10 days fall inside the trailing window
	assert.Equal(t, minutes(7*60), progress[0].CurrentMs)
	assert.InDelta(t, 70.0, progress[0].Percentage, 1e-9)
}

func TestPercentageIsUnclamped(t *testing.T) {
	today := entity.DayKey(testNow)
	svc, _ := newTestService(t, entity.TimeLedger{
		today: {"youtube.com": minutes(90)},
	})
	ctx := context.Background()

	_, err := svc.CreateGoal(ctx, entity.Goal{
		Type:          entity.GoalDailyLimit,
		TargetMinutes: 30,
		NotifyAt:      []int{100},
		Enabled:       true,
	})
	require.NoError(t, err)

	progress := svc.Progress(testNow)
	require.Len(t, progress, 1)
	assert.InDelta(t, 300.0, progress[0].Percentage, 1e-9)
	assert.True(t, progress[0].Exceeded)
}

func TestDisabledGoalIsSkipped(t *testing.T) {
	today := entity.DayKey(testNow)
	svc, _ := newTestService(t, entity.TimeLedger{
		today: {"youtube.com": minutes(500)},
	})
	ctx := context.Background()

	_, err := svc.CreateGoal(ctx, entity.Goal{
		Type:          entity.GoalDailyLimit,
		TargetMinutes: 10,
		NotifyAt:      []int{100},
		Enabled:       false,
	})
	require.NoError(t, err)

	assert.Empty(t, svc.Check(ctx, testNow))
	assert.Empty(t, svc.Progress(testNow))
}

func TestHistoryEvictsOldestPastCap(t *testing.T) {
	today := entity.DayKey(testNow)
	mem := store.NewMemoryStore()
	svc := NewGoalService(mem, &ledgerStub{ledger: entity.TimeLedger{
		today: {"youtube.com": minutes(100)},
	}}, slog.New(slog.NewTextHandler(io.Discard, nil)), 3).(*goalService)
	ctx := context.Background()

	_, err := svc.CreateGoal(ctx, entity.Goal{
		Type:          entity.GoalDailyLimit,
		TargetMinutes: 60,
		NotifyAt:      []int{10, 20, 30, 40, 50},
		Enabled:       true,
	})
	require.NoError(t, err)

	raised := svc.Check(ctx, testNow)
	assert.Len(t, raised, 5)
	assert.Len(t, svc.cfg.History, 3, "history is capped")
	assert.Equal(t, entity.GoalHistoryKey(raised[4].GoalID, 50, today), svc.cfg.History[2])
}

func TestGoalValidation(t *testing.T) {
	svc, _ := newTestService(t, entity.TimeLedger{})
	ctx := context.Background()

	_, err := svc.CreateGoal(ctx, entity.Goal{Type: "bogus", TargetMinutes: 10})
	assert.Error(t, err)

	_, err = svc.CreateGoal(ctx, entity.Goal{Type: entity.GoalDailyLimit, TargetMinutes: 0})
	assert.Error(t, err)

	_, err = svc.CreateGoal(ctx, entity.Goal{Type: entity.GoalSiteLimit, TargetMinutes: 10})
	assert.Error(t, err, "site limit without a domain")
}
