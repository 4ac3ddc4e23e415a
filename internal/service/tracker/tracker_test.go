package tracker

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

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestTracker(t *testing.T, mem *store.MemoryStore) (*sessionTracker, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)}
	tr := NewSessionTracker(mem, slog.New(slog.NewTextHandler(io.Discard, nil)), 30).(*sessionTracker)
	tr.now = clock.Now
	return tr, clock
}

func TestGetElapsedTodayIsIdempotent(t *testing.T) {
	tr, clock := newTestTracker(t, store.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, tr.StartSession(ctx, "youtube.com"))
	clock.Advance(5 * time.Minute)

	first := tr.GetElapsedToday("youtube.com")
	second := tr.GetElapsedToday("youtube.com")
	third := tr.GetElapsedToday("youtube.com")

	assert.Equal(t, int64(5*60*1000), first)
	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
}

func TestTimeConservationAcrossSwitches(t *testing.T) {
	tr, clock := newTestTracker(t, store.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, tr.StartSession(ctx, "youtube.com"))
	clock.Advance(10 * time.Minute)

	require.NoError(t, tr.StartSession(ctx, "reddit.com"))
	clock.Advance(5 * time.Minute)

	require.NoError(t, tr.StartSession(ctx, "youtube.com"))
	clock.Advance(3 * time.Minute)

	require.NoError(t, tr.StopSession(ctx))

	assert.Equal(t, int64(13*60*1000), tr.GetElapsedToday("youtube.com"))
	assert.Equal(t, int64(5*60*1000), tr.GetElapsedToday("reddit.com"))

	total := tr.Snapshot().DayTotal(entity.DayKey(clock.Now()))
	assert.Equal(t, int64(18*60*1000), total, "total recorded time equals wall-clock active time")
}

func TestStartSessionSameDomainIsNoop(t *testing.T) {
	mem := store.NewMemoryStore()
	tr, clock := newTestTracker(t, mem)
	ctx := context.Background()

	require.NoError(t, tr.StartSession(ctx, "youtube.com"))
	clock.Advance(2 * time.Minute)
	require.NoError(t, tr.StartSession(ctx, "youtube.com"))
	clock.Advance(2 * time.Minute)

	assert.Equal(t, int64(4*60*1000), tr.GetElapsedToday("youtube.com"))
	assert.Equal(t, "youtube.com", tr.ActiveDomain())
}

func TestFlushRestartsSessionUnderSameDomain(t *testing.T) {
	mem := store.NewMemoryStore()
	tr, clock := newTestTracker(t, mem)
	ctx := context.Background()

	require.NoError(t, tr.StartSession(ctx, "youtube.com"))
	clock.Advance(2 * time.Minute)
	require.NoError(t, tr.Flush(ctx))

	assert.Equal(t, "youtube.com", tr.ActiveDomain(), "flush must not end the session")

	clock.Advance(3 * time.Minute)
	assert.Equal(t, int64(5*60*1000), tr.GetElapsedToday("youtube.com"))

	// the committed part survives a restart
	fresh, _ := newTestTracker(t, mem)
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, int64(2*60*1000), fresh.GetElapsedToday("youtube.com"))
}

func TestFailedFlushKeepsSessionStateIntact(t *testing.T) {
	mem := store.NewMemoryStore()
	tr, clock := newTestTracker(t, mem)
	ctx := context.Background()

	require.NoError(t, tr.StartSession(ctx, "youtube.com"))
	clock.Advance(4 * time.Minute)

	mem.FailSets = 10
	err := tr.Flush(ctx)
	require.Error(t, err)

	// in-memory accounting is unharmed and the session is still open
	assert.Equal(t, int64(4*60*1000), tr.GetElapsedToday("youtube.com"))
	assert.Equal(t, "youtube.com", tr.ActiveDomain())

	// the next flush succeeds and nothing was double counted
	mem.FailSets = 0
	clock.Advance(1 * time.Minute)
	require.NoError(t, tr.Flush(ctx))
	assert.Equal(t, int64(5*60*1000), tr.GetElapsedToday("youtube.com"))
}

func TestMaintainPrunesPastRetention(t *testing.T) {
	mem := store.NewMemoryStore()
	tr, clock := newTestTracker(t, mem)
	ctx := context.Background()

	old := entity.DayKey(clock.Now().AddDate(0, 0, -31))
	recent := entity.DayKey(clock.Now().AddDate(0, 0, -5))
	tr.ledger.Add(old, "youtube.com", 1000)
	tr.ledger.Add(recent, "youtube.com", 2000)

	require.NoError(t, tr.Maintain(ctx))

	snap := tr.Snapshot()
	assert.NotContains(t, snap, old)
	assert.Equal(t, int64(2000), snap.Get(recent, "youtube.com"))
}

func TestPersistMergesStoredRecord(t *testing.T) {
	mem := store.NewMemoryStore()
	tr, clock := newTestTracker(t, mem)
	ctx := context.Background()
	today := entity.DayKey(clock.Now())

	// another collaborator (import) wrote ledger data we have never seen
	imported := entity.TimeLedger{
		today: {"news.ycombinator.com": 7000},
	}
	require.NoError(t, mem.Set(ctx, store.KeyLedger, imported))

	require.NoError(t, tr.StartSession(ctx, "youtube.com"))
	clock.Advance(time.Minute)
	require.NoError(t, tr.StopSession(ctx))

	var stored entity.TimeLedger
	require.NoError(t, mem.Get(ctx, store.KeyLedger, &stored))
	assert.Equal(t, int64(7000), stored.Get(today, "news.ycombinator.com"), "unrelated fields must survive the write")
	assert.Equal(t, int64(60*1000), stored.Get(today, "youtube.com"))
}

func TestSnapshotIncludesOpenSession(t *testing.T) {
	tr, clock := newTestTracker(t, store.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, tr.StartSession(ctx, "youtube.com"))
	clock.Advance(90 * time.Second)

	snap := tr.Snapshot()
	assert.Equal(t, int64(90*1000), snap.Get(entity.DayKey(clock.Now()), "youtube.com"))
}
