package guard

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dinerozz/focus-guard-backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(mem *store.MemoryStore) CooldownGuard {
	return NewCooldownGuard(mem, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCooldownEnforcement(t *testing.T) {
	g := newTestGuard(store.NewMemoryStore())
	ctx := context.Background()

	t0 := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	interval := 10 * time.Minute

	require.True(t, g.CanFire("youtube.com", t0, interval))
	require.NoError(t, g.RecordFire(ctx, "youtube.com", t0))

	// no second fire for the same domain before t0+interval
	assert.False(t, g.CanFire("youtube.com", t0.Add(4*time.Minute), interval))
	assert.False(t, g.CanFire("youtube.com", t0.Add(interval-time.Second), interval))
	assert.True(t, g.CanFire("youtube.com", t0.Add(interval), interval))
}

func TestCooldownIsPerDomain(t *testing.T) {
	g := newTestGuard(store.NewMemoryStore())
	ctx := context.Background()

	t0 := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, g.RecordFire(ctx, "youtube.com", t0))

	assert.True(t, g.CanFire("reddit.com", t0.Add(time.Minute), 10*time.Minute))
}

func TestSnoozeBlocksEveryDomain(t *testing.T) {
	g := newTestGuard(store.NewMemoryStore())
	ctx := context.Background()

	t0 := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, g.Snooze(ctx, t0.Add(30*time.Minute)))

	assert.False(t, g.CanFire("youtube.com", t0.Add(10*time.Minute), time.Minute))
	assert.False(t, g.CanFire("reddit.com", t0.Add(29*time.Minute), time.Minute))
	assert.True(t, g.CanFire("youtube.com", t0.Add(30*time.Minute), time.Minute))

	require.NoError(t, g.CancelSnooze(ctx))
	assert.True(t, g.CanFire("reddit.com", t0.Add(10*time.Minute), time.Minute))
}

func TestStateSurvivesRestart(t *testing.T) {
	mem := store.NewMemoryStore()
	ctx := context.Background()

	g := newTestGuard(mem)
	t0 := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, g.RecordFire(ctx, "youtube.com", t0))
	require.NoError(t, g.Snooze(ctx, t0.Add(time.Hour)))

	reloaded := newTestGuard(mem)
	require.NoError(t, reloaded.Load(ctx))

	state := reloaded.State()
	assert.Equal(t, "youtube.com", state.LastInterventionDomain)
	assert.True(t, state.LastInterventionTime.Equal(t0))
	assert.False(t, reloaded.CanFire("reddit.com", t0.Add(30*time.Minute), time.Minute), "snooze survives restart")
}

func TestFreshGuardAllowsFire(t *testing.T) {
	g := newTestGuard(store.NewMemoryStore())
	assert.True(t, g.CanFire("youtube.com", time.Now(), time.Hour))
}
