package threshold

import (
	"testing"
	"time"

	"github.com/dinerozz/focus-guard-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable() entity.TierTable {
	return entity.TierTable{
		{Name: "low", MinElapsed: 15 * time.Minute, RepeatInterval: 20 * time.Minute},
		{Name: "medium", MinElapsed: 30 * time.Minute, RepeatInterval: 10 * time.Minute},
		{Name: "high", MinElapsed: 60 * time.Minute, RepeatInterval: 5 * time.Minute},
	}
}

func TestEvaluateBelowLowestTier(t *testing.T) {
	_, ok := Evaluate(14*time.Minute, testTable())
	assert.False(t, ok, "no tier should match below the lowest threshold")
}

func TestEvaluateBoundaryIsInclusive(t *testing.T) {
	tier, ok := Evaluate(15*time.Minute, testTable())
	require.True(t, ok)
	assert.Equal(t, "low", tier.Name)
}

func TestEvaluatePicksHighestMatchingTier(t *testing.T) {
	// 45 minutes is past both low and medium; the stricter medium interval
	// must win, not low's
	tier, ok := Evaluate(45*time.Minute, testTable())
	require.True(t, ok)
	assert.Equal(t, "medium", tier.Name)
	assert.Equal(t, 10*time.Minute, tier.RepeatInterval)

	tier, ok = Evaluate(3*time.Hour, testTable())
	require.True(t, ok)
	assert.Equal(t, "high", tier.Name)
}

func TestEvaluateTierMonotonicity(t *testing.T) {
	table := testTable()

	tierIndex := func(name string) int {
		for i, tier := range table {
			if tier.Name == name {
				return i
			}
		}
		return -1
	}

	prev := -1
	for elapsed := 15 * time.Minute; elapsed <= 2*time.Hour; elapsed += time.Minute {
		tier, ok := Evaluate(elapsed, table)
		require.True(t, ok, "elapsed %s above lowest threshold must match", elapsed)

		idx := tierIndex(tier.Name)
		assert.GreaterOrEqual(t, idx, prev, "tier must never decrease as elapsed grows")
		prev = idx
	}
}

func TestEvaluateEmptyTable(t *testing.T) {
	_, ok := Evaluate(10*time.Hour, nil)
	assert.False(t, ok)
}
