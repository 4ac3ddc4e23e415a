package tabs

import (
	"testing"

	"github.com/dinerozz/focus-guard-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestRegistryTracksActiveTab(t *testing.T) {
	r := NewRegistry()

	_, _, ok := r.ActiveURL()
	assert.False(t, ok, "no tabs reported yet")

	require.NoError(t, r.Apply(entity.TabEvent{Type: entity.TabUpdated, TabID: 1, URL: "https://youtube.com/"}))
	require.NoError(t, r.Apply(entity.TabEvent{Type: entity.TabActivated, TabID: 1}))

	tabID, url, ok := r.ActiveURL()
	require.True(t, ok)
	assert.Equal(t, 1, tabID)
	assert.Equal(t, "https://youtube.com/", url)

	// switching to a tab with no known URL: active but unresolved
	require.NoError(t, r.Apply(entity.TabEvent{Type: entity.TabActivated, TabID: 2}))
	_, _, ok = r.ActiveURL()
	assert.False(t, ok)

	require.NoError(t, r.Apply(entity.TabEvent{Type: entity.TabUpdated, TabID: 2, URL: "https://reddit.com/"}))
	_, url, ok = r.ActiveURL()
	require.True(t, ok)
	assert.Equal(t, "https://reddit.com/", url)
}

func TestRegistryWindowFocus(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Apply(entity.TabEvent{Type: entity.TabUpdated, TabID: 1, URL: "https://youtube.com/"}))
	require.NoError(t, r.Apply(entity.TabEvent{Type: entity.TabActivated, TabID: 1}))

	require.NoError(t, r.Apply(entity.TabEvent{Type: entity.WindowFocusChanged, Focused: boolPtr(false)}))
	_, _, ok := r.ActiveURL()
	assert.False(t, ok)

	require.NoError(t, r.Apply(entity.TabEvent{Type: entity.WindowFocusChanged, Focused: boolPtr(true)}))
	_, _, ok = r.ActiveURL()
	assert.True(t, ok)

	// a focus event with no payload means focus was lost
	require.NoError(t, r.Apply(entity.TabEvent{Type: entity.WindowFocusChanged}))
	_, _, ok = r.ActiveURL()
	assert.False(t, ok)
}

func TestRegistryTabRemoval(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Apply(entity.TabEvent{Type: entity.TabUpdated, TabID: 1, URL: "https://youtube.com/"}))
	require.NoError(t, r.Apply(entity.TabEvent{Type: entity.TabActivated, TabID: 1}))

	require.NoError(t, r.Apply(entity.TabEvent{Type: entity.TabRemoved, TabID: 1}))
	_, _, ok := r.ActiveURL()
	assert.False(t, ok)

	err := r.Apply(entity.TabEvent{Type: "bogus"})
	assert.Error(t, err)
}
