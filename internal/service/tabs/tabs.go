// internal/service/tabs/tabs.go
package tabs

import (
	"fmt"
	"sync"

	"github.com/dinerozz/focus-guard-backend/internal/entity"
)

// Registry mirrors the browser's tab/window state from reported events. It is
// deliberately dumb: session transitions are decided by the dispatcher, which
// also knows about pause and tracking-block windows.
type Registry interface {
	Apply(event entity.TabEvent) error
	ActiveURL() (tabID int, url string, ok bool)
}

type registry struct {
	mu          sync.Mutex
	urls        map[int]string
	activeTabID int
	focused     bool
}

func NewRegistry() Registry {
	return &registry{
		urls:        make(map[int]string),
		activeTabID: -1,
		// until the first focus event arrives assume the window is focused,
		// otherwise no time would accumulate before the user alt-tabs
		focused: true,
	}
}

func (r *registry) Apply(event entity.TabEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch event.Type {
	case entity.TabActivated:
		r.activeTabID = event.TabID
	case entity.TabUpdated:
		if event.URL != "" {
			r.urls[event.TabID] = event.URL
		}
	case entity.TabRemoved:
		delete(r.urls, event.TabID)
		if r.activeTabID == event.TabID {
			r.activeTabID = -1
		}
	case entity.WindowFocusChanged:
		r.focused = event.Focused != nil && *event.Focused
	default:
		return fmt.Errorf("unsupported tab event type: %s", event.Type)
	}

	return nil
}

// ActiveURL resolves the currently focused tab's URL. ok is false when no
// window has focus or the active tab's URL is unknown.
func (r *registry) ActiveURL() (int, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.focused || r.activeTabID < 0 {
		return 0, "", false
	}
	url, ok := r.urls[r.activeTabID]
	if !ok || url == "" {
		return 0, "", false
	}
	return r.activeTabID, url, true
}
