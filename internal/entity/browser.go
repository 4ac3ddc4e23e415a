package entity

import "time"

// TabEventType is the closed set of host-browser events the extension reports.
type TabEventType string

const (
	TabActivated       TabEventType = "tab_activated"
	TabUpdated         TabEventType = "tab_updated"
	TabRemoved         TabEventType = "tab_removed"
	WindowFocusChanged TabEventType = "window_focus_changed"
)

func (t TabEventType) Valid() bool {
	switch t {
	case TabActivated, TabUpdated, TabRemoved, WindowFocusChanged:
		return true
	}
	return false
}

// TabEvent is one reported browser event. Fields are event-type dependent:
// TabUpdated carries URL and Status; WindowFocusChanged carries Focused.
type TabEvent struct {
	Type      TabEventType `json:"type" binding:"required"`
	TabID     int          `json:"tabId"`
	URL       string       `json:"url,omitempty"`
	Status    string       `json:"status,omitempty"`
	Focused   *bool        `json:"focused,omitempty"`
	Timestamp time.Time    `json:"ts"`
}

type BatchTabEventsRequest struct {
	Events []TabEvent `json:"events" binding:"required,dive"`
}

// SiteMatch describes a tracked site resolved by the site matcher.
type SiteMatch struct {
	Domain  string `json:"domain"`
	Pattern string `json:"pattern"`
}
