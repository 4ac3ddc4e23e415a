package entity

import "time"

// NotificationKind distinguishes in-page overlay commands from system-level
// notifications in the delivery outbox.
type NotificationKind string

const (
	NotificationOverlay NotificationKind = "overlay"
	NotificationSystem  NotificationKind = "system"
)

// Notification is one outbox entry waiting to be drained by the extension.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title,omitempty"`
	Body      string           `json:"body,omitempty"`
	Domain    string           `json:"domain"`
	TabID     int              `json:"tabId,omitempty"`
	ElapsedMs int64            `json:"elapsedMs,omitempty"`
	Tier      string           `json:"tier,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}
