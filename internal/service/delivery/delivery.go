// internal/service/delivery/delivery.go
package delivery

import (
	"context"
	"sync"
	"time"

	"github.com/dinerozz/focus-guard-backend/internal/entity"
	"github.com/google/uuid"
)

// Notifier is the presentation collaborator. Overlay delivery can fail when
// no listener is receiving; the dispatcher then falls back to a system-level
// notification. Neither failure mode is fatal to a tick.
type Notifier interface {
	AttemptOverlay(ctx context.Context, tabID int, domain string, elapsedMs int64, tier string) bool
	ShowSystemNotification(ctx context.Context, title, body, domain string) (string, error)
}

// Outbox is the queue-backed Notifier the extension drains over HTTP.
// An overlay attempt only succeeds while the extension's listener is live,
// i.e. it polled the outbox within the TTL.
type Outbox interface {
	Notifier
	Drain() []entity.Notification
	Pending() int
}

type outbox struct {
	mu       sync.Mutex
	queue    []entity.Notification
	cap      int
	ttl      time.Duration
	lastPoll time.Time
	now      func() time.Time
}

func NewOutbox(capacity int, listenerTTL time.Duration) Outbox {
	return &outbox{
		cap: capacity,
		ttl: listenerTTL,
		now: time.Now,
	}
}

func (o *outbox) AttemptOverlay(_ context.Context, tabID int, domain string, elapsedMs int64, tier string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.lastPoll.IsZero() || o.now().Sub(o.lastPoll) > o.ttl {
		return false
	}

	o.pushLocked(entity.Notification{
		ID:        uuid.NewString(),
		Kind:      entity.NotificationOverlay,
		Domain:    domain,
		TabID:     tabID,
		ElapsedMs: elapsedMs,
		Tier:      tier,
		CreatedAt: o.now(),
	})
	return true
}

func (o *outbox) ShowSystemNotification(_ context.Context, title, body, domain string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	n := entity.Notification{
		ID:        uuid.NewString(),
		Kind:      entity.NotificationSystem,
		Title:     title,
		Body:      body,
		Domain:    domain,
		CreatedAt: o.now(),
	}
	o.pushLocked(n)
	return n.ID, nil
}

// Drain empties the queue and refreshes the listener heartbeat.
func (o *outbox) Drain() []entity.Notification {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.lastPoll = o.now()
	drained := o.queue
	o.queue = nil
	return drained
}

func (o *outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

func (o *outbox) pushLocked(n entity.Notification) {
	o.queue = append(o.queue, n)
	if over := len(o.queue) - o.cap; over > 0 {
		o.queue = append([]entity.Notification(nil), o.queue[over:]...)
	}
}
