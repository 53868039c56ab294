// Package events provides the host's typed lifecycle event bus.
//
// Components publish typed events (app lifecycle, permission audit,
// focus changes) and observers register explicitly for delivery over
// bounded, ordered channels. Delivery never blocks a publisher: a
// subscriber that falls behind loses oldest-first and the loss is counted.
package events

import (
	"sync"
	"time"
)

// Type names an event kind.
type Type string

const (
	AppLoaded         Type = "appLoaded"
	AppFailed         Type = "appFailed"
	AppLaunched       Type = "appLaunched"
	AppClosed         Type = "appClosed"
	PermissionGranted Type = "permissionGranted"
	PermissionDenied  Type = "permissionDenied"
	FocusChanged      Type = "focusChanged"
	Notification      Type = "notification"
	FileChanged       Type = "fileChanged"
)

// Event is one typed host event. AppID is empty for host-global events
// such as focus changes not tied to an app.
type Event struct {
	Type       Type           `json:"type"`
	AppID      string         `json:"app_id,omitempty"`
	Reason     string         `json:"reason,omitempty"`
	Permission string         `json:"permission,omitempty"`
	Container  string         `json:"container,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Subscription is one observer registration. Events arrive on C in
// publish order.
type Subscription struct {
	C       chan Event
	id      int
	appID   string // filter; empty means all apps
	dropped int
	mu      sync.Mutex
}

// Dropped reports how many events this subscriber lost to backpressure.
func (s *Subscription) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Bus fans typed events out to registered observers.
type Bus struct {
	mu     sync.RWMutex
	subs   map[int]*Subscription
	nextID int
	buffer int
}

// DefaultBuffer is the per-subscriber channel depth.
const DefaultBuffer = 64

// NewBus creates an event bus with the default per-subscriber buffer.
func NewBus() *Bus {
	return NewBusWithBuffer(DefaultBuffer)
}

// NewBusWithBuffer creates an event bus with a custom buffer depth.
func NewBusWithBuffer(buffer int) *Bus {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Bus{
		subs:   make(map[int]*Subscription),
		buffer: buffer,
	}
}

// Subscribe registers an observer for all events.
func (b *Bus) Subscribe() *Subscription {
	return b.subscribe("")
}

// SubscribeApp registers an observer for one app id's events only.
func (b *Bus) SubscribeApp(appID string) *Subscription {
	return b.subscribe(appID)
}

func (b *Bus) subscribe(appID string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &Subscription{
		C:     make(chan Event, b.buffer),
		id:    b.nextID,
		appID: appID,
	}
	b.subs[b.nextID] = sub
	b.nextID++
	return sub
}

// Unsubscribe removes an observer and closes its channel.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[sub.id]; ok {
		delete(b.subs, sub.id)
		close(sub.C)
	}
}

// Publish delivers an event to every matching observer. When a
// subscriber's buffer is full the oldest event is discarded so order is
// preserved for what remains.
func (b *Bus) Publish(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if sub.appID != "" && sub.appID != evt.AppID {
			continue
		}
		select {
		case sub.C <- evt:
		default:
			// Drop oldest, then retry once.
			select {
			case <-sub.C:
				sub.mu.Lock()
				sub.dropped++
				sub.mu.Unlock()
			default:
			}
			select {
			case sub.C <- evt:
			default:
			}
		}
	}
}

// SubscriberCount reports the number of registered observers.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
