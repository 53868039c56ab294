package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversInOrder(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	bus.Publish(Event{Type: AppLaunched, AppID: "a"})
	bus.Publish(Event{Type: AppClosed, AppID: "a"})

	first := <-sub.C
	second := <-sub.C
	assert.Equal(t, AppLaunched, first.Type)
	assert.Equal(t, AppClosed, second.Type)
	assert.False(t, first.Timestamp.IsZero())
}

func TestSubscribeAppFilters(t *testing.T) {
	bus := NewBus()
	sub := bus.SubscribeApp("notes")
	defer bus.Unsubscribe(sub)

	bus.Publish(Event{Type: AppLaunched, AppID: "calendar"})
	bus.Publish(Event{Type: AppLaunched, AppID: "notes"})

	evt := <-sub.C
	assert.Equal(t, "notes", evt.AppID)

	select {
	case extra := <-sub.C:
		t.Fatalf("unexpected event for %s", extra.AppID)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBoundedBufferDropsOldest(t *testing.T) {
	bus := NewBusWithBuffer(2)
	sub := bus.Subscribe()
	defer bus.Unsubscribe(sub)

	bus.Publish(Event{Type: AppLoaded, AppID: "one"})
	bus.Publish(Event{Type: AppLoaded, AppID: "two"})
	bus.Publish(Event{Type: AppLoaded, AppID: "three"})

	require.Equal(t, 1, sub.Dropped())

	evt := <-sub.C
	assert.Equal(t, "two", evt.AppID)
	evt = <-sub.C
	assert.Equal(t, "three", evt.AppID)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe()
	bus.Unsubscribe(sub)

	_, open := <-sub.C
	assert.False(t, open)
	assert.Equal(t, 0, bus.SubscriberCount())

	// Second unsubscribe is a no-op.
	bus.Unsubscribe(sub)
}
