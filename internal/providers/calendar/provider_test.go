package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mecattaf/web-shell-sub003/internal/bridge"
	"github.com/mecattaf/web-shell-sub003/internal/capability"
	"github.com/mecattaf/web-shell-sub003/internal/events"
	"github.com/mecattaf/web-shell-sub003/internal/infrastructure/logging"
	"github.com/mecattaf/web-shell-sub003/internal/shared/id"
	"github.com/mecattaf/web-shell-sub003/internal/shared/types"
)

func call(appID string) *bridge.Context {
	caps := capability.NewRegistry(events.NewBus(), logging.NewNop())
	caps.Register(appID, types.CapabilitySet{
		Calendar: &types.CalendarCaps{Read: true, Write: true, Delete: true},
	})
	return &bridge.Context{AppID: appID, CallID: id.NewCallID(), Enforcer: capability.NewEnforcer(appID, caps)}
}

func createEvent(t *testing.T, p *Provider, title, start string) Event {
	t.Helper()
	res, err := p.Execute(context.Background(), "calendar.write",
		map[string]any{"title": title, "start": start}, call("planner"))
	require.NoError(t, err)
	require.True(t, res.Success)
	evt, ok := res.Data["event"].(Event)
	require.True(t, ok)
	return evt
}

func TestCreateAndList(t *testing.T) {
	p := NewProvider()
	createEvent(t, p, "standup", "2026-09-01T09:00:00Z")
	createEvent(t, p, "review", "2026-09-02T15:00:00Z")

	res, err := p.Execute(context.Background(), "calendar.read", nil, call("planner"))
	require.NoError(t, err)
	require.True(t, res.Success)

	list := res.Data["events"].([]Event)
	require.Len(t, list, 2)
	assert.Equal(t, "standup", list[0].Title, "sorted by start time")
	assert.Equal(t, "planner", list[0].CreatedBy)
}

func TestListTimeRange(t *testing.T) {
	p := NewProvider()
	createEvent(t, p, "early", "2026-09-01T09:00:00Z")
	createEvent(t, p, "late", "2026-09-10T09:00:00Z")

	res, err := p.Execute(context.Background(), "calendar.read",
		map[string]any{"from": "2026-09-05T00:00:00Z"}, call("planner"))
	require.NoError(t, err)

	list := res.Data["events"].([]Event)
	require.Len(t, list, 1)
	assert.Equal(t, "late", list[0].Title)
}

func TestDefaultDuration(t *testing.T) {
	p := NewProvider()
	evt := createEvent(t, p, "standup", "2026-09-01T09:00:00Z")
	assert.Equal(t, time.Hour, evt.End.Sub(evt.Start))
}

func TestEndBeforeStartRejected(t *testing.T) {
	p := NewProvider()
	res, err := p.Execute(context.Background(), "calendar.write", map[string]any{
		"title": "bad",
		"start": "2026-09-01T09:00:00Z",
		"end":   "2026-09-01T08:00:00Z",
	}, call("planner"))
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestDelete(t *testing.T) {
	p := NewProvider()
	evt := createEvent(t, p, "standup", "2026-09-01T09:00:00Z")

	res, err := p.Execute(context.Background(), "calendar.delete",
		map[string]any{"event_id": evt.ID}, call("planner"))
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, _ = p.Execute(context.Background(), "calendar.read", nil, call("planner"))
	assert.Empty(t, res.Data["events"].([]Event))
}

func TestDeleteUnknownID(t *testing.T) {
	p := NewProvider()
	res, err := p.Execute(context.Background(), "calendar.delete",
		map[string]any{"event_id": "nope"}, call("planner"))
	require.NoError(t, err)
	assert.False(t, res.Success)
}
