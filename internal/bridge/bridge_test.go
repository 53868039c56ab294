package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mecattaf/web-shell-sub003/internal/capability"
	"github.com/mecattaf/web-shell-sub003/internal/events"
	"github.com/mecattaf/web-shell-sub003/internal/infrastructure/logging"
	"github.com/mecattaf/web-shell-sub003/internal/shared/types"
)

type echoProvider struct {
	calls []string
}

func (e *echoProvider) Definition() Service {
	return Service{
		ID:       "clipboard",
		Name:     "Echo",
		Category: types.CategoryClipboard,
		Tools: []Tool{
			{ID: "clipboard.read", Action: types.ActionRead},
			{ID: "clipboard.write", Action: types.ActionWrite},
			{ID: "clipboard.ping"},
		},
	}
}

func (e *echoProvider) Execute(_ context.Context, toolID string, params map[string]any, call *Context) (*Result, error) {
	e.calls = append(e.calls, toolID)
	return Success(map[string]any{
		"tool":    toolID,
		"app_id":  call.AppID,
		"call_id": call.CallID.String(),
	})
}

func newBridge(t *testing.T) (*Bridge, *capability.Registry, *echoProvider) {
	t.Helper()
	caps := capability.NewRegistry(events.NewBus(), logging.NewNop())
	b := New(caps, logging.NewNop())
	echo := &echoProvider{}
	require.NoError(t, b.Register(echo))
	return b, caps, echo
}

func TestCallDispatchesToProvider(t *testing.T) {
	b, caps, echo := newBridge(t)
	caps.Register("notes", types.CapabilitySet{
		Clipboard: &types.ClipboardCaps{Read: true},
	})

	res, err := b.Call(context.Background(), "notes", "clipboard.read", nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "notes", res.Data["app_id"])
	assert.NotEmpty(t, res.Data["call_id"])
	assert.Equal(t, []string{"clipboard.read"}, echo.calls)
}

func TestCallDeniedBeforeProvider(t *testing.T) {
	b, caps, echo := newBridge(t)
	caps.Register("notes", types.CapabilitySet{
		Clipboard: &types.ClipboardCaps{Read: true},
	})

	res, err := b.Call(context.Background(), "notes", "clipboard.write", nil)
	require.Error(t, err)

	var denial *capability.PermissionDenied
	require.True(t, errors.As(err, &denial))
	assert.Equal(t, "clipboard.write", denial.Permission())

	assert.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Empty(t, echo.calls, "denied call never reaches provider code")
}

func TestCallUnregisteredAppDenied(t *testing.T) {
	b, _, echo := newBridge(t)

	_, err := b.Call(context.Background(), "ghost", "clipboard.read", nil)
	var denial *capability.PermissionDenied
	require.True(t, errors.As(err, &denial))
	assert.Empty(t, echo.calls)
}

func TestCallUngatedTool(t *testing.T) {
	b, caps, echo := newBridge(t)
	caps.Register("notes", types.CapabilitySet{})

	res, err := b.Call(context.Background(), "notes", "clipboard.ping", nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []string{"clipboard.ping"}, echo.calls)
}

func TestCallBadToolID(t *testing.T) {
	b, _, _ := newBridge(t)

	res, err := b.Call(context.Background(), "notes", "noseparator", nil)
	require.Error(t, err)
	assert.False(t, res.Success)
}

func TestCallUnknownService(t *testing.T) {
	b, _, _ := newBridge(t)

	res, err := b.Call(context.Background(), "notes", "teleport.engage", nil)
	require.Error(t, err)
	assert.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Contains(t, *res.Error, "no provider")
}

func TestServicesSorted(t *testing.T) {
	b, _, _ := newBridge(t)

	defs := b.Services()
	require.Len(t, defs, 1)
	assert.Equal(t, "clipboard", defs[0].ID)
}

func TestRegisterRejectsEmptyID(t *testing.T) {
	b, _, _ := newBridge(t)
	assert.Error(t, b.Register(&emptyProvider{}))
}

type emptyProvider struct{}

func (emptyProvider) Definition() Service { return Service{} }
func (emptyProvider) Execute(context.Context, string, map[string]any, *Context) (*Result, error) {
	return Success(nil)
}
