package processes

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mecattaf/web-shell-sub003/internal/bridge"
	"github.com/mecattaf/web-shell-sub003/internal/capability"
	"github.com/mecattaf/web-shell-sub003/internal/events"
	"github.com/mecattaf/web-shell-sub003/internal/infrastructure/logging"
	"github.com/mecattaf/web-shell-sub003/internal/shared/id"
	"github.com/mecattaf/web-shell-sub003/internal/shared/types"
)

func call(t *testing.T, allowed ...string) *bridge.Context {
	t.Helper()
	caps := capability.NewRegistry(events.NewBus(), logging.NewNop())
	caps.Register("tool", types.CapabilitySet{
		Processes: &types.ProcessCaps{Spawn: true, AllowedCommands: allowed},
	})
	return &bridge.Context{AppID: "tool", CallID: id.NewCallID(), Enforcer: capability.NewEnforcer("tool", caps)}
}

func TestSpawnAllowedCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix commands")
	}
	p := NewProvider()

	res, err := p.Execute(context.Background(), "processes.spawn",
		map[string]any{"command": "echo", "args": []any{"hello"}}, call(t, "echo"))
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "hello\n", res.Data["output"])
	assert.Equal(t, 0, res.Data["exit_code"])
	assert.Equal(t, 1, p.Spawned())
}

func TestSpawnOutsideAllowlistDenied(t *testing.T) {
	p := NewProvider()

	res, err := p.Execute(context.Background(), "processes.spawn",
		map[string]any{"command": "rm"}, call(t, "echo"))
	require.NoError(t, err)
	assert.False(t, res.Success)
	require.NotNil(t, res.Error)
	assert.Contains(t, *res.Error, "permission denied")
	assert.Zero(t, p.Spawned())
}

func TestSpawnGlobAllowlist(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix commands")
	}
	p := NewProvider()

	res, err := p.Execute(context.Background(), "processes.spawn",
		map[string]any{"command": "/bin/echo", "args": []any{"ok"}}, call(t, "/bin/*"))
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestSpawnRequiresCommand(t *testing.T) {
	p := NewProvider()
	res, err := p.Execute(context.Background(), "processes.spawn", map[string]any{}, call(t))
	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestSpawnBadArgs(t *testing.T) {
	p := NewProvider()
	res, err := p.Execute(context.Background(), "processes.spawn",
		map[string]any{"command": "echo", "args": []any{42}}, call(t, "echo"))
	require.NoError(t, err)
	assert.False(t, res.Success)
}
