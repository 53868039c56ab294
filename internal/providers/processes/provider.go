// Package processes spawns host commands on behalf of apps whose
// manifest allowlists them. Commands run detached from the app bundle
// with a bounded lifetime; nothing here grants shell interpretation.
package processes

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/mecattaf/web-shell-sub003/internal/bridge"
	"github.com/mecattaf/web-shell-sub003/internal/shared/types"
)

// DefaultTimeout bounds one spawned command.
const DefaultTimeout = 30 * time.Second

// Provider implements allowlist-gated command execution.
type Provider struct {
	timeout time.Duration

	mu      sync.Mutex
	spawned int
}

// NewProvider creates a processes provider.
func NewProvider() *Provider {
	return &Provider{timeout: DefaultTimeout}
}

// WithTimeout overrides the per-command lifetime bound.
func (p *Provider) WithTimeout(d time.Duration) *Provider {
	if d > 0 {
		p.timeout = d
	}
	return p
}

// Definition returns service metadata.
func (p *Provider) Definition() bridge.Service {
	return bridge.Service{
		ID:          "processes",
		Name:        "Process Service",
		Description: "Spawn allowlisted host commands",
		Category:    types.CategoryProcesses,
		Tools: []bridge.Tool{
			{
				ID:          "processes.spawn",
				Name:        "Spawn Command",
				Description: "Run an allowlisted command and capture its output",
				Action:      types.ActionSpawn,
				Parameters: []bridge.Parameter{
					{Name: "command", Type: "string", Description: "Executable name or path", Required: true},
					{Name: "args", Type: "array", Description: "Command arguments", Required: false},
					{Name: "dir", Type: "string", Description: "Working directory", Required: false},
				},
				Returns: "object",
			},
		},
	}
}

// Execute runs a process operation.
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]any, call *bridge.Context) (*bridge.Result, error) {
	if toolID != "processes.spawn" {
		return bridge.Failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
	return p.spawn(ctx, params, call)
}

func (p *Provider) spawn(ctx context.Context, params map[string]any, call *bridge.Context) (*bridge.Result, error) {
	command, ok := params["command"].(string)
	if !ok || command == "" {
		return bridge.Failure("command parameter required")
	}

	// The allowlist gates the executable, not its arguments.
	if err := call.Enforcer.EnforceProcess(command); err != nil {
		return bridge.Failure(err.Error())
	}

	var args []string
	if raw, ok := params["args"].([]any); ok {
		for _, a := range raw {
			s, ok := a.(string)
			if !ok {
				return bridge.Failure("args must be strings")
			}
			args = append(args, s)
		}
	}

	cctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, command, args...)
	if dir, ok := params["dir"].(string); ok && dir != "" {
		cmd.Dir = dir
	}

	start := time.Now()
	out, err := cmd.CombinedOutput()
	elapsed := time.Since(start)

	p.mu.Lock()
	p.spawned++
	p.mu.Unlock()

	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else if cctx.Err() != nil {
			return bridge.Failure("command timed out")
		} else {
			return bridge.Failure(fmt.Sprintf("spawn failed: %v", err))
		}
	}

	return bridge.Success(map[string]any{
		"output":    strings.ToValidUTF8(string(out), ""),
		"exit_code": exitCode,
		"elapsed":   elapsed.String(),
	})
}

// Spawned reports how many commands have run.
func (p *Provider) Spawned() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.spawned
}
