// Package filesystem serves file access scoped to the caller's granted
// path roots. Every operation resolves its target through the
// capability registry; a path outside the grant never reaches the disk.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mecattaf/web-shell-sub003/internal/bridge"
	"github.com/mecattaf/web-shell-sub003/internal/events"
	"github.com/mecattaf/web-shell-sub003/internal/infrastructure/logging"
	"github.com/mecattaf/web-shell-sub003/internal/shared/types"
)

// Provider implements capability-scoped file operations.
type Provider struct {
	bus     *events.Bus
	log     *logging.Logger
	watches *watchSet
}

// NewProvider creates a filesystem provider. File change notifications
// from active watches are published on the bus.
func NewProvider(bus *events.Bus, log *logging.Logger) *Provider {
	return &Provider{
		bus:     bus,
		log:     log,
		watches: newWatchSet(bus, log),
	}
}

// Close stops all active watches.
func (p *Provider) Close() error {
	return p.watches.closeAll()
}

// Definition returns service metadata.
func (p *Provider) Definition() bridge.Service {
	return bridge.Service{
		ID:          "filesystem",
		Name:        "Filesystem Service",
		Description: "File access within manifest-granted path roots",
		Category:    types.CategoryFilesystem,
		Tools: []bridge.Tool{
			{
				ID:          "filesystem.read",
				Name:        "Read File",
				Description: "Read file contents",
				Action:      types.ActionRead,
				Parameters: []bridge.Parameter{
					{Name: "path", Type: "string", Description: "File path", Required: true},
				},
				Returns: "string",
			},
			{
				ID:          "filesystem.list",
				Name:        "List Directory",
				Description: "List directory entries",
				Action:      types.ActionRead,
				Parameters: []bridge.Parameter{
					{Name: "path", Type: "string", Description: "Directory path", Required: true},
				},
				Returns: "array",
			},
			{
				ID:          "filesystem.write",
				Name:        "Write File",
				Description: "Write data to file, overwriting existing contents",
				Action:      types.ActionWrite,
				Parameters: []bridge.Parameter{
					{Name: "path", Type: "string", Description: "File path", Required: true},
					{Name: "data", Type: "string", Description: "Data to write", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "filesystem.delete",
				Name:        "Delete File",
				Description: "Delete a file",
				Action:      types.ActionWrite,
				Parameters: []bridge.Parameter{
					{Name: "path", Type: "string", Description: "File path", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "filesystem.watch",
				Name:        "Watch Path",
				Description: "Subscribe to change notifications for a path",
				Action:      types.ActionWatch,
				Parameters: []bridge.Parameter{
					{Name: "path", Type: "string", Description: "Path to watch", Required: true},
				},
				Returns: "string",
			},
			{
				ID:          "filesystem.unwatch",
				Name:        "Stop Watching",
				Description: "Cancel an active watch",
				Action:      types.ActionWatch,
				Parameters: []bridge.Parameter{
					{Name: "watch_id", Type: "string", Description: "Watch id from filesystem.watch", Required: true},
				},
				Returns: "boolean",
			},
		},
	}
}

// Execute runs a filesystem operation.
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]any, call *bridge.Context) (*bridge.Result, error) {
	switch toolID {
	case "filesystem.read":
		return p.read(params, call)
	case "filesystem.list":
		return p.list(params, call)
	case "filesystem.write":
		return p.write(params, call)
	case "filesystem.delete":
		return p.delete(params, call)
	case "filesystem.watch":
		return p.watch(params, call)
	case "filesystem.unwatch":
		return p.unwatch(params, call)
	default:
		return bridge.Failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func pathParam(params map[string]any) (string, bool) {
	path, ok := params["path"].(string)
	return path, ok && path != ""
}

func (p *Provider) read(params map[string]any, call *bridge.Context) (*bridge.Result, error) {
	path, ok := pathParam(params)
	if !ok {
		return bridge.Failure("path parameter required")
	}

	resolved, err := call.Enforcer.ResolveFilesystem(path, types.ActionRead)
	if err != nil {
		return bridge.Failure(err.Error())
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return bridge.Failure(fmt.Sprintf("read failed: %v", err))
	}
	return bridge.Success(map[string]any{"data": string(data), "size": len(data)})
}

func (p *Provider) list(params map[string]any, call *bridge.Context) (*bridge.Result, error) {
	path, ok := pathParam(params)
	if !ok {
		return bridge.Failure("path parameter required")
	}

	resolved, err := call.Enforcer.ResolveFilesystem(path, types.ActionRead)
	if err != nil {
		return bridge.Failure(err.Error())
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		return bridge.Failure(fmt.Sprintf("list failed: %v", err))
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return bridge.Success(map[string]any{"entries": names})
}

func (p *Provider) write(params map[string]any, call *bridge.Context) (*bridge.Result, error) {
	path, ok := pathParam(params)
	if !ok {
		return bridge.Failure("path parameter required")
	}
	data, ok := params["data"].(string)
	if !ok {
		return bridge.Failure("data parameter required")
	}

	resolved, err := call.Enforcer.ResolveFilesystem(path, types.ActionWrite)
	if err != nil {
		return bridge.Failure(err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return bridge.Failure(fmt.Sprintf("write failed: %v", err))
	}
	if err := os.WriteFile(resolved, []byte(data), 0o644); err != nil {
		return bridge.Failure(fmt.Sprintf("write failed: %v", err))
	}
	return bridge.Success(map[string]any{"written": len(data)})
}

func (p *Provider) delete(params map[string]any, call *bridge.Context) (*bridge.Result, error) {
	path, ok := pathParam(params)
	if !ok {
		return bridge.Failure("path parameter required")
	}

	resolved, err := call.Enforcer.ResolveFilesystem(path, types.ActionWrite)
	if err != nil {
		return bridge.Failure(err.Error())
	}

	if err := os.Remove(resolved); err != nil {
		return bridge.Failure(fmt.Sprintf("delete failed: %v", err))
	}
	return bridge.Success(map[string]any{"deleted": true})
}

func (p *Provider) watch(params map[string]any, call *bridge.Context) (*bridge.Result, error) {
	path, ok := pathParam(params)
	if !ok {
		return bridge.Failure("path parameter required")
	}

	resolved, err := call.Enforcer.ResolveFilesystem(path, types.ActionWatch)
	if err != nil {
		return bridge.Failure(err.Error())
	}

	watchID, err := p.watches.add(call.AppID, resolved)
	if err != nil {
		return bridge.Failure(fmt.Sprintf("watch failed: %v", err))
	}
	return bridge.Success(map[string]any{"watch_id": watchID})
}

func (p *Provider) unwatch(params map[string]any, call *bridge.Context) (*bridge.Result, error) {
	watchID, ok := params["watch_id"].(string)
	if !ok || watchID == "" {
		return bridge.Failure("watch_id parameter required")
	}

	if !p.watches.remove(call.AppID, watchID) {
		return bridge.Failure("unknown watch id")
	}
	return bridge.Success(map[string]any{"stopped": true})
}
