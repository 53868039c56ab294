// Package clipboard exposes the host clipboard to apps holding
// clipboard capabilities.
package clipboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mecattaf/web-shell-sub003/internal/bridge"
	"github.com/mecattaf/web-shell-sub003/internal/shared/types"
)

// Provider implements clipboard read and write over an in-process store.
type Provider struct {
	mu     sync.RWMutex
	data   string
	format string
	setAt  time.Time
	setBy  string
}

// NewProvider creates a clipboard provider.
func NewProvider() *Provider {
	return &Provider{format: "text"}
}

// Definition returns service metadata.
func (c *Provider) Definition() bridge.Service {
	return bridge.Service{
		ID:          "clipboard",
		Name:        "Clipboard Service",
		Description: "Read and write the shared host clipboard",
		Category:    types.CategoryClipboard,
		Tools: []bridge.Tool{
			{
				ID:          "clipboard.read",
				Name:        "Read Clipboard",
				Description: "Retrieve current clipboard contents",
				Action:      types.ActionRead,
				Parameters:  []bridge.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "clipboard.write",
				Name:        "Write Clipboard",
				Description: "Replace clipboard contents",
				Action:      types.ActionWrite,
				Parameters: []bridge.Parameter{
					{Name: "data", Type: "string", Description: "Data to store", Required: true},
					{Name: "format", Type: "string", Description: "Data format (text, html)", Required: false},
				},
				Returns: "boolean",
			},
		},
	}
}

// Execute runs a clipboard operation.
func (c *Provider) Execute(ctx context.Context, toolID string, params map[string]any, call *bridge.Context) (*bridge.Result, error) {
	switch toolID {
	case "clipboard.read":
		return c.read()
	case "clipboard.write":
		return c.write(params, call.AppID)
	default:
		return bridge.Failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (c *Provider) read() (*bridge.Result, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return bridge.Success(map[string]any{
		"data":   c.data,
		"format": c.format,
		"set_at": c.setAt,
	})
}

func (c *Provider) write(params map[string]any, appID string) (*bridge.Result, error) {
	data, ok := params["data"].(string)
	if !ok {
		return bridge.Failure("data parameter required")
	}

	format := "text"
	if f, ok := params["format"].(string); ok && f != "" {
		format = f
	}

	c.mu.Lock()
	c.data = data
	c.format = format
	c.setAt = time.Now()
	c.setBy = appID
	c.mu.Unlock()

	return bridge.Success(map[string]any{"written": true, "format": format})
}
