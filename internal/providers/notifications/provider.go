// Package notifications lets apps post notifications through the host
// event bus, where the shell UI and any observer picks them up.
package notifications

import (
	"context"
	"fmt"
	"sync"

	"github.com/mecattaf/web-shell-sub003/internal/bridge"
	"github.com/mecattaf/web-shell-sub003/internal/events"
	"github.com/mecattaf/web-shell-sub003/internal/shared/types"
)

// Provider implements notification delivery.
type Provider struct {
	bus *events.Bus

	mu   sync.Mutex
	sent int
}

// NewProvider creates a notifications provider.
func NewProvider(bus *events.Bus) *Provider {
	return &Provider{bus: bus}
}

// Definition returns service metadata.
func (p *Provider) Definition() bridge.Service {
	return bridge.Service{
		ID:          "notifications",
		Name:        "Notification Service",
		Description: "Post notifications to the shell",
		Category:    types.CategoryNotifications,
		Tools: []bridge.Tool{
			{
				ID:          "notifications.send",
				Name:        "Send Notification",
				Description: "Post a notification attributed to the calling app",
				Action:      types.ActionSend,
				Parameters: []bridge.Parameter{
					{Name: "title", Type: "string", Description: "Notification title", Required: true},
					{Name: "body", Type: "string", Description: "Notification body", Required: false},
					{Name: "urgency", Type: "string", Description: "low, normal or critical", Required: false},
				},
				Returns: "boolean",
			},
		},
	}
}

// Execute runs a notification operation.
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]any, call *bridge.Context) (*bridge.Result, error) {
	if toolID != "notifications.send" {
		return bridge.Failure(fmt.Sprintf("unknown tool: %s", toolID))
	}

	title, ok := params["title"].(string)
	if !ok || title == "" {
		return bridge.Failure("title parameter required")
	}
	body, _ := params["body"].(string)

	urgency := "normal"
	if u, ok := params["urgency"].(string); ok {
		switch u {
		case "low", "normal", "critical":
			urgency = u
		case "":
		default:
			return bridge.Failure("invalid urgency: " + u)
		}
	}

	p.bus.Publish(events.Event{
		Type:  events.Notification,
		AppID: call.AppID,
		Data: map[string]any{
			"title":   title,
			"body":    body,
			"urgency": urgency,
		},
	})

	p.mu.Lock()
	p.sent++
	p.mu.Unlock()

	return bridge.Success(map[string]any{"sent": true})
}

// Sent reports how many notifications have been delivered.
func (p *Provider) Sent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sent
}
