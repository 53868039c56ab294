// Package calendar serves the host calendar store to apps holding
// calendar capabilities.
package calendar

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mecattaf/web-shell-sub003/internal/bridge"
	"github.com/mecattaf/web-shell-sub003/internal/shared/types"
)

// Event is one calendar entry.
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Notes     string    `json:"notes,omitempty"`
	CreatedBy string    `json:"created_by"`
}

// Provider implements calendar read, write and delete over an in-memory
// store shared by all apps.
type Provider struct {
	mu     sync.RWMutex
	events map[string]Event
}

// NewProvider creates a calendar provider.
func NewProvider() *Provider {
	return &Provider{events: make(map[string]Event)}
}

// Definition returns service metadata.
func (p *Provider) Definition() bridge.Service {
	return bridge.Service{
		ID:          "calendar",
		Name:        "Calendar Service",
		Description: "Read, create and delete host calendar events",
		Category:    types.CategoryCalendar,
		Tools: []bridge.Tool{
			{
				ID:          "calendar.read",
				Name:        "List Events",
				Description: "List calendar events, optionally bounded by a time range",
				Action:      types.ActionRead,
				Parameters: []bridge.Parameter{
					{Name: "from", Type: "string", Description: "RFC 3339 lower bound", Required: false},
					{Name: "to", Type: "string", Description: "RFC 3339 upper bound", Required: false},
				},
				Returns: "array",
			},
			{
				ID:          "calendar.write",
				Name:        "Create Event",
				Description: "Create a calendar event",
				Action:      types.ActionWrite,
				Parameters: []bridge.Parameter{
					{Name: "title", Type: "string", Description: "Event title", Required: true},
					{Name: "start", Type: "string", Description: "RFC 3339 start time", Required: true},
					{Name: "end", Type: "string", Description: "RFC 3339 end time", Required: false},
					{Name: "notes", Type: "string", Description: "Free-form notes", Required: false},
				},
				Returns: "object",
			},
			{
				ID:          "calendar.delete",
				Name:        "Delete Event",
				Description: "Delete a calendar event by id",
				Action:      types.ActionDelete,
				Parameters: []bridge.Parameter{
					{Name: "event_id", Type: "string", Description: "Event id", Required: true},
				},
				Returns: "boolean",
			},
		},
	}
}

// Execute runs a calendar operation.
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]any, call *bridge.Context) (*bridge.Result, error) {
	switch toolID {
	case "calendar.read":
		return p.list(params)
	case "calendar.write":
		return p.create(params, call.AppID)
	case "calendar.delete":
		return p.delete(params)
	default:
		return bridge.Failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (p *Provider) list(params map[string]any) (*bridge.Result, error) {
	var from, to time.Time
	if raw, ok := params["from"].(string); ok && raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return bridge.Failure("invalid from time: " + err.Error())
		}
		from = t
	}
	if raw, ok := params["to"].(string); ok && raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return bridge.Failure("invalid to time: " + err.Error())
		}
		to = t
	}

	p.mu.RLock()
	out := make([]Event, 0, len(p.events))
	for _, evt := range p.events {
		if !from.IsZero() && evt.Start.Before(from) {
			continue
		}
		if !to.IsZero() && evt.Start.After(to) {
			continue
		}
		out = append(out, evt)
	}
	p.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return bridge.Success(map[string]any{"events": out, "count": len(out)})
}

func (p *Provider) create(params map[string]any, appID string) (*bridge.Result, error) {
	title, ok := params["title"].(string)
	if !ok || title == "" {
		return bridge.Failure("title parameter required")
	}
	rawStart, ok := params["start"].(string)
	if !ok || rawStart == "" {
		return bridge.Failure("start parameter required")
	}
	start, err := time.Parse(time.RFC3339, rawStart)
	if err != nil {
		return bridge.Failure("invalid start time: " + err.Error())
	}

	end := start.Add(time.Hour)
	if rawEnd, ok := params["end"].(string); ok && rawEnd != "" {
		end, err = time.Parse(time.RFC3339, rawEnd)
		if err != nil {
			return bridge.Failure("invalid end time: " + err.Error())
		}
	}
	if end.Before(start) {
		return bridge.Failure("end precedes start")
	}

	notes, _ := params["notes"].(string)
	evt := Event{
		ID:        uuid.NewString(),
		Title:     title,
		Start:     start,
		End:       end,
		Notes:     notes,
		CreatedBy: appID,
	}

	p.mu.Lock()
	p.events[evt.ID] = evt
	p.mu.Unlock()

	return bridge.Success(map[string]any{"event": evt})
}

func (p *Provider) delete(params map[string]any) (*bridge.Result, error) {
	eventID, ok := params["event_id"].(string)
	if !ok || eventID == "" {
		return bridge.Failure("event_id parameter required")
	}

	p.mu.Lock()
	_, found := p.events[eventID]
	delete(p.events, eventID)
	p.mu.Unlock()

	if !found {
		return bridge.Failure("unknown event id")
	}
	return bridge.Success(map[string]any{"deleted": true})
}
