package bridge

import (
	"github.com/mecattaf/web-shell-sub003/internal/capability"
	"github.com/mecattaf/web-shell-sub003/internal/shared/id"
	"github.com/mecattaf/web-shell-sub003/internal/shared/types"
)

// Service describes one provider: the capability category it serves and
// the tools it exposes.
type Service struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Category    types.Category `json:"category"`
	Tools       []Tool         `json:"tools"`
}

// Tool is one callable operation. Action names the capability action the
// caller must hold; an empty Action means the tool is ungated beyond the
// category being present.
type Tool struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Action      types.Action `json:"action,omitempty"`
	Parameters  []Parameter  `json:"parameters"`
	Returns     string       `json:"returns"`
}

// Parameter documents one tool parameter.
type Parameter struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Result is the outcome of one call.
type Result struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   *string        `json:"error,omitempty"`
}

// Context carries per-call state into a provider. The Enforcer is bound
// to the calling app so providers can make target-level checks (paths,
// hosts, commands) without reaching back into the registry.
type Context struct {
	AppID    string
	CallID   id.CallID
	Enforcer *capability.Enforcer
}

// Success builds a successful result.
func Success(data map[string]any) (*Result, error) {
	return &Result{Success: true, Data: data}, nil
}

// Failure builds a failed result.
func Failure(msg string) (*Result, error) {
	return &Result{Success: false, Error: &msg}, nil
}
