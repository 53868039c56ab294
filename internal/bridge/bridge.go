package bridge

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mecattaf/web-shell-sub003/internal/capability"
	"github.com/mecattaf/web-shell-sub003/internal/infrastructure/logging"
	"github.com/mecattaf/web-shell-sub003/internal/shared/id"
	"github.com/mecattaf/web-shell-sub003/internal/shared/types"
)

// Provider implements one capability category's tools.
type Provider interface {
	Definition() Service
	Execute(ctx context.Context, toolID string, params map[string]any, call *Context) (*Result, error)
}

// Bridge routes privileged calls to providers.
type Bridge struct {
	providers sync.Map // service id -> Provider
	caps      *capability.Registry
	log       *logging.Logger

	// appQueues serializes calls per app id.
	appQueues sync.Map // app id -> *sync.Mutex
}

// New creates a bridge backed by the given capability registry.
func New(caps *capability.Registry, log *logging.Logger) *Bridge {
	return &Bridge{caps: caps, log: log}
}

// Register adds a provider under its definition id.
func (b *Bridge) Register(p Provider) error {
	def := p.Definition()
	if def.ID == "" {
		return fmt.Errorf("provider id cannot be empty")
	}
	b.providers.Store(def.ID, p)
	return nil
}

// Get retrieves a provider by service id.
func (b *Bridge) Get(serviceID string) (Provider, bool) {
	val, ok := b.providers.Load(serviceID)
	if !ok {
		return nil, false
	}
	return val.(Provider), true
}

// Services lists registered provider definitions sorted by id.
func (b *Bridge) Services() []Service {
	var out []Service
	b.providers.Range(func(_, value any) bool {
		out = append(out, value.(Provider).Definition())
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Call executes one privileged call for an app. The tool id has the form
// "category.action". The capability gate runs before the provider; a
// denial never reaches provider code.
func (b *Bridge) Call(ctx context.Context, appID, toolID string, params map[string]any) (*Result, error) {
	serviceID, _, found := strings.Cut(toolID, ".")
	if !found {
		err := fmt.Errorf("invalid tool id format: %s", toolID)
		msg := err.Error()
		return &Result{Success: false, Error: &msg}, err
	}

	provider, ok := b.Get(serviceID)
	if !ok {
		err := fmt.Errorf("no provider for service: %s", serviceID)
		msg := err.Error()
		return &Result{Success: false, Error: &msg}, err
	}

	def := provider.Definition()
	enforcer := capability.NewEnforcer(appID, b.caps)

	if action, gated := requiredAction(def, toolID); gated {
		if denial := enforcer.Enforce(def.Category, action); denial != nil {
			msg := denial.Error()
			return &Result{Success: false, Error: &msg}, denial
		}
	}

	mu := b.lockApp(appID)
	defer mu.Unlock()

	call := &Context{
		AppID:    appID,
		CallID:   id.NewCallID(),
		Enforcer: enforcer,
	}

	b.log.Debug("dispatching call",
		zap.String("app_id", appID),
		zap.String("tool", toolID),
		zap.String("call_id", call.CallID.String()))

	return provider.Execute(ctx, toolID, params, call)
}

// requiredAction resolves the capability action gating a tool. Unknown
// tools pass through ungated; the provider rejects them itself.
func requiredAction(def Service, toolID string) (types.Action, bool) {
	for _, tool := range def.Tools {
		if tool.ID == toolID {
			return tool.Action, tool.Action != ""
		}
	}
	return "", false
}

func (b *Bridge) lockApp(appID string) *sync.Mutex {
	actual, _ := b.appQueues.LoadOrStore(appID, &sync.Mutex{})
	mu := actual.(*sync.Mutex)
	mu.Lock()
	return mu
}
