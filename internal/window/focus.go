package window

import (
	"sync"

	"go.uber.org/zap"

	"github.com/mecattaf/web-shell-sub003/internal/events"
	"github.com/mecattaf/web-shell-sub003/internal/infrastructure/logging"
	"github.com/mecattaf/web-shell-sub003/internal/infrastructure/monitoring"
	"github.com/mecattaf/web-shell-sub003/internal/shared/types"
)

// DefaultHistorySize bounds the focus history.
const DefaultHistorySize = 16

// FocusCoordinator mediates keyboard focus across registered containers.
// At most one container holds focus at any time.
type FocusCoordinator struct {
	mu         sync.Mutex
	registry   *Registry
	focusedID  string   // Protected by mu; empty when nothing is focused
	history    []string // Most-recent-first, protected by mu
	historyMax int
	bus        *events.Bus
	log        *logging.Logger
	metrics    *monitoring.Metrics
}

// NewFocusCoordinator creates a coordinator bound to a window registry.
// It hooks container unregistration so a destroyed container can never
// remain focused.
func NewFocusCoordinator(registry *Registry, bus *events.Bus, log *logging.Logger) *FocusCoordinator {
	f := &FocusCoordinator{
		registry:   registry,
		historyMax: DefaultHistorySize,
		bus:        bus,
		log:        log,
	}
	registry.setOnUnregister(f.drop)
	return f
}

// WithMetrics adds metrics tracking to the coordinator.
func (f *FocusCoordinator) WithMetrics(m *monitoring.Metrics) *FocusCoordinator {
	f.metrics = m
	return f
}

// WithHistorySize overrides the bounded history length.
func (f *FocusCoordinator) WithHistorySize(n int) *FocusCoordinator {
	if n > 0 {
		f.historyMax = n
	}
	return f
}

// RequestFocus transfers focus to a container. Unregistered or
// focus-ineligible containers are a benign no-op: close and focus-follow
// race freely.
func (f *FocusCoordinator) RequestFocus(containerID string) {
	c, ok := f.registry.Get(containerID)
	if !ok || !c.FocusEligible {
		return
	}

	f.mu.Lock()
	// The container may have been unregistered between the Get above and
	// taking mu. Re-check membership under mu: drop runs after removal,
	// so a container still present here cannot leave focus dangling.
	if !f.registry.Contains(containerID) {
		f.mu.Unlock()
		return
	}
	if f.focusedID == containerID {
		f.mu.Unlock()
		return
	}
	prev := f.focusedID
	f.focusedID = containerID
	if prev != "" {
		f.pushHistory(prev)
	}
	f.mu.Unlock()

	f.log.Debug("focus changed",
		zap.String("container", containerID),
		zap.String("previous", prev))
	if f.metrics != nil {
		f.metrics.RecordFocusChange()
	}
	if f.bus != nil {
		f.bus.Publish(events.Event{
			Type:      events.FocusChanged,
			AppID:     c.AppID,
			Container: containerID,
		})
	}
}

// ClearFocus sets the active container to none.
func (f *FocusCoordinator) ClearFocus() {
	f.mu.Lock()
	prev := f.focusedID
	f.focusedID = ""
	if prev != "" {
		f.pushHistory(prev)
	}
	f.mu.Unlock()

	if prev != "" && f.bus != nil {
		f.bus.Publish(events.Event{Type: events.FocusChanged})
	}
}

// HasFocus reports whether the container currently holds focus.
func (f *FocusCoordinator) HasFocus(containerID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.focusedID != "" && f.focusedID == containerID
}

// Focused returns the focused container id, if any.
func (f *FocusCoordinator) Focused() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.focusedID, f.focusedID != ""
}

// FocusNextWidget cycles focus forward within the widget layer in
// registration order, wrapping at the end.
func (f *FocusCoordinator) FocusNextWidget() {
	f.cycleWidget(1)
}

// FocusPreviousWidget cycles focus backward within the widget layer.
func (f *FocusCoordinator) FocusPreviousWidget() {
	f.cycleWidget(-1)
}

// State returns a snapshot of the focus state.
func (f *FocusCoordinator) State() types.FocusState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return types.FocusState{
		FocusedID: f.focusedID,
		History:   append([]string(nil), f.history...),
	}
}

func (f *FocusCoordinator) cycleWidget(step int) {
	widgets := f.registry.LayerOrder(types.LayerWidget)
	if len(widgets) == 0 {
		return
	}

	f.mu.Lock()
	current := f.focusedID
	f.mu.Unlock()

	idx := -1
	for i, id := range widgets {
		if id == current {
			idx = i
			break
		}
	}

	// Focus not in the widget layer: start from the edge.
	var next string
	if idx < 0 {
		if step > 0 {
			next = widgets[0]
		} else {
			next = widgets[len(widgets)-1]
		}
	} else {
		next = widgets[(idx+step+len(widgets))%len(widgets)]
	}
	f.RequestFocus(next)
}

// drop clears focus held by an unregistered container and scrubs it from
// history. Called by the window registry on unregister.
func (f *FocusCoordinator) drop(containerID string) {
	f.mu.Lock()
	if f.focusedID == containerID {
		f.focusedID = ""
	}
	f.history = remove(f.history, containerID)
	f.mu.Unlock()
}

// pushHistory prepends an id to the bounded history. Caller holds mu.
func (f *FocusCoordinator) pushHistory(containerID string) {
	f.history = remove(f.history, containerID)
	f.history = append([]string{containerID}, f.history...)
	if len(f.history) > f.historyMax {
		f.history = f.history[:f.historyMax]
	}
}
