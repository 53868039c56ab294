package window

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mecattaf/web-shell-sub003/internal/infrastructure/logging"
	"github.com/mecattaf/web-shell-sub003/internal/shared/id"
	"github.com/mecattaf/web-shell-sub003/internal/shared/types"
)

// Default container geometry, used when the manifest window block leaves
// dimensions unset.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// layerState tracks one layer's containers in insertion order plus its
// monotonic z-offset counter. The counter only grows: freed offsets are
// never handed out again within a session.
type layerState struct {
	order      []string
	nextOffset int
}

// Registry tracks live window containers per layer and owns z-order.
type Registry struct {
	mu           sync.Mutex
	containers   map[string]*types.WindowContainer // Protected by mu
	layers       map[types.Layer]*layerState       // Protected by mu
	onUnregister func(containerID string)
	log          *logging.Logger
}

// NewRegistry creates an empty window registry.
func NewRegistry(log *logging.Logger) *Registry {
	r := &Registry{
		containers: make(map[string]*types.WindowContainer),
		layers:     make(map[types.Layer]*layerState),
		log:        log,
	}
	for _, l := range types.Layers() {
		r.layers[l] = &layerState{}
	}
	return r
}

// NewContainer builds a container for an app from its descriptor window
// block, applying host defaults and min/max clamping.
func NewContainer(appID string, desc *types.AppDescriptor) *types.WindowContainer {
	w := desc.Window

	width, height := w.Width, w.Height
	if width == 0 {
		width = DefaultWidth
	}
	if height == 0 {
		height = DefaultHeight
	}
	width = clamp(width, w.MinWidth, w.MaxWidth)
	height = clamp(height, w.MinHeight, w.MaxHeight)

	layer := types.LayerFor(w.Type)
	windowType := w.Type
	if windowType == "" {
		windowType = types.WindowWidget
	}

	return &types.WindowContainer{
		ID:            id.NewContainerID().String(),
		AppID:         appID,
		Title:         desc.Title(),
		Layer:         layer,
		Type:          windowType,
		Width:         width,
		Height:        height,
		Position:      w.Position,
		Visible:       true,
		FocusEligible: layer != types.LayerPanel && layer != types.LayerDock,
		CreatedAt:     time.Now(),
	}
}

func clamp(v, min, max int) int {
	if min > 0 && v < min {
		v = min
	}
	if max > 0 && v > max {
		v = max
	}
	return v
}

// Register appends a container to its layer's ordered list and assigns
// its z value.
func (r *Registry) Register(c *types.WindowContainer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := r.layerFor(c.Layer)
	c.Z = c.Layer.ZBase() + state.nextOffset
	state.nextOffset++
	state.order = append(state.order, c.ID)
	r.containers[c.ID] = c

	r.log.Debug("container registered",
		zap.String("container", c.ID),
		zap.String("app_id", c.AppID),
		zap.String("layer", string(c.Layer)),
		zap.Int("z", c.Z))
}

// Unregister removes a container. Its z slot stays retired.
func (r *Registry) Unregister(containerID string) bool {
	r.mu.Lock()
	c, ok := r.containers[containerID]
	if ok {
		delete(r.containers, containerID)
		state := r.layerFor(c.Layer)
		state.order = remove(state.order, containerID)
	}
	r.mu.Unlock()

	if ok && r.onUnregister != nil {
		r.onUnregister(containerID)
	}
	return ok
}

// BringToFront re-appends a container and raises only its z to the new
// layer maximum; every other container keeps its value.
func (r *Registry) BringToFront(containerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.containers[containerID]
	if !ok {
		return false
	}

	state := r.layerFor(c.Layer)
	state.order = remove(state.order, containerID)
	state.order = append(state.order, containerID)
	c.Z = c.Layer.ZBase() + state.nextOffset
	state.nextOffset++
	return true
}

// Get returns a copy of a container.
func (r *Registry) Get(containerID string) (types.WindowContainer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.containers[containerID]
	if !ok {
		return types.WindowContainer{}, false
	}
	return *c, true
}

// Contains reports whether a container is registered.
func (r *Registry) Contains(containerID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.containers[containerID]
	return ok
}

// LayerOrder returns container ids of one layer in registration order
// (front-most last).
func (r *Registry) LayerOrder(layer types.Layer) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.layerFor(layer).order...)
}

// List returns copies of all containers, layer by layer in stacking
// order, bottom first within each layer.
func (r *Registry) List() []types.WindowContainer {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []types.WindowContainer
	for _, layer := range types.Layers() {
		for _, cid := range r.layerFor(layer).order {
			if c, ok := r.containers[cid]; ok {
				out = append(out, *c)
			}
		}
	}
	return out
}

// SetVisible toggles a container's visibility flag.
func (r *Registry) SetVisible(containerID string, visible bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.containers[containerID]
	if !ok {
		return false
	}
	c.Visible = visible
	return true
}

// setOnUnregister installs the focus coordinator's cleanup hook.
func (r *Registry) setOnUnregister(fn func(containerID string)) {
	r.onUnregister = fn
}

func (r *Registry) layerFor(layer types.Layer) *layerState {
	state, ok := r.layers[layer]
	if !ok {
		state = &layerState{}
		r.layers[layer] = state
	}
	return state
}

func remove(list []string, v string) []string {
	for i, s := range list {
		if s == v {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
