// Package renderer defines the host's boundary to the rendering engine.
//
// The engine that actually displays app HTML/JS content lives outside
// this process; the host only ever asks it to create or destroy a
// content surface for an entrypoint. The Renderer interface keeps that
// collaborator opaque, and Headless provides the default in-process
// implementation used by tests and by hosts running without a display.
package renderer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Surface is one live content surface created for an app entrypoint.
type Surface struct {
	ContainerID string
	AppID       string
	Entrypoint  string
}

// Renderer creates and destroys content surfaces. Implementations must
// tolerate destroy for a surface that was never created.
type Renderer interface {
	CreateSurface(ctx context.Context, surface Surface) error
	DestroySurface(ctx context.Context, containerID string) error
}

// Headless is a renderer that verifies the entrypoint exists inside the
// bundle directory and otherwise does nothing.
type Headless struct {
	mu       sync.Mutex
	bundles  map[string]string // appID -> bundle dir
	surfaces map[string]Surface
}

// NewHeadless creates the default renderer.
func NewHeadless() *Headless {
	return &Headless{
		bundles:  make(map[string]string),
		surfaces: make(map[string]Surface),
	}
}

// RegisterBundle associates an app id with its bundle directory so
// entrypoints can be resolved.
func (h *Headless) RegisterBundle(appID, dir string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bundles[appID] = dir
}

// CreateSurface verifies the entrypoint file exists and records the
// surface.
func (h *Headless) CreateSurface(_ context.Context, surface Surface) error {
	h.mu.Lock()
	dir, ok := h.bundles[surface.AppID]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("no bundle registered for app %s", surface.AppID)
	}

	entry := filepath.Join(dir, filepath.FromSlash(surface.Entrypoint))
	if _, err := os.Stat(entry); err != nil {
		return fmt.Errorf("entrypoint %s: %w", surface.Entrypoint, err)
	}

	h.mu.Lock()
	h.surfaces[surface.ContainerID] = surface
	h.mu.Unlock()
	return nil
}

// DestroySurface removes a surface. Unknown surfaces are a no-op.
func (h *Headless) DestroySurface(_ context.Context, containerID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.surfaces, containerID)
	return nil
}

// SurfaceCount reports live surfaces, for introspection and tests.
func (h *Headless) SurfaceCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.surfaces)
}
