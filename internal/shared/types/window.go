package types

import "time"

// Layer is a fixed window stacking layer. Layers never interleave: every
// container in a higher layer stacks above every container in a lower one.
type Layer string

const (
	LayerPanel        Layer = "panel"
	LayerDock         Layer = "dock"
	LayerWidget       Layer = "widget"
	LayerNotification Layer = "notification"
	LayerOverlay      Layer = "overlay"
)

// Layers lists all layers in stacking order, bottom first.
func Layers() []Layer {
	return []Layer{LayerPanel, LayerDock, LayerWidget, LayerNotification, LayerOverlay}
}

// ZBase returns the layer's base z-value. Bases are spaced far enough
// apart that per-layer offsets never cross into the next layer.
func (l Layer) ZBase() int {
	switch l {
	case LayerPanel:
		return 0
	case LayerDock:
		return 1000
	case LayerWidget:
		return 2000
	case LayerNotification:
		return 3000
	case LayerOverlay:
		return 4000
	default:
		return 2000
	}
}

// LayerFor maps a manifest window type to its stacking layer.
func LayerFor(t WindowType) Layer {
	switch t {
	case WindowPanel:
		return LayerPanel
	case WindowOverlay, WindowDialog:
		return LayerOverlay
	default:
		return LayerWidget
	}
}

// WindowContainer is an on-screen region hosting one app's content.
type WindowContainer struct {
	ID            string     `json:"id"`
	AppID         string     `json:"app_id"`
	Title         string     `json:"title"`
	Layer         Layer      `json:"layer"`
	Z             int        `json:"z"`
	Width         int        `json:"width"`
	Height        int        `json:"height"`
	Position      string     `json:"position,omitempty"`
	Visible       bool       `json:"visible"`
	FocusEligible bool       `json:"focus_eligible"`
	Type          WindowType `json:"type"`
	CreatedAt     time.Time  `json:"created_at"`
}

// FocusState is a snapshot of the focus coordinator. The focused container
// is referenced by id, never by pointer, so a destroyed container cannot
// leave a dangling reference.
type FocusState struct {
	FocusedID string   `json:"focused_id,omitempty"`
	History   []string `json:"history"`
}
