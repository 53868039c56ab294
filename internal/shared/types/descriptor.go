package types

// AppDescriptor is the structured, validated form of an app manifest.
// Descriptors are immutable once loaded; a reload replaces the whole value.
type AppDescriptor struct {
	Name        string            `json:"name" yaml:"name"`
	DisplayName string            `json:"displayName,omitempty" yaml:"displayName,omitempty"`
	Version     string            `json:"version" yaml:"version"`
	Entrypoint  string            `json:"entrypoint" yaml:"entrypoint"`
	Permissions CapabilitySet     `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	Window      WindowConfig      `json:"window,omitempty" yaml:"window,omitempty"`
	Theme       *ThemeConfig      `json:"theme,omitempty" yaml:"theme,omitempty"`
	Hooks       map[string]string `json:"hooks,omitempty" yaml:"hooks,omitempty"`
	Shortcuts   map[string]string `json:"shortcuts,omitempty" yaml:"shortcuts,omitempty"`
}

// Title returns the human-facing name, falling back to the app id.
func (d *AppDescriptor) Title() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Name
}

// WindowType is the declared window shape of an app.
type WindowType string

const (
	WindowWidget  WindowType = "widget"
	WindowPanel   WindowType = "panel"
	WindowOverlay WindowType = "overlay"
	WindowDialog  WindowType = "dialog"
)

// WindowConfig is the manifest window block. Zero values mean "host default".
type WindowConfig struct {
	Type         WindowType `json:"type,omitempty" yaml:"type,omitempty"`
	Width        int        `json:"width,omitempty" yaml:"width,omitempty"`
	Height       int        `json:"height,omitempty" yaml:"height,omitempty"`
	MinWidth     int        `json:"minWidth,omitempty" yaml:"minWidth,omitempty"`
	MinHeight    int        `json:"minHeight,omitempty" yaml:"minHeight,omitempty"`
	MaxWidth     int        `json:"maxWidth,omitempty" yaml:"maxWidth,omitempty"`
	MaxHeight    int        `json:"maxHeight,omitempty" yaml:"maxHeight,omitempty"`
	Position     string     `json:"position,omitempty" yaml:"position,omitempty"`
	Resizable    *bool      `json:"resizable,omitempty" yaml:"resizable,omitempty"`
	Movable      *bool      `json:"movable,omitempty" yaml:"movable,omitempty"`
	Blur         bool       `json:"blur,omitempty" yaml:"blur,omitempty"`
	Transparency bool       `json:"transparency,omitempty" yaml:"transparency,omitempty"`
	Opacity      float64    `json:"opacity,omitempty" yaml:"opacity,omitempty"`
}

// ThemeConfig carries the manifest theme block. The host treats it as
// opaque payload for the theme pipeline; only shape is validated.
type ThemeConfig struct {
	Inherit   bool              `json:"inherit" yaml:"inherit"`
	Overrides map[string]string `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}
