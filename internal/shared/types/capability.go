package types

// Category names a capability group. Absence of a category in a
// CapabilitySet denies every action in it.
type Category string

const (
	CategoryCalendar      Category = "calendar"
	CategoryFilesystem    Category = "filesystem"
	CategoryNetwork       Category = "network"
	CategoryNotifications Category = "notifications"
	CategoryClipboard     Category = "clipboard"
	CategoryProcesses     Category = "processes"
)

// Action names a single grant within a category.
type Action string

const (
	ActionRead       Action = "read"
	ActionWrite      Action = "write"
	ActionDelete     Action = "delete"
	ActionWatch      Action = "watch"
	ActionConnect    Action = "connect"
	ActionWebSockets Action = "websockets"
	ActionSend       Action = "send"
	ActionSpawn      Action = "spawn"
)

// CapabilitySet holds every grant an app declared. One explicit field per
// category keeps "category absent" and "action false" distinct.
type CapabilitySet struct {
	Calendar      *CalendarCaps      `json:"calendar,omitempty" yaml:"calendar,omitempty"`
	Filesystem    *FilesystemCaps    `json:"filesystem,omitempty" yaml:"filesystem,omitempty"`
	Network       *NetworkCaps       `json:"network,omitempty" yaml:"network,omitempty"`
	Notifications *NotificationCaps  `json:"notifications,omitempty" yaml:"notifications,omitempty"`
	Clipboard     *ClipboardCaps     `json:"clipboard,omitempty" yaml:"clipboard,omitempty"`
	Processes     *ProcessCaps       `json:"processes,omitempty" yaml:"processes,omitempty"`
}

// CalendarCaps grants calendar store operations.
type CalendarCaps struct {
	Read   bool `json:"read,omitempty" yaml:"read,omitempty"`
	Write  bool `json:"write,omitempty" yaml:"write,omitempty"`
	Delete bool `json:"delete,omitempty" yaml:"delete,omitempty"`
}

// FilesystemCaps grants path-scoped filesystem access. Each mode carries
// its own allowed path prefixes.
type FilesystemCaps struct {
	Read  []string `json:"read,omitempty" yaml:"read,omitempty"`
	Write []string `json:"write,omitempty" yaml:"write,omitempty"`
	Watch []string `json:"watch,omitempty" yaml:"watch,omitempty"`
}

// NetworkCaps grants outbound network access to listed hosts. A "*" entry
// covers every host except loopback, which must be listed explicitly.
type NetworkCaps struct {
	AllowedHosts []string `json:"allowedHosts,omitempty" yaml:"allowedHosts,omitempty"`
	WebSockets   bool     `json:"websockets,omitempty" yaml:"websockets,omitempty"`
}

// NotificationCaps grants desktop notification delivery.
type NotificationCaps struct {
	Send bool `json:"send,omitempty" yaml:"send,omitempty"`
}

// ClipboardCaps grants host clipboard access.
type ClipboardCaps struct {
	Read  bool `json:"read,omitempty" yaml:"read,omitempty"`
	Write bool `json:"write,omitempty" yaml:"write,omitempty"`
}

// ProcessCaps grants OS process spawning, restricted to an allowlist of
// commands. Allowlist entries may be glob patterns.
type ProcessCaps struct {
	Spawn           bool     `json:"spawn,omitempty" yaml:"spawn,omitempty"`
	AllowedCommands []string `json:"allowedCommands,omitempty" yaml:"allowedCommands,omitempty"`
}

// IsEmpty reports whether no category is present at all.
func (s *CapabilitySet) IsEmpty() bool {
	return s.Calendar == nil && s.Filesystem == nil && s.Network == nil &&
		s.Notifications == nil && s.Clipboard == nil && s.Processes == nil
}

// Clone returns a deep copy. The capability registry stores and returns
// clones so callers can never mutate its state.
func (s *CapabilitySet) Clone() CapabilitySet {
	out := CapabilitySet{}
	if s.Calendar != nil {
		c := *s.Calendar
		out.Calendar = &c
	}
	if s.Filesystem != nil {
		out.Filesystem = &FilesystemCaps{
			Read:  append([]string(nil), s.Filesystem.Read...),
			Write: append([]string(nil), s.Filesystem.Write...),
			Watch: append([]string(nil), s.Filesystem.Watch...),
		}
	}
	if s.Network != nil {
		out.Network = &NetworkCaps{
			AllowedHosts: append([]string(nil), s.Network.AllowedHosts...),
			WebSockets:   s.Network.WebSockets,
		}
	}
	if s.Notifications != nil {
		n := *s.Notifications
		out.Notifications = &n
	}
	if s.Clipboard != nil {
		c := *s.Clipboard
		out.Clipboard = &c
	}
	if s.Processes != nil {
		out.Processes = &ProcessCaps{
			Spawn:           s.Processes.Spawn,
			AllowedCommands: append([]string(nil), s.Processes.AllowedCommands...),
		}
	}
	return out
}

// Granted lists every "category.action" grant present in the set, used
// for audit events on registration.
func (s *CapabilitySet) Granted() []string {
	var out []string
	add := func(cat Category, act Action, on bool) {
		if on {
			out = append(out, string(cat)+"."+string(act))
		}
	}
	if c := s.Calendar; c != nil {
		add(CategoryCalendar, ActionRead, c.Read)
		add(CategoryCalendar, ActionWrite, c.Write)
		add(CategoryCalendar, ActionDelete, c.Delete)
	}
	if f := s.Filesystem; f != nil {
		add(CategoryFilesystem, ActionRead, len(f.Read) > 0)
		add(CategoryFilesystem, ActionWrite, len(f.Write) > 0)
		add(CategoryFilesystem, ActionWatch, len(f.Watch) > 0)
	}
	if n := s.Network; n != nil {
		add(CategoryNetwork, ActionConnect, len(n.AllowedHosts) > 0)
		add(CategoryNetwork, ActionWebSockets, n.WebSockets)
	}
	if n := s.Notifications; n != nil {
		add(CategoryNotifications, ActionSend, n.Send)
	}
	if c := s.Clipboard; c != nil {
		add(CategoryClipboard, ActionRead, c.Read)
		add(CategoryClipboard, ActionWrite, c.Write)
	}
	if p := s.Processes; p != nil {
		add(CategoryProcesses, ActionSpawn, p.Spawn)
	}
	return out
}
