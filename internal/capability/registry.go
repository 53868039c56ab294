package capability

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/mecattaf/web-shell-sub003/internal/events"
	"github.com/mecattaf/web-shell-sub003/internal/infrastructure/logging"
	"github.com/mecattaf/web-shell-sub003/internal/infrastructure/monitoring"
	"github.com/mecattaf/web-shell-sub003/internal/shared/types"
)

// auditCapacity bounds the in-memory audit ring.
const auditCapacity = 512

// AuditEntry records one capability check outcome.
type AuditEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	AppID     string         `json:"app_id"`
	Category  types.Category `json:"category"`
	Action    types.Action   `json:"action"`
	Target    string         `json:"target,omitempty"`
	Allowed   bool           `json:"allowed"`
	Reason    string         `json:"reason,omitempty"`
}

// Registry owns granted capability sets, keyed by app id. It is the
// single source of truth for every permission decision in the host.
type Registry struct {
	mu      sync.RWMutex
	grants  map[string]types.CapabilitySet // Protected by mu
	audit   []AuditEntry                   // Ring buffer, protected by mu
	auditAt int
	home    string
	bus     *events.Bus
	log     *logging.Logger
	metrics *monitoring.Metrics
}

// NewRegistry creates an empty capability registry.
func NewRegistry(bus *events.Bus, log *logging.Logger) *Registry {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/"
	}
	return &Registry{
		grants: make(map[string]types.CapabilitySet),
		audit:  make([]AuditEntry, 0, auditCapacity),
		home:   home,
		bus:    bus,
		log:    log,
	}
}

// WithMetrics adds metrics tracking to the registry.
func (r *Registry) WithMetrics(m *monitoring.Metrics) *Registry {
	r.metrics = m
	return r
}

// WithHome overrides the home directory used for "~" expansion.
func (r *Registry) WithHome(home string) *Registry {
	r.home = home
	return r
}

// Register stores an app's capability set, replacing any prior set.
// Idempotent: re-registering the same set is a no-op in effect.
func (r *Registry) Register(appID string, set types.CapabilitySet) {
	r.mu.Lock()
	r.grants[appID] = set.Clone()
	r.mu.Unlock()

	granted := set.Granted()
	r.log.Info("capabilities registered",
		zap.String("app_id", appID),
		zap.Strings("granted", granted))

	if r.bus != nil {
		for _, perm := range granted {
			r.bus.Publish(events.Event{
				Type:       events.PermissionGranted,
				AppID:      appID,
				Permission: perm,
			})
		}
	}
}

// Revoke erases every grant for an app. Subsequent checks deny.
func (r *Registry) Revoke(appID string) {
	r.mu.Lock()
	_, existed := r.grants[appID]
	delete(r.grants, appID)
	r.mu.Unlock()

	if existed {
		r.log.Info("capabilities revoked", zap.String("app_id", appID))
	}
}

// List returns the app ids with registered capability sets.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.grants))
	for id := range r.grants {
		ids = append(ids, id)
	}
	return ids
}

// Get returns a copy of an app's capability set.
func (r *Registry) Get(appID string) (types.CapabilitySet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.grants[appID]
	if !ok {
		return types.CapabilitySet{}, false
	}
	return set.Clone(), true
}

// Check answers a plain category/action check. Unknown app ids and
// absent categories deny.
func (r *Registry) Check(appID string, category types.Category, action types.Action) bool {
	r.mu.RLock()
	set, ok := r.grants[appID]
	r.mu.RUnlock()

	if !ok {
		return r.record(appID, category, action, "", false, "app not registered")
	}

	allowed := actionFlag(&set, category, action)
	reason := ""
	if !allowed {
		reason = "grant absent"
	}
	return r.record(appID, category, action, "", allowed, reason)
}

// CheckFilesystem reports whether an app may access path under the given
// mode (read, write or watch). Sanitization happens here, inside the
// trust boundary: "~" expansion, separator collapsing and traversal
// rejection cannot be bypassed by caller-side preprocessing.
func (r *Registry) CheckFilesystem(appID, path string, mode types.Action) bool {
	r.mu.RLock()
	set, ok := r.grants[appID]
	r.mu.RUnlock()

	if !ok {
		return r.record(appID, types.CategoryFilesystem, mode, path, false, "app not registered")
	}
	if set.Filesystem == nil {
		return r.record(appID, types.CategoryFilesystem, mode, path, false, "filesystem category absent")
	}
	if containsTraversal(path) {
		return r.record(appID, types.CategoryFilesystem, mode, path, false, "path traversal rejected")
	}

	var allowedPaths []string
	switch mode {
	case types.ActionRead:
		allowedPaths = set.Filesystem.Read
	case types.ActionWrite:
		allowedPaths = set.Filesystem.Write
	case types.ActionWatch:
		allowedPaths = set.Filesystem.Watch
	default:
		return r.record(appID, types.CategoryFilesystem, mode, path, false, "unknown filesystem mode")
	}

	normalized := expandPath(path, r.home)
	for _, allowed := range allowedPaths {
		if hasPathPrefix(normalized, expandPath(allowed, r.home)) {
			return r.record(appID, types.CategoryFilesystem, mode, path, true, "")
		}
	}
	return r.record(appID, types.CategoryFilesystem, mode, path, false, "no matching path grant")
}

// ResolvePath returns the sanitized absolute form of path that
// CheckFilesystem compared against grants, so callers operate on the
// same file the check approved.
func (r *Registry) ResolvePath(path string) string {
	return expandPath(path, r.home)
}

// CheckNetwork reports whether an app may reach host. Loopback hosts
// require a literal loopback entry in allowedHosts; the "*" wildcard
// deliberately does not cover them.
func (r *Registry) CheckNetwork(appID, host string) bool {
	r.mu.RLock()
	set, ok := r.grants[appID]
	r.mu.RUnlock()

	if !ok {
		return r.record(appID, types.CategoryNetwork, types.ActionConnect, host, false, "app not registered")
	}
	if set.Network == nil {
		return r.record(appID, types.CategoryNetwork, types.ActionConnect, host, false, "network category absent")
	}

	normalized := normalizeHost(host)
	if isLoopback(normalized) {
		for _, h := range set.Network.AllowedHosts {
			if isLoopback(normalizeHost(h)) {
				return r.record(appID, types.CategoryNetwork, types.ActionConnect, host, true, "")
			}
		}
		return r.record(appID, types.CategoryNetwork, types.ActionConnect, host, false, "loopback requires explicit grant")
	}

	for _, h := range set.Network.AllowedHosts {
		entry := normalizeHost(h)
		if entry == "*" || entry == normalized {
			return r.record(appID, types.CategoryNetwork, types.ActionConnect, host, true, "")
		}
	}
	return r.record(appID, types.CategoryNetwork, types.ActionConnect, host, false, "host not in allowlist")
}

// CheckProcess reports whether an app may spawn command. Allowlist
// entries match exactly or as glob patterns.
func (r *Registry) CheckProcess(appID, command string) bool {
	r.mu.RLock()
	set, ok := r.grants[appID]
	r.mu.RUnlock()

	if !ok {
		return r.record(appID, types.CategoryProcesses, types.ActionSpawn, command, false, "app not registered")
	}
	if set.Processes == nil || !set.Processes.Spawn {
		return r.record(appID, types.CategoryProcesses, types.ActionSpawn, command, false, "spawn not granted")
	}

	for _, pattern := range set.Processes.AllowedCommands {
		if pattern == command {
			return r.record(appID, types.CategoryProcesses, types.ActionSpawn, command, true, "")
		}
		if ok, err := doublestar.Match(pattern, command); err == nil && ok {
			return r.record(appID, types.CategoryProcesses, types.ActionSpawn, command, true, "")
		}
	}
	return r.record(appID, types.CategoryProcesses, types.ActionSpawn, command, false, "command not in allowlist")
}

// Audit returns recent check outcomes, newest last, optionally filtered
// by app id.
func (r *Registry) Audit(appID string, limit int) []AuditEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 || limit > len(r.audit) {
		limit = len(r.audit)
	}

	out := make([]AuditEntry, 0, limit)
	// Ring order: oldest entry sits at auditAt once the ring is full.
	n := len(r.audit)
	for i := 0; i < n; i++ {
		entry := r.audit[(r.auditAt+i)%n]
		if appID != "" && entry.AppID != appID {
			continue
		}
		out = append(out, entry)
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// record appends an audit entry, updates metrics and publishes a denial
// event when allowed is false. Returns allowed for caller convenience.
func (r *Registry) record(appID string, category types.Category, action types.Action, target string, allowed bool, reason string) bool {
	entry := AuditEntry{
		Timestamp: time.Now(),
		AppID:     appID,
		Category:  category,
		Action:    action,
		Target:    target,
		Allowed:   allowed,
		Reason:    reason,
	}

	r.mu.Lock()
	if len(r.audit) < auditCapacity {
		r.audit = append(r.audit, entry)
	} else {
		r.audit[r.auditAt] = entry
		r.auditAt = (r.auditAt + 1) % auditCapacity
	}
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.RecordPermissionCheck(string(category), allowed)
	}

	if !allowed {
		perm := string(category) + "." + string(action)
		r.log.Debug("permission denied",
			zap.String("app_id", appID),
			zap.String("permission", perm),
			zap.String("target", target),
			zap.String("reason", reason))
		if r.bus != nil {
			r.bus.Publish(events.Event{
				Type:       events.PermissionDenied,
				AppID:      appID,
				Permission: perm,
				Reason:     reason,
			})
		}
	}
	return allowed
}

// actionFlag resolves a plain category/action pair against a set.
// Filesystem and network grants are parameterized, so their boolean form
// reports whether any grant exists for the action.
func actionFlag(set *types.CapabilitySet, category types.Category, action types.Action) bool {
	switch category {
	case types.CategoryCalendar:
		if c := set.Calendar; c != nil {
			switch action {
			case types.ActionRead:
				return c.Read
			case types.ActionWrite:
				return c.Write
			case types.ActionDelete:
				return c.Delete
			}
		}
	case types.CategoryFilesystem:
		if f := set.Filesystem; f != nil {
			switch action {
			case types.ActionRead:
				return len(f.Read) > 0
			case types.ActionWrite:
				return len(f.Write) > 0
			case types.ActionWatch:
				return len(f.Watch) > 0
			}
		}
	case types.CategoryNetwork:
		if n := set.Network; n != nil {
			switch action {
			case types.ActionConnect:
				return len(n.AllowedHosts) > 0
			case types.ActionWebSockets:
				return n.WebSockets
			}
		}
	case types.CategoryNotifications:
		if n := set.Notifications; n != nil && action == types.ActionSend {
			return n.Send
		}
	case types.CategoryClipboard:
		if c := set.Clipboard; c != nil {
			switch action {
			case types.ActionRead:
				return c.Read
			case types.ActionWrite:
				return c.Write
			}
		}
	case types.CategoryProcesses:
		if p := set.Processes; p != nil && action == types.ActionSpawn {
			return p.Spawn
		}
	}
	return false
}

func normalizeHost(host string) string {
	h := strings.ToLower(strings.TrimSpace(host))
	h = strings.TrimPrefix(h, "[")
	h = strings.TrimSuffix(h, "]")
	return h
}

// isLoopback covers the common loopback aliases. Other loopback-range
// addresses (127.0.0.0/8 beyond 127.0.0.1) are treated as ordinary hosts.
func isLoopback(host string) bool {
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
