package capability

import "github.com/mecattaf/web-shell-sub003/internal/shared/types"

// Enforcer is a per-app facade over the Registry. Enforce* variants
// return a typed *PermissionDenied on denial; CheckPermission is the
// non-throwing form for conditional UI logic.
type Enforcer struct {
	appID    string
	registry *Registry
}

// NewEnforcer binds an enforcer to one app id.
func NewEnforcer(appID string, registry *Registry) *Enforcer {
	return &Enforcer{appID: appID, registry: registry}
}

// AppID returns the bound app id.
func (e *Enforcer) AppID() string {
	return e.appID
}

// Enforce fails with PermissionDenied unless the category/action pair is
// granted.
func (e *Enforcer) Enforce(category types.Category, action types.Action) error {
	if e.registry.Check(e.appID, category, action) {
		return nil
	}
	return &PermissionDenied{AppID: e.appID, Category: category, Action: action}
}

// EnforceFilesystem fails unless path is covered by a mode grant.
func (e *Enforcer) EnforceFilesystem(path string, mode types.Action) error {
	if e.registry.CheckFilesystem(e.appID, path, mode) {
		return nil
	}
	return &PermissionDenied{AppID: e.appID, Category: types.CategoryFilesystem, Action: mode, Target: path}
}

// ResolveFilesystem enforces a mode grant and returns the sanitized
// absolute path to operate on.
func (e *Enforcer) ResolveFilesystem(path string, mode types.Action) (string, error) {
	if err := e.EnforceFilesystem(path, mode); err != nil {
		return "", err
	}
	return e.registry.ResolvePath(path), nil
}

// EnforceNetwork fails unless host is covered by the allowlist.
func (e *Enforcer) EnforceNetwork(host string) error {
	if e.registry.CheckNetwork(e.appID, host) {
		return nil
	}
	return &PermissionDenied{AppID: e.appID, Category: types.CategoryNetwork, Action: types.ActionConnect, Target: host}
}

// EnforceProcess fails unless command is covered by the spawn allowlist.
func (e *Enforcer) EnforceProcess(command string) error {
	if e.registry.CheckProcess(e.appID, command) {
		return nil
	}
	return &PermissionDenied{AppID: e.appID, Category: types.CategoryProcesses, Action: types.ActionSpawn, Target: command}
}

// CheckPermission answers a boolean check without producing a failure.
func (e *Enforcer) CheckPermission(category types.Category, action types.Action) bool {
	return e.registry.Check(e.appID, category, action)
}
