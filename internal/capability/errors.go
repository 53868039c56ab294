package capability

import (
	"fmt"

	"github.com/mecattaf/web-shell-sub003/internal/shared/types"
)

// PermissionDenied is the typed failure surfaced to an app when a
// capability check fails. Category and action are always populated so a
// developer can correct the manifest; Target carries the path, host or
// command that was refused, when one exists.
type PermissionDenied struct {
	AppID    string         `json:"app_id"`
	Category types.Category `json:"category"`
	Action   types.Action   `json:"action"`
	Target   string         `json:"target,omitempty"`
}

func (e *PermissionDenied) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("permission denied: app %s lacks %s.%s for %q", e.AppID, e.Category, e.Action, e.Target)
	}
	return fmt.Sprintf("permission denied: app %s lacks %s.%s", e.AppID, e.Category, e.Action)
}

// Permission renders the "category.action" form used in audit events.
func (e *PermissionDenied) Permission() string {
	return string(e.Category) + "." + string(e.Action)
}
