package supervisor

import (
	"errors"
	"fmt"
)

// ErrUnknownApp is returned for app ids absent from the catalog.
var ErrUnknownApp = errors.New("app not in catalog")

// ErrNotRunning is returned when an operation needs a running instance.
var ErrNotRunning = errors.New("app not running")

// LaunchFailure is the typed failure for a launch that could not
// complete: missing entrypoint, container or surface creation failure.
// The app enters the Failed state and is not retried automatically.
type LaunchFailure struct {
	AppID  string
	Reason string
	Err    error
}

func (e *LaunchFailure) Error() string {
	return fmt.Sprintf("launch %s failed: %s", e.AppID, e.Reason)
}

func (e *LaunchFailure) Unwrap() error {
	return e.Err
}

// ReloadFailure reports a reload whose re-validation failed. The prior
// running instance is preserved untouched.
type ReloadFailure struct {
	AppID   string
	Reasons []string
}

func (e *ReloadFailure) Error() string {
	return fmt.Sprintf("reload %s failed, previous instance preserved: %v", e.AppID, e.Reasons)
}
