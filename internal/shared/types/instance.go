package types

import "time"

// InstanceState represents app lifecycle states.
type InstanceState string

const (
	StateDiscovered InstanceState = "discovered"
	StateValidated  InstanceState = "validated"
	StateFailed     InstanceState = "failed"
	StateLaunched   InstanceState = "launched"
	StateRunning    InstanceState = "running"
	StateReloading  InstanceState = "reloading"
	StateClosing    InstanceState = "closing"
	StateClosed     InstanceState = "closed"
)

// AppInstance is a running occurrence of an app id. One instance per app
// id at a time; a reload destroys and recreates it under a new instance id.
type AppInstance struct {
	ID          string        `json:"id"`
	AppID       string        `json:"app_id"`
	State       InstanceState `json:"state"`
	ContainerID string        `json:"container_id,omitempty"`
	EstimatedMB float64       `json:"estimated_mb"`
	CreatedAt   time.Time     `json:"created_at"`
}

// CatalogEntry pairs a discovered app id with its descriptor and the
// bundle directory the manifest was read from.
type CatalogEntry struct {
	AppID      string         `json:"app_id"`
	Dir        string         `json:"dir"`
	Descriptor *AppDescriptor `json:"descriptor"`
	LoadedAt   time.Time      `json:"loaded_at"`
}

// ScanFailure records one excluded discovery candidate.
type ScanFailure struct {
	Dir    string `json:"dir"`
	Reason string `json:"reason"`
}

// ScanReport aggregates one discovery pass. One bad manifest never aborts
// the scan; it lands here instead.
type ScanReport struct {
	Scanned  int           `json:"scanned"`
	Loaded   []string      `json:"loaded"`
	Failures []ScanFailure `json:"failures"`
}

// SupervisorStats contains supervisor statistics.
type SupervisorStats struct {
	LoadedApps  int     `json:"loaded_apps"`
	RunningApps int     `json:"running_apps"`
	FailedApps  int     `json:"failed_apps"`
	EstimatedMB float64 `json:"estimated_mb"`
}
