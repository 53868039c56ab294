package supervisor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mecattaf/web-shell-sub003/internal/capability"
	"github.com/mecattaf/web-shell-sub003/internal/events"
	"github.com/mecattaf/web-shell-sub003/internal/infrastructure/logging"
	"github.com/mecattaf/web-shell-sub003/internal/infrastructure/monitoring"
	"github.com/mecattaf/web-shell-sub003/internal/manifest"
	"github.com/mecattaf/web-shell-sub003/internal/renderer"
	"github.com/mecattaf/web-shell-sub003/internal/shared/id"
	"github.com/mecattaf/web-shell-sub003/internal/shared/types"
	"github.com/mecattaf/web-shell-sub003/internal/window"
)

// Config holds supervisor tuning.
type Config struct {
	AppsRoot string
	// CandidateTimeout bounds one manifest read during discovery.
	CandidateTimeout time.Duration
	// PerInstanceMB and BaselineMB feed the O(1) resource estimate.
	PerInstanceMB float64
	BaselineMB    float64
}

// DefaultConfig returns supervisor defaults.
func DefaultConfig(appsRoot string) Config {
	return Config{
		AppsRoot:         appsRoot,
		CandidateTimeout: 5 * time.Second,
		PerInstanceMB:    96,
		BaselineMB:       64,
	}
}

// Supervisor drives app lifecycles. One instance per host process.
type Supervisor struct {
	cfg      Config
	caps     *capability.Registry
	windows  *window.Registry
	focus    *window.FocusCoordinator
	renderer renderer.Renderer
	bundles  *renderer.BundleServer
	bus      *events.Bus
	log      *logging.Logger
	metrics  *monitoring.Metrics

	mu        sync.RWMutex
	catalog   map[string]*types.CatalogEntry   // Protected by mu
	states    map[string]types.InstanceState   // Protected by mu
	failures  map[string]string                // appID -> reason, protected by mu
	instances map[string]*types.AppInstance    // appID -> running instance, protected by mu
	report    types.ScanReport                 // Last scan, protected by mu

	// appLocks serializes launch/close/reload per app id. A close
	// arriving mid-launch queues here instead of racing.
	appLocks sync.Map // appID -> *sync.Mutex
}

// New creates a supervisor.
func New(cfg Config, caps *capability.Registry, windows *window.Registry, focus *window.FocusCoordinator, rend renderer.Renderer, bus *events.Bus, log *logging.Logger) *Supervisor {
	if cfg.CandidateTimeout <= 0 {
		cfg.CandidateTimeout = 5 * time.Second
	}
	return &Supervisor{
		cfg:       cfg,
		caps:      caps,
		windows:   windows,
		focus:     focus,
		renderer:  rend,
		bus:       bus,
		log:       log,
		catalog:   make(map[string]*types.CatalogEntry),
		states:    make(map[string]types.InstanceState),
		failures:  make(map[string]string),
		instances: make(map[string]*types.AppInstance),
	}
}

// WithMetrics adds metrics tracking to the supervisor.
func (s *Supervisor) WithMetrics(m *monitoring.Metrics) *Supervisor {
	s.metrics = m
	return s
}

// WithBundleServer publishes launched bundles over the control API.
func (s *Supervisor) WithBundleServer(b *renderer.BundleServer) *Supervisor {
	s.bundles = b
	return s
}

// lockApp acquires the per-app serialization lock.
func (s *Supervisor) lockApp(appID string) *sync.Mutex {
	actual, _ := s.appLocks.LoadOrStore(appID, &sync.Mutex{})
	mu := actual.(*sync.Mutex)
	mu.Lock()
	return mu
}

// Launch starts an app by id. Launching an already-running app is an
// idempotent no-op returning the existing instance.
func (s *Supervisor) Launch(ctx context.Context, appID string) (*types.AppInstance, error) {
	mu := s.lockApp(appID)
	defer mu.Unlock()
	return s.launchLocked(ctx, appID)
}

// launchLocked performs the launch. Caller holds the per-app lock.
func (s *Supervisor) launchLocked(ctx context.Context, appID string) (*types.AppInstance, error) {
	s.mu.RLock()
	entry, known := s.catalog[appID]
	existing := s.instances[appID]
	s.mu.RUnlock()

	if existing != nil && existing.State == types.StateRunning {
		inst := *existing
		return &inst, nil
	}
	if !known {
		return nil, ErrUnknownApp
	}

	desc := entry.Descriptor
	s.caps.Register(appID, desc.Permissions)

	container := window.NewContainer(appID, desc)
	s.windows.Register(container)
	// Launched covers the window from container creation until the
	// surface is up; a failure in between lands in Failed from here.
	s.setState(appID, types.StateLaunched)

	if hr, ok := s.renderer.(*renderer.Headless); ok {
		hr.RegisterBundle(appID, entry.Dir)
	}
	surface := renderer.Surface{
		ContainerID: container.ID,
		AppID:       appID,
		Entrypoint:  desc.Entrypoint,
	}
	if err := s.renderer.CreateSurface(ctx, surface); err != nil {
		// Unwind the partial launch: container out, grants revoked.
		s.windows.Unregister(container.ID)
		s.caps.Revoke(appID)
		return nil, s.failLaunch(appID, "content surface: "+err.Error(), err)
	}

	if s.bundles != nil {
		s.bundles.Register(appID, entry.Dir)
	}

	inst := &types.AppInstance{
		ID:          id.NewInstanceID().String(),
		AppID:       appID,
		State:       types.StateRunning,
		ContainerID: container.ID,
		EstimatedMB: s.cfg.PerInstanceMB,
		CreatedAt:   time.Now(),
	}

	s.mu.Lock()
	s.states[appID] = types.StateRunning
	s.instances[appID] = inst
	delete(s.failures, appID)
	running := len(s.instances)
	s.mu.Unlock()

	s.log.Info("app launched",
		zap.String("app_id", appID),
		zap.String("instance", inst.ID),
		zap.String("container", container.ID))
	if s.metrics != nil {
		s.metrics.RecordLaunch(running, s.estimate(running))
	}
	s.bus.Publish(events.Event{Type: events.AppLaunched, AppID: appID})

	if container.FocusEligible {
		s.focus.RequestFocus(container.ID)
	}

	out := *inst
	return &out, nil
}

// Close stops a running app, revoking its capabilities so no grant
// outlives the instance.
func (s *Supervisor) Close(ctx context.Context, appID string) error {
	mu := s.lockApp(appID)
	defer mu.Unlock()
	return s.closeLocked(ctx, appID)
}

// closeLocked performs the teardown. Caller holds the per-app lock.
func (s *Supervisor) closeLocked(ctx context.Context, appID string) error {
	s.mu.Lock()
	inst, ok := s.instances[appID]
	if !ok {
		s.mu.Unlock()
		return ErrNotRunning
	}
	s.states[appID] = types.StateClosing
	s.mu.Unlock()

	if err := s.renderer.DestroySurface(ctx, inst.ContainerID); err != nil {
		s.log.Warn("surface teardown failed",
			zap.String("app_id", appID), zap.Error(err))
	}
	s.windows.Unregister(inst.ContainerID)
	s.caps.Revoke(appID)
	if s.bundles != nil {
		s.bundles.Unregister(appID)
	}

	s.mu.Lock()
	delete(s.instances, appID)
	s.states[appID] = types.StateClosed
	running := len(s.instances)
	s.mu.Unlock()

	s.log.Info("app closed", zap.String("app_id", appID), zap.String("instance", inst.ID))
	if s.metrics != nil {
		s.metrics.RecordClose(running, s.estimate(running))
	}
	s.bus.Publish(events.Event{Type: events.AppClosed, AppID: appID})
	return nil
}

// Reload re-reads the app's manifest and restarts it under a fresh
// instance id. Re-validation happens before anything is torn down: when
// the new manifest is invalid the previous running instance is
// preserved untouched and the reload reports failure.
func (s *Supervisor) Reload(ctx context.Context, appID string) (*types.AppInstance, error) {
	mu := s.lockApp(appID)
	defer mu.Unlock()

	s.mu.RLock()
	entry, known := s.catalog[appID]
	_, running := s.instances[appID]
	s.mu.RUnlock()

	if !known {
		return nil, ErrUnknownApp
	}
	if !running {
		return nil, ErrNotRunning
	}

	s.setState(appID, types.StateReloading)

	res, err := manifest.Load(entry.Dir)
	if err != nil || !res.Valid() {
		// Non-destructive failure: the old instance keeps running.
		s.setState(appID, types.StateRunning)
		if s.metrics != nil {
			s.metrics.RecordFailure("reload")
		}
		reasons := []string{}
		if err != nil {
			reasons = append(reasons, err.Error())
		} else {
			reasons = res.ErrorStrings()
		}
		s.log.Warn("reload rejected, previous instance preserved",
			zap.String("app_id", appID), zap.Strings("reasons", reasons))
		return nil, &ReloadFailure{AppID: appID, Reasons: reasons}
	}

	if err := s.closeLocked(ctx, appID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.catalog[appID] = &types.CatalogEntry{
		AppID:      appID,
		Dir:        entry.Dir,
		Descriptor: res.Descriptor,
		LoadedAt:   time.Now(),
	}
	s.mu.Unlock()

	return s.launchLocked(ctx, appID)
}

// failLaunch records a failed launch: Failed state, appFailed event, no
// automatic retry.
func (s *Supervisor) failLaunch(appID, reason string, err error) error {
	s.mu.Lock()
	s.states[appID] = types.StateFailed
	s.failures[appID] = reason
	s.mu.Unlock()

	s.log.Error("app launch failed",
		zap.String("app_id", appID),
		zap.String("reason", reason))
	if s.metrics != nil {
		s.metrics.RecordFailure("launch")
	}
	s.bus.Publish(events.Event{Type: events.AppFailed, AppID: appID, Reason: reason})
	return &LaunchFailure{AppID: appID, Reason: reason, Err: err}
}

func (s *Supervisor) setState(appID string, st types.InstanceState) {
	s.mu.Lock()
	s.states[appID] = st
	if inst, ok := s.instances[appID]; ok {
		inst.State = st
	}
	s.mu.Unlock()
}

// estimate computes the aggregate resource estimate for a running count.
func (s *Supervisor) estimate(running int) float64 {
	return s.cfg.BaselineMB + s.cfg.PerInstanceMB*float64(running)
}

// TotalEstimatedResourceUsage returns the aggregate estimate in MB:
// shared baseline plus a fixed per-instance cost per running app. The
// baseline is charged even with nothing running; the host itself is
// never free.
func (s *Supervisor) TotalEstimatedResourceUsage() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.estimate(len(s.instances))
}

// LoadedApps returns catalog entries for every validated app.
func (s *Supervisor) LoadedApps() []types.CatalogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.CatalogEntry, 0, len(s.catalog))
	for _, e := range s.catalog {
		out = append(out, *e)
	}
	return out
}

// RunningApps returns a snapshot of every running instance.
func (s *Supervisor) RunningApps() []types.AppInstance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.AppInstance, 0, len(s.instances))
	for _, inst := range s.instances {
		out = append(out, *inst)
	}
	return out
}

// IsRunning reports whether an app id has a running instance.
func (s *Supervisor) IsRunning(appID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.instances[appID]
	return ok && inst.State == types.StateRunning
}

// GetApp returns the catalog entry for an app id.
func (s *Supervisor) GetApp(appID string) (types.CatalogEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.catalog[appID]
	if !ok {
		return types.CatalogEntry{}, false
	}
	return *e, true
}

// Instance returns the running instance for an app id.
func (s *Supervisor) Instance(appID string) (types.AppInstance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.instances[appID]
	if !ok {
		return types.AppInstance{}, false
	}
	return *inst, true
}

// State returns the lifecycle state for an app id.
func (s *Supervisor) State(appID string) (types.InstanceState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[appID]
	return st, ok
}

// FailureReason returns the recorded reason for a failed app.
func (s *Supervisor) FailureReason(appID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.failures[appID]
	return r, ok
}

// Stats returns supervisor statistics.
func (s *Supervisor) Stats() types.SupervisorStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return types.SupervisorStats{
		LoadedApps:  len(s.catalog),
		RunningApps: len(s.instances),
		FailedApps:  len(s.failures),
		EstimatedMB: s.estimate(len(s.instances)),
	}
}

// LastScan returns the most recent discovery report.
func (s *Supervisor) LastScan() types.ScanReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}
