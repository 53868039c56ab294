package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	"github.com/mecattaf/web-shell-sub003/internal/events"
	"github.com/mecattaf/web-shell-sub003/internal/manifest"
	"github.com/mecattaf/web-shell-sub003/internal/shared/types"
)

// Discover scans the apps root for bundle directories containing a
// manifest. Candidates are processed independently: every manifest read
// is bounded by the candidate timeout and a failure only excludes that
// one bundle from the catalog.
func (s *Supervisor) Discover(ctx context.Context) (types.ScanReport, error) {
	candidates, err := s.findCandidates(ctx)
	if err != nil {
		return types.ScanReport{}, err
	}

	report := types.ScanReport{Scanned: len(candidates)}

	// Manifests are read concurrently, but catalog commits happen
	// afterwards in lexicographic dir order: when two bundles claim the
	// same name, the smallest dir wins regardless of goroutine timing.
	results := make([]manifest.Result, len(candidates))
	readErrs := make([]string, len(candidates))
	var wg sync.WaitGroup
	for i, dir := range candidates {
		wg.Add(1)
		go func(i int, dir string) {
			defer wg.Done()
			results[i], readErrs[i] = s.readCandidate(ctx, dir)
		}(i, dir)
	}
	wg.Wait()

	for i, dir := range candidates {
		if readErrs[i] != "" {
			report.Failures = append(report.Failures, types.ScanFailure{Dir: dir, Reason: readErrs[i]})
			continue
		}
		appID, reason := s.commitCandidate(dir, results[i])
		if reason != "" {
			report.Failures = append(report.Failures, types.ScanFailure{Dir: dir, Reason: reason})
			continue
		}
		report.Loaded = append(report.Loaded, appID)
	}

	sort.Strings(report.Loaded)

	s.mu.Lock()
	s.report = report
	s.mu.Unlock()

	s.log.Info("discovery complete",
		zap.Int("scanned", report.Scanned),
		zap.Int("loaded", len(report.Loaded)),
		zap.Int("failed", len(report.Failures)))
	return report, nil
}

// findCandidates walks the apps root collecting directories that
// directly contain a manifest file.
func (s *Supervisor) findCandidates(ctx context.Context) ([]string, error) {
	if _, err := os.Stat(s.cfg.AppsRoot); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var mu sync.Mutex

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, s.cfg.AppsRoot, func(p string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}
		name := filepath.Base(p)
		if name != manifest.FileJSON && name != manifest.FileYAML {
			return nil
		}

		mu.Lock()
		seen[filepath.Dir(p)] = true
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(seen))
	for dir := range seen {
		out = append(out, dir)
	}
	sort.Strings(out)
	return out, nil
}

// readCandidate reads and parses one bundle's manifest under the
// candidate timeout. Validation verdicts are left to the commit phase.
func (s *Supervisor) readCandidate(ctx context.Context, dir string) (manifest.Result, string) {
	cctx, cancel := context.WithTimeout(ctx, s.cfg.CandidateTimeout)
	defer cancel()

	type outcome struct {
		res manifest.Result
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		res, err := manifest.Load(dir)
		ch <- outcome{res: res, err: err}
	}()

	select {
	case <-cctx.Done():
		// A hanging read is isolated here; the scan moves on.
		return manifest.Result{}, "manifest read timed out"
	case o := <-ch:
		if o.err != nil {
			return manifest.Result{}, o.err.Error()
		}
		if o.res.Descriptor != nil && o.res.Descriptor.Name != "" {
			s.markDiscovered(o.res.Descriptor.Name)
		}
		return o.res, ""
	}
}

// commitCandidate applies the validation verdict and enters a valid
// bundle into the catalog. Returns the app id, or a reason on failure.
func (s *Supervisor) commitCandidate(dir string, res manifest.Result) (string, string) {
	if !res.Valid() {
		reason := "invalid manifest: " + strings.Join(res.ErrorStrings(), "; ")
		if res.Descriptor != nil && res.Descriptor.Name != "" {
			s.recordValidationFailure(res.Descriptor.Name, reason)
		}
		return "", reason
	}

	appID := res.Descriptor.Name

	s.mu.Lock()
	if prev, dup := s.catalog[appID]; dup && prev.Dir != dir {
		s.mu.Unlock()
		return "", "duplicate app name " + appID + " (already loaded from " + prev.Dir + ")"
	}
	entry := &types.CatalogEntry{
		AppID:      appID,
		Dir:        dir,
		Descriptor: res.Descriptor,
		LoadedAt:   time.Now(),
	}
	s.catalog[appID] = entry
	// A rescan must not disturb a live instance's state.
	if _, live := s.instances[appID]; !live {
		s.states[appID] = types.StateValidated
	}
	delete(s.failures, appID)
	s.mu.Unlock()

	s.bus.Publish(events.Event{Type: events.AppLoaded, AppID: appID})
	return appID, ""
}

// markDiscovered records the pre-validation state for a freshly read
// bundle, leaving running instances alone.
func (s *Supervisor) markDiscovered(appID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, live := s.instances[appID]; live {
		return
	}
	s.states[appID] = types.StateDiscovered
}

func (s *Supervisor) recordValidationFailure(appID, reason string) {
	s.mu.Lock()
	s.states[appID] = types.StateFailed
	s.failures[appID] = reason
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordFailure("validate")
	}
	s.bus.Publish(events.Event{Type: events.AppFailed, AppID: appID, Reason: reason})
}
