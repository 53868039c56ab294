package supervisor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mecattaf/web-shell-sub003/internal/shared/types"
)

func TestDiscoverLoadsValidBundles(t *testing.T) {
	f := newFixture(t)
	writeBundle(t, f.root, "calendar", `{"version":"2.1.0","name":"calendar","entrypoint":"index.html"}`, "index.html")
	writeBundle(t, f.root, "notes", notesManifest, "index.html")

	report := f.discover(t)

	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, []string{"calendar", "notes"}, report.Loaded)
	assert.Empty(t, report.Failures)

	st, ok := f.sup.State("notes")
	require.True(t, ok)
	assert.Equal(t, types.StateValidated, st)
}

func TestDiscoverIsolatesBadManifest(t *testing.T) {
	f := newFixture(t)
	writeBundle(t, f.root, "good", notesManifest, "index.html")
	bad := writeBundle(t, f.root, "bad", `{"version":"1.0","entrypoint":"../escape.html"}`)

	report := f.discover(t)

	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, []string{"notes"}, report.Loaded, "one bad bundle never aborts the scan")
	require.Len(t, report.Failures, 1)
	assert.Equal(t, bad, report.Failures[0].Dir)
	assert.Contains(t, report.Failures[0].Reason, "invalid manifest")

	_, err := f.sup.Launch(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrUnknownApp)
}

func TestDiscoverRecordsFailureForNamedInvalid(t *testing.T) {
	f := newFixture(t)
	// Name parses fine, version does not. The failure is attributable
	// to an app id, so state and reason are queryable.
	writeBundle(t, f.root, "half", `{"version":"1.0","name":"half","entrypoint":"index.html"}`)

	f.discover(t)

	st, ok := f.sup.State("half")
	require.True(t, ok)
	assert.Equal(t, types.StateFailed, st)

	reason, ok := f.sup.FailureReason("half")
	require.True(t, ok)
	assert.Contains(t, reason, "version")
}

func TestDiscoverMalformedJSON(t *testing.T) {
	f := newFixture(t)
	writeBundle(t, f.root, "garbage", `{not json`)

	report := f.discover(t)

	assert.Empty(t, report.Loaded)
	require.Len(t, report.Failures, 1)
}

func TestDiscoverDuplicateNames(t *testing.T) {
	f := newFixture(t)
	writeBundle(t, f.root, "first", notesManifest, "index.html")
	writeBundle(t, f.root, "second", notesManifest, "index.html")

	report := f.discover(t)

	assert.Equal(t, []string{"notes"}, report.Loaded)
	require.Len(t, report.Failures, 1)
	assert.Contains(t, report.Failures[0].Reason, "duplicate app name")

	// The winner is deterministic: the lexicographically smallest dir.
	entry, ok := f.sup.GetApp("notes")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(f.root, "first"), entry.Dir)
	assert.Equal(t, filepath.Join(f.root, "second"), report.Failures[0].Dir)
}

func TestDiscoverDuplicateWinnerIndependentOfCreationOrder(t *testing.T) {
	f := newFixture(t)
	// Written largest-dir first; the smallest dir must still win.
	writeBundle(t, f.root, "zz-notes", notesManifest, "index.html")
	writeBundle(t, f.root, "aa-notes", notesManifest, "index.html")

	report := f.discover(t)

	require.Equal(t, []string{"notes"}, report.Loaded)
	entry, ok := f.sup.GetApp("notes")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(f.root, "aa-notes"), entry.Dir)
}

func TestDiscoverNestedBundles(t *testing.T) {
	f := newFixture(t)
	writeBundle(t, f.root, filepath.Join("vendor", "deep", "notes"), notesManifest, "index.html")

	report := f.discover(t)
	assert.Equal(t, []string{"notes"}, report.Loaded)
}

func TestDiscoverYAMLManifest(t *testing.T) {
	f := newFixture(t)
	bundle := filepath.Join(f.root, "yamlapp")
	require.NoError(t, os.MkdirAll(bundle, 0o755))
	body := "version: 1.0.0\nname: yamlapp\nentrypoint: index.html\n"
	require.NoError(t, os.WriteFile(filepath.Join(bundle, "manifest.yaml"), []byte(body), 0o644))

	report := f.discover(t)
	assert.Equal(t, []string{"yamlapp"}, report.Loaded)
}

func TestDiscoverMissingRoot(t *testing.T) {
	f := newFixture(t)
	f.sup.cfg.AppsRoot = filepath.Join(f.root, "does-not-exist")

	_, err := f.sup.Discover(context.Background())
	assert.Error(t, err)
}

func TestLastScanReturnsStoredReport(t *testing.T) {
	f := newFixture(t)
	writeBundle(t, f.root, "notes", notesManifest, "index.html")

	report := f.discover(t)
	assert.Equal(t, report, f.sup.LastScan())
}

func TestRediscoverRefreshesCatalog(t *testing.T) {
	f := newFixture(t)
	bundle := writeBundle(t, f.root, "notes", notesManifest, "index.html")
	f.discover(t)

	updated := `{"version":"1.2.0","name":"notes","entrypoint":"index.html"}`
	require.NoError(t, os.WriteFile(filepath.Join(bundle, "manifest.json"), []byte(updated), 0o644))

	f.discover(t)
	entry, ok := f.sup.GetApp("notes")
	require.True(t, ok)
	assert.Equal(t, "1.2.0", entry.Descriptor.Version)
}
