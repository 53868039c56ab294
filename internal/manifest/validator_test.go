package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mecattaf/web-shell-sub003/internal/shared/types"
)

func TestParseMinimalManifest(t *testing.T) {
	res := Parse([]byte(`{"version":"1.0.0","name":"test-app","entrypoint":"index.html"}`))

	require.True(t, res.Valid(), "errors: %v", res.Errors)
	assert.Equal(t, "test-app", res.Descriptor.Name)
	assert.Equal(t, "1.0.0", res.Descriptor.Version)
	assert.Equal(t, "index.html", res.Descriptor.Entrypoint)
}

func TestParseMissingVersion(t *testing.T) {
	res := Parse([]byte(`{"name":"test-app","entrypoint":"index.html"}`))

	assert.False(t, res.Valid())
	require.NotEmpty(t, res.Errors)

	found := false
	for _, e := range res.Errors {
		if strings.Contains(e.Reason, "version") {
			found = true
		}
	}
	assert.True(t, found, "an error should mention version")
}

func TestParseTwoSegmentVersion(t *testing.T) {
	res := Parse([]byte(`{"version":"1.0","name":"test-app","entrypoint":"index.html"}`))
	assert.False(t, res.Valid())
}

func TestParseVersionVariants(t *testing.T) {
	cases := []struct {
		version string
		valid   bool
	}{
		{"1.0.0", true},
		{"0.0.1", true},
		{"12.34.56", true},
		{"1.0", false},
		{"v1.0.0", false},
		{"1.0.0-beta", false},
		{"1.0.0+build5", false},
		{"one.two.three", false},
	}

	for _, tc := range cases {
		raw := `{"version":"` + tc.version + `","name":"a","entrypoint":"index.html"}`
		res := Parse([]byte(raw))
		assert.Equal(t, tc.valid, res.Valid(), "version %q", tc.version)
	}
}

func TestParseCollectsAllViolations(t *testing.T) {
	res := Parse([]byte(`{"entrypoint":"/abs/index.html"}`))

	assert.False(t, res.Valid())
	// Missing version, missing name, absolute entrypoint: all reported.
	assert.GreaterOrEqual(t, len(res.Errors), 3)
}

func TestParseEntrypointTraversal(t *testing.T) {
	res := Parse([]byte(`{"version":"1.0.0","name":"a","entrypoint":"../outside/index.html"}`))
	assert.False(t, res.Valid())
}

func TestParseBadJSON(t *testing.T) {
	res := Parse([]byte(`{not json`))
	assert.False(t, res.Valid())
	assert.Nil(t, res.Descriptor)
}

func TestParseOptionalBlocks(t *testing.T) {
	raw := `{
		"version": "2.1.0",
		"name": "calendar",
		"displayName": "Calendar",
		"entrypoint": "index.html",
		"permissions": {
			"calendar": {"read": true, "write": true},
			"network": {"allowedHosts": ["api.example.com"], "websockets": true}
		},
		"window": {"type": "panel", "width": 420, "height": 600, "opacity": 0.95},
		"theme": {"inherit": true, "overrides": {"--accent": "#ff8800"}},
		"hooks": {"onLaunch": "hooks/launch.js"},
		"shortcuts": {"ctrl+n": "new-event"}
	}`
	res := Parse([]byte(raw))

	require.True(t, res.Valid(), "errors: %v", res.Errors)
	d := res.Descriptor
	assert.Equal(t, "Calendar", d.Title())
	require.NotNil(t, d.Permissions.Calendar)
	assert.True(t, d.Permissions.Calendar.Read)
	assert.Nil(t, d.Permissions.Filesystem)
	assert.Equal(t, types.WindowPanel, d.Window.Type)
	assert.Equal(t, 0.95, d.Window.Opacity)
	require.NotNil(t, d.Theme)
	assert.Equal(t, "#ff8800", d.Theme.Overrides["--accent"])
	assert.Equal(t, "new-event", d.Shortcuts["ctrl+n"])
}

func TestParseOptionalViolationsDoNotInvalidate(t *testing.T) {
	raw := `{
		"version": "1.0.0",
		"name": "widget",
		"entrypoint": "index.html",
		"window": {"type": "fullscreen"}
	}`
	res := Parse([]byte(raw))

	assert.True(t, res.Valid())
	assert.NotEmpty(t, res.Errors)
}

func TestParseWindowBounds(t *testing.T) {
	raw := `{
		"version": "1.0.0",
		"name": "a",
		"entrypoint": "index.html",
		"window": {"minWidth": 500, "maxWidth": 300, "opacity": 1.5}
	}`
	res := Parse([]byte(raw))

	var reasons []string
	for _, e := range res.Errors {
		reasons = append(reasons, e.Reason)
	}
	joined := strings.Join(reasons, "; ")
	assert.Contains(t, joined, "minWidth")
	assert.Contains(t, joined, "opacity")
}

func TestParseYAML(t *testing.T) {
	raw := `
version: 1.0.0
name: notes
entrypoint: index.html
permissions:
  clipboard:
    read: true
`
	res := ParseYAML([]byte(raw))

	require.True(t, res.Valid(), "errors: %v", res.Errors)
	require.NotNil(t, res.Descriptor.Permissions.Clipboard)
	assert.True(t, res.Descriptor.Permissions.Clipboard.Read)
}

func TestLoadPrefersJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FileJSON, `{"version":"1.0.0","name":"from-json","entrypoint":"index.html"}`)
	writeFile(t, dir, FileYAML, "version: 1.0.0\nname: from-yaml\nentrypoint: index.html\n")

	res, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-json", res.Descriptor.Name)
}

func TestLoadMissingManifest(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
