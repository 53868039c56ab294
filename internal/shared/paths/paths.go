// Package paths provides the shell's standard filesystem locations.
//
// The host follows the XDG base directory layout: app bundles live
// under the user data directory, per-app writable state under a shell
// namespace beside them. Environment overrides take precedence so
// packaging and tests can relocate everything.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// DataDir returns the shell's data directory, honoring XDG_DATA_HOME.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "shell")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "shell")
	}
	return filepath.Join(home, ".local", "share", "shell")
}

// AppsRoot returns the default app bundle directory.
func AppsRoot() string {
	return filepath.Join(DataDir(), "apps")
}

// AppDataDir returns an app's writable state directory. App bundles
// themselves stay read-only after discovery.
func AppDataDir(appID string) string {
	return filepath.Join(DataDir(), "state", appID)
}

// ExpandHome resolves a leading "~" against the user home directory.
// Paths without a tilde prefix come back cleaned but otherwise intact.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Clean(filepath.Join(home, strings.TrimPrefix(path, "~")))
		}
	}
	return filepath.Clean(path)
}
