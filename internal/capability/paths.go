package capability

import (
	"path/filepath"
	"strings"
)

// containsTraversal reports whether any path segment is "..". Traversal
// is denied outright, even when the pre-traversal prefix would match an
// allowed path exactly.
func containsTraversal(path string) bool {
	normalized := strings.ReplaceAll(path, "\\", "/")
	for _, seg := range strings.Split(normalized, "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// expandPath expands a leading "~" against home and collapses repeated
// separators. It does not resolve "..": traversal is rejected before
// this runs.
func expandPath(path, home string) string {
	if path == "~" {
		path = home
	} else if strings.HasPrefix(path, "~/") {
		path = filepath.Join(home, path[2:])
	}
	// filepath.Clean collapses "//" runs and trailing separators.
	return filepath.Clean(filepath.FromSlash(path))
}

// hasPathPrefix reports whether path sits at or below prefix, matching
// on whole segments so "/tmp/food" never matches prefix "/tmp/foo".
func hasPathPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}
