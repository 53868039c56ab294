package manifest

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileJSON and FileYAML are the manifest file names probed inside a
// bundle directory, in priority order.
const (
	FileJSON = "manifest.json"
	FileYAML = "manifest.yaml"
)

// Load reads and parses the manifest inside a bundle directory. It
// returns an error only for I/O failures; validation problems land in
// the Result.
func Load(dir string) (Result, error) {
	jsonPath := filepath.Join(dir, FileJSON)
	if raw, err := os.ReadFile(jsonPath); err == nil {
		return Parse(raw), nil
	} else if !os.IsNotExist(err) {
		return Result{}, fmt.Errorf("read %s: %w", jsonPath, err)
	}

	yamlPath := filepath.Join(dir, FileYAML)
	if raw, err := os.ReadFile(yamlPath); err == nil {
		return ParseYAML(raw), nil
	} else if !os.IsNotExist(err) {
		return Result{}, fmt.Errorf("read %s: %w", yamlPath, err)
	}

	return Result{}, fmt.Errorf("no manifest found in %s", dir)
}
