package manifest

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"

	"github.com/mecattaf/web-shell-sub003/internal/shared/types"
)

// Result pairs a parsed descriptor with every violation found. The
// descriptor is populated best-effort even when invalid, so callers can
// report what was readable.
type Result struct {
	Descriptor *types.AppDescriptor `json:"descriptor,omitempty"`
	Errors     []ValidationError    `json:"errors,omitempty"`
}

// Valid reports whether every required field is present and well-formed.
func (r Result) Valid() bool {
	for _, e := range r.Errors {
		if e.Required {
			return false
		}
	}
	return true
}

// ErrorStrings flattens violations for reporting.
func (r Result) ErrorStrings() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Reason
	}
	return out
}

var nameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// Parse decodes a JSON manifest and validates it. Pure: no filesystem
// access, no side effects.
func Parse(raw []byte) Result {
	var desc types.AppDescriptor
	if err := sonic.Unmarshal(raw, &desc); err != nil {
		return Result{Errors: []ValidationError{InvalidFormat("manifest", "invalid JSON: "+err.Error())}}
	}
	return validate(&desc)
}

// ParseYAML decodes a YAML manifest and validates it.
func ParseYAML(raw []byte) Result {
	var desc types.AppDescriptor
	if err := yaml.Unmarshal(raw, &desc); err != nil {
		return Result{Errors: []ValidationError{InvalidFormat("manifest", "invalid YAML: "+err.Error())}}
	}
	return validate(&desc)
}

func validate(desc *types.AppDescriptor) Result {
	var errs []ValidationError

	errs = append(errs, validateVersion(desc.Version)...)
	errs = append(errs, validateName(desc.Name)...)
	errs = append(errs, validateEntrypoint(desc.Entrypoint)...)
	errs = append(errs, validateWindow(&desc.Window)...)
	errs = append(errs, validatePermissions(&desc.Permissions)...)
	errs = append(errs, validateHooks(desc.Hooks)...)

	return Result{Descriptor: desc, Errors: errs}
}

func validateVersion(version string) []ValidationError {
	if version == "" {
		return []ValidationError{MissingField("version")}
	}
	// Strict X.Y.Z: three numeric segments, no "v" prefix, no
	// prerelease or build metadata.
	v, err := semver.StrictNewVersion(version)
	if err != nil {
		return []ValidationError{InvalidFormat("version", "version must match X.Y.Z, got "+version)}
	}
	if v.Prerelease() != "" || v.Metadata() != "" {
		return []ValidationError{InvalidFormat("version", "version must match X.Y.Z, got "+version)}
	}
	return nil
}

func validateName(name string) []ValidationError {
	if name == "" {
		return []ValidationError{MissingField("name")}
	}
	if !nameRe.MatchString(name) {
		return []ValidationError{InvalidFormat("name", "name must be an identifier (letters, digits, '.', '_', '-'), got "+name)}
	}
	return nil
}

func validateEntrypoint(entry string) []ValidationError {
	if entry == "" {
		return []ValidationError{MissingField("entrypoint")}
	}
	if filepath.IsAbs(entry) {
		return []ValidationError{InvalidFormat("entrypoint", "entrypoint must be a relative path, got "+entry)}
	}
	for _, seg := range strings.Split(filepath.ToSlash(entry), "/") {
		if seg == ".." {
			return []ValidationError{InvalidFormat("entrypoint", "entrypoint must not escape the bundle directory")}
		}
	}
	return nil
}

func validateWindow(w *types.WindowConfig) []ValidationError {
	var errs []ValidationError

	switch w.Type {
	case "", types.WindowWidget, types.WindowPanel, types.WindowOverlay, types.WindowDialog:
	default:
		errs = append(errs, InvalidFormat("window.type", "unknown window type "+string(w.Type)))
	}
	if w.Width < 0 || w.Height < 0 || w.MinWidth < 0 || w.MinHeight < 0 || w.MaxWidth < 0 || w.MaxHeight < 0 {
		errs = append(errs, InvalidFormat("window", "window dimensions must be non-negative"))
	}
	if w.MaxWidth > 0 && w.MinWidth > w.MaxWidth {
		errs = append(errs, InvalidFormat("window", "minWidth exceeds maxWidth"))
	}
	if w.MaxHeight > 0 && w.MinHeight > w.MaxHeight {
		errs = append(errs, InvalidFormat("window", "minHeight exceeds maxHeight"))
	}
	if w.Opacity < 0 || w.Opacity > 1 {
		errs = append(errs, InvalidFormat("window.opacity", "opacity must be within [0, 1]"))
	}
	return errs
}

func validatePermissions(set *types.CapabilitySet) []ValidationError {
	var errs []ValidationError

	if fs := set.Filesystem; fs != nil {
		for _, list := range [][]string{fs.Read, fs.Write, fs.Watch} {
			for _, p := range list {
				if strings.TrimSpace(p) == "" {
					errs = append(errs, InvalidFormat("permissions.filesystem", "empty path in filesystem grant"))
				}
			}
		}
	}
	if net := set.Network; net != nil {
		for _, h := range net.AllowedHosts {
			if strings.TrimSpace(h) == "" {
				errs = append(errs, InvalidFormat("permissions.network", "empty host in allowedHosts"))
			}
		}
	}
	if proc := set.Processes; proc != nil && proc.Spawn && len(proc.AllowedCommands) == 0 {
		errs = append(errs, InvalidFormat("permissions.processes", "spawn granted without allowedCommands"))
	}
	return errs
}

func validateHooks(hooks map[string]string) []ValidationError {
	var errs []ValidationError
	for name, script := range hooks {
		if script == "" {
			errs = append(errs, InvalidFormat("hooks", "hook "+name+" has an empty script path"))
			continue
		}
		if filepath.IsAbs(script) {
			errs = append(errs, InvalidFormat("hooks", "hook "+name+" must reference a relative script path"))
		}
	}
	return errs
}
