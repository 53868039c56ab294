// Package manifest parses and validates mini-app manifests.
//
// Parsing is a pure function over raw bytes: it produces a structured
// AppDescriptor plus every violation found, without touching the
// filesystem. Validation is fail-soft — all violations are collected in
// one pass — but a result is only valid when every required field
// (version, name, entrypoint) is present and well-formed.
//
// Manifests are JSON by convention (manifest.json); a YAML form
// (manifest.yaml) is accepted for hand-authored bundles. JSON wins when
// a bundle ships both.
package manifest
