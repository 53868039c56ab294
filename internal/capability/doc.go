// Package capability implements the host's default-deny permission model.
//
// The Registry is the single source of truth for granted capability sets,
// keyed by app id. Every privileged operation in the host funnels through
// it: an unknown app id, an absent category, or an unset action flag all
// deny. Path and host matching live inside the registry so callers cannot
// bypass sanitization with their own preprocessing.
//
// The Enforcer is a thin per-app facade that turns registry checks into
// typed PermissionDenied failures at call sites. It holds no state beyond
// the bound app id; any number of enforcers for the same app observe
// consistent results.
//
// Denials are never silent: each one is logged, counted and published to
// the event bus for audit.
package capability
