// Package http provides the Gin handlers for the shell's control API.
//
// The shell UI drives the host exclusively through these endpoints:
// app discovery and lifecycle, capability introspection and audit,
// window stacking and focus, privileged service calls, and bundle
// content.
//
// Endpoints:
//   - Health: / and /health
//   - Apps: /apps, /apps/scan, /apps/:id/launch, /apps/:id/reload, /apps/:id
//   - Capabilities: /capabilities/:id, /capabilities/:id/audit
//   - Windows: /windows, /windows/:id/focus, /focus, /focus/next, /focus/prev
//   - Services: /services, /services/call
//   - Bundles: /bundles/:id/*filepath
package http
