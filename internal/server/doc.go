// Package server assembles the shell host.
//
// It wires every subsystem together behind one constructor:
//   - capability registry and enforcement
//   - window registry and focus coordination
//   - app supervisor with bundle discovery
//   - provider bridge (calendar, filesystem, network, notifications,
//     clipboard, processes)
//   - Gin control API with CORS, rate limiting and metrics middleware
//   - WebSocket event stream
//
// Server Lifecycle:
//  1. Load configuration from environment
//  2. Initialize logger and metrics
//  3. Construct registries, supervisor and providers
//  4. Discover app bundles under the apps root
//  5. Serve the control API
//  6. Graceful shutdown on signal
package server
