// Package monitoring provides Prometheus metrics for the mini-app host.
//
// Components:
//   - Metrics: Central metrics collector backed by its own registry
//   - Middleware: Gin middleware for HTTP request metrics
//   - Timer: Operation duration helper
//
// Metric Categories:
//   - HTTP: Request counts, durations per method/path/status
//   - Apps: Running gauge, launch/close/failure counters
//   - Capabilities: Check counts per category and outcome
//   - Windows: Focus change counter
//   - WebSocket: Active event-stream connections
//
// Example Usage:
//
//	metrics := monitoring.NewMetrics()
//	router.Use(monitoring.Middleware(metrics))
//	router.GET("/metrics", gin.WrapH(metrics.Handler()))
package monitoring
