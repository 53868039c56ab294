// Package ws streams host events to shell UI clients over WebSocket.
//
// A client connects to /stream and receives every bus event as a JSON
// frame in publish order: app lifecycle, permission audit, focus
// changes, notifications and file watches. The ?app= query narrows the
// stream to one app id.
//
// Delivery follows the bus contract: a slow client loses oldest events
// first rather than stalling publishers.
//
// Example Usage:
//
//	handler := ws.NewHandler(bus, log).WithMetrics(metrics)
//	router.GET("/stream", handler.Stream)
package ws
