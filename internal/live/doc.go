// Package live serves a playground over HTTP where browsers watch anchor
// containers change in real time.
//
// All engine access happens on a single Loop goroutine. Each WebSocket
// connection owns a Context and subscribes to every playground container
// with the connection itself as capture, so a disconnect, a dispose or the
// collector releases its subscriptions.
//
// Routes:
//
//	GET  /ws             WebSocket stream of {"name","next","current"} messages
//	GET  /state          JSON snapshot of every container
//	POST /state/{name}   set a container; the body is the new value
//	GET  /metrics        Prometheus metrics (path configurable)
//	GET  /healthz        liveness check
package live
