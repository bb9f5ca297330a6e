// Package observe provides anchor.Observer implementations.
//
// # Observers
//
//   - Logger writes every engine event to a *slog.Logger at Debug level.
//   - Prometheus exports counters, a pass duration histogram and a live
//     subscription gauge.
//   - OpenTelemetry records one span per notification pass, handler panic
//     and subscription removal.
//   - Multi fans events out to several observers.
//
// # Usage
//
//	metrics := observe.Prometheus(observe.WithNamespace("myapp"))
//	engine := anchor.NewEngine(anchor.WithObserver(observe.Multi(
//	    metrics,
//	    observe.OpenTelemetry(),
//	)))
//
//	http.Handle("/metrics", promhttp.Handler())
//
// Observers run synchronously on the engine's thread and must not write to
// containers.
package observe
