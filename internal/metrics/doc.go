// Package metrics collects what the monitor observes: connection attempts,
// liveness query outcomes and latency, cluster availability and the monitor's
// lifecycle state.
//
// Components emit events on a buffered channel with Send, which never blocks,
// so a stalled collector cannot delay a probe tick. A single goroutine applies
// the events to an in-memory Snapshot (served as JSON) and to Prometheus
// collectors.
//
//	collector := metrics.NewCollector(256, registry, logger)
//	collector.Start(ctx)
//
//	metrics.Send(collector.EventChannel(), metrics.MetricEvent{
//		Type:     metrics.EventQueryCompleted,
//		Duration: 3 * time.Millisecond,
//		Success:  true,
//	})
//
//	snapshot := collector.Snapshot()
//
// On context cancellation the collector drains pending events before stopping.
package metrics
