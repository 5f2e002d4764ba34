// Package monitor drives the liveness monitor through its lifecycle:
//
//	NOT_CONNECTED → CONNECTING → CONNECTED → SCHEDULING → RUNNING → SHUTTING_DOWN → CLOSED
//
// Start blocks while connecting, retrying on the configured policy, then arms
// the probe on its own goroutine. Shutdown may be called at any time, from any
// goroutine and any number of times; it stops the probe, waits for an
// in-flight query and closes the session once.
package monitor
