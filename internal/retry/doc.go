// Package retry runs an operation on a fixed delay until it succeeds, the
// attempt budget runs out or the context is cancelled. A zero budget retries
// forever, which is how the monitor waits for the cluster at startup; tests
// use a small budget instead.
package retry
