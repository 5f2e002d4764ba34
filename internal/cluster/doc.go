// Package cluster owns the connection pool to a Cassandra-compatible cluster.
//
// Options describes the pool the way operators think about it: contact points,
// per-distance pool bounds, heartbeat, read timeout, credentials, reconnection
// backoff, protocol version and retry policy. NewClusterConfig maps those onto
// the gocql driver, which does all pooling, reconnection and retrying itself.
//
// Client.Connect returns a Session whose Close is idempotent and waits for any
// in-flight Exec, so the probe and the shutdown path can share it safely.
package cluster
