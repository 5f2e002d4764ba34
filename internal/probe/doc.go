// Package probe runs the liveness query against an open session on a fixed
// rate and tracks whether the cluster is answering.
package probe
