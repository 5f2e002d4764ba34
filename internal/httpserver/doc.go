// Package httpserver runs the optional status server with validated address,
// fixed timeouts and a bounded graceful shutdown.
package httpserver
