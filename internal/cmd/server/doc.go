// Package serverrun owns the server process lifecycle: open the store,
// serve HTTP, shut down on signal.
package serverrun
