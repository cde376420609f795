// Package runtime wires storage, configuration, and the stores into a
// single injectable object with an open/close lifecycle.
package runtime
