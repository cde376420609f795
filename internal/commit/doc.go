// Package commit orchestrates log creation: revision resolution, log
// append, and input-history recording, executed as one atomic storage
// transaction. No partial state — a log without its revision, or history
// without its log — is ever observable.
package commit
