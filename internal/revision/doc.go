// Package revision persists immutable template snapshots and resolves which
// snapshot a new log should reference.
//
// A revision is created lazily: the first commit against a template snaps
// it, and later commits reuse that snapshot until the template's content
// hash changes. Superseded revisions are never touched — every historical
// log keeps resolving to the exact definition it was written against. A log
// found referencing a missing revision is repaired in place by snapping a
// replacement; the condition is logged as a warning and never surfaces to
// the committer.
package revision
