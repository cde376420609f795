// Package pager implements the reverse-chronological log reader.
//
// # State machine
//
// A Pager moves Uninitialized -> Loading -> Ready, re-entering Loading on
// each LoadNextPage. Exhaustion is implicit: once the backward scan hits
// the start of the index, further calls idempotently return empty pages.
//
// # Bounds
//
// Progress is tracked as the full global-index key (createAtMs || logId) of
// the oldest item handed out, used as the exclusive upper bound of the next
// scan. Using whole keys instead of bare timestamps keeps same-millisecond
// logs from overlapping or being skipped across pages. Because the store is
// append-only and newest-first, concurrent commits land above the bound and
// never disturb an in-flight pagination; only the collection head changes,
// which callers handle with Reset.
//
// Filters are optional CEL expressions over content, template_id,
// revision_id, created_at_ms, values, and now_ms.
package pager
