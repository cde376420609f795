// Package logstore implements the append-only log collection.
//
// # Overview
//
// Logs are persisted in Pebble under log/{id} with two secondary indexes
// (see keys.go): a global chronological index serving the reverse-order
// pager, and a per-template index serving "last log for template" lookups
// during revision resolution. Writes are staged on a storage transaction so
// one commit lands the record, both index entries, and the companion
// revision/history updates atomically.
//
// API surface (internal)
//
//	s := logstore.NewStore(db)
//	txn := db.BeginTxn()
//	_ = s.Append(txn, l)
//	last, ok, _ := s.FindLastByTemplate(txn, templateID, time.Now())
//	_ = txn.Commit(ctx)
package logstore
