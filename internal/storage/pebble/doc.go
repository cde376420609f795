// Package pebblestore provides a thin wrapper around Pebble with fsync policy,
// snapshots, transactions, and minimal metrics hooks.
//
// Usage:
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir: "./data",
//	    Fsync:   pebblestore.FsyncModeAlways,
//	})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	// Atomic read/write units with read-your-writes semantics
//	txn := db.BeginTxn()
//	defer txn.Close()
//	_ = txn.Set([]byte("k"), []byte("v"))
//	_ = txn.Commit(context.Background())
//
//	// Point ops
//	_ = db.Set([]byte("k2"), []byte("v2"))
//	v, _ := db.Get([]byte("k2"))
package pebblestore
