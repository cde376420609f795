package logstore

import (
	"encoding/binary"
)

// Keyspace helpers for Pebble keys.
//
// Layout (byte-wise, lexicographically sortable):
//   - log/{logId}                                  (record)
//   - log/i/ts/{createAtMs_be8}/{logId}            (global chronological index)
//   - log/i/tpl/{templateId}/{createAtMs_be8}/{logId} (per-template index)
//
// Index values hold the log id so readers can load records directly. The
// trailing log id disambiguates entries created within the same millisecond;
// ids are monotonic per process, so key order equals commit order.

var (
	sep             = byte('/')
	recordPrefix    = []byte("log/")
	globalIdxPrefix = []byte("log/i/ts/")
	tplIdxPrefix    = []byte("log/i/tpl/")
)

func appendBE8(dst []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(dst, b[:]...)
}

// KeyRecord builds the log record key.
func KeyRecord(logID string) []byte {
	k := make([]byte, 0, len(recordPrefix)+len(logID))
	k = append(k, recordPrefix...)
	k = append(k, logID...)
	return k
}

// KeyGlobalIndex builds the global chronological index key.
func KeyGlobalIndex(createAtMs int64, logID string) []byte {
	k := make([]byte, 0, len(globalIdxPrefix)+9+len(logID))
	k = append(k, globalIdxPrefix...)
	k = appendBE8(k, uint64(createAtMs))
	k = append(k, sep)
	k = append(k, logID...)
	return k
}

// GlobalIndexBounds returns the [lower, upper) bounds covering the whole
// global index.
func GlobalIndexBounds() (lower, upper []byte) {
	lower = append([]byte(nil), globalIdxPrefix...)
	upper = append(append([]byte(nil), globalIdxPrefix...), 0xff)
	return lower, upper
}

// KeyTemplateIndex builds the per-template index key.
func KeyTemplateIndex(templateID string, createAtMs int64, logID string) []byte {
	k := make([]byte, 0, len(tplIdxPrefix)+len(templateID)+10+len(logID))
	k = append(k, tplIdxPrefix...)
	k = append(k, templateID...)
	k = append(k, sep)
	k = appendBE8(k, uint64(createAtMs))
	k = append(k, sep)
	k = append(k, logID...)
	return k
}

// TemplateIndexBounds returns the [lower, upper) bounds covering one
// template's index entries with createAtMs <= beforeMs.
func TemplateIndexBounds(templateID string, beforeMs int64) (lower, upper []byte) {
	lower = make([]byte, 0, len(tplIdxPrefix)+len(templateID)+1)
	lower = append(lower, tplIdxPrefix...)
	lower = append(lower, templateID...)
	lower = append(lower, sep)

	// exclusive upper at beforeMs+1 covers every entry stamped beforeMs
	upper = append([]byte(nil), lower...)
	upper = appendBE8(upper, uint64(beforeMs+1))
	return lower, upper
}
