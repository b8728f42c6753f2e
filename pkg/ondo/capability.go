package ondo

// This file defines the capability bundles the reference layer
// consumes (spec.md §4.3). Planners never call the engine directly —
// every read goes through one of these interfaces, which is the
// property that keeps Effect planning pure and testable (spec.md §9).

// DomainStoredRequests reads DomainStored records.
type DomainStoredRequests interface {
	GetDomainStored(cfName string, domainName string) (*DomainStored, error)
}

// TableStoredRequests reads TableStored records.
type TableStoredRequests interface {
	GetTableStored(cfName string, tableName string) (*TableStored, error)
}

// TableValueRequests reads rows by primary key.
type TableValueRequests interface {
	GetTableValue(cfName string, ref TableValueReference) (*Value, error)
}

// ColumnValueRequests increments a per-table auto-increment counter
// and reports back both the new value and the effects needed to
// persist it (the counter's own storage is engine-specific, so the
// capability implementation decides how to make the increment
// effect-representable; see internal/badgerstore for the Badger
// sequence-backed implementation).
type ColumnValueRequests interface {
	IncrementColumnValue(ref ColumnValueReference) (uint64, Effects, error)
}

// ValueItem is one item of a lazy value scan: either a decoded Value
// or a non-fatal per-item error (spec.md §4.3: "a decoding error on
// one key does not end the scan").
type ValueItem struct {
	Value Value
	Err   error
}

// KeyItem is one item of a lazy raw-key scan (used for index
// iteration, where the payload is an OndoKey rather than a Value).
type KeyItem struct {
	Key Key
	Err error
}

// TableStoredIteratorRequests scans a table-values CF in ascending
// encoded-key order.
type TableStoredIteratorRequests interface {
	AllValues(cfName string) (func(yield func(ValueItem) bool), error)
	AllValuesWithKeyPrefix(cfName string, keyPrefix Key) (func(yield func(ValueItem) bool), error)
	AllValuesWithKeyRange(cfName string, startKey, endKey Key) (func(yield func(ValueItem) bool), error)
}

// IndexIteratorRequests scans an index-values CF, producing raw
// OndoKey payloads (the primary key each index entry points at).
type IndexIteratorRequests interface {
	AllIndexValues(cfName string) (func(yield func(KeyItem) bool), error)
	AllIndexValuesWithKeyPrefix(cfName string, keyPrefix Key) (func(yield func(KeyItem) bool), error)
	AllIndexValuesWithKeyRange(cfName string, startKey, endKey Key) (func(yield func(KeyItem) bool), error)
}
