package badgerstore

import (
	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/umuro/ondo/pkg/ondo"
)

// Maintenance mirrors the teacher's MaintenanceManager
// (pkg/resource/badger/maintenance.go), trimmed to the operations a
// document store's admin CLI actually needs: periodic value-log GC and
// manual compaction. There is no per-table bookkeeping to carry here —
// Badger already tracks that at the engine level.
type Maintenance struct {
	store *Store
}

// NewMaintenance wraps store with maintenance operations.
func NewMaintenance(store *Store) *Maintenance {
	return &Maintenance{store: store}
}

// RunGC runs Badger's value-log garbage collection repeatedly until
// Badger reports nothing left to rewrite. An in-memory store has no
// value log, so GC there is a no-op. A discard ratio of 0.5 is
// Badger's own suggested default.
func (m *Maintenance) RunGC(discardRatio float64) error {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	for {
		err := m.store.db.RunValueLogGC(discardRatio)
		if err == badgerdb.ErrNoRewrite || err == badgerdb.ErrRejected || err == badgerdb.ErrGCInMemoryMode {
			return nil
		}
		if err != nil {
			return ondo.Wrap(ondo.CodeOther, err, "run value log gc")
		}
	}
}

// RunCompaction flattens the LSM tree.
func (m *Maintenance) RunCompaction() error {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()
	if err := m.store.db.Flatten(2); err != nil {
		return ondo.Wrap(ondo.CodeOther, err, "flatten lsm tree")
	}
	return nil
}

// Stats is a minimal snapshot of store-wide counters, trimmed from the
// teacher's DatabaseStats to what Badger exposes cheaply.
type Stats struct {
	CfCount  int
	KeyCount int64
}

// GetStats counts registered CFs and total keys.
func (m *Maintenance) GetStats() (Stats, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	stats := Stats{CfCount: len(m.store.cfs)}
	err := m.store.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			stats.KeyCount++
		}
		return nil
	})
	if err != nil {
		return Stats{}, ondo.Wrap(ondo.CodeOther, err, "count keys")
	}
	return stats, nil
}
