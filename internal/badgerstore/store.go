package badgerstore

import (
	"sync"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/umuro/ondo/pkg/ondo"
)

// cfRegistryPrefix namespaces the reserved keys that record which
// column family names currently exist, so CreateCf/DeleteCf survive a
// restart without scanning the whole keyspace. Grounded on the
// teacher's PrefixTable/PrefixConfig reserved-prefix convention
// (pkg/resource/badger/types.go).
var cfRegistryPrefix = []byte{0x00, 'c', 'f', 0x00}

// cfSep separates a column family name from the OndoKey payload within
// a single Badger key. 0x1F (ASCII unit separator) cannot appear in a
// CF name built by ondo.CfNameMaker, which only ever joins printable
// identifiers with "/" and "::".
const cfSep = 0x1F

// Store is a single Badger database guarded by one RWMutex, per
// SPEC_FULL.md §4.6/§5: readers and planner-driven lookups take the
// read lock; CreateCf/DeleteCf take the write lock, since they mutate
// the CF registry shared by every other operation.
type Store struct {
	mu  sync.RWMutex
	db  *badgerdb.DB
	cfs map[string]struct{}

	seqMu sync.Mutex
	seqs  map[string]*badgerdb.Sequence
}

// Open connects to Badger per cfg and loads the column family
// registry, mirroring the teacher's BadgerDataSource.Connect.
func Open(cfg Config) (*Store, error) {
	var opts badgerdb.Options
	if cfg.InMemory {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badgerdb.DefaultOptions(cfg.DataDir)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	if cfg.ValueThreshold > 0 {
		opts = opts.WithValueThreshold(cfg.ValueThreshold)
	}
	opts = opts.WithLogger(nil)

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, ondo.Wrap(ondo.CodeOther, err, "open badger database")
	}

	s := &Store{
		db:   db,
		cfs:  make(map[string]struct{}),
		seqs: make(map[string]*badgerdb.Sequence),
	}
	if err := s.loadCfRegistry(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.bootstrapReservedCfs(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// bootstrapReservedCfs registers the two CFs every database needs
// before a single DomainReference/DatabaseServerReference operation
// can run: the domains CF itself and the server record CF. Neither is
// ever created by a post_* planner (spec.md's CreateCf effects are all
// scoped to a specific domain/table/index), so the sink bootstraps
// them once, idempotently, on open.
func (s *Store) bootstrapReservedCfs() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfNames := ondo.CfNameMaker{}
	for _, name := range []string{cfNames.DomainsCf(), cfNames.ServerCf()} {
		if s.hasCf(name) {
			continue
		}
		if err := s.db.Update(func(txn *badgerdb.Txn) error {
			return txn.Set(registryKey(name), []byte{1})
		}); err != nil {
			return ondo.Wrap(ondo.CodeOther, err, "bootstrap cf %q", name)
		}
		s.cfs[name] = struct{}{}
	}
	return nil
}

func (s *Store) loadCfRegistry() error {
	return s.db.View(func(txn *badgerdb.Txn) error {
		it := txn.NewIterator(badgerdb.IteratorOptions{Prefix: cfRegistryPrefix})
		defer it.Close()
		for it.Seek(cfRegistryPrefix); it.ValidForPrefix(cfRegistryPrefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			name := string(key[len(cfRegistryPrefix):])
			s.cfs[name] = struct{}{}
		}
		return nil
	})
}

// Close releases every sequence handle and closes the database.
func (s *Store) Close() error {
	s.seqMu.Lock()
	for _, seq := range s.seqs {
		seq.Release()
	}
	s.seqs = make(map[string]*badgerdb.Sequence)
	s.seqMu.Unlock()
	return s.db.Close()
}

// hasCf reports whether name is a registered column family. Caller
// must hold s.mu (read or write).
func (s *Store) hasCf(name string) bool {
	_, ok := s.cfs[name]
	return ok
}

// cfKey builds the flat Badger key for a value at payload within cf.
func cfKey(cf string, payload []byte) []byte {
	key := make([]byte, 0, len(cf)+1+len(payload))
	key = append(key, cf...)
	key = append(key, cfSep)
	key = append(key, payload...)
	return key
}

func cfPrefix(cf string) []byte {
	return append([]byte(cf), cfSep)
}

func registryKey(cf string) []byte {
	return append(append([]byte{}, cfRegistryPrefix...), cf...)
}
