package badgerstore

import (
	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/umuro/ondo/pkg/ondo"
)

// Store implements every ondo capability interface directly: there is
// exactly one concrete implementation in this module, so there is no
// need for the separate adapter types the teacher uses to bridge
// domain.DataSource onto SQL-specific request shapes.

func (s *Store) GetDomainStored(cfName, domainName string) (*ondo.DomainStored, error) {
	var out ondo.DomainStored
	ok, err := s.getStored(cfName, domainName, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

func (s *Store) GetTableStored(cfName, tableName string) (*ondo.TableStored, error) {
	var out ondo.TableStored
	ok, err := s.getStored(cfName, tableName, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

func (s *Store) GetDatabaseServerStored(cfName, serverName string) (*ondo.DatabaseServerStored, error) {
	var out ondo.DatabaseServerStored
	ok, err := s.getStored(cfName, serverName, &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

func (s *Store) getStored(cfName, name string, out any) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasCf(cfName) {
		return false, ondo.NewError(ondo.CodeCfNotFound, "cf %q", cfName)
	}
	payload, err := ondo.NewKey(name).Encode()
	if err != nil {
		return false, ondo.Wrap(ondo.CodeSerializationError, err, "encode name key for cf %q", cfName)
	}

	found := false
	var data []byte
	err = s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(cfKey(cfName, payload))
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})
	if err != nil {
		return false, ondo.Wrap(ondo.CodeOther, err, "read cf %q", cfName)
	}
	if !found {
		return false, nil
	}
	if err := ondo.DecodeStored(data, out); err != nil {
		return false, err
	}
	return true, nil
}

// GetTableValue implements ondo.TableValueRequests.
func (s *Store) GetTableValue(cfName string, ref ondo.TableValueReference) (*ondo.Value, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.hasCf(cfName) {
		return nil, ondo.NewError(ondo.CodeCfNotFound, "cf %q", cfName)
	}
	payload, err := ref.ID.Encode()
	if err != nil {
		return nil, ondo.Wrap(ondo.CodeSerializationError, err, "encode row key for cf %q", cfName)
	}

	found := false
	var data []byte
	err = s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(cfKey(cfName, payload))
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})
	if err != nil {
		return nil, ondo.Wrap(ondo.CodeOther, err, "read cf %q", cfName)
	}
	if !found {
		return nil, nil
	}
	v, err := ondo.DecodeValue(data)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// counterCfTableKey is the fixed Key every table's counter is stored
// under within its domain's counters CF.
func counterCfTableKey(tableName string) ondo.Key {
	return ondo.NewKey(tableName)
}

// IncrementColumnValue implements ondo.ColumnValueRequests using
// badger.Sequence, per the teacher's SequenceManager
// (pkg/resource/badger/transaction.go). The counters CF is created
// lazily on first use, since no post_domain/post_table operation ever
// emits its CreateCf (spec.md §4.4 only lists delete_domain as
// touching it).
func (s *Store) IncrementColumnValue(ref ondo.ColumnValueReference) (uint64, ondo.Effects, error) {
	cfName := ref.ColumnReference
	var effects ondo.Effects

	s.mu.Lock()
	if !s.hasCf(cfName) {
		wb := s.db.NewWriteBatch()
		if err := wb.Set(registryKey(cfName), []byte{1}); err != nil {
			wb.Cancel()
			s.mu.Unlock()
			return 0, nil, ondo.Wrap(ondo.CodeOther, err, "register cf %q", cfName)
		}
		if err := wb.Flush(); err != nil {
			s.mu.Unlock()
			return 0, nil, ondo.Wrap(ondo.CodeOther, err, "flush cf registration %q", cfName)
		}
		s.cfs[cfName] = struct{}{}
		effects = append(effects, ondo.CreateCf{CfName: cfName})
	}
	s.mu.Unlock()

	payload, err := ref.ID.Encode()
	if err != nil {
		return 0, nil, ondo.Wrap(ondo.CodeSerializationError, err, "encode counter key")
	}
	seqKey := cfKey(cfName, payload)

	s.seqMu.Lock()
	seq, ok := s.seqs[string(seqKey)]
	if !ok {
		seq, err = s.db.GetSequence(seqKey, 100)
		if err != nil {
			s.seqMu.Unlock()
			return 0, nil, ondo.Wrap(ondo.CodeOther, err, "open sequence for cf %q", cfName)
		}
		s.seqs[string(seqKey)] = seq
	}
	s.seqMu.Unlock()

	next, err := seq.Next()
	if err != nil {
		return 0, nil, ondo.Wrap(ondo.CodeOther, err, "increment sequence for cf %q", cfName)
	}
	// badger.Sequence starts at 0; the first issued value should be 1
	// (spec.md §8 scenario S6: "counter pre-value 7" yields id 8).
	return next + 1, effects, nil
}
