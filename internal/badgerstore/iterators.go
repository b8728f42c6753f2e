package badgerstore

import (
	"bytes"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/umuro/ondo/pkg/ondo"
)

// AllValues, AllValuesWithKeyPrefix and AllValuesWithKeyRange implement
// ondo.TableStoredIteratorRequests as Go 1.23 range-over-func
// iterators, each backed by its own long-lived read transaction that
// is discarded when the caller stops pulling items (early break or
// natural exhaustion) — grounded on the teacher's badger.Iterator use
// in pkg/resource/badger/datasource.go, generalized to the range-over-
// func shape spec.md §4.3 asks for.

func (s *Store) AllValues(cfName string) (func(yield func(ondo.ValueItem) bool), error) {
	s.mu.RLock()
	ok := s.hasCf(cfName)
	s.mu.RUnlock()
	if !ok {
		return nil, ondo.NewError(ondo.CodeCfNotFound, "cf %q", cfName)
	}
	prefix := cfPrefix(cfName)
	return s.scanValues(prefix, nil), nil
}

func (s *Store) AllValuesWithKeyPrefix(cfName string, keyPrefix ondo.Key) (func(yield func(ondo.ValueItem) bool), error) {
	s.mu.RLock()
	ok := s.hasCf(cfName)
	s.mu.RUnlock()
	if !ok {
		return nil, ondo.NewError(ondo.CodeCfNotFound, "cf %q", cfName)
	}
	payload, err := keyPrefix.Encode()
	if err != nil {
		return nil, ondo.Wrap(ondo.CodeSerializationError, err, "encode key prefix for cf %q", cfName)
	}
	return s.scanValues(cfKey(cfName, payload), nil), nil
}

func (s *Store) AllValuesWithKeyRange(cfName string, startKey, endKey ondo.Key) (func(yield func(ondo.ValueItem) bool), error) {
	s.mu.RLock()
	ok := s.hasCf(cfName)
	s.mu.RUnlock()
	if !ok {
		return nil, ondo.NewError(ondo.CodeCfNotFound, "cf %q", cfName)
	}
	startPayload, err := startKey.Encode()
	if err != nil {
		return nil, ondo.Wrap(ondo.CodeSerializationError, err, "encode range start for cf %q", cfName)
	}
	endPayload, err := endKey.Encode()
	if err != nil {
		return nil, ondo.Wrap(ondo.CodeSerializationError, err, "encode range end for cf %q", cfName)
	}
	end := cfKey(cfName, endPayload)
	return s.scanValues(cfKey(cfName, startPayload), end), nil
}

// scanValues returns an iterator over every key with prefix seekPrefix
// (when end is nil) or, when end is non-nil, every key in
// [seekPrefix, end) that also shares seekPrefix's cf portion.
func (s *Store) scanValues(seekPrefix []byte, end []byte) func(yield func(ondo.ValueItem) bool) {
	return func(yield func(ondo.ValueItem) bool) {
		txn := s.db.NewTransaction(false)
		defer txn.Discard()

		opts := badgerdb.DefaultIteratorOptions
		if end == nil {
			opts.Prefix = seekPrefix
		}
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(seekPrefix); it.Valid(); it.Next() {
			key := it.Item().Key()
			if end != nil {
				if bytes.Compare(key, end) >= 0 {
					return
				}
			} else if !bytes.HasPrefix(key, seekPrefix) {
				return
			}

			var data []byte
			fetchErr := it.Item().Value(func(val []byte) error {
				data = append([]byte{}, val...)
				return nil
			})
			if fetchErr != nil {
				if !yield(ondo.ValueItem{Err: ondo.Wrap(ondo.CodeOther, fetchErr, "read value")}) {
					return
				}
				continue
			}
			v, decErr := ondo.DecodeValue(data)
			if decErr != nil {
				if !yield(ondo.ValueItem{Err: decErr}) {
					return
				}
				continue
			}
			if !yield(ondo.ValueItem{Value: v}) {
				return
			}
		}
	}
}

// AllIndexValues, AllIndexValuesWithKeyPrefix and
// AllIndexValuesWithKeyRange implement ondo.IndexIteratorRequests: the
// stored value at each index entry is a reserved-field Value pointing
// at the row's primary key (indexing.go), decoded back via
// ondo.DecodeIndexEntryPK.

func (s *Store) AllIndexValues(cfName string) (func(yield func(ondo.KeyItem) bool), error) {
	s.mu.RLock()
	ok := s.hasCf(cfName)
	s.mu.RUnlock()
	if !ok {
		return nil, ondo.NewError(ondo.CodeCfNotFound, "cf %q", cfName)
	}
	return s.scanIndexKeys(cfPrefix(cfName), nil), nil
}

func (s *Store) AllIndexValuesWithKeyPrefix(cfName string, keyPrefix ondo.Key) (func(yield func(ondo.KeyItem) bool), error) {
	s.mu.RLock()
	ok := s.hasCf(cfName)
	s.mu.RUnlock()
	if !ok {
		return nil, ondo.NewError(ondo.CodeCfNotFound, "cf %q", cfName)
	}
	payload, err := keyPrefix.Encode()
	if err != nil {
		return nil, ondo.Wrap(ondo.CodeSerializationError, err, "encode key prefix for cf %q", cfName)
	}
	return s.scanIndexKeys(cfKey(cfName, payload), nil), nil
}

func (s *Store) AllIndexValuesWithKeyRange(cfName string, startKey, endKey ondo.Key) (func(yield func(ondo.KeyItem) bool), error) {
	s.mu.RLock()
	ok := s.hasCf(cfName)
	s.mu.RUnlock()
	if !ok {
		return nil, ondo.NewError(ondo.CodeCfNotFound, "cf %q", cfName)
	}
	startPayload, err := startKey.Encode()
	if err != nil {
		return nil, ondo.Wrap(ondo.CodeSerializationError, err, "encode range start for cf %q", cfName)
	}
	endPayload, err := endKey.Encode()
	if err != nil {
		return nil, ondo.Wrap(ondo.CodeSerializationError, err, "encode range end for cf %q", cfName)
	}
	return s.scanIndexKeys(cfKey(cfName, startPayload), cfKey(cfName, endPayload)), nil
}

func (s *Store) scanIndexKeys(seekPrefix []byte, end []byte) func(yield func(ondo.KeyItem) bool) {
	return func(yield func(ondo.KeyItem) bool) {
		txn := s.db.NewTransaction(false)
		defer txn.Discard()

		opts := badgerdb.DefaultIteratorOptions
		if end == nil {
			opts.Prefix = seekPrefix
		}
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(seekPrefix); it.Valid(); it.Next() {
			key := it.Item().Key()
			if end != nil {
				if bytes.Compare(key, end) >= 0 {
					return
				}
			} else if !bytes.HasPrefix(key, seekPrefix) {
				return
			}

			var data []byte
			fetchErr := it.Item().Value(func(val []byte) error {
				data = append([]byte{}, val...)
				return nil
			})
			if fetchErr != nil {
				if !yield(ondo.KeyItem{Err: ondo.Wrap(ondo.CodeOther, fetchErr, "read index entry")}) {
					return
				}
				continue
			}
			v, decErr := ondo.DecodeValue(data)
			if decErr != nil {
				if !yield(ondo.KeyItem{Err: decErr}) {
					return
				}
				continue
			}
			pk, pkErr := ondo.DecodeIndexEntryPK(v)
			if pkErr != nil {
				if !yield(ondo.KeyItem{Err: pkErr}) {
					return
				}
				continue
			}
			if !yield(ondo.KeyItem{Key: pk}) {
				return
			}
		}
	}
}
