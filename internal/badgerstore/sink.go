package badgerstore

import (
	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/umuro/ondo/pkg/ondo"
)

// Apply is the C8 sink: it takes the ordered Effects a reference
// operation planned and makes them durable. Planners never call this
// themselves — only the outermost caller (typically cmd/ondo) does,
// after a planning call has returned successfully.
//
// CreateCf/DeleteCf effects mutate the shared CF registry, so their
// presence in the batch upgrades the whole Apply call to the write
// lock; a batch with only value/stored-record effects only needs the
// read lock, since it touches Badger's keyspace but not the registry
// (spec.md §4.7 concurrency model, grounded on the teacher's
// BadgerDataSource.mu usage in pkg/resource/badger/datasource.go).
func (s *Store) Apply(effects ondo.Effects) error {
	needsWrite := false
	for _, e := range effects {
		switch e.(type) {
		case ondo.CreateCf, ondo.DeleteCf:
			needsWrite = true
		}
	}

	if needsWrite {
		s.mu.Lock()
		defer s.mu.Unlock()
	} else {
		s.mu.RLock()
		defer s.mu.RUnlock()
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, e := range effects {
		if err := s.applyOne(wb, e); err != nil {
			return err
		}
	}

	if err := wb.Flush(); err != nil {
		return ondo.Wrap(ondo.CodeOther, err, "flush write batch")
	}
	return nil
}

func (s *Store) applyOne(wb *badgerdb.WriteBatch, e ondo.Effect) error {
	switch eff := e.(type) {
	case ondo.CreateCf:
		return s.createCf(wb, eff.CfName)
	case ondo.DeleteCf:
		return s.deleteCf(eff.CfName)
	case ondo.TableValuePut:
		return s.putValue(wb, eff.CfName, eff.Key, eff.Value)
	case ondo.TableValueDelete:
		return s.deleteValue(wb, eff.CfName, eff.Key)
	case ondo.TableStoredPut:
		return s.putStored(wb, eff.CfName, eff.TableName, eff.Stored)
	case ondo.TableStoredDelete:
		return s.deleteStored(wb, eff.CfName, eff.TableName)
	case ondo.DomainStoredPut:
		return s.putStored(wb, eff.CfName, eff.DomainName, eff.Stored)
	case ondo.DomainStoredDelete:
		return s.deleteStored(wb, eff.CfName, eff.DomainName)
	case ondo.DatabaseServerStoredPut:
		return s.putStored(wb, eff.CfName, eff.Stored.Server.ServerName, eff.Stored)
	case ondo.DatabaseServerStoredDelete:
		return s.deleteStored(wb, eff.CfName, eff.ServerName)
	default:
		return ondo.NewError(ondo.CodeOther, "unknown effect type %T", e)
	}
}

// createCf registers a column family. Re-creating an already
// registered name is a no-op: the planners that emit CreateCf already
// guard against double-creation at the entity level, so a collision
// here would only ever indicate a registry that is out of sync with
// what the planner observed.
func (s *Store) createCf(wb *badgerdb.WriteBatch, name string) error {
	if s.hasCf(name) {
		return nil
	}
	if err := wb.Set(registryKey(name), []byte{1}); err != nil {
		return ondo.Wrap(ondo.CodeOther, err, "register cf %q", name)
	}
	s.cfs[name] = struct{}{}
	return nil
}

// deleteCf drops a column family's registry entry and every key
// stored under its prefix. Run as its own transaction (rather than
// folded into the caller's WriteBatch) since it must enumerate keys
// before deleting them.
func (s *Store) deleteCf(name string) error {
	if !s.hasCf(name) {
		return ondo.NewError(ondo.CodeCfNotFound, "cf %q", name)
	}
	prefix := cfPrefix(name)
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		it := txn.NewIterator(badgerdb.IteratorOptions{Prefix: prefix})
		defer it.Close()
		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return err
			}
		}
		return txn.Delete(registryKey(name))
	})
	if err != nil {
		return ondo.Wrap(ondo.CodeOther, err, "delete cf %q", name)
	}
	delete(s.cfs, name)
	return nil
}

func (s *Store) putValue(wb *badgerdb.WriteBatch, cf string, key ondo.Key, value ondo.Value) error {
	if !s.hasCf(cf) {
		return ondo.NewError(ondo.CodeCfNotFound, "cf %q", cf)
	}
	payload, err := key.Encode()
	if err != nil {
		return ondo.Wrap(ondo.CodeSerializationError, err, "encode key for cf %q", cf)
	}
	data, err := ondo.EncodeValue(value)
	if err != nil {
		return err
	}
	if err := wb.Set(cfKey(cf, payload), data); err != nil {
		return ondo.Wrap(ondo.CodeOther, err, "put value in cf %q", cf)
	}
	return nil
}

func (s *Store) deleteValue(wb *badgerdb.WriteBatch, cf string, key ondo.Key) error {
	if !s.hasCf(cf) {
		return ondo.NewError(ondo.CodeCfNotFound, "cf %q", cf)
	}
	payload, err := key.Encode()
	if err != nil {
		return ondo.Wrap(ondo.CodeSerializationError, err, "encode key for cf %q", cf)
	}
	if err := wb.Delete(cfKey(cf, payload)); err != nil {
		return ondo.Wrap(ondo.CodeOther, err, "delete value in cf %q", cf)
	}
	return nil
}

// putStored and deleteStored back every *StoredPut/*StoredDelete
// effect: the record is keyed by a single-part string Key built from
// its name (table name, domain name, or server name).
func (s *Store) putStored(wb *badgerdb.WriteBatch, cf string, name string, stored any) error {
	if !s.hasCf(cf) {
		return ondo.NewError(ondo.CodeCfNotFound, "cf %q", cf)
	}
	payload, err := ondo.NewKey(name).Encode()
	if err != nil {
		return ondo.Wrap(ondo.CodeSerializationError, err, "encode name key for cf %q", cf)
	}
	data, err := ondo.EncodeStored(stored)
	if err != nil {
		return err
	}
	if err := wb.Set(cfKey(cf, payload), data); err != nil {
		return ondo.Wrap(ondo.CodeOther, err, "put stored record in cf %q", cf)
	}
	return nil
}

func (s *Store) deleteStored(wb *badgerdb.WriteBatch, cf string, name string) error {
	if !s.hasCf(cf) {
		return ondo.NewError(ondo.CodeCfNotFound, "cf %q", cf)
	}
	payload, err := ondo.NewKey(name).Encode()
	if err != nil {
		return ondo.Wrap(ondo.CodeSerializationError, err, "encode name key for cf %q", cf)
	}
	if err := wb.Delete(cfKey(cf, payload)); err != nil {
		return ondo.Wrap(ondo.CodeOther, err, "delete stored record in cf %q", cf)
	}
	return nil
}
