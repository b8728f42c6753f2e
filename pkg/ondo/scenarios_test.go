package ondo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRequests is a hand-written fake implementing every capability
// interface a reference operation needs, matching the example corpus's
// own practice of writing fakes by hand rather than reaching for a
// mocking library.
type fakeRequests struct {
	domains map[string]DomainStored
	tables  map[string]TableStored // keyed by "<tables cfName>|<table>"
	rows    map[string]Value       // keyed by "<cfName>|<encoded key>"
	servers map[string]DatabaseServerStored

	counters      map[string]uint64
	counterCfSeen map[string]bool
}

func newFakeRequests() *fakeRequests {
	return &fakeRequests{
		domains:       map[string]DomainStored{},
		tables:        map[string]TableStored{},
		rows:          map[string]Value{},
		servers:       map[string]DatabaseServerStored{},
		counters:      map[string]uint64{},
		counterCfSeen: map[string]bool{},
	}
}

func (f *fakeRequests) GetDomainStored(cfName, domainName string) (*DomainStored, error) {
	d, ok := f.domains[domainName]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (f *fakeRequests) GetTableStored(cfName, tableName string) (*TableStored, error) {
	t, ok := f.tables[cfName+"|"+tableName]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (f *fakeRequests) GetDatabaseServerStored(cfName, serverName string) (*DatabaseServerStored, error) {
	s, ok := f.servers[serverName]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func rowKey(cfName string, key Key) string {
	encoded, err := key.Encode()
	if err != nil {
		return cfName + "|<bad key>"
	}
	return cfName + "|" + string(encoded)
}

func (f *fakeRequests) GetTableValue(cfName string, ref TableValueReference) (*Value, error) {
	v, ok := f.rows[rowKey(cfName, ref.ID)]
	if !ok {
		return nil, nil
	}
	clone := make(Value, len(v))
	for k, val := range v {
		clone[k] = val
	}
	return &clone, nil
}

func (f *fakeRequests) IncrementColumnValue(ref ColumnValueReference) (uint64, Effects, error) {
	key := ref.ColumnReference + "|" + ref.ID.String()
	var effects Effects
	if !f.counterCfSeen[ref.ColumnReference] {
		f.counterCfSeen[ref.ColumnReference] = true
		effects = append(effects, CreateCf{CfName: ref.ColumnReference})
	}
	next := f.counters[key] + 1
	f.counters[key] = next
	return next, effects, nil
}

// applyToFake mimics enough of internal/badgerstore.Store.Apply to
// drive these fakes forward between planning calls, so multi-step
// scenarios (post table then post value, etc.) can be exercised
// end-to-end without depending on the real Badger-backed store.
func (f *fakeRequests) applyToFake(effects Effects) error {
	for _, e := range effects {
		switch eff := e.(type) {
		case CreateCf, DeleteCf:
			// no-op: fakeRequests does not track CF existence
		case DomainStoredPut:
			f.domains[eff.DomainName] = eff.Stored
		case DomainStoredDelete:
			delete(f.domains, eff.DomainName)
		case TableStoredPut:
			f.tables[eff.CfName+"|"+eff.TableName] = eff.Stored
		case TableStoredDelete:
			delete(f.tables, eff.CfName+"|"+eff.TableName)
		case TableValuePut:
			f.rows[rowKey(eff.CfName, eff.Key)] = eff.Value
		case TableValueDelete:
			delete(f.rows, rowKey(eff.CfName, eff.Key))
		case DatabaseServerStoredPut:
			f.servers[eff.Stored.Server.ServerName] = eff.Stored
		case DatabaseServerStoredDelete:
			delete(f.servers, eff.ServerName)
		default:
			return errors.New("applyToFake: unhandled effect type")
		}
	}
	return nil
}

func TestS1_PostBrandNewDomain(t *testing.T) {
	f := newFakeRequests()
	ref := NewDomainReference("d")

	effects, err := ref.PostDomain(Domain{Reference: ref}, f)
	require.NoError(t, err)

	require.Len(t, effects, 2)
	assert.Equal(t, CreateCf{CfName: "/domains/d/tables"}, effects[0])
	put, ok := effects[1].(DomainStoredPut)
	require.True(t, ok)
	assert.Equal(t, "/domains", put.CfName)
	assert.Equal(t, "d", put.DomainName)
	assert.Empty(t, put.Stored.Tables)
}

func TestS1_PostDomainAlreadyExists(t *testing.T) {
	f := newFakeRequests()
	ref := NewDomainReference("d")
	f.domains["d"] = DomainStored{Domain: Domain{Reference: ref}, Tables: map[string]struct{}{}}

	_, err := ref.PostDomain(Domain{Reference: ref}, f)
	require.Error(t, err)
	var oerr *Error
	require.True(t, errors.As(err, &oerr))
	assert.Equal(t, CodeAlreadyExists, oerr.Code)
}

func TestS2_PostTableWhenNoneExists(t *testing.T) {
	f := newFakeRequests()
	domainRef := NewDomainReference("d")
	f.domains["d"] = DomainStored{Domain: Domain{Reference: domainRef}, Tables: map[string]struct{}{}}

	tableRef := NewTableReference("d", "t")
	effects, err := tableRef.PostTable(Table{Reference: tableRef}, f, f)
	require.NoError(t, err)

	require.Len(t, effects, 3)
	assert.Equal(t, CreateCf{CfName: "d::/t"}, effects[0])

	domainPut, ok := effects[1].(DomainStoredPut)
	require.True(t, ok)
	assert.Equal(t, "/domains", domainPut.CfName)
	assert.Equal(t, "d", domainPut.DomainName)
	assert.Contains(t, domainPut.Stored.Tables, "t")

	tablePut, ok := effects[2].(TableStoredPut)
	require.True(t, ok)
	assert.Equal(t, "/domains/d/tables", tablePut.CfName)
	assert.Equal(t, "t", tablePut.TableName)
	assert.Empty(t, tablePut.Stored.Indexes)
}

func TestS3_PostIndex(t *testing.T) {
	f := newFakeRequests()
	tableRef := NewTableReference("d", "t")
	f.tables["/domains/d/tables|t"] = TableStored{Table: Table{Reference: tableRef}, Indexes: map[string]Index{}}

	indexRef := NewIndexReference("d", "t", "i")
	effects, err := indexRef.PostIndex(Index{Reference: indexRef, Fields: []string{"age"}}, f)
	require.NoError(t, err)

	require.Len(t, effects, 2)
	assert.Equal(t, CreateCf{CfName: "d::/t/indexes/i"}, effects[0])

	put, ok := effects[1].(TableStoredPut)
	require.True(t, ok)
	assert.Equal(t, "/domains/d/tables", put.CfName)
	assert.Equal(t, "t", put.TableName)
	require.Contains(t, put.Stored.Indexes, "i")
	assert.Equal(t, []string{"age"}, put.Stored.Indexes["i"].Fields)
}

func TestS4_PostIndexAlreadyExists(t *testing.T) {
	f := newFakeRequests()
	tableRef := NewTableReference("d", "t")
	indexRef := NewIndexReference("d", "t", "i")
	f.tables["/domains/d/tables|t"] = TableStored{
		Table:   Table{Reference: tableRef},
		Indexes: map[string]Index{"i": {Reference: indexRef, Fields: []string{"age"}}},
	}

	effects, err := indexRef.PostIndex(Index{Reference: indexRef, Fields: []string{"age"}}, f)
	require.Error(t, err)
	assert.Nil(t, effects)
	var oerr *Error
	require.True(t, errors.As(err, &oerr))
	assert.Equal(t, CodeAlreadyExists, oerr.Code)
}

func TestS5_PutValueWithOneIndex(t *testing.T) {
	f := newFakeRequests()
	tableRef := NewTableReference("d", "t")
	indexRef := NewIndexReference("d", "t", "i")
	f.tables["/domains/d/tables|t"] = TableStored{
		Table:   Table{Reference: tableRef},
		Indexes: map[string]Index{"i": {Reference: indexRef, Fields: []string{"age"}}},
	}

	id := NewKey(1.0)
	old := Value{"_id": 1.0, "name": "John", "age": 30.0}
	f.rows[rowKey("d::/t", id)] = old

	valueRef := NewTableValueReference(tableRef, id)
	newValue := Value{"name": "John", "age": 31.0}
	effects, err := valueRef.PutTableValue(newValue, f, f)
	require.NoError(t, err)
	require.Len(t, effects, 3)

	put, ok := effects[0].(TableValuePut)
	require.True(t, ok)
	assert.Equal(t, "d::/t", put.CfName)
	assert.True(t, put.Key.Equal(id))
	assert.Equal(t, 31.0, put.Value["age"])
	assert.Equal(t, 1.0, put.Value["_id"])

	del, ok := effects[1].(TableValueDelete)
	require.True(t, ok)
	assert.Equal(t, "d::/t/indexes/i", del.CfName)
	oldIndexKey, ok := buildIndexKey(old, Index{Reference: indexRef, Fields: []string{"age"}}, id)
	require.True(t, ok)
	assert.True(t, del.Key.Equal(oldIndexKey))

	reindex, ok := effects[2].(TableValuePut)
	require.True(t, ok)
	assert.Equal(t, "d::/t/indexes/i", reindex.CfName)
	newIndexKey, ok := buildIndexKey(newValue, Index{Reference: indexRef, Fields: []string{"age"}}, id)
	require.True(t, ok)
	assert.True(t, reindex.Key.Equal(newIndexKey))
}

func TestS6_PostValueWithoutID(t *testing.T) {
	f := newFakeRequests()
	tableRef := NewTableReference("d", "t")
	f.tables["/domains/d/tables|t"] = TableStored{Table: Table{Reference: tableRef}, Indexes: map[string]Index{}}
	f.counters["/domains/d/counters|"+NewKey("t").String()] = 7
	f.counterCfSeen["/domains/d/counters"] = true

	createRef := CreateTableValueReference{TableReference: tableRef}
	effects, err := createRef.PostTableValue(Value{"name": "Ada"}, f, f, f)
	require.NoError(t, err)
	require.Len(t, effects, 1)

	put, ok := effects[0].(TableValuePut)
	require.True(t, ok)
	assert.Equal(t, "d::/t", put.CfName)
	assert.True(t, put.Key.Equal(NewKey(8.0)))
	assert.Equal(t, 8.0, put.Value["_id"])
	assert.Equal(t, "Ada", put.Value["name"])
}

func TestS6_PostValueWithoutID_CounterCfNotYetCreated(t *testing.T) {
	f := newFakeRequests()
	tableRef := NewTableReference("d", "t")
	f.tables["/domains/d/tables|t"] = TableStored{Table: Table{Reference: tableRef}, Indexes: map[string]Index{}}

	createRef := CreateTableValueReference{TableReference: tableRef}
	effects, err := createRef.PostTableValue(Value{"name": "Ada"}, f, f, f)
	require.NoError(t, err)
	require.Len(t, effects, 2)

	assert.Equal(t, CreateCf{CfName: "/domains/d/counters"}, effects[0])
	put, ok := effects[1].(TableValuePut)
	require.True(t, ok)
	assert.True(t, put.Key.Equal(NewKey(1.0)))
}

func TestPostTableValueWithExplicitIDAlreadyExists(t *testing.T) {
	f := newFakeRequests()
	tableRef := NewTableReference("d", "t")
	f.tables["/domains/d/tables|t"] = TableStored{Table: Table{Reference: tableRef}, Indexes: map[string]Index{}}
	id := NewKey(5.0)
	f.rows[rowKey("d::/t", id)] = Value{"_id": 5.0}

	createRef := CreateTableValueReference{TableReference: tableRef, ID: &id}
	_, err := createRef.PostTableValue(Value{"name": "x"}, f, f, f)
	require.Error(t, err)
	var oerr *Error
	require.True(t, errors.As(err, &oerr))
	assert.Equal(t, CodeAlreadyExists, oerr.Code)
}

func TestDeleteTableCascadesToIndexes(t *testing.T) {
	f := newFakeRequests()
	domainRef := NewDomainReference("d")
	tableRef := NewTableReference("d", "t")
	indexRef := NewIndexReference("d", "t", "i")
	f.domains["d"] = DomainStored{Domain: Domain{Reference: domainRef}, Tables: map[string]struct{}{"t": {}}}
	f.tables["/domains/d/tables|t"] = TableStored{
		Table:   Table{Reference: tableRef},
		Indexes: map[string]Index{"i": {Reference: indexRef, Fields: []string{"age"}}},
	}

	effects, err := tableRef.DeleteTable(f, f)
	require.NoError(t, err)

	var sawIndexDrop, sawTableDelete, sawTableValuesDrop, sawDomainPut bool
	for _, e := range effects {
		switch eff := e.(type) {
		case DeleteCf:
			if eff.CfName == "d::/t/indexes/i" {
				sawIndexDrop = true
			}
			if eff.CfName == "d::/t" {
				sawTableValuesDrop = true
			}
		case TableStoredDelete:
			if eff.TableName == "t" {
				sawTableDelete = true
			}
		case DomainStoredPut:
			sawDomainPut = true
			assert.NotContains(t, eff.Stored.Tables, "t")
		}
	}
	assert.True(t, sawIndexDrop, "expected the index CF to be dropped")
	assert.True(t, sawTableDelete, "expected the table's stored record to be deleted")
	assert.True(t, sawTableValuesDrop, "expected the table's values CF to be dropped")
	assert.True(t, sawDomainPut, "expected the parent domain's table set updated")
}

func TestDeleteDomainCascadesToTables(t *testing.T) {
	f := newFakeRequests()
	domainRef := NewDomainReference("d")
	tableRef := NewTableReference("d", "t")
	f.domains["d"] = DomainStored{Domain: Domain{Reference: domainRef}, Tables: map[string]struct{}{"t": {}}}
	f.tables["/domains/d/tables|t"] = TableStored{Table: Table{Reference: tableRef}, Indexes: map[string]Index{}}

	effects, err := domainRef.DeleteDomain(f, f)
	require.NoError(t, err)

	last := effects[len(effects)-1]
	assert.Equal(t, DeleteCf{CfName: "/domains/d/counters"}, last)

	var sawDomainDelete bool
	for _, e := range effects {
		if del, ok := e.(DomainStoredDelete); ok && del.DomainName == "d" {
			sawDomainDelete = true
		}
	}
	assert.True(t, sawDomainDelete)
}

func TestPutIndexReindexesExistingRows(t *testing.T) {
	f := newFakeRequests()
	tableRef := NewTableReference("d", "t")
	indexRef := NewIndexReference("d", "t", "i")
	f.tables["/domains/d/tables|t"] = TableStored{
		Table:   Table{Reference: tableRef},
		Indexes: map[string]Index{"i": {Reference: indexRef, Fields: []string{"age"}}},
	}
	row1 := Value{"_id": 1.0, "age": 30.0}
	row2 := Value{"_id": 2.0, "age": 40.0}
	f.rows[rowKey("d::/t", NewKey(1.0))] = row1
	f.rows[rowKey("d::/t", NewKey(2.0))] = row2

	iter := &fakeIterator{rows: []Value{row1, row2}}
	effects, err := indexRef.PutIndex(Index{Reference: indexRef, Fields: []string{"name"}}, f, iter)
	require.NoError(t, err)

	require.True(t, len(effects) >= 3)
	assert.Equal(t, DeleteCf{CfName: "d::/t/indexes/i"}, effects[0])
	assert.Equal(t, CreateCf{CfName: "d::/t/indexes/i"}, effects[1])
	_, ok := effects[2].(TableStoredPut)
	require.True(t, ok)

	var putCount int
	for _, e := range effects[3:] {
		if _, ok := e.(TableValuePut); ok {
			putCount++
		}
	}
	assert.Equal(t, 2, putCount)
}

func TestDeleteIndexRemovesFromTableStoredAndDropsCf(t *testing.T) {
	f := newFakeRequests()
	tableRef := NewTableReference("d", "t")
	indexRef := NewIndexReference("d", "t", "i")
	f.tables["/domains/d/tables|t"] = TableStored{
		Table:   Table{Reference: tableRef},
		Indexes: map[string]Index{"i": {Reference: indexRef, Fields: []string{"age"}}},
	}

	effects, err := indexRef.DeleteIndex(f)
	require.NoError(t, err)
	require.Len(t, effects, 2)

	put, ok := effects[0].(TableStoredPut)
	require.True(t, ok)
	assert.NotContains(t, put.Stored.Indexes, "i")

	assert.Equal(t, DeleteCf{CfName: "d::/t/indexes/i"}, effects[1])
}

func TestDatabaseServerReferenceAddAndRemoveDomain(t *testing.T) {
	f := newFakeRequests()
	serverRef := DatabaseServerReference{ServerName: "default"}

	initial, err := serverRef.GetDatabaseServerStored(f)
	require.NoError(t, err)
	assert.Empty(t, initial.Domains)

	names, err := serverRef.ListDomainNames(f)
	require.NoError(t, err)
	assert.Empty(t, names)

	addEffect, err := serverRef.AddDomain(f, "d1")
	require.NoError(t, err)
	require.NoError(t, f.applyToFake(Effects{addEffect}))

	addEffect, err = serverRef.AddDomain(f, "d2")
	require.NoError(t, err)
	require.NoError(t, f.applyToFake(Effects{addEffect}))

	names, err = serverRef.ListDomainNames(f)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"d1", "d2"}, names)

	removeEffect, err := serverRef.RemoveDomain(f, "d1")
	require.NoError(t, err)
	require.NoError(t, f.applyToFake(Effects{removeEffect}))

	names, err = serverRef.ListDomainNames(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"d2"}, names)
}

// fakeIterator implements TableStoredIteratorRequests (only AllValues
// is exercised by PutIndex) over an in-memory row slice.
type fakeIterator struct {
	rows []Value
}

func (f *fakeIterator) AllValues(cfName string) (func(yield func(ValueItem) bool), error) {
	rows := f.rows
	return func(yield func(ValueItem) bool) {
		for _, r := range rows {
			if !yield(ValueItem{Value: r}) {
				return
			}
		}
	}, nil
}

func (f *fakeIterator) AllValuesWithKeyPrefix(cfName string, keyPrefix Key) (func(yield func(ValueItem) bool), error) {
	return f.AllValues(cfName)
}

func (f *fakeIterator) AllValuesWithKeyRange(cfName string, startKey, endKey Key) (func(yield func(ValueItem) bool), error) {
	return f.AllValues(cfName)
}
