package badgerstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umuro/ondo/pkg/ondo"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := Config{InMemory: true}
	s, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenBootstrapsReservedCfs(t *testing.T) {
	s := newTestStore(t)
	cfNames := ondo.CfNameMaker{}
	assert.True(t, s.hasCf(cfNames.DomainsCf()))
	assert.True(t, s.hasCf(cfNames.ServerCf()))
}

func TestApplyCreateAndDeleteCf(t *testing.T) {
	s := newTestStore(t)
	const cf = "d::/t"

	require.NoError(t, s.Apply(ondo.Effects{ondo.CreateCf{CfName: cf}}))
	assert.True(t, s.hasCf(cf))

	_, err := s.GetTableValue(cf, ondo.NewTableValueReference(ondo.NewTableReference("d", "t"), ondo.NewKey(1.0)))
	require.NoError(t, err)

	require.NoError(t, s.Apply(ondo.Effects{ondo.DeleteCf{CfName: cf}}))
	assert.False(t, s.hasCf(cf))

	_, err = s.GetTableValue(cf, ondo.NewTableValueReference(ondo.NewTableReference("d", "t"), ondo.NewKey(1.0)))
	require.Error(t, err)
	var oerr *ondo.Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, ondo.CodeCfNotFound, oerr.Code)
}

func TestApplyPutAndGetTableValue(t *testing.T) {
	s := newTestStore(t)
	const cf = "d::/t"
	require.NoError(t, s.Apply(ondo.Effects{ondo.CreateCf{CfName: cf}}))

	key := ondo.NewKey(1.0)
	value := ondo.Value{"_id": 1.0, "name": "Ada"}
	require.NoError(t, s.Apply(ondo.Effects{ondo.TableValuePut{CfName: cf, Key: key, Value: value}}))

	ref := ondo.NewTableValueReference(ondo.NewTableReference("d", "t"), key)
	got, err := s.GetTableValue(cf, ref)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ada", (*got)["name"])

	require.NoError(t, s.Apply(ondo.Effects{ondo.TableValueDelete{CfName: cf, Key: key}}))
	got, err = s.GetTableValue(cf, ref)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestApplyDomainAndTableStoredRoundTrip(t *testing.T) {
	s := newTestStore(t)
	cfNames := ondo.CfNameMaker{}
	domainRef := ondo.NewDomainReference("d")

	effects, err := domainRef.PostDomain(ondo.Domain{Reference: domainRef}, s)
	require.NoError(t, err)
	require.NoError(t, s.Apply(effects))

	got, err := domainRef.GetDomain(s)
	require.NoError(t, err)
	require.NotNil(t, got)

	tableRef := ondo.NewTableReference("d", "t")
	tableEffects, err := tableRef.PostTable(ondo.Table{Reference: tableRef}, s, s)
	require.NoError(t, err)
	require.NoError(t, s.Apply(tableEffects))

	table, err := tableRef.GetTable(s)
	require.NoError(t, err)
	require.NotNil(t, table)

	names, err := domainRef.ListTableNames(s)
	require.NoError(t, err)
	assert.Contains(t, names, "t")

	_, err = s.GetTableStored(cfNames.ForDomainTables("d"), "nonexistent")
	require.NoError(t, err)
}

func TestIncrementColumnValueLazilyCreatesCf(t *testing.T) {
	s := newTestStore(t)
	ref := ondo.ColumnValueReference{ColumnReference: "/domains/d/counters", ID: ondo.NewKey("t")}

	first, effects, err := s.IncrementColumnValue(ref)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first)
	require.Len(t, effects, 1)
	assert.Equal(t, ondo.CreateCf{CfName: "/domains/d/counters"}, effects[0])

	second, effects2, err := s.IncrementColumnValue(ref)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second)
	assert.Empty(t, effects2)
}

func TestAllValuesScansInKeyOrder(t *testing.T) {
	s := newTestStore(t)
	const cf = "d::/t"
	require.NoError(t, s.Apply(ondo.Effects{ondo.CreateCf{CfName: cf}}))

	for _, id := range []float64{3, 1, 2} {
		key := ondo.NewKey(id)
		v := ondo.Value{"_id": id}
		require.NoError(t, s.Apply(ondo.Effects{ondo.TableValuePut{CfName: cf, Key: key, Value: v}}))
	}

	tableRef := ondo.NewTableReference("d", "t")
	seq, err := tableRef.AllValues(s)
	require.NoError(t, err)

	var ids []float64
	for item := range seq {
		require.NoError(t, item.Err)
		ids = append(ids, item.Value["_id"].(float64))
	}
	assert.Equal(t, []float64{1, 2, 3}, ids)
}

func TestAllValuesWithKeyPrefixScopesToTable(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Apply(ondo.Effects{
		ondo.CreateCf{CfName: "d::/t1"},
		ondo.CreateCf{CfName: "d::/t2"},
	}))
	require.NoError(t, s.Apply(ondo.Effects{
		ondo.TableValuePut{CfName: "d::/t1", Key: ondo.NewKey(1.0), Value: ondo.Value{"_id": 1.0, "table": "t1"}},
		ondo.TableValuePut{CfName: "d::/t2", Key: ondo.NewKey(1.0), Value: ondo.Value{"_id": 1.0, "table": "t2"}},
	}))

	tableRef := ondo.NewTableReference("d", "t1")
	seq, err := tableRef.AllValuesWithKeyPrefix(ondo.NewKey(1.0), s)
	require.NoError(t, err)

	var rows []ondo.Value
	for item := range seq {
		require.NoError(t, item.Err)
		rows = append(rows, item.Value)
	}
	require.Len(t, rows, 1)
	assert.Equal(t, "t1", rows[0]["table"])
}

func TestIndexLifecycleThroughStore(t *testing.T) {
	s := newTestStore(t)
	domainRef := ondo.NewDomainReference("d")
	effects, err := domainRef.PostDomain(ondo.Domain{Reference: domainRef}, s)
	require.NoError(t, err)
	require.NoError(t, s.Apply(effects))

	tableRef := ondo.NewTableReference("d", "t")
	effects, err = tableRef.PostTable(ondo.Table{Reference: tableRef}, s, s)
	require.NoError(t, err)
	require.NoError(t, s.Apply(effects))

	indexRef := ondo.NewIndexReference("d", "t", "by_age")
	effects, err = indexRef.PostIndex(ondo.Index{Reference: indexRef, Fields: []string{"age"}}, s)
	require.NoError(t, err)
	require.NoError(t, s.Apply(effects))

	createRef := ondo.CreateTableValueReference{TableReference: tableRef}
	effects, err = createRef.PostTableValue(ondo.Value{"name": "Ada", "age": 30.0}, s, s, s)
	require.NoError(t, err)
	require.NoError(t, s.Apply(effects))

	effects, err = createRef.PostTableValue(ondo.Value{"name": "Bob", "age": 31.0}, s, s, s)
	require.NoError(t, err)
	require.NoError(t, s.Apply(effects))

	found, err := indexRef.AllValuesWithKeyPrefix(ondo.NewKey(31.0), s, s)
	require.NoError(t, err)
	var names []string
	for item := range found {
		require.NoError(t, item.Err)
		names = append(names, item.Value["name"].(string))
	}
	assert.Equal(t, []string{"Bob"}, names)

	effects, err = indexRef.DeleteIndex(s)
	require.NoError(t, err)
	require.NoError(t, s.Apply(effects))

	_, err = indexRef.GetIndex(s)
	require.NoError(t, err)
}

func TestDatabaseServerBookkeepingThroughStore(t *testing.T) {
	s := newTestStore(t)
	serverRef := ondo.DatabaseServerReference{ServerName: "default"}
	domainRef := ondo.NewDomainReference("d")

	effects, err := domainRef.PostDomain(ondo.Domain{Reference: domainRef}, s)
	require.NoError(t, err)
	require.NoError(t, s.Apply(effects))

	addEffect, err := serverRef.AddDomain(s, "d")
	require.NoError(t, err)
	require.NoError(t, s.Apply(ondo.Effects{addEffect}))

	names, err := serverRef.ListDomainNames(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, names)

	removeEffect, err := serverRef.RemoveDomain(s, "d")
	require.NoError(t, err)
	require.NoError(t, s.Apply(ondo.Effects{removeEffect}))

	names, err = serverRef.ListDomainNames(s)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestDeleteDomainCascadeThroughStore(t *testing.T) {
	s := newTestStore(t)
	domainRef := ondo.NewDomainReference("d")
	effects, err := domainRef.PostDomain(ondo.Domain{Reference: domainRef}, s)
	require.NoError(t, err)
	require.NoError(t, s.Apply(effects))

	tableRef := ondo.NewTableReference("d", "t")
	effects, err = tableRef.PostTable(ondo.Table{Reference: tableRef}, s, s)
	require.NoError(t, err)
	require.NoError(t, s.Apply(effects))

	effects, err = domainRef.DeleteDomain(s, s)
	require.NoError(t, err)
	require.NoError(t, s.Apply(effects))

	got, err := domainRef.GetDomain(s)
	require.NoError(t, err)
	assert.Nil(t, got)

	cfNames := ondo.CfNameMaker{}
	assert.False(t, s.hasCf(cfNames.ForDomainTables("d")))
	assert.False(t, s.hasCf(cfNames.ForTableCounters("d")))
}
