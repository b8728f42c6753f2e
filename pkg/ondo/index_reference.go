package ondo

// GetIndex returns the Index iff its parent table carries it.
func (r IndexReference) GetIndex(requests TableStoredRequests) (*Index, error) {
	tableRef := r.TableReference
	stored, err := requests.GetTableStored(cfNames.ForDomainTables(tableRef.DomainReference.DomainName), tableRef.TableName)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, NewError(CodeTableNotInitialized, "table %q", tableRef.TableName)
	}
	idx, ok := stored.Indexes[r.IndexName]
	if !ok {
		return nil, nil
	}
	return &idx, nil
}

// PostIndex registers a brand-new, empty index on the parent table and
// creates its values CF. It does not scan existing rows — spec.md §9
// records this as a deliberate deviation from the original
// implementation, which silently skipped backfilling a newly declared
// index. Matches spec.md §8 scenario S3.
func (r IndexReference) PostIndex(index Index, requests TableStoredRequests) (Effects, error) {
	tableRef := r.TableReference
	tablesCf := cfNames.ForDomainTables(tableRef.DomainReference.DomainName)
	stored, err := requests.GetTableStored(tablesCf, tableRef.TableName)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, NewError(CodeTableNotInitialized, "table %q", tableRef.TableName)
	}
	if _, exists := stored.Indexes[r.IndexName]; exists {
		return nil, NewError(CodeAlreadyExists, "index %q", r.IndexName)
	}

	next := *stored
	nextIndexes := map[string]Index{}
	for name, idx := range stored.Indexes {
		nextIndexes[name] = idx
	}
	nextIndexes[r.IndexName] = index
	next.Indexes = nextIndexes

	return Effects{
		CreateCf{CfName: cfNames.ForIndexValues(r)},
		TableStoredPut{CfName: tablesCf, TableName: tableRef.TableName, Stored: next},
	}, nil
}

// PutIndex replaces an existing index's field list and fully rebuilds
// its entries against the current table contents: every existing entry
// under the old CF contents is superseded by a fresh index-build pass
// over all rows (spec.md §9 explicitly calls for full reindexing here,
// unlike PostIndex, precisely because changing the field list can
// change which rows a given key maps to). Not one of spec.md §8's
// worked scenarios; ordering follows spec.md §4.4's prose directly.
func (r IndexReference) PutIndex(index Index, requests TableStoredRequests, iterRequests TableStoredIteratorRequests) (Effects, error) {
	tableRef := r.TableReference
	tablesCf := cfNames.ForDomainTables(tableRef.DomainReference.DomainName)
	stored, err := requests.GetTableStored(tablesCf, tableRef.TableName)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, NewError(CodeTableNotInitialized, "table %q", tableRef.TableName)
	}
	if _, exists := stored.Indexes[r.IndexName]; !exists {
		return nil, NewError(CodeIndexNotInitialized, "index %q", r.IndexName)
	}

	next := *stored
	nextIndexes := map[string]Index{}
	for name, idx := range stored.Indexes {
		nextIndexes[name] = idx
	}
	nextIndexes[r.IndexName] = index
	next.Indexes = nextIndexes

	indexCf := cfNames.ForIndexValues(r)
	effects := Effects{
		DeleteCf{CfName: indexCf},
		CreateCf{CfName: indexCf},
		TableStoredPut{CfName: tablesCf, TableName: tableRef.TableName, Stored: next},
	}

	seq, err := iterRequests.AllValues(cfNames.ForTableValues(tableRef))
	if err != nil {
		return nil, err
	}
	for item := range seq {
		if item.Err != nil {
			return nil, item.Err
		}
		id, err := primaryKeyOfRow(item.Value)
		if err != nil {
			return nil, err
		}
		rowEffects, err := doIndexTableValue(item.Value, index, id)
		if err != nil {
			return nil, err
		}
		effects = append(effects, rowEffects...)
	}

	return effects, nil
}

// DeleteIndex drops an index's values CF and removes it from the
// parent table's stored record.
func (r IndexReference) DeleteIndex(requests TableStoredRequests) (Effects, error) {
	tableRef := r.TableReference
	tablesCf := cfNames.ForDomainTables(tableRef.DomainReference.DomainName)
	stored, err := requests.GetTableStored(tablesCf, tableRef.TableName)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, NewError(CodeTableNotInitialized, "table %q", tableRef.TableName)
	}
	if _, exists := stored.Indexes[r.IndexName]; !exists {
		return nil, NewError(CodeIndexNotInitialized, "index %q", r.IndexName)
	}

	next := *stored
	nextIndexes := map[string]Index{}
	for name, idx := range stored.Indexes {
		if name != r.IndexName {
			nextIndexes[name] = idx
		}
	}
	next.Indexes = nextIndexes

	return Effects{
		TableStoredPut{CfName: tablesCf, TableName: tableRef.TableName, Stored: next},
		DeleteCf{CfName: cfNames.ForIndexValues(r)},
	}, nil
}

// AllValuesWithKeyPrefix resolves every index entry whose key starts
// with keyPrefix to its row, surfacing a NotFound error per-item if the
// primary row the entry points at is missing (an inconsistency between
// the index and the table, not swallowed silently).
func (r IndexReference) AllValuesWithKeyPrefix(keyPrefix Key, indexIter IndexIteratorRequests, valueRequests TableValueRequests) (func(yield func(ValueItem) bool), error) {
	seq, err := indexIter.AllIndexValuesWithKeyPrefix(cfNames.ForIndexValues(r), keyPrefix)
	if err != nil {
		return nil, err
	}
	return r.resolve(seq, valueRequests), nil
}

// AllValuesWithKeyRange resolves every index entry with key in
// [startKey, endKey) to its row.
func (r IndexReference) AllValuesWithKeyRange(startKey, endKey Key, indexIter IndexIteratorRequests, valueRequests TableValueRequests) (func(yield func(ValueItem) bool), error) {
	seq, err := indexIter.AllIndexValuesWithKeyRange(cfNames.ForIndexValues(r), startKey, endKey)
	if err != nil {
		return nil, err
	}
	return r.resolve(seq, valueRequests), nil
}

func (r IndexReference) resolve(seq func(yield func(KeyItem) bool), valueRequests TableValueRequests) func(yield func(ValueItem) bool) {
	tableRef := r.TableReference
	tableCf := cfNames.ForTableValues(tableRef)
	return func(yield func(ValueItem) bool) {
		for item := range seq {
			if item.Err != nil {
				if !yield(ValueItem{Err: item.Err}) {
					return
				}
				continue
			}
			valueRef := NewTableValueReference(tableRef, item.Key)
			v, err := valueRequests.GetTableValue(tableCf, valueRef)
			if err != nil {
				if !yield(ValueItem{Err: err}) {
					return
				}
				continue
			}
			if v == nil {
				if !yield(ValueItem{Err: NewError(CodeNotFound, "index entry in %q points at missing row %v", r.IndexName, item.Key)}) {
					return
				}
				continue
			}
			if !yield(ValueItem{Value: *v}) {
				return
			}
		}
	}
}

// primaryKeyOfRow reconstructs a row's primary key from its own _id
// field, the inverse of insertKeyIntoValue.
func primaryKeyOfRow(v Value) (Key, error) {
	raw, ok := v[IDField]
	if !ok {
		return Key{}, NewError(CodeSerializationError, "row missing %q field", IDField)
	}
	if parts, ok := raw.([]any); ok {
		return Key{Parts: normalizeParts(parts)}, nil
	}
	return Key{Parts: []any{normalizePart(raw)}}, nil
}
