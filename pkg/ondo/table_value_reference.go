package ondo

// GetTableValue returns the row at ref's primary key, or nil if absent.
func (r TableValueReference) GetTableValue(requests TableValueRequests) (*Value, error) {
	cfName := cfNames.ForTableValues(r.TableReference)
	return requests.GetTableValue(cfName, r)
}

// PutTableValue replaces an existing row, re-deriving every secondary
// index entry: deindex the old value under each declared index, then
// index the new one. Fails with CodeNotFound if the row does not
// already exist. Matches spec.md §8 scenario S5.
func (r TableValueReference) PutTableValue(value Value, requests TableValueRequests, tableRequests TableStoredRequests) (Effects, error) {
	tableRef := r.TableReference
	cfName := cfNames.ForTableValues(tableRef)

	old, err := requests.GetTableValue(cfName, r)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, NewError(CodeNotFound, "row %v", r.ID)
	}

	stored, err := tableRequests.GetTableStored(cfNames.ForDomainTables(tableRef.DomainReference.DomainName), tableRef.TableName)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, NewError(CodeTableNotInitialized, "table %q", tableRef.TableName)
	}

	insertKeyIntoValue(value, r.ID)

	// Order matches spec.md §8 scenario S5 and
	// original_source/src/db/reference/table_value_reference.rs's
	// do_deindexing/do_indexing split: the row itself is put first, then
	// every index's old entry is removed, then every index's new entry
	// is added — grouped by phase rather than interleaved per index.
	effects := Effects{TableValuePut{CfName: cfName, Key: r.ID, Value: value}}

	for _, index := range stored.Indexes {
		deindexEffects, err := doDeindexTableValue(*old, index, r.ID)
		if err != nil {
			return nil, err
		}
		effects = append(effects, deindexEffects...)
	}

	for _, index := range stored.Indexes {
		indexEffects, err := doIndexTableValue(value, index, r.ID)
		if err != nil {
			return nil, err
		}
		effects = append(effects, indexEffects...)
	}

	return effects, nil
}

// DeleteTableValue removes a row and its entry in every declared
// index. Fails with CodeNotFound if the row does not exist.
func (r TableValueReference) DeleteTableValue(requests TableValueRequests, tableRequests TableStoredRequests) (Effects, error) {
	tableRef := r.TableReference
	cfName := cfNames.ForTableValues(tableRef)

	old, err := requests.GetTableValue(cfName, r)
	if err != nil {
		return nil, err
	}
	if old == nil {
		return nil, NewError(CodeNotFound, "row %v", r.ID)
	}

	stored, err := tableRequests.GetTableStored(cfNames.ForDomainTables(tableRef.DomainReference.DomainName), tableRef.TableName)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, NewError(CodeTableNotInitialized, "table %q", tableRef.TableName)
	}

	effects := Effects{TableValueDelete{CfName: cfName, Key: r.ID}}
	for _, index := range stored.Indexes {
		deindexEffects, err := doDeindexTableValue(*old, index, r.ID)
		if err != nil {
			return nil, err
		}
		effects = append(effects, deindexEffects...)
	}
	return effects, nil
}

// PostTableValue inserts a brand-new row. If ID is nil, a primary key
// is assigned from the table's auto-increment counter (spec.md §4.6);
// otherwise the caller-supplied key is used as-is and must not already
// exist. Matches spec.md §8 scenario S6.
func (r CreateTableValueReference) PostTableValue(value Value, requests TableValueRequests, tableRequests TableStoredRequests, columnRequests ColumnValueRequests) (Effects, error) {
	tableRef := r.TableReference
	cfName := cfNames.ForTableValues(tableRef)

	stored, err := tableRequests.GetTableStored(cfNames.ForDomainTables(tableRef.DomainReference.DomainName), tableRef.TableName)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, NewError(CodeTableNotInitialized, "table %q", tableRef.TableName)
	}

	var id Key
	var effects Effects

	if r.ID != nil {
		id = *r.ID
		existing, err := requests.GetTableValue(cfName, NewTableValueReference(tableRef, id))
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, NewError(CodeAlreadyExists, "row %v", id)
		}
	} else {
		counterRef := ColumnValueReference{
			ColumnReference: cfNames.ForTableCounters(tableRef.DomainReference.DomainName),
			ID:              NewKey(tableRef.TableName),
		}
		next, counterEffects, err := columnRequests.IncrementColumnValue(counterRef)
		if err != nil {
			return nil, err
		}
		id = NewKey(float64(next))
		effects = append(effects, counterEffects...)
	}

	insertKeyIntoValue(value, id)
	effects = append(effects, TableValuePut{CfName: cfName, Key: id, Value: value})

	for _, index := range stored.Indexes {
		indexEffects, err := doIndexTableValue(value, index, id)
		if err != nil {
			return nil, err
		}
		effects = append(effects, indexEffects...)
	}

	return effects, nil
}
