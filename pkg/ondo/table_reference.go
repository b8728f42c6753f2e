package ondo

// GetTable returns the table iff a TableStored record exists.
func (r TableReference) GetTable(requests TableStoredRequests) (*Table, error) {
	stored, err := requests.GetTableStored(cfNames.ForDomainTables(r.DomainReference.DomainName), r.TableName)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}
	t := stored.Table
	return &t, nil
}

// PutTable replaces TableStored.Table, leaving Indexes intact. Fails
// with CodeTableNotInitialized if the table is absent.
func (r TableReference) PutTable(table Table, requests TableStoredRequests) (Effects, error) {
	cfName := cfNames.ForDomainTables(r.DomainReference.DomainName)
	stored, err := requests.GetTableStored(cfName, r.TableName)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, NewError(CodeTableNotInitialized, "table %q", r.TableName)
	}
	next := *stored
	next.Table = table
	return Effects{
		TableStoredPut{CfName: cfName, TableName: r.TableName, Stored: next},
	}, nil
}

// PostTable creates a new table: its values CF, an empty TableStored
// record, and registers the table name with the parent domain. Fails
// with CodeAlreadyExists if the table already exists. Matches spec.md
// §8 scenario S2.
func (r TableReference) PostTable(table Table, requests TableStoredRequests, parentRequests DomainStoredRequests) (Effects, error) {
	tablesCf := cfNames.ForDomainTables(r.DomainReference.DomainName)
	stored, err := requests.GetTableStored(tablesCf, r.TableName)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		return nil, NewError(CodeAlreadyExists, "table %q", r.TableName)
	}

	domainStored, err := parentRequests.GetDomainStored(cfNames.DomainsCf(), r.DomainReference.DomainName)
	if err != nil {
		return nil, err
	}
	if domainStored == nil {
		return nil, NewError(CodeDomainNotInitialized, "domain %q", r.DomainReference.DomainName)
	}
	nextDomain := *domainStored
	nextTables := map[string]struct{}{}
	for name := range domainStored.Tables {
		nextTables[name] = struct{}{}
	}
	nextTables[r.TableName] = struct{}{}
	nextDomain.Tables = nextTables

	newStored := TableStored{Table: table, Indexes: map[string]Index{}}

	return Effects{
		CreateCf{CfName: cfNames.ForTableValues(r)},
		DomainStoredPut{CfName: cfNames.DomainsCf(), DomainName: r.DomainReference.DomainName, Stored: nextDomain},
		TableStoredPut{CfName: tablesCf, TableName: r.TableName, Stored: newStored},
	}, nil
}

// DeleteTable removes a table, cascading to every index it carries,
// then drops its own stored record, its values CF, and removes its
// name from the parent domain's table set.
func (r TableReference) DeleteTable(requests TableStoredRequests, parentRequests DomainStoredRequests) (Effects, error) {
	tablesCf := cfNames.ForDomainTables(r.DomainReference.DomainName)
	stored, err := requests.GetTableStored(tablesCf, r.TableName)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, NewError(CodeTableNotInitialized, "table %q", r.TableName)
	}

	var effects Effects
	for indexName := range stored.Indexes {
		indexRef := NewIndexReference(r.DomainReference.DomainName, r.TableName, indexName)
		indexEffects, err := indexRef.DeleteIndex(requests)
		if err != nil {
			return nil, err
		}
		effects = append(effects, indexEffects...)
	}

	effects = append(effects,
		TableStoredDelete{CfName: tablesCf, TableName: r.TableName},
		DeleteCf{CfName: cfNames.ForTableValues(r)},
	)

	domainStored, err := parentRequests.GetDomainStored(cfNames.DomainsCf(), r.DomainReference.DomainName)
	if err != nil {
		return nil, err
	}
	if domainStored != nil {
		nextDomain := *domainStored
		nextTables := map[string]struct{}{}
		for name := range domainStored.Tables {
			if name != r.TableName {
				nextTables[name] = struct{}{}
			}
		}
		nextDomain.Tables = nextTables
		effects = append(effects, DomainStoredPut{CfName: cfNames.DomainsCf(), DomainName: r.DomainReference.DomainName, Stored: nextDomain})
	}

	return effects, nil
}

// ListIndexNames returns the keys of TableStored.Indexes.
func (r TableReference) ListIndexNames(requests TableStoredRequests) ([]string, error) {
	stored, err := requests.GetTableStored(cfNames.ForDomainTables(r.DomainReference.DomainName), r.TableName)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, NewError(CodeTableNotInitialized, "table %q", r.TableName)
	}
	names := make([]string, 0, len(stored.Indexes))
	for name := range stored.Indexes {
		names = append(names, name)
	}
	return names, nil
}

// AllValues scans every row in the table in ascending key order.
func (r TableReference) AllValues(requests TableStoredIteratorRequests) (func(yield func(ValueItem) bool), error) {
	return requests.AllValues(cfNames.ForTableValues(r))
}

// AllValuesWithKeyPrefix scans rows whose key starts with keyPrefix.
func (r TableReference) AllValuesWithKeyPrefix(keyPrefix Key, requests TableStoredIteratorRequests) (func(yield func(ValueItem) bool), error) {
	return requests.AllValuesWithKeyPrefix(cfNames.ForTableValues(r), keyPrefix)
}

// AllValuesWithKeyRange scans rows with key in [startKey, endKey).
func (r TableReference) AllValuesWithKeyRange(startKey, endKey Key, requests TableStoredIteratorRequests) (func(yield func(ValueItem) bool), error) {
	return requests.AllValuesWithKeyRange(cfNames.ForTableValues(r), startKey, endKey)
}
