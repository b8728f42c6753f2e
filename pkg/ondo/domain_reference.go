package ondo

// GetDomain returns the Domain part of DomainStored, or nil if the
// domain has no stored record.
func (r DomainReference) GetDomain(requests DomainStoredRequests) (*Domain, error) {
	stored, err := requests.GetDomainStored(cfNames.DomainsCf(), r.DomainName)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}
	d := stored.Domain
	return &d, nil
}

// PutDomain replaces the Domain part of an existing DomainStored
// record, leaving the tables set untouched. Fails with
// CodeDomainNotInitialized if the domain is absent.
func (r DomainReference) PutDomain(domain Domain, requests DomainStoredRequests) (Effects, error) {
	stored, err := requests.GetDomainStored(cfNames.DomainsCf(), r.DomainName)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, NewError(CodeDomainNotInitialized, "domain %q", r.DomainName)
	}
	next := *stored
	next.Domain = domain
	return Effects{
		DomainStoredPut{CfName: cfNames.DomainsCf(), DomainName: r.DomainName, Stored: next},
	}, nil
}

// PostDomain creates a brand-new domain: its tables CF and an empty
// DomainStored record. Fails with CodeAlreadyExists if one is already
// present. Matches spec.md §8 scenario S1 exactly.
func (r DomainReference) PostDomain(domain Domain, requests DomainStoredRequests) (Effects, error) {
	stored, err := requests.GetDomainStored(cfNames.DomainsCf(), r.DomainName)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		return nil, NewError(CodeAlreadyExists, "domain %q", r.DomainName)
	}
	return Effects{
		CreateCf{CfName: cfNames.ForDomainTables(r.DomainName)},
		DomainStoredPut{
			CfName:     cfNames.DomainsCf(),
			DomainName: r.DomainName,
			Stored:     DomainStored{Domain: domain, Tables: map[string]struct{}{}},
		},
	}, nil
}

// DeleteDomain removes a domain and cascades to every contained table
// (and, through TableReference.DeleteTable, every contained index).
// Order: each table's delete effects, then the domain's own stored
// record delete, then its tables CF and counters CF drops (spec.md
// §4.4 "Lifecycle").
func (r DomainReference) DeleteDomain(requests DomainStoredRequests, tableRequests TableStoredRequests) (Effects, error) {
	stored, err := requests.GetDomainStored(cfNames.DomainsCf(), r.DomainName)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, NewError(CodeDomainNotInitialized, "domain %q", r.DomainName)
	}

	var effects Effects
	for tableName := range stored.Tables {
		tableRef := NewTableReference(r.DomainName, tableName)
		tableEffects, err := tableRef.DeleteTable(tableRequests, requests)
		if err != nil {
			return nil, err
		}
		effects = append(effects, tableEffects...)
	}
	effects = append(effects,
		DomainStoredDelete{CfName: cfNames.DomainsCf(), DomainName: r.DomainName},
		DeleteCf{CfName: cfNames.ForDomainTables(r.DomainName)},
		DeleteCf{CfName: cfNames.ForTableCounters(r.DomainName)},
	)
	return effects, nil
}

// ListTableNames reads DomainStored.Tables.
func (r DomainReference) ListTableNames(requests DomainStoredRequests) ([]string, error) {
	stored, err := requests.GetDomainStored(cfNames.DomainsCf(), r.DomainName)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, NewError(CodeDomainNotInitialized, "domain %q", r.DomainName)
	}
	names := make([]string, 0, len(stored.Tables))
	for name := range stored.Tables {
		names = append(names, name)
	}
	return names, nil
}
