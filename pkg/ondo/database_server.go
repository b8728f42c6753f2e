package ondo

// DatabaseServerReference addresses the single server-level record
// that lists every known domain name. SPEC_FULL.md §4.4: this closes
// the loop implied by DatabaseServerStoredEffect in spec.md §3, which
// the distilled spec declares but never wires to an operation.
type DatabaseServerReference struct {
	ServerName string
}

// DatabaseServerStored is the persisted list of domain names known to
// the server.
type DatabaseServerStored struct {
	Server  DatabaseServerReference
	Domains map[string]struct{}
}

// DatabaseServerStoredRequests is the read capability backing
// DatabaseServerReference operations.
type DatabaseServerStoredRequests interface {
	GetDatabaseServerStored(cfName string, serverName string) (*DatabaseServerStored, error)
}

// ServerCf names the single CF holding the DatabaseServerStored
// record, keyed by server name (there is normally exactly one row).
func (CfNameMaker) ServerCf() string {
	return "/server"
}

// GetDatabaseServerStored returns the server record, or a zero-value
// record with an empty Domains set if none has been written yet.
func (r DatabaseServerReference) GetDatabaseServerStored(requests DatabaseServerStoredRequests) (DatabaseServerStored, error) {
	stored, err := requests.GetDatabaseServerStored(cfNames.ServerCf(), r.ServerName)
	if err != nil {
		return DatabaseServerStored{}, err
	}
	if stored == nil {
		return DatabaseServerStored{Server: r, Domains: map[string]struct{}{}}, nil
	}
	return *stored, nil
}

// ListDomainNames returns every domain name known to the server.
func (r DatabaseServerReference) ListDomainNames(requests DatabaseServerStoredRequests) ([]string, error) {
	stored, err := r.GetDatabaseServerStored(requests)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(stored.Domains))
	for name := range stored.Domains {
		names = append(names, name)
	}
	return names, nil
}

// AddDomain returns the effect that records domainName as known to the
// server, building on whatever the server record currently is. Planned
// and applied as its own step, separate from DomainReference.PostDomain
// (see SPEC_FULL.md §4.4) — callers that want both updated together
// plan both and apply both effect lists, e.g. cmd/ondo's "domain
// create" does this right after PostDomain succeeds.
func (r DatabaseServerReference) AddDomain(requests DatabaseServerStoredRequests, domainName string) (Effect, error) {
	stored, err := r.GetDatabaseServerStored(requests)
	if err != nil {
		return nil, err
	}
	next := DatabaseServerStored{Server: r, Domains: map[string]struct{}{}}
	for name := range stored.Domains {
		next.Domains[name] = struct{}{}
	}
	next.Domains[domainName] = struct{}{}
	return DatabaseServerStoredPut{CfName: cfNames.ServerCf(), Stored: next}, nil
}

// RemoveDomain is AddDomain's inverse, planned the same way alongside
// DomainReference.DeleteDomain.
func (r DatabaseServerReference) RemoveDomain(requests DatabaseServerStoredRequests, domainName string) (Effect, error) {
	stored, err := r.GetDatabaseServerStored(requests)
	if err != nil {
		return nil, err
	}
	next := DatabaseServerStored{Server: r, Domains: map[string]struct{}{}}
	for name := range stored.Domains {
		if name != domainName {
			next.Domains[name] = struct{}{}
		}
	}
	return DatabaseServerStoredPut{CfName: cfNames.ServerCf(), Stored: next}, nil
}
