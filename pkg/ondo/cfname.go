package ondo

import "fmt"

// CfNameMaker derives stable column-family names from references.
// Pure string construction — spec.md §4.2.
type CfNameMaker struct{}

// DomainsCf is the single CF listing every known domain's stored
// record (keyed by domain name).
func (CfNameMaker) DomainsCf() string {
	return "/domains"
}

// ForDomainTables names the CF listing a domain's tables (keyed by
// table name, values are TableStored).
func (CfNameMaker) ForDomainTables(domainName string) string {
	return fmt.Sprintf("/domains/%s/tables", domainName)
}

// ForTableCounters names the fixed per-domain CF backing
// ColumnValueReference auto-increment counters.
func (CfNameMaker) ForTableCounters(domainName string) string {
	return fmt.Sprintf("/domains/%s/counters", domainName)
}

// ForTableValues names the CF holding a table's rows.
func (CfNameMaker) ForTableValues(ref TableReference) string {
	return fmt.Sprintf("%s::/%s", ref.DomainReference.DomainName, ref.TableName)
}

// ForIndexValues names the CF holding an index's entries. The
// "/indexes/" segment precludes collisions with ForTableValues names.
func (CfNameMaker) ForIndexValues(ref IndexReference) string {
	return fmt.Sprintf("%s::/%s/indexes/%s", ref.TableReference.DomainReference.DomainName, ref.TableReference.TableName, ref.IndexName)
}

// cfNames is the package-level singleton, mirroring the teacher's
// pattern of a stateless helper struct used as a value.
var cfNames = CfNameMaker{}
