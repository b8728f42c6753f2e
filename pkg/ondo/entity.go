package ondo

// DomainReference identifies a namespace, unique within the database
// server. Reference values are cheap, cloneable addresses — they own
// nothing (spec.md §3).
type DomainReference struct {
	DomainName string
}

// NewDomainReference builds a DomainReference.
func NewDomainReference(domainName string) DomainReference {
	return DomainReference{DomainName: domainName}
}

// Domain is the entity a DomainReference addresses.
type Domain struct {
	Reference DomainReference
}

// DomainStored is the persisted metadata for a domain: the domain
// itself plus the set of table names known to exist under it.
type DomainStored struct {
	Domain Domain
	Tables map[string]struct{}
}

// TableReference is unique within a domain.
type TableReference struct {
	DomainReference DomainReference
	TableName       string
}

// NewTableReference builds a TableReference.
func NewTableReference(domainName, tableName string) TableReference {
	return TableReference{
		DomainReference: NewDomainReference(domainName),
		TableName:       tableName,
	}
}

// ToDomainReference returns the parent domain reference.
func (r TableReference) ToDomainReference() DomainReference {
	return r.DomainReference
}

// Table is the entity a TableReference addresses.
type Table struct {
	Reference TableReference
}

// IndexReference is unique within a table.
type IndexReference struct {
	TableReference TableReference
	IndexName      string
}

// NewIndexReference builds an IndexReference.
func NewIndexReference(domainName, tableName, indexName string) IndexReference {
	return IndexReference{
		TableReference: NewTableReference(domainName, tableName),
		IndexName:      indexName,
	}
}

// ToTableReference returns the parent table reference.
func (r IndexReference) ToTableReference() TableReference {
	return r.TableReference
}

// Index is a tuple of dotted field paths (in declared order) used to
// derive the prefix of each index entry's composite key.
type Index struct {
	Reference IndexReference
	Fields    []string
}

// TableStored is the authoritative list of a table's secondary
// indexes, plus the table entity itself.
type TableStored struct {
	Table   Table
	Indexes map[string]Index
}

// TableValueReference addresses a single row by its primary key.
type TableValueReference struct {
	TableReference TableReference
	ID             Key
}

// NewTableValueReference builds a TableValueReference.
func NewTableValueReference(tableRef TableReference, id Key) TableValueReference {
	return TableValueReference{TableReference: tableRef, ID: id}
}

// ToTableReference returns the parent table reference.
func (r TableValueReference) ToTableReference() TableReference {
	return r.TableReference
}

// CreateTableValueReference is like TableValueReference but the id is
// optional: when absent, PostTableValue assigns one from the table's
// auto-increment counter.
type CreateTableValueReference struct {
	TableReference TableReference
	ID             *Key
}

// ColumnValueReference addresses a per-table auto-increment counter
// stored under a well-known domain CF.
type ColumnValueReference struct {
	ColumnReference string // CF name
	ID              Key    // typically the table name as a single-part key
}
