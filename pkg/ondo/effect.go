package ondo

// Effect is a single mutation intent. It is a tagged union expressed
// the idiomatic Go way as an interface implemented by small, plain
// value types — not a command-object hierarchy (spec.md §9: "keep it
// a plain tagged union").
type Effect interface {
	isEffect()
}

// Effects is an ordered sequence of effects. Order matters: the
// applier (C8) applies them in the order they appear here.
type Effects []Effect

// CreateCf requests that a column family be created.
type CreateCf struct {
	CfName string
}

func (CreateCf) isEffect() {}

// DeleteCf requests that a column family be dropped.
type DeleteCf struct {
	CfName string
}

func (DeleteCf) isEffect() {}

// TableValuePut writes a row (or an index entry, whose "row" is the
// primary key payload) into a CF at a composite key.
type TableValuePut struct {
	CfName string
	Key    Key
	Value  Value
}

func (TableValuePut) isEffect() {}

// TableValueDelete removes a row (or index entry) from a CF.
type TableValueDelete struct {
	CfName string
	Key    Key
}

func (TableValueDelete) isEffect() {}

// TableStoredPut writes the TableStored record for a table name into
// the domain's tables CF.
type TableStoredPut struct {
	CfName    string
	TableName string
	Stored    TableStored
}

func (TableStoredPut) isEffect() {}

// TableStoredDelete removes the TableStored record for a table name.
type TableStoredDelete struct {
	CfName    string
	TableName string
}

func (TableStoredDelete) isEffect() {}

// DomainStoredPut writes the DomainStored record for a domain name
// into the domains CF.
type DomainStoredPut struct {
	CfName     string
	DomainName string
	Stored     DomainStored
}

func (DomainStoredPut) isEffect() {}

// DomainStoredDelete removes the DomainStored record for a domain.
type DomainStoredDelete struct {
	CfName     string
	DomainName string
}

func (DomainStoredDelete) isEffect() {}

// DatabaseServerStoredPut writes the server-level record listing
// known domain names (SPEC_FULL.md §4.4 addition).
type DatabaseServerStoredPut struct {
	CfName string
	Stored DatabaseServerStored
}

func (DatabaseServerStoredPut) isEffect() {}

// DatabaseServerStoredDelete removes the server-level record entirely.
type DatabaseServerStoredDelete struct {
	CfName     string
	ServerName string
}

func (DatabaseServerStoredDelete) isEffect() {}
