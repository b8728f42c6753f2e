package ondo

import "fmt"

// Code identifies the taxonomy an Error belongs to (spec §6/§7).
type Code string

const (
	// CodeNotFound means a referenced row, domain, table or index does
	// not exist where the operation requires it to.
	CodeNotFound Code = "NotFound"
	// CodeAlreadyExists means a post_* operation targeted an entity
	// that already has a stored record.
	CodeAlreadyExists Code = "AlreadyExists"
	// CodeDomainNotInitialized means a domain has no DomainStored record.
	CodeDomainNotInitialized Code = "DomainNotInitialized"
	// CodeTableNotInitialized means a table has no TableStored record.
	CodeTableNotInitialized Code = "TableNotInitialized"
	// CodeIndexNotInitialized means an index name has no entry in
	// TableStored.Indexes.
	CodeIndexNotInitialized Code = "IndexNotInitialized"
	// CodeCfNotFound means the applier or a capability was asked to
	// address a column family name it never registered.
	CodeCfNotFound Code = "CfNotFound"
	// CodeSerializationError means a key or value failed to
	// encode/decode.
	CodeSerializationError Code = "SerializationError"
	// CodeOther is the catch-all for engine and other passthrough
	// failures that do not fit the above.
	CodeOther Code = "Other"
)

// Error is the error type returned by the reference operations and the
// badger store in this module (the key codec's Encode and DecodeKey
// return plain errors; the store wraps those from Encode). It carries a taxonomy Code, a human-readable detail and
// an optional wrapped cause (an engine error, a decoding error, ...).
type Error struct {
	Code   Code
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is allows errors.Is(err, &Error{Code: CodeNotFound}) style checks by
// comparing Code alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError builds an *Error with the given code and formatted detail.
func NewError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error with the given code, detail and wrapped cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Detail: fmt.Sprintf(format, args...), Cause: cause}
}

// sentinel errors for errors.Is(err, ondo.ErrNotFound) style checks
// without constructing a detail string.
var (
	ErrNotFound             = &Error{Code: CodeNotFound}
	ErrAlreadyExists        = &Error{Code: CodeAlreadyExists}
	ErrDomainNotInitialized = &Error{Code: CodeDomainNotInitialized}
	ErrTableNotInitialized  = &Error{Code: CodeTableNotInitialized}
	ErrIndexNotInitialized  = &Error{Code: CodeIndexNotInitialized}
	ErrCfNotFound           = &Error{Code: CodeCfNotFound}
)
