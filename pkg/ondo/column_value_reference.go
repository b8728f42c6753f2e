package ondo

// IncrementColumnValue is a thin convenience wrapper that forwards to
// the capability and returns the next counter value plus its persist
// effects (PostTableValue calls the capability directly). Kept as a method on
// the reference type for symmetry with the rest of C6, even though the
// real work happens in the capability implementation (spec.md §4.6:
// the counter's storage is engine-specific).
func (ref ColumnValueReference) IncrementColumnValue(requests ColumnValueRequests) (uint64, Effects, error) {
	return requests.IncrementColumnValue(ref)
}
