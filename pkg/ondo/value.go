package ondo

import (
	"github.com/vmihailenco/msgpack/v5"
)

// Value is a JSON-shaped document tree: a table row, nested object
// fields, arrays and scalars are all represented as plain Go values
// (map[string]any, []any, string, float64, bool, nil).
type Value = map[string]any

// IDField is the reserved primary-key field written into every row on
// post and put, whether its id was auto-incremented or supplied by the
// caller (spec.md §6).
const IDField = "_id"

// EncodeValue serializes a Value to MessagePack bytes.
func EncodeValue(v Value) ([]byte, error) {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return nil, Wrap(CodeSerializationError, err, "encode value")
	}
	return b, nil
}

// DecodeValue deserializes MessagePack bytes produced by EncodeValue.
func DecodeValue(data []byte) (Value, error) {
	var v Value
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, Wrap(CodeSerializationError, err, "decode value")
	}
	return v, nil
}

// EncodeStored and DecodeStored serialize the stored metadata records
// (DomainStored, TableStored, DatabaseServerStored) with the same
// codec used for values, per spec.md §6 ("Keys and stored metadata
// use the same codec"). Exported so the sink package can (de)serialize
// these records without duplicating the codec choice.
func EncodeStored(v any) ([]byte, error) {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return nil, Wrap(CodeSerializationError, err, "encode stored record")
	}
	return b, nil
}

func DecodeStored(data []byte, out any) error {
	if err := msgpack.Unmarshal(data, out); err != nil {
		return Wrap(CodeSerializationError, err, "decode stored record")
	}
	return nil
}

// DecodeIndexEntryPK extracts the primary key an index entry's stored
// Value points at (the counterpart of the indexEntryPKField write in
// doIndexTableValue).
func DecodeIndexEntryPK(v Value) (Key, error) {
	raw, ok := v[indexEntryPKField]
	if !ok {
		return Key{}, NewError(CodeSerializationError, "index entry missing %q field", indexEntryPKField)
	}
	parts, ok := raw.([]any)
	if !ok {
		return Key{}, NewError(CodeSerializationError, "index entry %q field has unexpected shape %T", indexEntryPKField, raw)
	}
	return Key{Parts: normalizeParts(parts)}, nil
}

func normalizeParts(parts []any) []any {
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = normalizePart(p)
	}
	return out
}
