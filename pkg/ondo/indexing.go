package ondo

import (
	"log"
	"strings"
)

// doIndexTableValue computes the effect that adds value's entry to
// index, per spec.md §4.5. The index key is [indexed field values...,
// primary key] so that two rows sharing indexed field values still
// get distinct index keys (spec.md §9: "index key with primary-key
// tail"). A missing field is treated as JSON null; a field that
// resolves to a non-scalar (nested object or array) aborts indexing
// for this value with a logged warning, producing no effect — this is
// the Open Question spec.md resolves explicitly in its Design Notes.
func doIndexTableValue(value Value, index Index, primaryKey Key) (Effects, error) {
	indexKey, ok := buildIndexKey(value, index, primaryKey)
	if !ok {
		return nil, nil
	}
	// The index entry's value is the row's primary key (spec.md §4.5);
	// stored under a fixed field so the sink can decode it back into an
	// OndoKey without guessing the shape.
	return Effects{
		TableValuePut{
			CfName: cfNames.ForIndexValues(index.Reference),
			Key:    indexKey,
			Value:  Value{indexEntryPKField: []any(primaryKey.Parts)},
		},
	}, nil
}

// indexEntryPKField is the reserved field name under which an index
// entry's value (the primary key it points at) is stored.
const indexEntryPKField = "_pk"

// doDeindexTableValue computes the effect that removes value's entry
// from index.
func doDeindexTableValue(value Value, index Index, primaryKey Key) (Effects, error) {
	indexKey, ok := buildIndexKey(value, index, primaryKey)
	if !ok {
		return nil, nil
	}
	return Effects{
		TableValueDelete{
			CfName: cfNames.ForIndexValues(index.Reference),
			Key:    indexKey,
		},
	}, nil
}

// buildIndexKey extracts index.Fields from value in order, appends
// primaryKey's parts as the tie-breaking tail, and reports ok=false if
// any field resolves to a non-scalar shape (the index entry must be
// skipped entirely in that case).
func buildIndexKey(value Value, index Index, primaryKey Key) (Key, bool) {
	parts := make([]any, 0, len(index.Fields)+primaryKey.Len())
	for _, field := range index.Fields {
		v, found := extractFieldPath(value, field)
		if !found {
			parts = append(parts, nil)
			continue
		}
		switch v.(type) {
		case nil, bool, string, float64, int, int64, float32:
			parts = append(parts, normalizePart(v))
		default:
			log.Printf("ondo: index %s: field %q resolved to non-scalar %T, skipping entry", index.Reference.IndexName, field, v)
			return Key{}, false
		}
	}
	parts = append(parts, primaryKey.Parts...)
	return Key{Parts: parts}, true
}

// extractFieldPath navigates a dotted field path (e.g. "address.city")
// through nested maps. Returns found=false if any segment along the
// path is absent — the caller treats that as JSON null, not an error.
func extractFieldPath(value Value, path string) (any, bool) {
	segments := strings.Split(path, ".")
	var cur any = value
	for _, seg := range segments {
		m, ok := cur.(Value)
		if !ok {
			if asMap, ok2 := cur.(map[string]any); ok2 {
				m = asMap
			} else {
				return nil, false
			}
		}
		v, ok := m[seg]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// insertKeyIntoValue mutates value in place to carry its own primary
// key under the reserved _id field (spec.md §4.4 PostTableValue step
// 1, §6 "Reserved fields").
func insertKeyIntoValue(value Value, id Key) {
	if len(id.Parts) == 1 {
		value[IDField] = id.Parts[0]
		return
	}
	value[IDField] = id.Parts
}
