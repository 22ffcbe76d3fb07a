package bms

import "fmt"

// base36Digits is the canonical alphabet used for ObjId text representation.
// BMS charts are case-insensitive on input; output is always uppercase.
const base36Digits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ObjId is a two-character base-36 handle (00..ZZ) into a definition table.
// The zero value represents an absent/empty slot.
type ObjId uint16

// MaxObjId is the largest representable ObjId value (ZZ in base 36).
const MaxObjId = ObjId(36*36 - 1)

// ParseObjId reads a two-character base-36 object id, case-insensitive.
// It returns ok=false if s is not exactly two base-36 characters.
func ParseObjId(s string) (ObjId, bool) {
	if len(s) != 2 {
		return 0, false
	}
	hi, ok := base36Value(s[0])
	if !ok {
		return 0, false
	}
	lo, ok := base36Value(s[1])
	if !ok {
		return 0, false
	}
	return ObjId(hi*36 + lo), true
}

// ObjIdFromValue converts an integer 0..1295 into an ObjId.
func ObjIdFromValue(v uint32) (ObjId, error) {
	if v > uint32(MaxObjId) {
		return 0, fmt.Errorf("bms: object id value %d out of range 0..%d", v, MaxObjId)
	}
	return ObjId(v), nil
}

func base36Value(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10, true
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10, true
	default:
		return 0, false
	}
}

// IsZero reports whether this ObjId is the reserved "absent" value.
func (o ObjId) IsZero() bool { return o == 0 }

// String renders the canonical uppercase two-character form, e.g. "00", "A1", "ZZ".
func (o ObjId) String() string {
	hi := int(o) / 36
	lo := int(o) % 36
	return string([]byte{base36Digits[hi], base36Digits[lo]})
}
