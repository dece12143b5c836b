package ua

import (
	"fmt"
	"time"
)

// Variant holds a single value of any scalar or array type. The zero
// Variant is null. Variants encode as their bare CBOR value; after a
// round trip through the codec, integers come back as int64/uint64 and
// timestamps as integer nanoseconds, so callers should use the typed
// accessors instead of asserting concrete types.
type Variant struct {
	value any
}

// NewVariant wraps a value. Passing nil yields the null Variant.
func NewVariant(value any) Variant {
	return Variant{value: value}
}

// TimeVariant wraps a point in time as integer nanoseconds since the Unix
// epoch, the representation that survives the codec unchanged.
func TimeVariant(t time.Time) Variant {
	return Variant{value: t.UnixNano()}
}

// IsNull returns true for the null Variant.
func (v Variant) IsNull() bool {
	return v.value == nil
}

// Value returns the wrapped value without normalization.
func (v Variant) Value() any {
	return v.value
}

// Int returns the value as int64. Handles all integer widths produced by
// the codec, including uint64 for non-negative values.
func (v Variant) Int() (int64, bool) {
	switch n := v.value.(type) {
	case int64:
		return n, true
	case uint64:
		if n > 1<<63-1 {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int16:
		return int64(n), true
	case int8:
		return int64(n), true
	case uint:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint8:
		return int64(n), true
	default:
		return 0, false
	}
}

// Float returns the value as float64. Integer values are converted.
func (v Variant) Float() (float64, bool) {
	switch n := v.value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		if i, ok := v.Int(); ok {
			return float64(i), true
		}
		return 0, false
	}
}

// Bool returns the value as bool.
func (v Variant) Bool() (bool, bool) {
	b, ok := v.value.(bool)
	return b, ok
}

// Str returns the value as string.
func (v Variant) Str() (string, bool) {
	s, ok := v.value.(string)
	return s, ok
}

// Time returns the value as a point in time. Accepts time.Time (before
// encoding) and integer Unix nanoseconds (after decoding).
func (v Variant) Time() (time.Time, bool) {
	if t, ok := v.value.(time.Time); ok {
		return t, true
	}
	if n, ok := v.Int(); ok {
		return time.Unix(0, n), true
	}
	return time.Time{}, false
}

// String returns a display form of the value.
func (v Variant) String() string {
	if v.value == nil {
		return "null"
	}
	return fmt.Sprint(v.value)
}

// MarshalCBOR encodes the wrapped value bare.
func (v Variant) MarshalCBOR() ([]byte, error) {
	return Marshal(v.value)
}

// UnmarshalCBOR decodes a bare CBOR value.
func (v *Variant) UnmarshalCBOR(data []byte) error {
	v.value = nil
	return Unmarshal(data, &v.value)
}
