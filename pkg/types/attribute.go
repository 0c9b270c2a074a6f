package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Attribute value types. Every declared attribute of a kind carries one of
// these; undeclared attributes are stored as given.
const (
	ValueTypeText    = "text"
	ValueTypeInteger = "integer"
	ValueTypeFloat   = "float"
	ValueTypeBoolean = "boolean"
)

// validValueTypes is the set of recognized attribute value types.
var validValueTypes = map[string]bool{
	ValueTypeText:    true,
	ValueTypeInteger: true,
	ValueTypeFloat:   true,
	ValueTypeBoolean: true,
}

// DefaultValue returns the type-based default value for a given value type:
// "" for text, 0 for integer, 0.0 for float, and false for boolean.
// Returns nil and ErrInvalidValueType if the type is not recognized.
func DefaultValue(valueType string) (any, error) {
	switch valueType {
	case ValueTypeText:
		return "", nil
	case ValueTypeInteger:
		return int64(0), nil
	case ValueTypeFloat:
		return float64(0), nil
	case ValueTypeBoolean:
		return false, nil
	default:
		return nil, ErrInvalidValueType
	}
}

// IsValidValueType reports whether the given string is a recognized value type.
func IsValidValueType(vt string) bool {
	return validValueTypes[vt]
}

// ParseAttribute converts text typed by a user into the value type the kind
// declares for name. Undeclared attributes are kept as text.
func ParseAttribute(kind Kind, name, raw string) (any, error) {
	schema, ok := kindTable[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	vt, declared := schema.Attributes[name]
	if !declared {
		return raw, nil
	}
	switch vt {
	case ValueTypeText:
		return raw, nil
	case ValueTypeInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects %s, got %q", ErrTypeMismatch, name, vt, raw)
		}
		return n, nil
	case ValueTypeFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || !isFinite(f) {
			return nil, fmt.Errorf("%w: %s expects %s, got %q", ErrTypeMismatch, name, vt, raw)
		}
		return f, nil
	case ValueTypeBoolean:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s expects %s, got %q", ErrTypeMismatch, name, vt, raw)
		}
		return b, nil
	default:
		return nil, ErrInvalidValueType
	}
}

// normalizeScalar maps the Go numeric zoo onto int64 and float64 and reports
// whether v is a scalar at all.
func normalizeScalar(v any) (any, bool) {
	switch x := v.(type) {
	case string, bool, int64:
		return x, true
	case float64:
		return x, isFinite(x)
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case float32:
		return float64(x), isFinite(float64(x))
	case uint:
		return uintScalar(uint64(x))
	case uint64:
		return uintScalar(x)
	case json.Number:
		if !strings.ContainsAny(x.String(), ".eE") {
			if n, err := x.Int64(); err == nil {
				return n, true
			}
		}
		if f, err := x.Float64(); err == nil {
			return f, isFinite(f)
		}
		return nil, false
	default:
		return nil, false
	}
}

// uintScalar maps an unsigned value onto int64 when it fits.
func uintScalar(u uint64) (any, bool) {
	if u > math.MaxInt64 {
		return nil, false
	}
	return int64(u), true
}

// coerce converts v to the Go representation of valueType. Lossless numeric
// conversions are allowed (an integral float becomes an integer); anything
// else is ErrTypeMismatch.
func coerce(valueType string, v any) (any, error) {
	if n, ok := v.(json.Number); ok {
		switch valueType {
		case ValueTypeInteger:
			if i, err := n.Int64(); err == nil {
				return i, nil
			}
		case ValueTypeFloat:
			if f, err := n.Float64(); err == nil {
				return f, nil
			}
		}
	}
	s, ok := normalizeScalar(v)
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a scalar", ErrTypeMismatch, v)
	}
	switch valueType {
	case ValueTypeText:
		if _, ok := s.(string); ok {
			return s, nil
		}
	case ValueTypeBoolean:
		if _, ok := s.(bool); ok {
			return s, nil
		}
	case ValueTypeInteger:
		switch x := s.(type) {
		case int64:
			return x, nil
		case float64:
			if x == math.Trunc(x) && math.Abs(x) <= 1<<53 {
				return int64(x), nil
			}
		}
	case ValueTypeFloat:
		switch x := s.(type) {
		case float64:
			return x, nil
		case int64:
			return float64(x), nil
		}
	default:
		return nil, ErrInvalidValueType
	}
	return nil, fmt.Errorf("%w: expected %s, got %T", ErrTypeMismatch, valueType, v)
}

// isFinite rejects NaN and the infinities, which JSON cannot carry.
func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
