package page

import (
	"encoding/json"
	"math"
)

// Canonical returns a deep copy of v with numbers normalized: integral
// values become int and all other numbers float64. Maps and slices are
// copied recursively; other values pass through unchanged.
func Canonical(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = Canonical(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = Canonical(val)
		}
		return out
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return int(i)
		}
		if f, err := x.Float64(); err == nil {
			return canonicalFloat(f)
		}
		return x.String()
	case float64:
		return canonicalFloat(x)
	case float32:
		return canonicalFloat(float64(x))
	case int64:
		return int(x)
	case int32:
		return int(x)
	default:
		return v
	}
}

// maxExactInt is the largest magnitude a float64 holds without losing integer precision.
const maxExactInt = 1 << 53

func canonicalFloat(f float64) any {
	if f == math.Trunc(f) && math.Abs(f) <= maxExactInt {
		return int(f)
	}
	return f
}

// Int reports v as an int when it is an integral number.
func Int(v any) (int, bool) {
	switch x := Canonical(v).(type) {
	case int:
		return x, true
	default:
		return 0, false
	}
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// Deref returns *p, or 0 when p is nil.
func Deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
