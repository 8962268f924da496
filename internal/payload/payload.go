// Package payload gives typed, optional-valued access to loosely shaped JSON
// values decoded from the backend. Every accessor reports whether the field
// was present and usable instead of panicking or returning zero values silently.
package payload

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Object is a decoded JSON object.
type Object map[string]any

// AsObject reports whether v is a JSON object and returns it.
func AsObject(v any) (Object, bool) {
	switch o := v.(type) {
	case Object:
		return o, o != nil
	case map[string]any:
		return Object(o), o != nil
	default:
		return nil, false
	}
}

// Has reports whether key is present with a non-null value.
func (o Object) Has(key string) bool {
	v, ok := o[key]
	return ok && v != nil
}

// Object returns the nested object stored under key.
func (o Object) Object(key string) (Object, bool) {
	return AsObject(o[key])
}

// String returns a scalar field as text. Numbers and booleans are formatted;
// objects, arrays and null are reported as absent.
func (o Object) String(key string) (string, bool) {
	return scalarString(o[key])
}

// StringOr returns the text of key or def when it is absent.
func (o Object) StringOr(key, def string) string {
	if s, ok := o.String(key); ok {
		return s
	}
	return def
}

// ID returns an identity field coerced to a string. Integral numbers are
// written without a fraction, so 5 and 5.0 name the same record. Empty
// identifiers are reported as absent.
func (o Object) ID(key string) (string, bool) {
	if n, ok := o[key].(json.Number); ok && strings.ContainsAny(n.String(), ".eE") {
		if f, err := n.Float64(); err == nil && f == math.Trunc(f) && !math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'f', -1, 64), true
		}
	}
	s, ok := scalarString(o[key])
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Number returns a numeric field. Numeric strings are accepted.
func (o Object) Number(key string) (float64, bool) {
	switch n := o[key].(type) {
	case nil, bool:
		return 0, false
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		f, err := cast.ToFloat64E(n)
		return f, err == nil
	}
}

// Bool returns a boolean field. "true"/"false" strings and 0/1 numbers are accepted.
func (o Object) Bool(key string) (bool, bool) {
	switch b := o[key].(type) {
	case nil:
		return false, false
	case bool:
		return b, true
	case json.Number:
		f, err := b.Float64()
		return f != 0, err == nil
	case map[string]any, []any:
		return false, false
	default:
		v, err := cast.ToBoolE(b)
		return v, err == nil
	}
}

// List returns the array stored under key, or an empty non-nil slice when the
// field is absent or not an array.
func (o Object) List(key string) []any {
	if l, ok := o[key].([]any); ok {
		return l
	}
	return []any{}
}

// Strings returns the scalar elements of the array under key as text.
// Non-scalar elements are skipped. The result is never nil.
func (o Object) Strings(key string) []string {
	raw := o.List(key)
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := scalarString(item); ok {
			out = append(out, s)
		}
	}
	return out
}

// Time parses a timestamp field. Strings are read as RFC3339 or ISO-8601
// (zone-less values are taken as UTC); numbers are epoch milliseconds.
// Timestamps outside years 0..9999 cannot be encoded and are reported as absent.
func (o Object) Time(key string) (time.Time, bool) {
	t, ok := o.rawTime(key)
	if !ok || t.Year() < 0 || t.Year() > 9999 {
		return time.Time{}, false
	}
	return t, true
}

func (o Object) rawTime(key string) (time.Time, bool) {
	switch v := o[key].(type) {
	case nil, bool:
		return time.Time{}, false
	case string:
		if strings.TrimSpace(v) == "" {
			return time.Time{}, false
		}
		t, err := cast.ToTimeInDefaultLocationE(strings.TrimSpace(v), time.UTC)
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	default:
		ms, ok := o.Number(key)
		if !ok || math.IsNaN(ms) || math.Abs(ms) > math.MaxInt64/2 {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(ms)).UTC(), true
	}
}

func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case nil, map[string]any, []any, Object:
		return "", false
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	default:
		str, err := cast.ToStringE(s)
		return str, err == nil
	}
}
