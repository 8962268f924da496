package payload

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) Object {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var v any
	require.NoError(t, dec.Decode(&v))
	obj, ok := AsObject(v)
	require.True(t, ok)
	return obj
}

func TestAsObject(t *testing.T) {
	_, ok := AsObject(nil)
	assert.False(t, ok)
	_, ok = AsObject([]any{1})
	assert.False(t, ok)
	_, ok = AsObject("x")
	assert.False(t, ok)

	obj, ok := AsObject(map[string]any{"a": 1})
	assert.True(t, ok)
	assert.True(t, obj.Has("a"))
}

func TestIDCoercion(t *testing.T) {
	obj := decode(t, `{"num": 5, "big": 12345678901, "huge": 9007199254740993, "str": "abc", "float": 1.5, "whole": 5.0, "exp": 5e2, "empty": "", "null": null, "obj": {}}`)

	id, ok := obj.ID("num")
	assert.True(t, ok)
	assert.Equal(t, "5", id)

	id, _ = obj.ID("big")
	assert.Equal(t, "12345678901", id)

	id, _ = obj.ID("huge")
	assert.Equal(t, "9007199254740993", id)

	id, _ = obj.ID("whole")
	assert.Equal(t, "5", id, "5.0 and 5 name the same record")

	id, _ = obj.ID("exp")
	assert.Equal(t, "500", id)

	s, _ := obj.String("whole")
	assert.Equal(t, "5.0", s)

	id, _ = obj.ID("str")
	assert.Equal(t, "abc", id)

	id, _ = obj.ID("float")
	assert.Equal(t, "1.5", id)

	for _, key := range []string{"empty", "null", "obj", "missing"} {
		_, ok := obj.ID(key)
		assert.False(t, ok, key)
	}

	// Go literal values as produced by tests or non-UseNumber decoding
	lit := Object{"f": float64(20), "i": 7}
	id, _ = lit.ID("f")
	assert.Equal(t, "20", id)
	id, _ = lit.ID("i")
	assert.Equal(t, "7", id)
}

func TestListAndStrings(t *testing.T) {
	obj := decode(t, `{"skills": ["go", 3, {"x": 1}, null], "notList": "go", "null": null}`)

	assert.Equal(t, []string{"go", "3"}, obj.Strings("skills"))
	assert.Equal(t, []string{}, obj.Strings("notList"))
	assert.Equal(t, []string{}, obj.Strings("null"))
	assert.NotNil(t, obj.List("missing"))
	assert.Len(t, obj.List("missing"), 0)
}

func TestNumberAndBool(t *testing.T) {
	obj := decode(t, `{"score": 87.5, "str": "42", "bad": "x", "yes": true, "one": 1, "sTrue": "true"}`)

	n, ok := obj.Number("score")
	assert.True(t, ok)
	assert.Equal(t, 87.5, n)

	n, ok = obj.Number("str")
	assert.True(t, ok)
	assert.Equal(t, 42.0, n)

	_, ok = obj.Number("bad")
	assert.False(t, ok)

	b, ok := obj.Bool("yes")
	assert.True(t, ok && b)
	b, ok = obj.Bool("one")
	assert.True(t, ok && b)
	b, ok = obj.Bool("sTrue")
	assert.True(t, ok && b)
	_, ok = obj.Bool("missing")
	assert.False(t, ok)
}

func TestTime(t *testing.T) {
	obj := decode(t, `{
		"rfc": "2024-03-01T10:00:00Z",
		"frac": "2024-03-01T10:00:00.123+02:00",
		"local": "2024-03-01T10:00:00",
		"date": "2024-03-01",
		"millis": 1709287200000,
		"garbage": "not a date",
		"farFuture": 1e18,
		"farPast": -1e18,
		"year10000": "10000-01-01T00:00:00Z",
		"empty": ""
	}`)

	ts, ok := obj.Time("rfc")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), ts)

	ts, ok = obj.Time("frac")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 0, 0, 123000000, time.UTC), ts)

	ts, ok = obj.Time("local")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), ts)

	ts, ok = obj.Time("date")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), ts)

	ts, ok = obj.Time("millis")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), ts)

	for _, key := range []string{"garbage", "farFuture", "farPast", "year10000", "empty", "missing"} {
		_, ok := obj.Time(key)
		assert.False(t, ok, key)
	}
}

func TestStringOr(t *testing.T) {
	obj := Object{"name": "cv.pdf", "list": []any{"a"}}
	assert.Equal(t, "cv.pdf", obj.StringOr("name", "x"))
	assert.Equal(t, "x", obj.StringOr("list", "x"))
	assert.Equal(t, "", obj.StringOr("missing", ""))
}
