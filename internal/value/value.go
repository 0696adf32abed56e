package value

import (
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface over the types a state slice may contain.
type Value interface {
	value() // Sealed - only this package's types implement it
}

// Null is an explicit JSON null.
type Null struct{}

func (Null) value() {}

// String is a string value.
type String string

func (String) value() {}

// Int is an integer value.
type Int int64

func (Int) value() {}

// Float is a floating point value (temperatures, pressures, ...).
type Float float64

func (Float) value() {}

// Bool is a boolean value.
type Bool bool

func (Bool) value() {}

// List is an ordered sequence of values.
type List []Value

func (List) value() {}

// Map is a string-keyed mapping of values.
// Use SortedKeys() for deterministic iteration.
type Map map[string]Value

func (Map) value() {}

// Pair is a key/value pair for Map construction.
type Pair struct {
	Key   string
	Value Value
}

// P is shorthand for Pair.
// Example: MapOf(P("id", String("s1")), P("temp", Float(21.5)))
func P(key string, v Value) Pair {
	return Pair{Key: key, Value: v}
}

// MapOf builds a Map from pairs.
func MapOf(pairs ...Pair) Map {
	m := make(Map, len(pairs))
	for _, p := range pairs {
		m[p.Key] = p.Value
	}
	return m
}

// ListOf builds a List from values.
func ListOf(vals ...Value) List {
	if vals == nil {
		return List{}
	}
	return List(vals)
}

// SortedKeys returns keys in canonical order (UTF-16 code units).
// Go's sort.Strings orders by UTF-8 bytes, which differs for supplementary
// plane characters.
func (m Map) SortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

// With returns a copy of m with key set to v. m is not modified.
func (m Map) With(key string, v Value) Map {
	out := make(Map, len(m)+1)
	for k, e := range m {
		out[k] = e
	}
	out[key] = v
	return out
}

// Without returns a copy of m with key removed. m is not modified.
func (m Map) Without(key string) Map {
	out := make(Map, len(m))
	for k, e := range m {
		if k != key {
			out[k] = e
		}
	}
	return out
}

// String returns the String stored under key, if any.
func (m Map) String(key string) (string, bool) {
	s, ok := m[key].(String)
	return string(s), ok
}

// Append returns a new List with vals appended. l is not modified.
func (l List) Append(vals ...Value) List {
	out := make(List, 0, len(l)+len(vals))
	out = append(out, l...)
	return append(out, vals...)
}

// compareUTF16 orders strings by UTF-16 code units.
func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}
