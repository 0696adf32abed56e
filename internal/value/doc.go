// Package value defines the values held by application state slices and the
// canonical JSON encoding used to persist them.
//
// A Value is one of Null, String, Int, Float, Bool, List or Map. Lists are
// ordered sequences (dashboard cards, stations); Maps are string-keyed
// mappings (sensors, settings).
//
// # Canonical Encoding
//
// Marshal produces a deterministic byte form so that two equal values always
// encode to identical cache records:
//   - Object keys sorted by UTF-16 code units
//   - Strings written as given, no HTML escaping or Unicode normalization
//   - Floats always carry a fraction or exponent ("2.0", not "2")
//   - NaN and infinities are rejected
//
// Unmarshal is the inverse: numbers with a fraction or exponent decode as
// Float, all others as Int. Unmarshal(Marshal(v)) is Equal to v.
package value
