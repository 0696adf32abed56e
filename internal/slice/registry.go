// Package slice declares the fixed set of independently persisted state
// slices, their shapes and default values.
package slice

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/stationcache/internal/value"
)

// Name identifies a slice. It doubles as the slice's cache record key.
type Name string

const (
	Dashboard Name = "dashboard"
	Sensors   Name = "sensors"
	Settings  Name = "settings"
	Stations  Name = "stations"
)

// Shape is the container type a slice holds.
type Shape int

const (
	// Sequence slices hold an ordered value.List.
	Sequence Shape = iota + 1
	// Mapping slices hold a keyed value.Map.
	Mapping
)

func (s Shape) String() string {
	switch s {
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Spec describes one slice.
type Spec struct {
	Name  Name
	Shape Shape
}

// Registry is the static table of slices. It is immutable after construction.
type Registry struct {
	specs []Spec // sorted by name
	index map[Name]Spec
}

// Default is the weather-station registry.
var Default = NewRegistry(
	Spec{Name: Dashboard, Shape: Sequence},
	Spec{Name: Sensors, Shape: Mapping},
	Spec{Name: Settings, Shape: Mapping},
	Spec{Name: Stations, Shape: Sequence},
)

// NewRegistry builds a registry from specs. Names must be unique and shapes
// valid; violations panic since registries are declared at process start.
func NewRegistry(specs ...Spec) *Registry {
	r := &Registry{index: make(map[Name]Spec, len(specs))}
	for _, s := range specs {
		if s.Shape != Sequence && s.Shape != Mapping {
			panic(fmt.Sprintf("slice %q: invalid shape %v", s.Name, s.Shape))
		}
		if _, dup := r.index[s.Name]; dup {
			panic(fmt.Sprintf("slice %q declared twice", s.Name))
		}
		r.index[s.Name] = s
		r.specs = append(r.specs, s)
	}
	// Key order, matching the record store's iteration order
	slices.SortFunc(r.specs, func(a, b Spec) int {
		return strings.Compare(string(a.Name), string(b.Name))
	})
	return r
}

// Names returns every slice name in key order.
func (r *Registry) Names() []Name {
	names := make([]Name, len(r.specs))
	for i, s := range r.specs {
		names[i] = s.Name
	}
	return names
}

// Lookup returns the spec for name.
func (r *Registry) Lookup(name Name) (Spec, bool) {
	s, ok := r.index[name]
	return s, ok
}

// Parse resolves a slice name from its string form.
func (r *Registry) Parse(s string) (Name, error) {
	if _, ok := r.index[Name(s)]; !ok {
		return "", fmt.Errorf("unknown slice %q", s)
	}
	return Name(s), nil
}

// Default returns a fresh empty value for the slice: an empty List for
// sequences, an empty Map for mappings.
func (r *Registry) Default(name Name) value.Value {
	s, ok := r.index[name]
	if !ok {
		return nil
	}
	if s.Shape == Sequence {
		return value.List{}
	}
	return value.Map{}
}

// IsEmpty is the hydration emptiness predicate: a sequence with no elements
// or a mapping with no keys. A value without the slice's shape (nil, Null,
// scalars, the other container) carries nothing usable and counts as empty.
func (r *Registry) IsEmpty(name Name, v value.Value) bool {
	if !r.Conforms(name, v) {
		return true
	}
	return value.Len(v) == 0
}

// Conforms reports whether v has the slice's declared shape.
func (r *Registry) Conforms(name Name, v value.Value) bool {
	s, ok := r.index[name]
	if !ok {
		return false
	}
	switch v.(type) {
	case value.List:
		return s.Shape == Sequence
	case value.Map:
		return s.Shape == Mapping
	default:
		return false
	}
}
