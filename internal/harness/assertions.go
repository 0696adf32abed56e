package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/stationcache/internal/slice"
	"github.com/roach88/stationcache/internal/value"
)

// AssertionError is a failed expectation with enough context to debug it.
type AssertionError struct {
	Type     string // decisions, repaired, state, cache, writes
	Slice    string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	if e.Slice != "" {
		fmt.Fprintf(&buf, "Assertion failed: %s.%s\n", e.Type, e.Slice)
	} else {
		fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	}
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateExpect checks every expectation and returns one message per
// failure, in a stable order.
func EvaluateExpect(r *Result, e Expect) []string {
	var errs []string
	add := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	for _, name := range sortedKeys(e.Decisions) {
		add(assertDecision(r, name, e.Decisions[name]))
	}
	if e.Repaired != nil {
		add(assertRepaired(r, e.Repaired))
	}
	for _, name := range sortedKeys(e.State) {
		add(assertValue("state", r.State, name, e.State[name]))
	}
	for _, name := range sortedKeys(e.Cache) {
		add(assertValue("cache", r.Cache, name, e.Cache[name]))
	}
	for _, name := range sortedKeys(e.Writes) {
		add(assertWrites(r, name, e.Writes[name]))
	}
	return errs
}

func assertDecision(r *Result, name, want string) error {
	d, ok := r.Decision(slice.Name(name))
	if !ok {
		return &AssertionError{Type: "decisions", Slice: name, Expected: want, Actual: "no decision"}
	}
	if string(d.Source) != want {
		return &AssertionError{Type: "decisions", Slice: name, Expected: want, Actual: string(d.Source)}
	}
	return nil
}

func assertRepaired(r *Result, want []string) error {
	var got []string
	for _, d := range r.Decisions {
		if d.Repaired {
			got = append(got, string(d.Slice))
		}
	}
	want = slices.Sorted(slices.Values(want))
	slices.Sort(got)
	if !slices.Equal(got, want) {
		return &AssertionError{
			Type:     "repaired",
			Expected: fmt.Sprintf("%v", want),
			Actual:   fmt.Sprintf("%v", got),
		}
	}
	return nil
}

func assertValue(kind string, actual map[slice.Name]value.Value, name string, raw any) error {
	want, err := value.FromAny(raw)
	if err != nil {
		return &AssertionError{Type: kind, Slice: name, Expected: fmt.Sprintf("%v", raw), Actual: err.Error()}
	}
	got, ok := actual[slice.Name(name)]
	if !ok {
		return &AssertionError{Type: kind, Slice: name, Expected: render(want), Actual: "missing"}
	}
	if !value.Equal(want, got) {
		return &AssertionError{Type: kind, Slice: name, Expected: render(want), Actual: render(got)}
	}
	return nil
}

func assertWrites(r *Result, name string, want int) error {
	got := r.Writes[slice.Name(name)]
	if got != want {
		return &AssertionError{
			Type:     "writes",
			Slice:    name,
			Expected: fmt.Sprintf("%d", want),
			Actual:   fmt.Sprintf("%d", got),
		}
	}
	return nil
}

func render(v value.Value) string {
	data, err := value.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(data)
}
