package harness

import (
	"github.com/roach88/stationcache/internal/cache"
	"github.com/roach88/stationcache/internal/slice"
	"github.com/roach88/stationcache/internal/value"
)

// Phase tells when a mutation was committed relative to Attach.
type Phase string

const (
	PhaseNetwork Phase = "network"
	PhaseHydrate Phase = "hydrate"
	PhaseApp     Phase = "app"
)

// CommitEvent is one committed mutation, in commit order.
type CommitEvent struct {
	Phase Phase
	Kind  string
	Seq   int64
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expectation held.
	Pass   bool
	Errors []string

	Decisions []cache.Decision
	Commits   []CommitEvent

	// State holds each persisted slice of the app state after the run.
	State map[slice.Name]value.Value
	// Cache holds each slice as read back from the store.
	Cache map[slice.Name]value.Value
	// Writes counts replace-writes per slice.
	Writes map[slice.Name]int
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
		State:  make(map[slice.Name]value.Value),
		Cache:  make(map[slice.Name]value.Value),
		Writes: make(map[slice.Name]int),
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// Decision returns the hydration decision for name.
func (r *Result) Decision(name slice.Name) (cache.Decision, bool) {
	for _, d := range r.Decisions {
		if d.Slice == name {
			return d, true
		}
	}
	return cache.Decision{}, false
}
