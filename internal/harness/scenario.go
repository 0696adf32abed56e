package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/stationcache/internal/appstore"
	"github.com/roach88/stationcache/internal/cache"
	"github.com/roach88/stationcache/internal/slice"
	"github.com/roach88/stationcache/internal/store"
	"github.com/roach88/stationcache/internal/value"
)

// Scenario describes one startup: what the cache holds, what the network
// delivered first and what the user does afterwards.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Backend is the record store backend; empty means sqlite.
	Backend string `yaml:"backend,omitempty"`

	// Cache maps slice name to the record stored before startup.
	Cache map[string]any `yaml:"cache,omitempty"`

	// Corrupt maps slice name to raw record bytes that are not valid values.
	Corrupt map[string]string `yaml:"corrupt,omitempty"`

	// Network mutations are committed before the cache attaches.
	Network []Step `yaml:"network,omitempty"`

	// Mutations are committed after the cache attaches.
	Mutations []Step `yaml:"mutations,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Step is one mutation to commit.
type Step struct {
	Kind    string `yaml:"kind"`
	Payload any    `yaml:"payload"`
}

// Expect holds the checks run after the scenario settles.
type Expect struct {
	// Decisions maps slice name to the expected source
	// ("memory", "cache", "default").
	Decisions map[string]string `yaml:"decisions,omitempty"`

	// Repaired lists exactly the slices expected to be repaired.
	// Nil skips the check.
	Repaired []string `yaml:"repaired,omitempty"`

	// State maps slice name to its expected in-memory value.
	State map[string]any `yaml:"state,omitempty"`

	// Cache maps slice name to its expected stored value.
	Cache map[string]any `yaml:"cache,omitempty"`

	// Writes maps slice name to the expected number of replace-writes.
	Writes map[string]int `yaml:"writes,omitempty"`
}

func (e Expect) empty() bool {
	return len(e.Decisions) == 0 && e.Repaired == nil && len(e.State) == 0 &&
		len(e.Cache) == 0 && len(e.Writes) == 0
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is invalid.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and that every
// slice name, mutation kind and value is usable.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Backend != "" {
		if _, err := store.ParseBackend(s.Backend); err != nil {
			return fmt.Errorf("backend: %w", err)
		}
	}

	for _, name := range sortedKeys(s.Cache) {
		if err := validateSliceValue("cache", name, s.Cache[name]); err != nil {
			return err
		}
	}
	for name := range s.Corrupt {
		if _, err := slice.Default.Parse(name); err != nil {
			return fmt.Errorf("corrupt: %w", err)
		}
		if _, ok := s.Cache[name]; ok {
			return fmt.Errorf("corrupt.%s: slice is also seeded in cache", name)
		}
	}

	for i, step := range s.Network {
		if err := validateStep(fmt.Sprintf("network[%d]", i), step); err != nil {
			return err
		}
	}
	for i, step := range s.Mutations {
		if err := validateStep(fmt.Sprintf("mutations[%d]", i), step); err != nil {
			return err
		}
	}

	return validateExpect(s.Expect)
}

func validateSliceValue(section, name string, raw any) error {
	n, err := slice.Default.Parse(name)
	if err != nil {
		return fmt.Errorf("%s: %w", section, err)
	}
	v, err := value.FromAny(raw)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", section, name, err)
	}
	if !slice.Default.Conforms(n, v) {
		spec, _ := slice.Default.Lookup(n)
		return fmt.Errorf("%s.%s: value is not a %s", section, name, spec.Shape)
	}
	return nil
}

func validateStep(where string, step Step) error {
	if step.Kind == "" {
		return fmt.Errorf("%s: kind is required", where)
	}
	if _, err := appstore.ParseMutationKind(step.Kind); err != nil {
		return fmt.Errorf("%s: %w", where, err)
	}
	if _, err := value.FromAny(step.Payload); err != nil {
		return fmt.Errorf("%s.payload: %w", where, err)
	}
	return nil
}

func validateExpect(e Expect) error {
	if e.empty() {
		return fmt.Errorf("expect must contain at least one check")
	}
	for name, src := range e.Decisions {
		if _, err := slice.Default.Parse(name); err != nil {
			return fmt.Errorf("expect.decisions: %w", err)
		}
		switch cache.Source(src) {
		case cache.SourceMemory, cache.SourceCache, cache.SourceDefault:
		default:
			return fmt.Errorf("expect.decisions.%s: unknown source %q", name, src)
		}
	}
	for _, name := range e.Repaired {
		if _, err := slice.Default.Parse(name); err != nil {
			return fmt.Errorf("expect.repaired: %w", err)
		}
	}
	for _, name := range sortedKeys(e.State) {
		if err := validateSliceValue("expect.state", name, e.State[name]); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(e.Cache) {
		if err := validateSliceValue("expect.cache", name, e.Cache[name]); err != nil {
			return err
		}
	}
	for name, n := range e.Writes {
		if _, err := slice.Default.Parse(name); err != nil {
			return fmt.Errorf("expect.writes: %w", err)
		}
		if n < 0 {
			return fmt.Errorf("expect.writes.%s: count must be non-negative", name)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
