package personas

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/gauntlet/internal/review"
)

// Persona is one reviewer definition as it appears in a personas file.
type Persona struct {
	ID     string `yaml:"id"`
	Label  string `yaml:"label"`
	Prompt string `yaml:"prompt"`
}

// Registry holds the merged, ordered set of available personas.
type Registry struct {
	ordered []Persona
	byID    map[string]int
}

// Defaults returns the built-in reviewer personas, in their default run
// order.
func Defaults() []Persona {
	return []Persona{
		{
			ID:    "security",
			Label: "Security Architect",
			Prompt: "You focus on authentication, authorization, secret handling, data exposure, " +
				"input validation, and attack surface. A design that stores or transmits credentials " +
				"insecurely, or that has no story for access control, has a show-stopping flaw.",
		},
		{
			ID:    "integration",
			Label: "Integration Architect",
			Prompt: "You focus on API contracts, versioning, backward compatibility, error propagation " +
				"across service boundaries, and failure modes of external dependencies. A design whose " +
				"integration points are undefined or mutually contradictory has a show-stopping flaw.",
		},
		{
			ID:    "data",
			Label: "Data Architect",
			Prompt: "You focus on data modeling, consistency, migrations, retention, and privacy. " +
				"A design that loses data under failure, or whose ownership of records is ambiguous, " +
				"has a show-stopping flaw.",
		},
		{
			ID:    "scalability",
			Label: "Scalability Architect",
			Prompt: "You focus on load characteristics, bottlenecks, horizontal scaling, caching, " +
				"and capacity planning. A design with an unbounded hot spot or a single choke point " +
				"under expected load has a show-stopping flaw.",
		},
	}
}

// Load builds a registry from the built-in defaults, merged with the YAML
// personas file at path when one is given. File entries override defaults
// with the same id; new ids are appended in file order.
func Load(path string) (*Registry, error) {
	reg := &Registry{byID: make(map[string]int)}
	for _, p := range Defaults() {
		reg.add(p)
	}

	if path == "" {
		return reg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading personas file: %w", err)
	}
	var loaded []Persona
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parsing personas file %s: %w", path, err)
	}
	for i, p := range loaded {
		if err := validate(p); err != nil {
			return nil, fmt.Errorf("personas file %s, entry %d: %w", path, i+1, err)
		}
		reg.add(p)
	}
	return reg, nil
}

func validate(p Persona) error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("persona id must not be empty")
	}
	if strings.TrimSpace(p.Label) == "" {
		return fmt.Errorf("persona %q: label must not be empty", p.ID)
	}
	if strings.TrimSpace(p.Prompt) == "" {
		return fmt.Errorf("persona %q: prompt must not be empty", p.ID)
	}
	return nil
}

func (r *Registry) add(p Persona) {
	if i, ok := r.byID[p.ID]; ok {
		r.ordered[i] = p
		return
	}
	r.byID[p.ID] = len(r.ordered)
	r.ordered = append(r.ordered, p)
}

// All returns every registered persona in order.
func (r *Registry) All() []Persona {
	out := make([]Persona, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Select resolves ids into an ordered specialization list for a run. The
// run order is the order of ids, not registry order. Unknown ids are
// rejected.
func (r *Registry) Select(ids []string) ([]review.Specialization, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("select at least one reviewer")
	}
	specs := make([]review.Specialization, 0, len(ids))
	for _, id := range ids {
		i, ok := r.byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown reviewer: %s", id)
		}
		p := r.ordered[i]
		specs = append(specs, review.Specialization{ID: p.ID, Label: p.Label, Prompt: p.Prompt})
	}
	return specs, nil
}
