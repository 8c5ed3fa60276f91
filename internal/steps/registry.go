package steps

import (
	"fmt"
	"strings"
)

// Registry maps step IDs to registered steps.
type Registry struct {
	steps map[ID]Step
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{steps: make(map[ID]Step)}
}

// Register adds s, replacing any step with the same ID.
func (r *Registry) Register(s Step) {
	r.steps[s.ID()] = s
}

// Get retrieves a step by ID.
func (r *Registry) Get(id ID) (Step, bool) {
	s, ok := r.steps[id]
	return s, ok
}

// List returns the registered IDs in canonical order.
func (r *Registry) List() []ID {
	ids := make([]ID, 0, len(r.steps))
	for _, id := range allIDs {
		if _, ok := r.steps[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Describe renders "name - description" lines for every registered step.
func (r *Registry) Describe() string {
	var b strings.Builder
	for _, id := range r.List() {
		fmt.Fprintf(&b, "  %-10s %s\n", id, r.steps[id].Description())
	}
	return b.String()
}
