package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/theforeman/foreman-mcp/internal/foreman"
)

// Handler executes one tool invocation against Foreman. Handlers are
// pure functions of (validated arguments, client); they hold no state
// between invocations.
type Handler func(ctx context.Context, fc foreman.Caller, args map[string]any) (any, error)

// ToolSpec describes one exposed tool. Specs are built once at startup
// and shared read-only across all sessions.
type ToolSpec struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     Handler

	resolved *jsonschema.Resolved
	required []string
}

// Registry is the static tool table. It is immutable after
// construction and needs no locking.
type Registry struct {
	order []string
	specs map[string]*ToolSpec
}

// NewRegistry builds a registry from specs, resolving each input
// schema once. Spec order is preserved for capability listing.
func NewRegistry(specs ...*ToolSpec) (*Registry, error) {
	r := &Registry{specs: make(map[string]*ToolSpec, len(specs))}
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("tool spec with empty name")
		}
		if _, dup := r.specs[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", spec.Name)
		}

		var schema jsonschema.Schema
		if err := json.Unmarshal(spec.InputSchema, &schema); err != nil {
			return nil, fmt.Errorf("tool %q: parse input schema: %w", spec.Name, err)
		}
		resolved, err := schema.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("tool %q: resolve input schema: %w", spec.Name, err)
		}
		spec.resolved = resolved
		spec.required = schema.Required

		r.order = append(r.order, spec.Name)
		r.specs[spec.Name] = spec
	}
	return r, nil
}

// List returns all tool specs in registration order.
func (r *Registry) List() []*ToolSpec {
	out := make([]*ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name])
	}
	return out
}

// Resolve looks up a tool by name.
func (r *Registry) Resolve(name string) (*ToolSpec, bool) {
	spec, ok := r.specs[name]
	return spec, ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}
