// ABOUTME: Read-only registry of tool definitions keyed by tool name.
// ABOUTME: Validates the table and compiles parameter schemas once at construction.

package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrDuplicateTool indicates two definitions share a name.
var ErrDuplicateTool = errors.New("duplicate tool name")

// ErrInvalidDefinition indicates a definition that cannot be dispatched.
var ErrInvalidDefinition = errors.New("invalid tool definition")

// entry pairs a definition with its compiled parameter schema (nil when none).
type entry struct {
	def    Definition
	schema *jsonschema.Schema
}

// Registry maps tool names to definitions. It has no mutation methods,
// so it is safe for concurrent use once built.
type Registry struct {
	tools map[string]*entry
}

// NewRegistry validates defs and builds a registry from them.
// Returns ErrDuplicateTool for repeated names and ErrInvalidDefinition for
// empty names, unknown agent types, unsupported methods, non-absolute
// endpoints, or parameter schemas that do not compile.
func NewRegistry(defs ...Definition) (*Registry, error) {
	r := &Registry{tools: make(map[string]*entry, len(defs))}

	for _, def := range defs {
		if _, exists := r.tools[def.Name]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTool, def.Name)
		}
		if err := validateDefinition(def); err != nil {
			return nil, err
		}

		schema, err := compileSchema(def)
		if err != nil {
			return nil, fmt.Errorf("%w: tool %q: %v", ErrInvalidDefinition, def.Name, err)
		}
		r.tools[def.Name] = &entry{def: def, schema: schema}
	}

	return r, nil
}

func validateDefinition(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if !def.AgentType.Valid() {
		return fmt.Errorf("%w: tool %q: unknown agent type %q", ErrInvalidDefinition, def.Name, def.AgentType)
	}
	if def.Method != MethodGet && def.Method != MethodPost {
		return fmt.Errorf("%w: tool %q: unsupported method %q", ErrInvalidDefinition, def.Name, def.Method)
	}
	u, err := url.Parse(def.Endpoint)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%w: tool %q: endpoint %q must be an absolute URL", ErrInvalidDefinition, def.Name, def.Endpoint)
	}
	return nil
}

// compileSchema compiles the definition's parameter schema.
// A definition without parameters has no schema.
func compileSchema(def Definition) (*jsonschema.Schema, error) {
	if len(def.Parameters) == 0 {
		return nil, nil
	}

	raw, err := json.Marshal(def.Parameters)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	location := def.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(location, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := c.Compile(location)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	e, ok := r.tools[name]
	if !ok {
		return Definition{}, false
	}
	return e.def, true
}

// ListForAgent returns every definition owned by agentType, sorted by name.
func (r *Registry) ListForAgent(agentType AgentType) []Definition {
	var defs []Definition
	for _, e := range r.tools {
		if e.def.AgentType == agentType {
			defs = append(defs, e.def)
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Names returns all registered tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.tools)
}

// validateParameters checks decoded parameters against the tool's schema.
// Tools without a schema accept anything.
func (r *Registry) validateParameters(name string, params any) error {
	e, ok := r.tools[name]
	if !ok || e.schema == nil {
		return nil
	}
	return e.schema.Validate(params)
}
