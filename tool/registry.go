package tool

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/lumon-ai/agentloop/errors"
)

// Registry holds the tools available to an agent, keyed case-insensitively:
// model output is not reliable about casing.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool. Registering two tools whose names differ only in case
// is an error.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(t.Name())
	if _, exists := r.tools[key]; exists {
		return errors.Errorf("tool %q already registered", t.Name())
	}
	r.tools[key] = t
	return nil
}

func (r *Registry) MustRegister(t Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Lookup finds a tool by name, ignoring case.
func (r *Registry) Lookup(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[strings.ToLower(name)]
	return t, ok
}

// List returns the registered tools sorted by name so the catalogue the
// agent renders is stable across runs.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name() < out[j].Name()
	})
	return out
}

func (r *Registry) Names() []string {
	tools := r.List()
	names := make([]string, len(tools))
	for i, t := range tools {
		names[i] = t.Name()
	}
	return names
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Execute dispatches to the named tool. An unknown name is an error the
// caller can test with errors.ErrToolNotFound; execution failures inside a
// known tool come back as a failed Result instead.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]any) (*Result, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return nil, errors.Wrapf(errors.ErrToolNotFound, "unknown tool %q", name)
	}
	return t.Execute(ctx, params), nil
}
