// Package tools provides the tool registry the agent loop dispatches to.
package tools

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Func is an invocable tool capability. It receives the raw tool input from
// the model and returns a textual observation.
type Func func(ctx context.Context, input string) (string, error)

// NoToolsDescription is returned by Describe when the registry is empty.
const NoToolsDescription = "No tools available."

type entry struct {
	name        string
	description string
	fn          Func
}

// Registry maps tool names to invocable capabilities. Registration order is
// preserved for prompt rendering; registering an existing name overwrites the
// entry in place (last registration wins).
//
// Execute never returns an error: lookup failures and tool failures are
// rendered as textual observations so the agent loop always receives a
// string it can feed back to the model.
type Registry struct {
	entries []entry
	index   map[string]int
	logger  *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		index:  make(map[string]int),
		logger: logger,
	}
}

// Register adds a tool. Re-registering a name replaces the previous
// description and capability while keeping its position in Describe output.
func (r *Registry) Register(name, description string, fn Func) {
	if i, exists := r.index[name]; exists {
		r.entries[i] = entry{name: name, description: description, fn: fn}
		r.logger.Debug("tool re-registered", zap.String("tool", name))
		return
	}
	r.index[name] = len(r.entries)
	r.entries = append(r.entries, entry{name: name, description: description, fn: fn})
}

// Execute dispatches input to the named tool and returns its observation.
// An unknown name or a failing tool yields an error observation, not an error.
func (r *Registry) Execute(ctx context.Context, name, input string) (observation string) {
	i, exists := r.index[name]
	if !exists {
		return fmt.Sprintf("error: tool %q is not registered. Available tools: %s",
			name, strings.Join(r.Names(), ", "))
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("tool panicked",
				zap.String("tool", name), zap.Any("panic", rec))
			observation = fmt.Sprintf("error: tool %q failed: %v", name, rec)
		}
	}()

	out, err := r.entries[i].fn(ctx, input)
	if err != nil {
		r.logger.Warn("tool execution failed",
			zap.String("tool", name), zap.Error(err))
		return fmt.Sprintf("error: tool %q failed: %v", name, err)
	}
	return out
}

// Describe renders all registered tools as one block for prompt injection,
// in registration order.
func (r *Registry) Describe() string {
	if len(r.entries) == 0 {
		return NoToolsDescription
	}
	var sb strings.Builder
	for _, e := range r.entries {
		fmt.Fprintf(&sb, "- %s: %s\n", e.name, e.description)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Names returns registered tool names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.entries)
}
