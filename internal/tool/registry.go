package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/ramyatawia/docflow-orchestrator/internal/metrics"
	"github.com/ramyatawia/docflow-orchestrator/internal/registry"
)

// Registry is the adapter-name -> Adapter lookup used by the workflow
// executor. It is safe for concurrent use by distinct jobs; individual
// adapters are responsible for their own concurrency.
type Registry struct {
	base    *registry.BaseRegistry[Adapter]
	metrics *metrics.Metrics
}

// NewRegistry creates an empty tool Registry.
func NewRegistry() *Registry {
	return &Registry{base: registry.NewBaseRegistry[Adapter]()}
}

// SetMetrics attaches m so every Execute call records a tool-call
// counter, duration, and error count. Nil-safe to call with nil.
func (r *Registry) SetMetrics(m *metrics.Metrics) {
	r.metrics = m
}

// Register adds an adapter under its descriptor name.
func (r *Registry) Register(a Adapter) error {
	return r.base.Register(a.Descriptor().Name, a)
}

// Execute looks up name and runs it, wrapping a missing tool as a
// non-retriable Err result rather than an error value, so callers can
// handle it uniformly with any other tool failure.
func (r *Registry) Execute(ctx context.Context, name string, parameters map[string]any) (Result, error) {
	a, ok := r.base.Get(name)
	if !ok {
		return Result{Error: fmt.Sprintf("unknown tool: %s", name), Retriable: false}, nil
	}

	start := time.Now()
	result, err := a.Execute(ctx, parameters)
	if r.metrics != nil {
		r.metrics.RecordToolCall(name, time.Since(start), err != nil || !result.Ok())
	}
	return result, err
}

// Clear removes every registered adapter, used when reconciling the
// registry against a hot-reloaded configuration.
func (r *Registry) Clear() {
	r.base.Clear()
}

// Descriptors returns the descriptor for every registered tool, in the
// shape the Intent Classifier and Workflow Planner consume.
func (r *Registry) Descriptors() []Descriptor {
	names := r.base.List()
	out := make([]Descriptor, 0, len(names))
	for _, name := range names {
		a, ok := r.base.Get(name)
		if !ok {
			continue
		}
		out = append(out, a.Descriptor())
	}
	return out
}
