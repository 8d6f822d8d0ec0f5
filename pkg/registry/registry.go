// Package registry provides the action registry used by the workflow
// executor. The registry is an explicit dependency passed to the executor at
// construction time; there is no process-wide instance.
package registry

import (
	"context"
	"log/slog"
	"sort"

	"github.com/credentis/credentis/pkg/models"
)

// Handler is the contract every action implements: read and mutate the
// shared context under an agreed namespace, using the step configuration.
type Handler func(ctx context.Context, ec *models.ActionContext, config map[string]any, logger *slog.Logger) error

// Registry maps action names ("finance.calculate_invoice") to handlers.
// Registration is expected at construction time only and is NOT safe for
// concurrent use; lookups after construction are read-only and safe.
type Registry struct {
	logger   *slog.Logger
	handlers map[string]Handler
}

func New(logger *slog.Logger) *Registry {
	return &Registry{
		logger:   logger.With("module", "action_registry"),
		handlers: make(map[string]Handler),
	}
}

// Register inserts a handler under name. Registering an existing name logs
// a warning and the later registration wins.
func (r *Registry) Register(name string, handler Handler) {
	if _, exists := r.handlers[name]; exists {
		r.logger.Warn("Action already registered, overwriting", "action", name)
	}

	r.handlers[name] = handler
}

func (r *Registry) Get(name string) (Handler, bool) {
	handler, ok := r.handlers[name]

	return handler, ok
}

// List returns all registered action names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
