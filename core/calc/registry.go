package calc

import (
	"sync"

	"feecalc/internal/errors"
)

// Registry manages provider fee model registration. Listing order is
// registration order, so the assembled default registry presents
// providers the way the UI lists them, with the first entry acting as
// the fallback for unknown provider ids.
type Registry struct {
	mu      sync.RWMutex
	models  map[string]FeeModel
	order   []string
	symbols map[Region]string
}

// NewRegistry creates an empty registry with a region currency table.
func NewRegistry(symbols map[Region]string) *Registry {
	s := make(map[Region]string, len(symbols))
	for region, symbol := range symbols {
		s[region] = symbol
	}
	return &Registry{
		models:  make(map[string]FeeModel),
		symbols: s,
	}
}

// Register adds a fee model to the registry
func (r *Registry) Register(model FeeModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := model.ID()
	if _, exists := r.models[id]; exists {
		return errors.Newf(errors.TypeProvider, "fee model already registered: %s", id)
	}

	r.models[id] = model
	r.order = append(r.order, id)
	return nil
}

// Model returns a fee model by provider id
func (r *Registry) Model(id string) (FeeModel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	model, ok := r.models[id]
	return model, ok
}

// DefaultID returns the id of the first registered model
func (r *Registry) DefaultID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return ""
	}
	return r.order[0]
}

// IDs returns all provider ids in registration order
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}

// Models returns all fee models in registration order
func (r *Registry) Models() []FeeModel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	models := make([]FeeModel, 0, len(r.order))
	for _, id := range r.order {
		models = append(models, r.models[id])
	}
	return models
}

// Symbol returns the currency symbol for a region
func (r *Registry) Symbol(region Region) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if symbol, ok := r.symbols[region]; ok {
		return symbol
	}
	return "£"
}
