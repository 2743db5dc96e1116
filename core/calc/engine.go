package calc

// Engine ties a fee model registry to the quote entry points. Every
// quote path normalizes first, so callers may hand the engine raw
// state straight off the wire.
type Engine struct {
	reg *Registry
}

// NewEngine creates an engine over a registry.
func NewEngine(reg *Registry) *Engine {
	return &Engine{reg: reg}
}

// Registry returns the engine's fee model registry.
func (e *Engine) Registry() *Registry {
	return e.reg
}

// Normalize coerces a state to canonical form using the engine's
// registry for provider and product resolution.
func (e *Engine) Normalize(st State) State {
	return Normalize(st, e.reg)
}

// DefaultState returns the canonical state a fresh session starts from.
func (e *Engine) DefaultState() State {
	return e.Normalize(DefaultState())
}

// Quote normalizes the state and dispatches it to its provider's fee
// model.
func (e *Engine) Quote(st State) Result {
	st = e.Normalize(st)

	model, ok := e.reg.Model(st.ProviderID)
	if !ok {
		// Only reachable with an empty registry.
		return Result{
			Symbol: e.reg.Symbol(st.Region),
			Fees:   []FeeLine{},
			Meta:   map[string]float64{},
		}
	}

	return model.Quote(QuoteInput{State: st, Symbol: e.reg.Symbol(st.Region)})
}
