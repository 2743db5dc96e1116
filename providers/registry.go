package providers

import (
	"feecalc/core/calc"
)

// Default assembles the standard registry: the tiered card processor
// first, so it backs unknown provider ids, then the modeled
// providers and finally the user-defined one.
func Default() *calc.Registry {
	reg := calc.NewRegistry(Symbols())

	models := []calc.FeeModel{
		NewStripe(),
		NewPayPal(),
		NewSquare(),
		NewAdyen(),
		NewCustom(),
	}
	for _, model := range models {
		if err := reg.Register(model); err != nil {
			// The built-in set is static; a duplicate id is a
			// programming error.
			panic(err)
		}
	}
	return reg
}

// NewEngine builds an engine over the default registry.
func NewEngine() *calc.Engine {
	return calc.NewEngine(Default())
}
