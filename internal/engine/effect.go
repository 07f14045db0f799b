package engine

// Effect is a played card or built stage that changes trade prices.
type Effect interface {
	Name() string
	// Active returns true if the player owns the card or stage.
	Active(p *PlayerState) bool
	// Apply lowers prices on r; discount is the discounted unit price.
	Apply(r *Rates, discount int)
}

// EffectRegistry maps effect names to their implementations.
type EffectRegistry struct {
	effects map[string]Effect
	order   []string
}

func NewEffectRegistry() *EffectRegistry {
	return &EffectRegistry{effects: make(map[string]Effect)}
}

func (r *EffectRegistry) Register(e Effect) {
	if _, ok := r.effects[e.Name()]; !ok {
		r.order = append(r.order, e.Name())
	}
	r.effects[e.Name()] = e
}

// Apply runs every active effect against rates in registration order and
// returns the names of those applied.
func (r *EffectRegistry) Apply(p *PlayerState, rates *Rates, discount int) []string {
	if r == nil {
		return nil
	}
	var applied []string
	for _, name := range r.order {
		e := r.effects[name]
		if e.Active(p) {
			e.Apply(rates, discount)
			applied = append(applied, name)
		}
	}
	return applied
}
