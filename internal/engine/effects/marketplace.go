package effects

import "wonders/internal/engine"

// Marketplace lowers manufactured goods prices in both directions.
type Marketplace struct{}

func (Marketplace) Name() string { return "Marketplace" }

func (m Marketplace) Active(p *engine.PlayerState) bool {
	return p.HasPlayed(m.Name())
}

func (Marketplace) Apply(r *engine.Rates, discount int) {
	r.SetGoods(discount)
}
