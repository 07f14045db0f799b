package effects

import "wonders/internal/engine"

// EastTradingPost lowers raw material prices bought counter-clockwise.
type EastTradingPost struct{}

func (EastTradingPost) Name() string { return "East Trading Post" }

func (e EastTradingPost) Active(p *engine.PlayerState) bool {
	return p.HasPlayed(e.Name())
}

func (EastTradingPost) Apply(r *engine.Rates, discount int) {
	r.SetRaw(engine.CounterClockwise, discount)
}
