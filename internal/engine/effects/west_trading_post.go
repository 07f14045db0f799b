package effects

import "wonders/internal/engine"

// WestTradingPost lowers raw material prices bought clockwise.
type WestTradingPost struct{}

func (WestTradingPost) Name() string { return "West Trading Post" }

func (w WestTradingPost) Active(p *engine.PlayerState) bool {
	return p.HasPlayed(w.Name())
}

func (WestTradingPost) Apply(r *engine.Rates, discount int) {
	r.SetRaw(engine.Clockwise, discount)
}
