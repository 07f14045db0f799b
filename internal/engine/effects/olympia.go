package effects

import (
	"strings"

	"wonders/internal/engine"
)

// DiscountTag marks the wonder stage that discounts raw materials on both sides.
const DiscountTag = "discount"

// OlympiaWonder is the board that carries the discount stage.
const OlympiaWonder = "Olympia"

// OlympiaDiscount is the Olympia stage: raw materials at the discounted
// price from both neighbors. A discount tag on any other board does nothing.
type OlympiaDiscount struct{}

func (OlympiaDiscount) Name() string { return "Olympia Discount" }

func (OlympiaDiscount) Active(p *engine.PlayerState) bool {
	return strings.EqualFold(p.Wonder, OlympiaWonder) && p.HasBuiltStage(DiscountTag)
}

func (OlympiaDiscount) Apply(r *engine.Rates, discount int) {
	r.SetRaw(engine.Clockwise, discount)
	r.SetRaw(engine.CounterClockwise, discount)
}
