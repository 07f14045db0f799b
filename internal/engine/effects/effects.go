// Package effects holds the cards and wonder stages that change trade prices.
package effects

import "wonders/internal/engine"

// Default returns a registry with every trade discount of the base game.
func Default() *engine.EffectRegistry {
	reg := engine.NewEffectRegistry()
	reg.Register(WestTradingPost{})
	reg.Register(EastTradingPost{})
	reg.Register(Marketplace{})
	reg.Register(OlympiaDiscount{})
	return reg
}
