package cards

import (
	"strings"

	"wonders/internal/engine"
	"wonders/internal/engine/effects"
)

// Wonder is a board: its base resource and the stages that can be built.
type Wonder struct {
	Name     string         `json:"name"`
	Resource string         `json:"resource"`
	Stages   []engine.Stage `json:"stages"`
}

var wonders = []Wonder{
	{Name: "Alexandria", Resource: "G", Stages: []engine.Stage{{}, {Resource: "W/S/O/C"}, {}}},
	{Name: "Babylon", Resource: "C", Stages: []engine.Stage{{}, {}, {}}},
	{Name: "Ephesos", Resource: "P", Stages: []engine.Stage{{}, {}, {}}},
	{Name: "Gizah", Resource: "S", Stages: []engine.Stage{{}, {}, {}}},
	{Name: "Halikarnassos", Resource: "L", Stages: []engine.Stage{{}, {}, {}}},
	{Name: effects.OlympiaWonder, Resource: "W", Stages: []engine.Stage{{}, {Discount: effects.DiscountTag}, {}}},
	{Name: "Rhodos", Resource: "O", Stages: []engine.Stage{{}, {}, {}}},
}

// Wonders returns every board with all stages unbuilt.
func Wonders() []Wonder {
	out := make([]Wonder, len(wonders))
	for i, w := range wonders {
		out[i] = w
		out[i].Stages = append([]engine.Stage(nil), w.Stages...)
	}
	return out
}

// WonderByName finds a board by name, ignoring case.
func WonderByName(name string) (Wonder, bool) {
	for _, w := range Wonders() {
		if strings.EqualFold(w.Name, strings.TrimSpace(name)) {
			return w, true
		}
	}
	return Wonder{}, false
}

// Player returns a fresh player state on this board with the first built
// stages marked.
func (w Wonder) Player(id string, built, coins int) *engine.PlayerState {
	stages := append([]engine.Stage(nil), w.Stages...)
	for i := 0; i < built && i < len(stages); i++ {
		stages[i].Built = true
	}
	return &engine.PlayerState{
		ID:             id,
		Wonder:         w.Name,
		WonderResource: w.Resource,
		Stages:         stages,
		Coins:          coins,
	}
}
