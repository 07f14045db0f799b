package cards_test

import (
	"testing"

	"wonders/internal/cards"
	"wonders/internal/engine"
	"wonders/internal/engine/effects"
)

func TestCatalogue(t *testing.T) {
	all := cards.All()
	if len(all) == 0 {
		t.Fatal("empty catalogue")
	}
	seen := make(map[string]bool)
	for _, e := range all {
		if seen[e.Name] {
			t.Errorf("duplicate card %s", e.Name)
		}
		seen[e.Name] = true
		if e.Age < 1 || e.Age > 3 {
			t.Errorf("%s: age %d", e.Name, e.Age)
		}
	}
	if got := len(cards.Age(1)) + len(cards.Age(2)) + len(cards.Age(3)); got != len(all) {
		t.Errorf("ages cover %d cards, want %d", got, len(all))
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		kind     engine.CostKind
		produces string
	}{
		{"Lumber Yard", engine.CostFree, "W"},
		{"tree farm", engine.CostCoins, "W/C"},
		{"  Sawmill ", engine.CostCoins, "WW"},
		{"Pantheon", engine.CostResources, ""},
		{"Caravansery", engine.CostResources, "W/S/O/C"},
	}
	for _, tt := range tests {
		c, ok := cards.Lookup(tt.name)
		if !ok {
			t.Errorf("Lookup(%q): not found", tt.name)
			continue
		}
		if c.Cost.Kind != tt.kind || c.Produces != tt.produces {
			t.Errorf("Lookup(%q): got %s %q, want %s %q", tt.name, c.Cost.Kind, c.Produces, tt.kind, tt.produces)
		}
	}
	if _, ok := cards.Lookup("Colossus"); ok {
		t.Error("expected Colossus to be missing")
	}
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"Barraks", "Barracks"},
		{"marketplce", "Marketplace"},
		{"glass", "Glassworks"},
		{"Forum", "Forum"},
	}
	for _, tt := range tests {
		got := cards.Suggest(tt.query, 3)
		if len(got) == 0 || got[0] != tt.want {
			t.Errorf("Suggest(%q): got %v, want %s first", tt.query, got, tt.want)
		}
	}
	if got := cards.Suggest("zzzzzzzz", 3); len(got) != 0 {
		t.Errorf("expected no suggestions, got %v", got)
	}
}

func TestWonderPlayer(t *testing.T) {
	w, ok := cards.WonderByName("olympia")
	if !ok {
		t.Fatal("olympia not found")
	}
	p := w.Player("a", 2, 3)
	if p.WonderResource != "W" || p.Coins != 3 {
		t.Errorf("got resource %q coins %d", p.WonderResource, p.Coins)
	}
	if !p.HasBuiltStage(effects.DiscountTag) {
		t.Error("second stage should be built")
	}
	if again, _ := cards.WonderByName("Olympia"); again.Stages[1].Built {
		t.Error("Player must not mark the shared board")
	}
}

func TestCatalogueAffordability(t *testing.T) {
	ev := engine.NewEvaluator(engine.DefaultConfig(), effects.Default())
	gizah, _ := cards.WonderByName("Gizah")
	rhodos, _ := cards.WonderByName("Rhodos")
	babylon, _ := cards.WonderByName("Babylon")

	me := gizah.Player("me", 0, 3)
	lumber, _ := cards.Lookup("Lumber Yard")
	me.Played = []engine.Card{lumber}
	snap := &engine.Snapshot{
		Seats: []string{"me", "cw", "ccw"},
		Players: map[string]*engine.PlayerState{
			"me":  me,
			"cw":  rhodos.Player("cw", 0, 3),
			"ccw": babylon.Player("ccw", 0, 3),
		},
	}
	for _, tt := range []struct {
		name string
		ok   bool
	}{
		{"Baths", true},
		{"Stockade", true},
		{"Barracks", true},
		{"Guard Tower", true},
		{"Stables", false},
		{"Lumber Yard", false},
		{"Aqueduct", false},
	} {
		c, _ := cards.Lookup(tt.name)
		got, err := ev.Evaluate(&c, snap, "me")
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if got != tt.ok {
			t.Errorf("%s: affordable got %v, want %v", tt.name, got, tt.ok)
		}
	}
}
