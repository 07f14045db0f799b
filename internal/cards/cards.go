// Package cards is the base game catalogue.
package cards

import (
	"strings"

	"wonders/internal/engine"
)

// Entry is a catalogue card with the age it first appears in.
type Entry struct {
	engine.Card
	Age int `json:"age"`
}

var catalogue = build()

func build() []Entry {
	var cards []Entry
	seen := make(map[string]bool)
	add := func(age int, name string, color engine.CardColor, cost, produces string) {
		if seen[name] {
			return
		}
		seen[name] = true
		cards = append(cards, Entry{
			Card: engine.Card{Name: name, Color: color, Cost: engine.ParseCost(cost), Produces: produces},
			Age:  age,
		})
	}
	brown, grey := engine.ColorBrown, engine.ColorGrey
	yellow, blue, green, red, purple := engine.ColorYellow, engine.ColorBlue, engine.ColorGreen, engine.ColorRed, engine.ColorPurple

	// Age I
	add(1, "Lumber Yard", brown, "", "W")
	add(1, "Stone Pit", brown, "", "S")
	add(1, "Clay Pool", brown, "", "C")
	add(1, "Ore Vein", brown, "", "O")
	add(1, "Tree Farm", brown, "1", "W/C")
	add(1, "Excavation", brown, "1", "S/C")
	add(1, "Clay Pit", brown, "1", "C/O")
	add(1, "Timber Yard", brown, "1", "S/W")
	add(1, "Forest Cave", brown, "1", "W/O")
	add(1, "Mine", brown, "1", "S/O")
	add(1, "Loom", grey, "", "L")
	add(1, "Glassworks", grey, "", "G")
	add(1, "Press", grey, "", "P")
	add(1, "Pawnshop", blue, "", "")
	add(1, "Baths", blue, "S", "")
	add(1, "Altar", blue, "", "")
	add(1, "Theater", blue, "", "")
	add(1, "Tavern", yellow, "", "")
	add(1, "East Trading Post", yellow, "", "")
	add(1, "West Trading Post", yellow, "", "")
	add(1, "Marketplace", yellow, "", "")
	add(1, "Stockade", red, "W", "")
	add(1, "Barracks", red, "O", "")
	add(1, "Guard Tower", red, "C", "")
	add(1, "Apothecary", green, "L", "")
	add(1, "Workshop", green, "G", "")
	add(1, "Scriptorium", green, "P", "")

	// Age II
	add(2, "Sawmill", brown, "1", "WW")
	add(2, "Quarry", brown, "1", "SS")
	add(2, "Brickyard", brown, "1", "CC")
	add(2, "Foundry", brown, "1", "OO")
	add(2, "Aqueduct", blue, "SSS", "")
	add(2, "Temple", blue, "WCG", "")
	add(2, "Statue", blue, "OOW", "")
	add(2, "Courthouse", blue, "CCL", "")
	add(2, "Forum", yellow, "CCO", "L/G/P")
	add(2, "Caravansery", yellow, "WW", "W/S/O/C")
	add(2, "Vineyard", yellow, "", "")
	add(2, "Bazar", yellow, "", "")
	add(2, "Walls", red, "SSS", "")
	add(2, "Training Ground", red, "OOW", "")
	add(2, "Stables", red, "CWO", "")
	add(2, "Archery Range", red, "WWO", "")
	add(2, "Dispensary", green, "OOG", "")
	add(2, "Laboratory", green, "CCP", "")
	add(2, "Library", green, "SSL", "")
	add(2, "School", green, "WP", "")

	// Age III
	add(3, "Pantheon", blue, "CCOGPL", "")
	add(3, "Gardens", blue, "CCW", "")
	add(3, "Town Hall", blue, "SSOG", "")
	add(3, "Palace", blue, "SOWCGPL", "")
	add(3, "Senate", blue, "WWSO", "")
	add(3, "Haven", yellow, "WOL", "")
	add(3, "Lighthouse", yellow, "SG", "")
	add(3, "Chamber of Commerce", yellow, "CCP", "")
	add(3, "Arena", yellow, "SSO", "")
	add(3, "Fortifications", red, "OOOC", "")
	add(3, "Circus", red, "SSSO", "")
	add(3, "Arsenal", red, "WWOL", "")
	add(3, "Siege Workshop", red, "CCCW", "")
	add(3, "Lodge", green, "CCLP", "")
	add(3, "Observatory", green, "OOGL", "")
	add(3, "University", green, "WWGP", "")
	add(3, "Academy", green, "SSSG", "")
	add(3, "Study", green, "WPL", "")
	add(3, "Workers Guild", purple, "OOCSW", "")
	add(3, "Craftsmens Guild", purple, "OOSS", "")
	add(3, "Traders Guild", purple, "LPG", "")
	add(3, "Philosophers Guild", purple, "CCCLP", "")
	add(3, "Spies Guild", purple, "CCCG", "")
	add(3, "Strategists Guild", purple, "OOSL", "")
	add(3, "Shipowners Guild", purple, "WWWGP", "")
	add(3, "Scientists Guild", purple, "WWOOP", "")
	add(3, "Magistrates Guild", purple, "WWWSL", "")
	add(3, "Builders Guild", purple, "SSCCG", "")

	return cards
}

// All returns a copy of the catalogue in age order.
func All() []Entry {
	out := make([]Entry, len(catalogue))
	copy(out, catalogue)
	return out
}

// Age returns the cards first appearing in the given age.
func Age(age int) []Entry {
	var out []Entry
	for _, e := range catalogue {
		if e.Age == age {
			out = append(out, e)
		}
	}
	return out
}

// Lookup finds a card by name, ignoring case.
func Lookup(name string) (engine.Card, bool) {
	name = strings.TrimSpace(name)
	for _, e := range catalogue {
		if strings.EqualFold(e.Name, name) {
			return e.Card, true
		}
	}
	return engine.Card{}, false
}
