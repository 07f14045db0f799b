package engine

// Inventory is what a player produces this turn: fixed units plus
// either-of-N slots.
type Inventory struct {
	Fixed  map[Resource]int
	Groups []Group
}

func newInventory() *Inventory {
	return &Inventory{Fixed: make(map[Resource]int)}
}

// addProduction records a produced value such as "O", "OO" or "W/S/O/C".
func (inv *Inventory) addProduction(value string) {
	units, groups := parseUnits(value)
	for r, n := range units {
		inv.Fixed[r] += n
	}
	inv.Groups = append(inv.Groups, groups...)
}

// ownInventory collects everything the acting player produces.
func ownInventory(p *PlayerState) *Inventory {
	inv := newInventory()
	inv.addProduction(p.WonderResource)
	for _, s := range p.Stages {
		if s.Built && s.Resource != "" {
			inv.addProduction(s.Resource)
		}
	}
	for _, c := range p.Played {
		if c.IsResource() {
			inv.addProduction(c.Produces)
		}
	}
	return inv
}

// tradeableInventory is the part of a neighbor's production the market can
// sell: the wonder resource and brown or grey cards.
func tradeableInventory(p *PlayerState) *Inventory {
	inv := newInventory()
	inv.addProduction(p.WonderResource)
	for _, c := range p.Played {
		if c.IsResource() && c.Color.Tradeable() {
			inv.addProduction(c.Produces)
		}
	}
	return inv
}

// canSupply reports whether every unit in want can be delivered at once.
// Fixed units are spent first, the rest are matched to distinct groups.
func (inv *Inventory) canSupply(want map[Resource]int) bool {
	var rest []Resource
	for _, r := range AllResources() {
		n := want[r] - inv.Fixed[r]
		for i := 0; i < n; i++ {
			rest = append(rest, r)
		}
	}
	if len(rest) == 0 {
		return true
	}
	if len(rest) > len(inv.Groups) {
		return false
	}

	owner := make([]int, len(inv.Groups)) // group -> unit index + 1
	var assign func(u int, seen []bool) bool
	assign = func(u int, seen []bool) bool {
		for g, grp := range inv.Groups {
			if seen[g] || !grp.Contains(rest[u]) {
				continue
			}
			seen[g] = true
			if owner[g] == 0 || assign(owner[g]-1, seen) {
				owner[g] = u + 1
				return true
			}
		}
		return false
	}
	for u := range rest {
		if !assign(u, make([]bool, len(inv.Groups))) {
			return false
		}
	}
	return true
}
