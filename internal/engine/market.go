package engine

// neighborView is what one neighbor can sell against a requirement.
type neighborView struct {
	Fixed  map[Resource]int
	Groups []Group
}

// viewFor resolves a neighbor's tradeable production against a copy of req.
// Forced group members count as plain supply; undecided groups are kept only
// while they still touch the reduced requirement.
func viewFor(inv *Inventory, req Requirement) neighborView {
	rest := subtractFixed(req, inv.Fixed)
	rest, used, groups := resolveForced(rest, inv.Groups)

	fixed := make(map[Resource]int, len(inv.Fixed)+len(used))
	for r, n := range inv.Fixed {
		fixed[r] = n
	}
	for _, r := range used {
		fixed[r]++
	}
	return neighborView{Fixed: fixed, Groups: usable(rest, groups)}
}

func (v neighborView) optional(r Resource) int {
	n := 0
	for _, g := range v.Groups {
		if g.Contains(r) {
			n++
		}
	}
	return n
}

// supply summarizes every source for one required resource.
type supply struct {
	Resource    Resource
	Optional    int // own undecided groups offering it
	CwFixed     int
	CwOptional  int
	CcwFixed    int
	CcwOptional int
	Required    int
}

func (s supply) total() int {
	return s.Optional + s.CwFixed + s.CwOptional + s.CcwFixed + s.CcwOptional
}

// isRequired is true when every available unit is needed.
func (s supply) isRequired() bool {
	return s.total() == s.Required
}

func (s supply) maxClockwise() int        { return s.CwFixed + s.CwOptional }
func (s supply) maxCounterClockwise() int { return s.CcwFixed + s.CcwOptional }

// market is the trading picture for the acting player at one point of the
// resolution.
type market struct {
	cw, ccw *Inventory
	cwView  neighborView
	ccwView neighborView
}

func newMarket(cw, ccw *PlayerState) *market {
	return &market{cw: tradeableInventory(cw), ccw: tradeableInventory(ccw)}
}

// refresh recomputes both neighbor views for req.
func (m *market) refresh(req Requirement) {
	m.cwView = viewFor(m.cw, req)
	m.ccwView = viewFor(m.ccw, req)
}

func (m *market) summarize(r Resource, req Requirement, own []Group) supply {
	s := supply{
		Resource:    r,
		CwFixed:     m.cwView.Fixed[r],
		CwOptional:  m.cwView.optional(r),
		CcwFixed:    m.ccwView.Fixed[r],
		CcwOptional: m.ccwView.optional(r),
		Required:    req[r],
	}
	for _, g := range own {
		if g.Contains(r) {
			s.Optional++
		}
	}
	return s
}

// feasible reports whether every required kind has enough combined supply.
func (m *market) feasible(req Requirement, own []Group) bool {
	for _, r := range req.Kinds() {
		s := m.summarize(r, req, own)
		if s.total() < s.Required {
			return false
		}
	}
	return true
}
