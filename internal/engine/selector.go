package engine

import (
	"math"
	"sort"
)

// wildcardRank defers "any of three or more" slots; requiredRank pulls
// groups with a load-bearing member to the front.
const (
	wildcardRank = 10
	requiredRank = -10
)

// selector commits the player's undecided slots one at a time.
type selector struct {
	req    Requirement
	groups []Group
	market *market
	rates  *Rates
}

// summaries returns the supply of each still-required member of g.
func (s *selector) summaries(g Group) []supply {
	var out []supply
	for _, r := range g {
		if s.req.Needs(r) {
			out = append(out, s.market.summarize(r, s.req, s.groups))
		}
	}
	return out
}

// rank orders groups: lower is resolved first.
func (s *selector) rank(g Group) int {
	if len(g) >= 3 {
		return wildcardRank
	}
	ss := s.summaries(g)
	lo, hi := math.MaxInt, math.MinInt
	for _, x := range ss {
		if x.isRequired() {
			return requiredRank
		}
		d := x.Optional - x.Required
		lo = min(lo, d)
		hi = max(hi, d)
	}
	if len(ss) == 0 {
		return wildcardRank
	}
	return lo - hi
}

// run commits slots until none can contribute and returns the reduced
// requirement.
func (s *selector) run() (Requirement, error) {
	for {
		s.groups = usable(s.req, s.groups)
		if len(s.groups) == 0 {
			return s.req, nil
		}
		ranks := make([]int, len(s.groups))
		for i, g := range s.groups {
			ranks[i] = s.rank(g)
		}
		idx := make([]int, len(s.groups))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool { return ranks[idx[a]] < ranks[idx[b]] })

		current := s.groups[idx[0]]
		chosen, err := s.pick(s.summaries(current))
		if err != nil {
			return nil, err
		}
		s.req.Take(chosen, 1)
		s.groups = append(s.groups[:idx[0]:idx[0]], s.groups[idx[0]+1:]...)
	}
}

// pick chooses which member of the current slot to produce. A load-bearing
// member wins outright; otherwise members whose own supply does not exceed
// demand are preferred, then larger average savings, then scarcer neighbor
// supply.
func (s *selector) pick(ss []supply) (Resource, error) {
	best := 0
	for i := range ss {
		if ss[i].isRequired() {
			return ss[i].Resource, nil
		}
		cur := ss[best]
		switch {
		case ss[i].Optional <= ss[i].Required && cur.Optional > cur.Required:
			best = i
		case ss[i].Optional <= ss[i].Required || cur.Optional > cur.Required:
			bestSavings, err := s.savings(cur)
			if err != nil {
				return 0, err
			}
			curSavings, err := s.savings(ss[i])
			if err != nil {
				return 0, err
			}
			if curSavings > bestSavings ||
				(curSavings == bestSavings && ss[i].CwFixed+ss[i].CcwFixed < ss[i].Required) {
				best = i
			}
		}
	}
	return ss[best].Resource, nil
}

// savings is the average coins saved per own slot by producing x instead of
// buying it all.
func (s *selector) savings(x supply) (float64, error) {
	combos, err := buyOptions(x, s.rates)
	if err != nil {
		return 0, err
	}
	withSelf, ok := minTotal(combos, func(c Combo) bool { return c.Self.Count > 0 })
	if !ok {
		return math.Inf(-1), nil
	}
	withoutSelf, ok := minTotal(combos, func(c Combo) bool { return c.Self.Count == 0 })
	if !ok {
		return math.Inf(1), nil
	}
	return float64(withoutSelf-withSelf) / float64(x.Optional), nil
}
