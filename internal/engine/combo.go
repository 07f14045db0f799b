package engine

import (
	"sort"
	"strconv"
	"strings"
)

// Payment is what one source contributes to a combo.
type Payment struct {
	Count     int        `json:"count"`
	Cost      int        `json:"cost"`
	Resources []Resource `json:"resources"`
}

func (p Payment) add(o Payment) Payment {
	res := make([]Resource, 0, len(p.Resources)+len(o.Resources))
	res = append(res, p.Resources...)
	res = append(res, o.Resources...)
	return Payment{Count: p.Count + o.Count, Cost: p.Cost + o.Cost, Resources: res}
}

// units counts the bought resources per kind.
func (p Payment) units() map[Resource]int {
	out := make(map[Resource]int, len(p.Resources))
	for _, r := range p.Resources {
		out[r]++
	}
	return out
}

// Combo is one complete way to pay for a card.
type Combo struct {
	Self             Payment `json:"self"`
	Clockwise        Payment `json:"clockwise"`
	CounterClockwise Payment `json:"counter_clockwise"`
}

// Total is the number of coins the combo costs.
func (c Combo) Total() int {
	return c.Self.Cost + c.Clockwise.Cost + c.CounterClockwise.Cost
}

func (c Combo) add(o Combo) Combo {
	return Combo{
		Self:             c.Self.add(o.Self),
		Clockwise:        c.Clockwise.add(o.Clockwise),
		CounterClockwise: c.CounterClockwise.add(o.CounterClockwise),
	}
}

func (c Combo) key() string {
	var b strings.Builder
	for _, p := range []Payment{c.Self, c.Clockwise, c.CounterClockwise} {
		b.WriteString(strconv.Itoa(p.Count))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(p.Cost))
		b.WriteByte(':')
		for _, r := range p.Resources {
			b.WriteByte(r.Letter())
		}
		b.WriteByte('|')
	}
	return b.String()
}

func zeroCombo() Combo {
	return Combo{
		Self:             Payment{Resources: []Resource{}},
		Clockwise:        Payment{Resources: []Resource{}},
		CounterClockwise: Payment{Resources: []Resource{}},
	}
}

func purchase(r Resource, n, price int) Payment {
	res := make([]Resource, n)
	for i := range res {
		res[i] = r
	}
	return Payment{Count: n, Cost: n * price, Resources: res}
}

// buyOptions lists the ways to cover one resource from own undecided slots
// and the two neighbors. Self units cost nothing.
func buyOptions(s supply, rates *Rates) ([]Combo, error) {
	cwPrice, err := rates.Price(s.Resource, Clockwise)
	if err != nil {
		return nil, err
	}
	ccwPrice, err := rates.Price(s.Resource, CounterClockwise)
	if err != nil {
		return nil, err
	}
	maxCw, maxCcw := s.maxClockwise(), s.maxCounterClockwise()

	build := func(self, cw, ccw int) Combo {
		return Combo{
			Self:             Payment{Count: self, Resources: purchase(s.Resource, self, 0).Resources},
			Clockwise:        purchase(s.Resource, cw, cwPrice),
			CounterClockwise: purchase(s.Resource, ccw, ccwPrice),
		}
	}

	var out []Combo
	if s.Optional > 0 {
		self := min(s.Optional, s.Required)
		rest := s.Required - self
		switch {
		case maxCw >= rest:
			out = append(out, build(self, rest, 0))
		case maxCw+maxCcw >= rest:
			out = append(out, build(self, maxCw, rest-maxCw))
		}
		switch {
		case maxCcw >= rest:
			out = append(out, build(self, 0, rest))
		case maxCw+maxCcw >= rest:
			out = append(out, build(self, rest-maxCcw, maxCcw))
		}
	}
	for i := 0; i <= maxCw && i <= s.Required; i++ {
		if i+maxCcw >= s.Required {
			out = append(out, build(0, i, s.Required-i))
		}
	}
	return dedupe(out), nil
}

// combine folds per-resource option lists into whole-card combos by
// cartesian product, left to right.
func combine(sets [][]Combo) []Combo {
	if len(sets) == 0 {
		return nil
	}
	acc := sets[0]
	for _, next := range sets[1:] {
		merged := make([]Combo, 0, len(acc)*len(next))
		for _, a := range acc {
			for _, b := range next {
				merged = append(merged, a.add(b))
			}
		}
		acc = merged
	}
	return acc
}

func dedupe(combos []Combo) []Combo {
	seen := make(map[string]bool, len(combos))
	out := combos[:0:0]
	for _, c := range combos {
		k := c.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out
}

// withinBudget keeps the combos the player can pay for.
func withinBudget(combos []Combo, coins int) []Combo {
	var out []Combo
	for _, c := range combos {
		if c.Total() <= coins {
			out = append(out, c)
		}
	}
	return out
}

func sortByTotal(combos []Combo) {
	sort.SliceStable(combos, func(i, j int) bool {
		return combos[i].Total() < combos[j].Total()
	})
}

// minTotal returns the cheapest combo total, or ok=false for no combos.
func minTotal(combos []Combo, pred func(Combo) bool) (int, bool) {
	best, ok := 0, false
	for _, c := range combos {
		if !pred(c) {
			continue
		}
		if t := c.Total(); !ok || t < best {
			best, ok = t, true
		}
	}
	return best, ok
}
