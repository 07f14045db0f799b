package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CostKind tags the three shapes a card cost can take.
type CostKind int

const (
	CostFree      CostKind = iota // nothing to pay
	CostCoins                     // flat coin amount, paid from the treasury
	CostResources                 // resource units plus optional groups
)

var costKindNames = map[CostKind]string{
	CostFree:      "Free",
	CostCoins:     "Coins",
	CostResources: "Resources",
}

func (k CostKind) String() string {
	if s, ok := costKindNames[k]; ok {
		return s
	}
	return "Unknown"
}

// Cost is the normalized price of a card.
type Cost struct {
	Kind   CostKind
	Coins  int
	Units  Requirement
	Groups []Group
}

// FreeCost returns the zero cost.
func FreeCost() Cost {
	return Cost{Kind: CostFree}
}

// CoinCost returns a flat coin cost; zero or negative amounts are free.
func CoinCost(n int) Cost {
	if n <= 0 {
		return FreeCost()
	}
	return Cost{Kind: CostCoins, Coins: n}
}

// ParseCost reads a card cost string. Digits give a coin cost; otherwise each
// letter is one resource unit and letters joined by '/' form one optional
// group. Unknown tokens are dropped and an empty result is free.
func ParseCost(s string) Cost {
	s = strings.TrimSpace(s)
	if s == "" {
		return FreeCost()
	}
	if n, err := strconv.Atoi(s); err == nil {
		return CoinCost(n)
	}
	units, groups := parseUnits(s)
	if units.Empty() && len(groups) == 0 {
		return FreeCost()
	}
	return Cost{Kind: CostResources, Units: units, Groups: groups}
}

// parseUnits splits a resource string into fixed units and optional groups.
// It is shared by cost strings and produced values ("OO", "W/S/O/C").
func parseUnits(s string) (Requirement, []Group) {
	units := Requirement{}
	var groups []Group

	runes := []rune(strings.ToUpper(s))
	for i := 0; i < len(runes); {
		j := i + 1
		for j+1 < len(runes) && runes[j] == '/' {
			j += 2
		}
		token := runes[i:j]
		i = j

		if len(token) == 1 {
			if r, ok := ParseResource(token[0]); ok {
				units.Add(r, 1)
			}
			continue
		}

		var g Group
		valid := true
		for k := 0; k < len(token); k += 2 {
			r, ok := ParseResource(token[k])
			if !ok {
				valid = false
				break
			}
			if !g.Contains(r) {
				g = append(g, r)
			}
		}
		switch {
		case !valid:
		case len(g) == 1:
			units.Add(g[0], 1)
		default:
			groups = append(groups, g)
		}
	}
	return units, groups
}

// IsFree reports whether nothing has to be paid.
func (c Cost) IsFree() bool {
	switch c.Kind {
	case CostCoins:
		return c.Coins <= 0
	case CostResources:
		return c.Units.Empty() && len(c.Groups) == 0
	default:
		return true
	}
}

func (c Cost) String() string {
	switch c.Kind {
	case CostCoins:
		return strconv.Itoa(c.Coins)
	case CostResources:
		var b strings.Builder
		b.WriteString(c.Units.String())
		for _, g := range c.Groups {
			b.WriteString(g.String())
		}
		return b.String()
	default:
		return ""
	}
}

// branches expands the optional groups of a resource cost into every plain
// requirement they allow, in member order.
func (c Cost) branches() []Requirement {
	out := []Requirement{c.Units.Clone()}
	for _, g := range c.Groups {
		next := make([]Requirement, 0, len(out)*len(g))
		for _, base := range out {
			for _, r := range g {
				q := base.Clone()
				q.Add(r, 1)
				next = append(next, q)
			}
		}
		out = next
	}
	return out
}

// MarshalJSON writes null for free, a number for coins and a string otherwise.
func (c Cost) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CostCoins:
		return json.Marshal(c.Coins)
	case CostResources:
		return json.Marshal(c.String())
	default:
		return []byte("null"), nil
	}
}

func (c *Cost) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = FreeCost()
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = ParseCost(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("cost must be null, a number or a string: %w", err)
	}
	coins, err := coinAmount(n)
	if err != nil {
		return err
	}
	*c = CoinCost(coins)
	return nil
}

// coinAmount reads a whole coin count. Fractions are rejected rather than
// truncated.
func coinAmount(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("cost: %w", err)
	}
	return CoinAmount(f)
}

// CoinAmount converts a decoded number into a coin count.
func CoinAmount(f float64) (int, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("cost: %v is not a whole number of coins", f)
	}
	return int(f), nil
}
