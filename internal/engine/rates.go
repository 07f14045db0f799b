package engine

import "fmt"

// Direction names a trading partner relative to the acting player.
type Direction int

const (
	Clockwise Direction = iota
	CounterClockwise
)

var directionNames = map[Direction]string{
	Clockwise:        "clockwise",
	CounterClockwise: "counter_clockwise",
}

func (d Direction) String() string {
	if s, ok := directionNames[d]; ok {
		return s
	}
	return "Unknown"
}

// Rates is the per-unit price of each resource in each direction.
type Rates struct {
	price [2][numResources]int
}

// NewRates fills the table with one price for raw materials and one for
// manufactured goods, in both directions.
func NewRates(raw, goods int) *Rates {
	r := &Rates{}
	for d := range r.price {
		for _, res := range AllResources() {
			if res.Raw() {
				r.price[d][res] = raw
			} else {
				r.price[d][res] = goods
			}
		}
	}
	return r
}

// SetRaw sets the raw material price for one direction.
func (r *Rates) SetRaw(d Direction, price int) {
	for _, res := range AllResources() {
		if res.Raw() {
			r.price[d][res] = price
		}
	}
}

// SetGoods sets the manufactured goods price for both directions.
func (r *Rates) SetGoods(price int) {
	for d := range r.price {
		for _, res := range AllResources() {
			if !res.Raw() {
				r.price[d][res] = price
			}
		}
	}
}

// Price returns the unit price of res bought in direction d.
func (r *Rates) Price(res Resource, d Direction) (int, error) {
	if !res.Valid() {
		return 0, fmt.Errorf("%w: %w %d", ErrSnapshotInconsistency, ErrUnknownResource, int(res))
	}
	if d != Clockwise && d != CounterClockwise {
		return 0, fmt.Errorf("%w: unknown direction %d", ErrSnapshotInconsistency, int(d))
	}
	return r.price[d][res], nil
}

// Table returns the prices keyed by direction and resource name.
func (r *Rates) Table() map[string]map[string]int {
	out := make(map[string]map[string]int, 2)
	for _, d := range []Direction{Clockwise, CounterClockwise} {
		row := make(map[string]int, numResources)
		for _, res := range AllResources() {
			row[res.String()] = r.price[d][res]
		}
		out[d.String()] = row
	}
	return out
}
