package engine

import (
	"fmt"
	"strings"
)

// CardColor represents the card categories.
type CardColor int

const (
	ColorNone   CardColor = 0
	ColorBrown  CardColor = 1 // raw materials
	ColorGrey   CardColor = 2 // manufactured goods
	ColorYellow CardColor = 3 // commercial
	ColorBlue   CardColor = 4 // civilian
	ColorGreen  CardColor = 5 // scientific
	ColorRed    CardColor = 6 // military
	ColorPurple CardColor = 7 // guilds
)

var colorNames = map[CardColor]string{
	ColorNone:   "none",
	ColorBrown:  "brown",
	ColorGrey:   "grey",
	ColorYellow: "yellow",
	ColorBlue:   "blue",
	ColorGreen:  "green",
	ColorRed:    "red",
	ColorPurple: "purple",
}

func (c CardColor) String() string {
	if s, ok := colorNames[c]; ok {
		return s
	}
	return "unknown"
}

// Tradeable reports whether production on cards of this color can be bought
// by neighbors.
func (c CardColor) Tradeable() bool {
	return c == ColorBrown || c == ColorGrey
}

func (c CardColor) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *CardColor) UnmarshalText(b []byte) error {
	color, ok := ParseColor(string(b))
	if !ok {
		return fmt.Errorf("unknown card color %q", string(b))
	}
	*c = color
	return nil
}

// ParseColor maps a color tag to a CardColor; "gray" is accepted.
func ParseColor(s string) (CardColor, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ColorNone, true
	}
	if s == "gray" {
		return ColorGrey, true
	}
	for c, name := range colorNames {
		if name == s {
			return c, true
		}
	}
	return ColorNone, false
}

// Card is a playable card. Combos and Affordable are written by evaluation.
type Card struct {
	Name     string    `json:"name"`
	Color    CardColor `json:"color"`
	Cost     Cost      `json:"cost"`
	Free     bool      `json:"free,omitempty"`
	Produces string    `json:"produces,omitempty"` // e.g. "O", "OO", "W/C"

	Combos     []Combo `json:"combos"`
	Affordable bool    `json:"affordable"`
}

// IsResource reports whether the card produces resources once played.
func (c Card) IsResource() bool {
	return c.Produces != ""
}

// Stage is one wonder stage.
type Stage struct {
	Built    bool   `json:"built"`
	Resource string `json:"resource,omitempty"`
	Discount string `json:"discount,omitempty"`
}

// PlayerState is one player's view inside a snapshot.
type PlayerState struct {
	ID             string  `json:"id"`
	Wonder         string  `json:"wonder,omitempty"`
	WonderResource string  `json:"wonder_resource"`
	Stages         []Stage `json:"stages,omitempty"`
	Played         []Card  `json:"played,omitempty"`
	Coins          int     `json:"coins"`
}

// HasPlayed returns true if a card with the given name is already in play.
func (p *PlayerState) HasPlayed(name string) bool {
	for _, c := range p.Played {
		if c.Name == name {
			return true
		}
	}
	return false
}

// HasBuiltStage returns true if a built stage carries the given discount tag.
func (p *PlayerState) HasBuiltStage(discount string) bool {
	for _, s := range p.Stages {
		if s.Built && s.Discount == discount {
			return true
		}
	}
	return false
}

// Snapshot is one consistent instant of table state. Seats lists player ids
// in clockwise order; neighbors are found by index arithmetic on that ring.
type Snapshot struct {
	Epoch   uint64                  `json:"epoch"`
	Seats   []string                `json:"seats"`
	Players map[string]*PlayerState `json:"players"`
}

// MinSeats is the smallest table the neighbor ring supports.
const MinSeats = 3

// Validate checks the ring against the player map.
func (s *Snapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil snapshot", ErrSnapshotInconsistency)
	}
	if len(s.Seats) < MinSeats {
		return fmt.Errorf("%w: %d seats, need at least %d", ErrSnapshotInconsistency, len(s.Seats), MinSeats)
	}
	seen := make(map[string]bool, len(s.Seats))
	for _, id := range s.Seats {
		if seen[id] {
			return fmt.Errorf("%w: seat %q listed twice", ErrSnapshotInconsistency, id)
		}
		seen[id] = true
		if s.Players[id] == nil {
			return fmt.Errorf("%w: no entry for seat %q", ErrSnapshotInconsistency, id)
		}
	}
	return nil
}

func (s *Snapshot) seatIndex(id string) int {
	for i, seat := range s.Seats {
		if seat == id {
			return i
		}
	}
	return -1
}

// Player returns the entry for a seated player.
func (s *Snapshot) Player(id string) (*PlayerState, error) {
	if s.seatIndex(id) < 0 {
		return nil, fmt.Errorf("%w: player %q is not seated", ErrSnapshotInconsistency, id)
	}
	p := s.Players[id]
	if p == nil {
		return nil, fmt.Errorf("%w: no entry for player %q", ErrSnapshotInconsistency, id)
	}
	return p, nil
}

// Neighbors returns the clockwise and counter-clockwise neighbors of id.
func (s *Snapshot) Neighbors(id string) (cw, ccw *PlayerState, err error) {
	i := s.seatIndex(id)
	if i < 0 {
		return nil, nil, fmt.Errorf("%w: player %q is not seated", ErrSnapshotInconsistency, id)
	}
	n := len(s.Seats)
	if cw, err = s.Player(s.Seats[(i+1)%n]); err != nil {
		return nil, nil, err
	}
	if ccw, err = s.Player(s.Seats[(i-1+n)%n]); err != nil {
		return nil, nil, err
	}
	return cw, ccw, nil
}
