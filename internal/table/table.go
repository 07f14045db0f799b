// Package table seats players around a ring before play starts.
package table

import (
	"errors"
	"sync"

	"wonders/internal/cards"
	"wonders/internal/engine"
)

var (
	ErrStarted        = errors.New("table already started")
	ErrFull           = errors.New("table is full")
	ErrNotEnoughSeats = errors.New("not enough players")
	ErrNotReady       = errors.New("not every player is ready")
	ErrUnknownWonder  = errors.New("unknown wonder")
	ErrWonderTaken    = errors.New("wonder already taken")
)

const (
	MinSeats = engine.MinSeats
	MaxSeats = 7

	// StartingCoins is each player's treasury in the opening snapshot.
	StartingCoins = 3
)

// Seat holds table-level player information.
type Seat struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Wonder string `json:"wonder"`
	Ready  bool   `json:"ready"`
}

// Table is a group of players in clockwise seat order.
type Table struct {
	mu      sync.Mutex
	ID      string
	seats   []*Seat
	started bool
}

// New creates an empty table.
func New(id string) *Table {
	return &Table{ID: id}
}

// Join seats a player on the next free wonder. Rejoining keeps the seat and
// updates the name.
func (t *Table) Join(id, name string) error {
	return t.JoinWith(id, name, "")
}

// JoinWith seats a player on the named wonder, or the next free one when
// wonder is empty.
func (t *Table) JoinWith(id, name, wonder string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range t.seats {
		if s.ID == id {
			s.Name = name
			return nil
		}
	}
	if t.started {
		return ErrStarted
	}
	if len(t.seats) >= MaxSeats {
		return ErrFull
	}

	taken := make(map[string]bool, len(t.seats))
	for _, s := range t.seats {
		taken[s.Wonder] = true
	}
	if wonder != "" {
		w, ok := cards.WonderByName(wonder)
		if !ok {
			return ErrUnknownWonder
		}
		if taken[w.Name] {
			return ErrWonderTaken
		}
		wonder = w.Name
	} else {
		for _, w := range cards.Wonders() {
			if !taken[w.Name] {
				wonder = w.Name
				break
			}
		}
	}
	t.seats = append(t.seats, &Seat{ID: id, Name: name, Wonder: wonder})
	return nil
}

// Leave removes a player. Seats cannot change once play has started.
func (t *Table) Leave(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return
	}
	for i, s := range t.seats {
		if s.ID == id {
			t.seats = append(t.seats[:i], t.seats[i+1:]...)
			return
		}
	}
}

// SetReady toggles a player's ready state.
func (t *Table) SetReady(id string, ready bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range t.seats {
		if s.ID == id {
			s.Ready = ready
			return
		}
	}
}

// CanStart returns true if enough players are seated and all are ready.
func (t *Table) CanStart() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canStart() == nil
}

func (t *Table) canStart() error {
	if t.started {
		return ErrStarted
	}
	if len(t.seats) < MinSeats {
		return ErrNotEnoughSeats
	}
	for _, s := range t.seats {
		if !s.Ready {
			return ErrNotReady
		}
	}
	return nil
}

// Start locks the seating and returns the opening snapshot.
func (t *Table) Start() (*engine.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.canStart(); err != nil {
		return nil, err
	}
	t.started = true

	snap := &engine.Snapshot{
		Epoch:   1,
		Seats:   make([]string, len(t.seats)),
		Players: make(map[string]*engine.PlayerState, len(t.seats)),
	}
	for i, s := range t.seats {
		snap.Seats[i] = s.ID
		w, _ := cards.WonderByName(s.Wonder)
		p := w.Player(s.ID, 0, StartingCoins)
		snap.Players[s.ID] = p
	}
	return snap, nil
}

// Started reports whether seating is locked.
func (t *Table) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started
}

// Ring returns seat ids in clockwise order.
func (t *Table) Ring() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, len(t.seats))
	for i, s := range t.seats {
		out[i] = s.ID
	}
	return out
}

// Seats returns a copy of the seat list.
func (t *Table) Seats() []Seat {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Seat, len(t.seats))
	for i, s := range t.seats {
		out[i] = *s
	}
	return out
}

// Seated reports whether id holds a seat.
func (t *Table) Seated(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, s := range t.seats {
		if s.ID == id {
			return true
		}
	}
	return false
}
