package protocol

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/mitchellh/mapstructure"

	"wonders/internal/engine"
)

// legacyCard is a played card as the turn manager describes it.
type legacyCard struct {
	Name       string           `json:"name"`
	Color      engine.CardColor `json:"color"`
	Cost       engine.Cost      `json:"cost"`
	IsFree     bool             `json:"isFree"`
	IsResource bool             `json:"isResource"`
	Value      string           `json:"value"`
}

type legacyStage struct {
	IsBuilt    bool   `json:"isBuilt"`
	IsResource bool   `json:"isResource"`
	Resource   string `json:"resource"`
	Custom     string `json:"custom"`
}

type legacyPlayer struct {
	WonderName             string        `json:"wonderName"`
	WonderResource         string        `json:"wonderResource"`
	StagesInfo             []legacyStage `json:"stagesInfo"`
	CardsPlayed            []legacyCard  `json:"cardsPlayed"`
	Coins                  int           `json:"coins"`
	ClockwisePlayer        string        `json:"clockwisePlayer"`
	CounterClockwisePlayer string        `json:"counterClockwisePlayer"`
}

// costHookFunc accepts null, a number or an encoded string for a cost.
func costHookFunc() mapstructure.DecodeHookFunc {
	costType := reflect.TypeOf(engine.Cost{})
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != costType {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return engine.ParseCost(v), nil
		case float64:
			coins, err := engine.CoinAmount(v)
			if err != nil {
				return nil, err
			}
			return engine.CoinCost(coins), nil
		case int:
			return engine.CoinCost(v), nil
		case int64:
			return engine.CoinCost(int(v)), nil
		}
		return data, nil
	}
}

// colorHookFunc maps color tags such as "brown" to CardColor.
func colorHookFunc() mapstructure.DecodeHookFunc {
	colorType := reflect.TypeOf(engine.ColorNone)
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != colorType || from.Kind() != reflect.String {
			return data, nil
		}
		c, ok := engine.ParseColor(data.(string))
		if !ok {
			return nil, fmt.Errorf("unknown card color %q", data)
		}
		return c, nil
	}
}

// DecodePlayersInfo turns the keyed-by-player form with explicit neighbor
// links into a Snapshot with a seat ring. The links must form one cycle in
// which every counter-clockwise link mirrors a clockwise one.
func DecodePlayersInfo(info map[string]any, epoch uint64) (*engine.Snapshot, error) {
	var players map[string]legacyPlayer
	decoderConfig := &mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(costHookFunc(), colorHookFunc()),
		Result:     &players,
		TagName:    "json",
	}
	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(info); err != nil {
		return nil, fmt.Errorf("players info: %w", err)
	}

	seats, err := ring(players)
	if err != nil {
		return nil, err
	}
	snap := &engine.Snapshot{
		Epoch:   epoch,
		Seats:   seats,
		Players: make(map[string]*engine.PlayerState, len(players)),
	}
	for id, lp := range players {
		snap.Players[id] = lp.state(id)
	}
	return snap, snap.Validate()
}

func (lp legacyPlayer) state(id string) *engine.PlayerState {
	p := &engine.PlayerState{
		ID:             id,
		Wonder:         lp.WonderName,
		WonderResource: lp.WonderResource,
		Coins:          lp.Coins,
	}
	for _, s := range lp.StagesInfo {
		st := engine.Stage{Built: s.IsBuilt, Discount: s.Custom}
		if s.IsResource {
			st.Resource = s.Resource
		}
		p.Stages = append(p.Stages, st)
	}
	for _, c := range lp.CardsPlayed {
		card := engine.Card{Name: c.Name, Color: c.Color, Cost: c.Cost, Free: c.IsFree}
		if c.IsResource {
			card.Produces = c.Value
		}
		p.Played = append(p.Played, card)
	}
	return p
}

// ring walks clockwise links from the smallest id.
func ring(players map[string]legacyPlayer) ([]string, error) {
	if len(players) == 0 {
		return nil, fmt.Errorf("%w: no players", engine.ErrSnapshotInconsistency)
	}
	ids := make([]string, 0, len(players))
	for id := range players {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	seats := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for id := ids[0]; !seen[id]; {
		p, ok := players[id]
		if !ok {
			return nil, fmt.Errorf("%w: neighbor %q has no entry", engine.ErrSnapshotInconsistency, id)
		}
		seen[id] = true
		seats = append(seats, id)
		next := p.ClockwisePlayer
		if q, ok := players[next]; ok && q.CounterClockwisePlayer != id {
			return nil, fmt.Errorf("%w: %q and %q disagree on seating", engine.ErrSnapshotInconsistency, id, next)
		}
		id = next
	}
	if len(seats) != len(players) || seats[0] != players[seats[len(seats)-1]].ClockwisePlayer {
		return nil, fmt.Errorf("%w: neighbor links do not form a single ring", engine.ErrSnapshotInconsistency)
	}
	return seats, nil
}

// Resolve returns the snapshot carried by m, decoding the players info form
// when no snapshot is given.
func (m SnapshotMsg) Resolve() (*engine.Snapshot, error) {
	switch {
	case m.Snapshot != nil:
		if m.Snapshot.Epoch == 0 {
			m.Snapshot.Epoch = m.Epoch
		}
		return m.Snapshot, m.Snapshot.Validate()
	case m.PlayersInfo != nil:
		return DecodePlayersInfo(m.PlayersInfo, m.Epoch)
	default:
		return nil, fmt.Errorf("%w: no snapshot given", engine.ErrSnapshotInconsistency)
	}
}
