package engine

import (
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

var (
	ErrSnapshotInconsistency = errors.New("snapshot inconsistency")
	ErrUnknownResource       = errors.New("unknown resource")
)

// Reason explains an evaluation outcome.
type Reason string

const (
	ReasonFree               Reason = "free"
	ReasonCoins              Reason = "coins"
	ReasonOwnResources       Reason = "own_resources"
	ReasonPurchase           Reason = "purchase"
	ReasonAlreadyPlayed      Reason = "already_played"
	ReasonInsufficientSupply Reason = "insufficient_supply"
	ReasonBudgetExceeded     Reason = "budget_exceeded"
)

// Result is the outcome of evaluating one card for one player.
type Result struct {
	Card       string   `json:"card"`
	Combos     []Combo  `json:"combos"`
	Affordable bool     `json:"affordable"`
	Reason     Reason   `json:"reason"`
	Effects    []string `json:"effects,omitempty"` // price effects in force when trading
}

func newResult(card string, reason Reason, combos ...Combo) Result {
	if combos == nil {
		combos = []Combo{}
	}
	return Result{Card: card, Combos: combos, Affordable: len(combos) > 0, Reason: reason}
}

// Evaluator decides whether cards can be paid for. It holds no table state;
// every call works on the snapshot it is given.
type Evaluator struct {
	cfg     Config
	effects *EffectRegistry
}

func NewEvaluator(cfg Config, effects *EffectRegistry) *Evaluator {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Evaluator{cfg: cfg, effects: effects}
}

// Rates returns the trade prices for player p and the names of the effects
// that lowered them.
func (e *Evaluator) Rates(p *PlayerState) (*Rates, []string) {
	r := NewRates(e.cfg.RawRate, e.cfg.GoodsRate)
	applied := e.effects.Apply(p, r, e.cfg.DiscountRate)
	return r, applied
}

// Affordability lists every way playerID can pay for card right now.
// Unaffordable cards yield an empty list; only a broken snapshot is an error.
func (e *Evaluator) Affordability(card Card, snap *Snapshot, playerID string) (Result, error) {
	if err := snap.Validate(); err != nil {
		return Result{}, err
	}
	p, err := snap.Player(playerID)
	if err != nil {
		return Result{}, err
	}
	cw, ccw, err := snap.Neighbors(playerID)
	if err != nil {
		return Result{}, err
	}

	if p.HasPlayed(card.Name) {
		return newResult(card.Name, ReasonAlreadyPlayed), nil
	}
	if card.Free || card.Cost.IsFree() {
		return newResult(card.Name, ReasonFree, zeroCombo()), nil
	}
	if card.Cost.Kind == CostCoins {
		if card.Cost.Coins > p.Coins {
			return newResult(card.Name, ReasonBudgetExceeded), nil
		}
		c := zeroCombo()
		c.Self.Count = card.Cost.Coins
		c.Self.Cost = card.Cost.Coins
		return newResult(card.Name, ReasonCoins, c), nil
	}

	rates, applied := e.Rates(p)
	own := ownInventory(p)
	m := newMarket(cw, ccw)

	var (
		all        []Combo
		overBudget bool
	)
	for _, req := range card.Cost.branches() {
		out, err := e.resolve(req, own, m, rates, p.Coins)
		if err != nil {
			return Result{}, fmt.Errorf("evaluate %q: %w", card.Name, err)
		}
		switch out.reason {
		case ReasonOwnResources:
			return newResult(card.Name, ReasonOwnResources, zeroCombo()), nil
		case ReasonBudgetExceeded:
			overBudget = true
		case ReasonPurchase:
			all = append(all, out.combos...)
		}
	}

	all = dedupe(all)
	sortByTotal(all)
	var res Result
	switch {
	case len(all) > 0:
		res = newResult(card.Name, ReasonPurchase, all...)
	case overBudget:
		res = newResult(card.Name, ReasonBudgetExceeded)
	default:
		res = newResult(card.Name, ReasonInsufficientSupply)
	}
	res.Effects = applied
	return res, nil
}

type outcome struct {
	reason Reason
	combos []Combo
}

// resolve runs one plain requirement through own production, forced slots,
// the slot selector and the neighbor market.
func (e *Evaluator) resolve(req Requirement, own *Inventory, m *market, rates *Rates, coins int) (outcome, error) {
	rest := subtractFixed(req, own.Fixed)
	if rest.Empty() {
		return outcome{reason: ReasonOwnResources}, nil
	}
	rest, _, groups := resolveForced(rest, usable(rest, own.Groups))
	if rest.Empty() {
		return outcome{reason: ReasonOwnResources}, nil
	}
	groups = usable(rest, groups)

	m.refresh(rest)
	if !m.feasible(rest, groups) {
		return outcome{reason: ReasonInsufficientSupply}, nil
	}
	sel := &selector{req: rest, groups: groups, market: m, rates: rates}
	rest, err := sel.run()
	if err != nil {
		return outcome{}, err
	}
	if rest.Empty() {
		return outcome{reason: ReasonOwnResources}, nil
	}

	m.refresh(rest)
	if !m.feasible(rest, nil) {
		return outcome{reason: ReasonInsufficientSupply}, nil
	}
	var sets [][]Combo
	for _, r := range rest.Kinds() {
		opts, err := buyOptions(m.summarize(r, rest, nil), rates)
		if err != nil {
			return outcome{}, err
		}
		sets = append(sets, opts)
	}

	var combos []Combo
	for _, c := range combine(sets) {
		if m.cw.canSupply(c.Clockwise.units()) && m.ccw.canSupply(c.CounterClockwise.units()) {
			combos = append(combos, c)
		}
	}
	if len(combos) == 0 {
		return outcome{reason: ReasonInsufficientSupply}, nil
	}
	combos = withinBudget(combos, coins)
	if len(combos) == 0 {
		return outcome{reason: ReasonBudgetExceeded}, nil
	}
	return outcome{reason: ReasonPurchase, combos: combos}, nil
}

// Evaluate writes the combos onto card and returns whether it is affordable.
// On error the card is left untouched.
func (e *Evaluator) Evaluate(card *Card, snap *Snapshot, playerID string) (bool, error) {
	res, err := e.Affordability(*card, snap, playerID)
	if err != nil {
		return false, err
	}
	card.Combos = res.Combos
	card.Affordable = res.Affordable
	return res.Affordable, nil
}

// EvaluateHand evaluates every card of a hand concurrently, writing each
// card's combos and returning the results in hand order. Each card is owned
// by exactly one worker. The first snapshot error is returned.
func (e *Evaluator) EvaluateHand(hand []*Card, snap *Snapshot, playerID string) ([]Result, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	results := make([]Result, len(hand))
	var g errgroup.Group
	g.SetLimit(e.cfg.Workers)
	for i, card := range hand {
		i, card := i, card
		g.Go(func() error {
			res, err := e.Affordability(*card, snap, playerID)
			if err != nil {
				return err
			}
			card.Combos = res.Combos
			card.Affordable = res.Affordable
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
