package server

import (
	"errors"
	"fmt"
	"strings"

	"wonders/internal/cards"
	"wonders/internal/engine"
)

var ErrUnknownCard = errors.New("unknown card")

// handCards collects the cards of a request: inline descriptors first, then
// catalogue names in order.
func handCards(inline []engine.Card, names []string) ([]*engine.Card, error) {
	hand := make([]*engine.Card, 0, len(inline)+len(names))
	for i := range inline {
		hand = append(hand, &inline[i])
	}
	for _, name := range names {
		card, ok := cards.Lookup(name)
		if !ok {
			return nil, unknownCard(name)
		}
		hand = append(hand, &card)
	}
	if len(hand) == 0 {
		return nil, errors.New("no cards given")
	}
	return hand, nil
}

func unknownCard(name string) error {
	if alt := cards.Suggest(name, 3); len(alt) > 0 {
		return fmt.Errorf("%w %q, did you mean %s?", ErrUnknownCard, name, strings.Join(alt, ", "))
	}
	return fmt.Errorf("%w %q", ErrUnknownCard, name)
}
