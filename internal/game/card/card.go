package card

import (
	"fmt"
)

// Card is an immutable rank/suit pair. All 52 cards live in the global
// catalog and are shared by pointer, so equality is pointer equality.
type Card struct {
	rank string
	suit string
}

func (c *Card) Rank() string { return c.rank }
func (c *Card) Suit() string { return c.suit }

// Key is the wire representation of a card, e.g. "9H" or "AS".
func (c *Card) Key() string { return CardKey(c.rank, c.suit) }

// Score follows the golf table: number cards score face value,
// J/Q/K score 10 and A scores 1.
func (c *Card) Score() int {
	return rankScores[c.rank]
}

func (c *Card) String() string {
	return c.Key()
}

// ---- Construtor ----

func newCard(rank, suit string) (*Card, error) {
	card := &Card{rank: rank, suit: suit}

	validators := []cardValidator{
		validateRank,
		validateSuit,
	}

	for _, v := range validators {
		if err := v(card); err != nil {
			return nil, err
		}
	}

	return card, nil
}

func CardKey(rank, suit string) string {
	return rank + suit
}

// Tipo para funções de validação
type cardValidator func(*Card) error

func validateRank(c *Card) error {
	if _, ok := rankScores[c.rank]; !ok {
		return fmt.Errorf("invalid card rank: %s", c.rank)
	}
	return nil
}

func validateSuit(c *Card) error {
	for _, s := range suits {
		if c.suit == s {
			return nil
		}
	}
	return fmt.Errorf("invalid card suit: %s", c.suit)
}
