package card

import (
	"fmt"
)

// DeckSize is the number of distinct cards in a full deck.
const DeckSize = 52

// ranks in deck order. "10" is two characters on the wire, every other
// rank is one.
var ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

var suits = []string{"C", "D", "H", "S"}

var rankScores = map[string]int{
	"2": 2, "3": 3, "4": 4, "5": 5, "6": 6, "7": 7, "8": 8, "9": 9, "10": 10,
	"J": 10, "Q": 10, "K": 10,
	"A": 1,
}

var allCards map[string]*Card

// InitGlobalCatalog builds the canonical 52-card catalog. Must be called
// once at startup before any deck is created.
func InitGlobalCatalog() error {
	allCards = make(map[string]*Card)

	for _, s := range suits {
		for _, r := range ranks {
			card, err := newCard(r, s)
			if err != nil {
				return err
			}
			allCards[CardKey(r, s)] = card
		}
	}
	return nil
}

// acesso público ao catálogo
func GetCard(key string) (*Card, error) {
	if card, ok := allCards[key]; ok {
		return card, nil
	}
	return nil, fmt.Errorf("card not found: %s", key)
}

// NewFullPile returns the 52 catalog cards in deck order (suit-major),
// ready to be shuffled into a session deck.
func NewFullPile() Pile {
	pile := make(Pile, 0, DeckSize)
	for _, s := range suits {
		for _, r := range ranks {
			pile = append(pile, allCards[CardKey(r, s)])
		}
	}
	return pile
}
