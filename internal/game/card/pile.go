package card

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Pile is an ordered sequence of cards. Index 0 is the top of a face-down
// pile (the deck), while Top addresses the most recently added card
// (the discard stack).
type Pile []*Card

// Size retorna o número de cartas na pilha.
func (p *Pile) Size() int {
	if p == nil {
		return 0
	}
	return len(*p)
}

func (p *Pile) Shuffle(r *rand.Rand) {
	n := p.Size()
	if n > 1 {
		for i := n - 1; i > 0; i-- {
			j := r.IntN(i + 1)
			(*p)[i], (*p)[j] = (*p)[j], (*p)[i]
		}
	}
}

func (p *Pile) GetCard(index int) (*Card, error) {
	if index < 0 || index >= p.Size() {
		return nil, fmt.Errorf("index %d out of range", index)
	}
	return (*p)[index], nil
}

// DrawTop removes and returns the card at the top of the pile.
func (p *Pile) DrawTop() (*Card, error) {
	if p.Size() == 0 {
		return nil, fmt.Errorf("pile is empty")
	}

	top := (*p)[0]
	*p = (*p)[1:]
	return top, nil
}

// Top returns the most recently added card without removing it.
func (p *Pile) Top() (*Card, error) {
	if p.Size() == 0 {
		return nil, fmt.Errorf("pile is empty")
	}
	return (*p)[p.Size()-1], nil
}

func (p *Pile) AddCard(c *Card) {
	*p = append(*p, c)
}

func (p *Pile) Contains(c *Card) bool {
	for _, card := range *p {
		if card == c {
			return true
		}
	}
	return false
}

func (p *Pile) RemoveCard(c *Card) error {
	for i, card := range *p {
		if card == c { // compara ponteiros, já que as cartas globais são imutáveis
			*p = append((*p)[:i], (*p)[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("card not found in pile")
}

// Keys returns the wire keys of the cards in pile order.
func (p *Pile) Keys() []string {
	keys := make([]string, 0, p.Size())
	for _, c := range *p {
		keys = append(keys, c.Key())
	}
	return keys
}

func (p *Pile) String() string {
	if p == nil || p.Size() == 0 {
		return "(Empty)"
	}

	var sb strings.Builder
	for i, c := range *p {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(c.Key())
	}
	return sb.String()
}
