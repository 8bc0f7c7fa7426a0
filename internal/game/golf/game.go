package golf

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"cardgolf/internal/game/card"
)

// HandSize is the number of cards dealt to each participant.
const HandSize = 6

type Phase string

const (
	PhaseDealt      Phase = "dealt"
	PhaseInProgress Phase = "in_progress"
	PhaseOver       Phase = "over"
)

// Failure conditions reported back to the acting player. These are protocol
// outcomes, not server faults.
var (
	ErrNotYourTurn   = errors.New("not your turn")
	ErrCardNotInHand = errors.New("card not in hand")
	ErrDeckEmpty     = errors.New("deck is empty")
	ErrAlreadyDrawn  = errors.New("you already drew a card this turn")
	ErrGameOver      = errors.New("the game is over")
)

// Game is the turn state machine of one session. It owns the deck, every
// participant's hand, the pending drawn card and the discard pile.
//
// A Game is NOT safe for concurrent use; the session layer serializes all
// calls on a single goroutine.
type Game struct {
	players []string
	deck    card.Pile
	discard card.Pile
	hands   map[string]*card.Pile
	drawn   map[string]*card.Card

	current int
	phase   Phase
}

// NewGame shuffles a fresh deck, deals HandSize cards to each player in
// order and seeds the discard pile with one card. The turn starts at
// players[0].
func NewGame(players []string, r *rand.Rand) (*Game, error) {
	if len(players) < 2 {
		return nil, fmt.Errorf("a game needs at least 2 players, got %d", len(players))
	}
	if len(players)*HandSize+1 > card.DeckSize {
		return nil, fmt.Errorf("too many players for a single deck: %d", len(players))
	}

	deck := card.NewFullPile()
	deck.Shuffle(r)

	g := &Game{
		players: append([]string(nil), players...),
		deck:    deck,
		discard: make(card.Pile, 0, card.DeckSize),
		hands:   make(map[string]*card.Pile, len(players)),
		drawn:   make(map[string]*card.Card, len(players)),
		current: 0,
		phase:   PhaseDealt,
	}

	for _, name := range g.players {
		hand := make(card.Pile, 0, HandSize+1)
		for i := 0; i < HandSize; i++ {
			c, err := g.deck.DrawTop()
			if err != nil {
				return nil, err
			}
			hand.AddCard(c)
		}
		g.hands[name] = &hand
	}

	seed, err := g.deck.DrawTop()
	if err != nil {
		return nil, err
	}
	g.discard.AddCard(seed)

	return g, nil
}

func (g *Game) Players() []string {
	return append([]string(nil), g.players...)
}

func (g *Game) CurrentPlayer() string {
	return g.players[g.current]
}

func (g *Game) CurrentIndex() int { return g.current }

func (g *Game) Phase() Phase { return g.phase }

func (g *Game) Over() bool { return g.phase == PhaseOver }

func (g *Game) DeckSize() int { return g.deck.Size() }

// DiscardTop returns the visible top of the discard pile, or nil when the
// pile is empty.
func (g *Game) DiscardTop() *card.Card {
	top, err := g.discard.Top()
	if err != nil {
		return nil
	}
	return top
}

// HandOf returns the wire keys of a player's hand in order. The pending
// drawn card is not included; see DrawnOf.
func (g *Game) HandOf(player string) []string {
	hand, ok := g.hands[player]
	if !ok {
		return nil
	}
	return hand.Keys()
}

// DrawnOf returns the key of the player's pending drawn card, or "".
func (g *Game) DrawnOf(player string) string {
	if c := g.drawn[player]; c != nil {
		return c.Key()
	}
	return ""
}

// Draw moves the top of the deck into the current player's drawn slot.
// An empty deck is a terminal-deck edge case: ErrDeckEmpty is returned and
// the turn does not advance.
func (g *Game) Draw(player string) (*card.Card, error) {
	if err := g.checkTurn(player); err != nil {
		return nil, err
	}
	if g.drawn[player] != nil {
		return nil, ErrAlreadyDrawn
	}

	c, err := g.deck.DrawTop()
	if err != nil {
		return nil, ErrDeckEmpty
	}

	g.drawn[player] = c
	g.phase = PhaseInProgress
	return c, nil
}

// Discard removes the named card from the current player's hand (or their
// pending drawn card) and pushes it onto the discard pile. An emptied hand
// ends the game; otherwise the turn advances round-robin and any pending
// drawn card merges into the hand.
func (g *Game) Discard(player, key string) (over bool, err error) {
	if err := g.checkTurn(player); err != nil {
		return false, err
	}

	c, err := card.GetCard(key)
	if err != nil {
		return false, ErrCardNotInHand
	}

	hand := g.hands[player]
	switch {
	case hand.Contains(c):
		if err := hand.RemoveCard(c); err != nil {
			return false, ErrCardNotInHand
		}
	case g.drawn[player] == c:
		g.drawn[player] = nil
	default:
		return false, ErrCardNotInHand
	}

	g.discard.AddCard(c)
	return g.endTurn(player), nil
}

// Swap exchanges a held card for the pending drawn card: the held card goes
// to the discard pile, the drawn card joins the hand, and the turn advances
// exactly as Discard does.
func (g *Game) Swap(player, heldKey, drawnKey string) (over bool, err error) {
	if err := g.checkTurn(player); err != nil {
		return false, err
	}

	pending := g.drawn[player]
	if pending == nil || pending.Key() != drawnKey {
		return false, ErrCardNotInHand
	}

	held, err := card.GetCard(heldKey)
	if err != nil {
		return false, ErrCardNotInHand
	}

	hand := g.hands[player]
	if err := hand.RemoveCard(held); err != nil {
		return false, ErrCardNotInHand
	}

	g.discard.AddCard(held)
	hand.AddCard(pending)
	g.drawn[player] = nil

	return g.endTurn(player), nil
}

// endTurn folds any pending drawn card back into the hand, then either
// finishes the game (empty hand) or rotates the turn pointer.
func (g *Game) endTurn(player string) (over bool) {
	hand := g.hands[player]
	if pending := g.drawn[player]; pending != nil {
		hand.AddCard(pending)
		g.drawn[player] = nil
	}

	if hand.Size() == 0 {
		g.phase = PhaseOver
		return true
	}

	g.current = (g.current + 1) % len(g.players)
	g.phase = PhaseInProgress
	return false
}

func (g *Game) checkTurn(player string) error {
	if g.phase == PhaseOver {
		return ErrGameOver
	}
	if g.players[g.current] != player {
		return ErrNotYourTurn
	}
	return nil
}

// Scores sums the remaining cards of every participant, pending drawn card
// included.
func (g *Game) Scores() map[string]int {
	scores := make(map[string]int, len(g.players))
	for _, name := range g.players {
		total := 0
		for _, c := range *g.hands[name] {
			total += c.Score()
		}
		if c := g.drawn[name]; c != nil {
			total += c.Score()
		}
		scores[name] = total
	}
	return scores
}

// Winners returns the players holding the lowest score. More than one name
// means the game is a tie.
func (g *Game) Winners() ([]string, int) {
	scores := g.Scores()

	best := -1
	for _, name := range g.players {
		if best == -1 || scores[name] < best {
			best = scores[name]
		}
	}

	winners := make([]string, 0, 1)
	for _, name := range g.players {
		if scores[name] == best {
			winners = append(winners, name)
		}
	}
	return winners, best
}

// RemovePlayer drops a participant mid-game (disconnect or deregistration).
// Their cards go back to the bottom of the deck so the 52-card partition
// holds for the players that remain. The turn pointer is fixed up so it
// still indexes a valid member.
func (g *Game) RemovePlayer(name string) error {
	idx := -1
	for i, p := range g.players {
		if p == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("player %s is not in this game", name)
	}

	hand := g.hands[name]
	for _, c := range *hand {
		g.deck.AddCard(c)
	}
	if c := g.drawn[name]; c != nil {
		g.deck.AddCard(c)
		delete(g.drawn, name)
	}
	delete(g.hands, name)

	g.players = append(g.players[:idx], g.players[idx+1:]...)

	if len(g.players) == 0 {
		g.current = 0
		g.phase = PhaseOver
		return nil
	}
	if idx < g.current {
		g.current--
	}
	if g.current >= len(g.players) {
		g.current = 0
	}
	return nil
}
