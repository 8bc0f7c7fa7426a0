package session

import (
	"fmt"
	"math/rand/v2"

	"cardgolf/internal/game/golf"
	"cardgolf/internal/session/message"
)

const (
	minOpponents = 1
	maxOpponents = 3

	minHoles = 1
	maxHoles = 9
)

// GameManager owns the set of active game sessions. Like the Registry it is
// single-writer: only the hub goroutine ever calls into it.
//
// Ids are immutable and monotonically increasing; they are never recomputed
// from the session count, so lookups stay correct no matter how many games
// start and end.
type GameManager struct {
	games  map[string]*GameSession
	order  []string // creation order, for stable query listings
	nextID int

	// rng drives matchmaking and deck shuffles. Injected so behavior is
	// reproducible under test.
	rng *rand.Rand
}

func NewGameManager(rng *rand.Rand) *GameManager {
	return &GameManager{
		games: make(map[string]*GameSession),
		rng:   rng,
	}
}

// StartGame matches the dealer with n players drawn uniformly at random
// from candidates, deals the opening hands and registers the new session.
// The dealer is ordered last, so the turn starts at the first matched
// player.
func (m *GameManager) StartGame(dealer *PlayerSession, candidates []*PlayerSession, n, holes int) (*GameSession, error) {
	if n < minOpponents || n > maxOpponents {
		return nil, fmt.Errorf("n must be between %d and %d", minOpponents, maxOpponents)
	}
	if holes < minHoles || holes > maxHoles {
		return nil, fmt.Errorf("holes must be between %d and %d", minHoles, maxHoles)
	}
	if len(candidates) < n {
		return nil, fmt.Errorf("not enough free players: need %d, have %d", n, len(candidates))
	}

	// Uniform sample: shuffle a copy and take the first n.
	pool := append([]*PlayerSession(nil), candidates...)
	m.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	participants := append(pool[:n:n], dealer)

	names := make([]string, len(participants))
	for i, p := range participants {
		names[i] = p.Name()
	}

	game, err := golf.NewGame(names, m.rng)
	if err != nil {
		return nil, err
	}

	m.nextID++
	gs := &GameSession{
		ID:           fmt.Sprintf("game-%d", m.nextID),
		Dealer:       dealer.Name(),
		Holes:        holes,
		game:         game,
		participants: participants,
	}

	for _, p := range participants {
		p.Player.Status = StatusInPlay
		p.CurrentGame = gs
		p.State = state_IN_GAME
	}

	m.games[gs.ID] = gs
	m.order = append(m.order, gs.ID)
	return gs, nil
}

// EndGame validates an explicit termination request. Only the session's
// recorded dealer may end it. The session is NOT removed here; the caller
// broadcasts the final result first, then calls Remove.
func (m *GameManager) EndGame(id, requester string) (*GameSession, error) {
	gs, ok := m.games[id]
	if !ok {
		return nil, fmt.Errorf("unknown game id: %s", id)
	}
	if gs.Dealer != requester {
		return nil, fmt.Errorf("only the dealer %s may end game %s", gs.Dealer, id)
	}
	return gs, nil
}

func (m *GameManager) Get(id string) (*GameSession, bool) {
	gs, ok := m.games[id]
	return gs, ok
}

func (m *GameManager) Remove(id string) {
	delete(m.games, id)
	for i, gid := range m.order {
		if gid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *GameManager) Len() int {
	return len(m.games)
}

// Query returns a read-only snapshot of active games in creation order.
func (m *GameManager) Query() []message.GameSummary {
	games := make([]message.GameSummary, 0, len(m.order))
	for _, id := range m.order {
		gs := m.games[id]
		games = append(games, message.GameSummary{
			ID:      gs.ID,
			Dealer:  gs.Dealer,
			Players: gs.game.Players(),
		})
	}
	return games
}
