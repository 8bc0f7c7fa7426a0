package session

import (
	"cardgolf/internal/game/golf"
	"cardgolf/internal/network"
	"cardgolf/internal/session/message"
)

// GameSession is one active game: the turn state machine plus the
// connections of its participants. All methods run on the hub goroutine.
type GameSession struct {
	ID     string
	Dealer string
	Holes  int

	game *golf.Game

	// participants stays aligned with game.Players() order (dealer last)
	// until players start leaving mid-game.
	participants []*PlayerSession
}

func (gs *GameSession) Game() *golf.Game { return gs.game }

func (gs *GameSession) Participants() []*PlayerSession {
	return append([]*PlayerSession(nil), gs.participants...)
}

// broadcast é uma função de conveniência para enviar a mesma mensagem para
// todos os participantes. Clients that stopped draining their buffer are
// closed by Deliver and cleaned up through the unregister path.
func (gs *GameSession) broadcast(msg network.Message) {
	for _, p := range gs.participants {
		message.Deliver(p.Client, msg)
	}
}

// broadcastState fans out a personalized game_state snapshot: every
// participant gets the same open hands, plus their own name and, for the
// current player, the pending drawn card.
func (gs *GameSession) broadcastState() {
	hands := make(map[string][]string, len(gs.participants))
	for _, name := range gs.game.Players() {
		hands[name] = gs.game.HandOf(name)
	}

	discardTop := ""
	if top := gs.game.DiscardTop(); top != nil {
		discardTop = top.Key()
	}

	current := gs.game.CurrentPlayer()

	for _, p := range gs.participants {
		state := message.GameStatePayload{
			GameID:        gs.ID,
			You:           p.Name(),
			CurrentPlayer: current,
			DiscardTop:    discardTop,
			DeckSize:      gs.game.DeckSize(),
			Hands:         hands,
		}
		if p.Name() == current {
			state.Drawn = gs.game.DrawnOf(current)
		}
		message.Deliver(p.Client, message.CreateEvent(message.TypeGameState, state))
	}
}

func (gs *GameSession) broadcastStart() {
	gs.broadcast(message.CreateEvent(message.TypeStart, message.StartPayload{
		GameID:  gs.ID,
		Dealer:  gs.Dealer,
		Holes:   gs.Holes,
		Players: gs.game.Players(),
	}))
}

// finalResult builds the closing scoreboard. reason is only set for
// abnormal endings (dealer end, forced termination).
func (gs *GameSession) finalResult(reason string) message.FinalResultPayload {
	winners, _ := gs.game.Winners()
	return message.FinalResultPayload{
		GameID:  gs.ID,
		Scores:  gs.game.Scores(),
		Winners: winners,
		Tie:     len(winners) > 1,
		Reason:  reason,
	}
}

// removeParticipant drops a player from the session and the underlying
// game, returning that player's cards to the deck. Reports whether too few
// participants remain for play to continue.
func (gs *GameSession) removeParticipant(sess *PlayerSession) (tooFew bool) {
	for i, p := range gs.participants {
		if p == sess {
			gs.participants = append(gs.participants[:i], gs.participants[i+1:]...)
			break
		}
	}
	gs.game.RemovePlayer(sess.Name())

	return len(gs.participants) < 2
}
