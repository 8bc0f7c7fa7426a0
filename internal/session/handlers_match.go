package session

import (
	"encoding/json"

	"cardgolf/internal/session/message"
)

func handleDrawCard(h *GameHandler, session *PlayerSession, payload json.RawMessage) {
	gs := session.CurrentGame
	if gs == nil {
		message.SendFailure(session.Client, "you are not in a game")
		return
	}

	if _, err := gs.Game().Draw(session.Name()); err != nil {
		// Inclui o caso não-fatal de deck vazio: o turno não avança.
		message.SendFailure(session.Client, "%s", err)
		return
	}

	message.SendSuccess(session.Client)
	gs.broadcastState()
}

func handleDiscardCard(h *GameHandler, session *PlayerSession, payload json.RawMessage) {
	var req struct {
		Card *string `json:"card"`
	}
	if err := json.Unmarshal(payload, &req); err != nil || req.Card == nil {
		message.SendFailure(session.Client, "invalid payload: 'card' is required")
		return
	}

	gs := session.CurrentGame
	if gs == nil {
		message.SendFailure(session.Client, "you are not in a game")
		return
	}

	over, err := gs.Game().Discard(session.Name(), *req.Card)
	if err != nil {
		message.SendFailure(session.Client, "%s", err)
		return
	}

	message.SendSuccess(session.Client)

	if over {
		gs.broadcast(message.CreateEvent(message.TypeGameOver, message.GameOverPayload{
			GameID: gs.ID,
			Player: session.Name(),
		}))
		h.finishGame(gs, "")
		return
	}

	gs.broadcastState()
}

func handleSwapCard(h *GameHandler, session *PlayerSession, payload json.RawMessage) {
	var req struct {
		HeldCard  *string `json:"heldCard"`
		DrawnCard *string `json:"drawnCard"`
	}
	if err := json.Unmarshal(payload, &req); err != nil || req.HeldCard == nil || req.DrawnCard == nil {
		message.SendFailure(session.Client, "invalid payload: 'heldCard' and 'drawnCard' are required")
		return
	}

	gs := session.CurrentGame
	if gs == nil {
		message.SendFailure(session.Client, "you are not in a game")
		return
	}

	over, err := gs.Game().Swap(session.Name(), *req.HeldCard, *req.DrawnCard)
	if err != nil {
		message.SendFailure(session.Client, "%s", err)
		return
	}

	message.SendSuccess(session.Client)

	// Swap advances the turn exactly like discard; it shares the same
	// end-of-game path even though it cannot empty a hand.
	if over {
		gs.broadcast(message.CreateEvent(message.TypeGameOver, message.GameOverPayload{
			GameID: gs.ID,
			Player: session.Name(),
		}))
		h.finishGame(gs, "")
		return
	}

	gs.broadcastState()
}

func (h *GameHandler) registerGameHandlers() {
	h.gameRouter["draw_card"] = handleDrawCard
	h.gameRouter["discard_card"] = handleDiscardCard
	h.gameRouter["swap_card"] = handleSwapCard
	h.gameRouter["end"] = handleEnd

	// Read-only queries stay available mid-game.
	h.gameRouter["query_players"] = handleQueryPlayers
	h.gameRouter["query_games"] = handleQueryGames
}
