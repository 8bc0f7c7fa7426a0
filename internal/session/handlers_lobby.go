package session

import (
	"encoding/json"
	"sort"

	log "github.com/sirupsen/logrus"

	"cardgolf/internal/services/events"
	"cardgolf/internal/session/message"
)

func handleRegister(h *GameHandler, session *PlayerSession, payload json.RawMessage) {
	var req struct {
		Name        *string `json:"name"`
		Address     *string `json:"address"`
		ControlPort *int    `json:"controlPort"`
		DataPort    *int    `json:"dataPort"`
	}
	if err := json.Unmarshal(payload, &req); err != nil ||
		req.Name == nil || req.Address == nil || req.ControlPort == nil || req.DataPort == nil {
		message.SendFailure(session.Client, "invalid payload: 'name', 'address', 'controlPort' and 'dataPort' are required")
		return
	}

	if session.Player != nil {
		message.SendFailure(session.Client, "this connection is already registered as %s", session.Player.Name)
		return
	}

	player, err := h.registry.Register(*req.Name, *req.Address, *req.ControlPort, *req.DataPort)
	if err != nil {
		message.SendFailure(session.Client, "%s", err)
		return
	}

	session.Player = player
	h.sessionsByName[player.Name] = session

	log.Infof("[Session] Player %s registered (%s control=%d data=%d). Registered players: %d",
		player.Name, player.Address, player.ControlPort, player.DataPort, h.registry.Len())
	message.SendSuccess(session.Client)
}

func handleDeregister(h *GameHandler, session *PlayerSession, payload json.RawMessage) {
	var req struct {
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(payload, &req); err != nil || req.Name == nil {
		message.SendFailure(session.Client, "invalid payload: 'name' is required")
		return
	}

	if session.Player == nil {
		message.SendFailure(session.Client, "you are not registered")
		return
	}
	if session.Player.Name != *req.Name {
		message.SendFailure(session.Client, "cannot deregister another player")
		return
	}
	// O roteador de lobby já garante que não estamos em partida; checagem
	// extra caso o roteamento mude.
	if session.CurrentGame != nil {
		message.SendFailure(session.Client, "player %s is part of an active game", session.Player.Name)
		return
	}

	if err := h.registry.Deregister(session.Player.Name); err != nil {
		message.SendFailure(session.Client, "%s", err)
		return
	}

	log.Infof("[Session] Player %s deregistered. Registered players: %d",
		session.Player.Name, h.registry.Len())

	delete(h.sessionsByName, session.Player.Name)
	session.Player = nil
	message.SendSuccess(session.Client)
}

func handleQueryPlayers(h *GameHandler, session *PlayerSession, payload json.RawMessage) {
	players := h.registry.Query()
	message.Deliver(session.Client, message.CreateDataResponse(message.PlayersPayload{
		Count:   len(players),
		Players: players,
	}))
}

func handleQueryGames(h *GameHandler, session *PlayerSession, payload json.RawMessage) {
	games := h.manager.Query()
	message.Deliver(session.Client, message.CreateDataResponse(message.GamesPayload{
		Count: len(games),
		Games: games,
	}))
}

func handleStartGame(h *GameHandler, session *PlayerSession, payload json.RawMessage) {
	var req struct {
		Player *string `json:"player"`
		N      *int    `json:"n"`
		Holes  *int    `json:"holes"`
	}
	if err := json.Unmarshal(payload, &req); err != nil ||
		req.Player == nil || req.N == nil || req.Holes == nil {
		message.SendFailure(session.Client, "invalid payload: 'player', 'n' and 'holes' are required")
		return
	}

	if session.Player == nil {
		message.SendFailure(session.Client, "register before starting a game")
		return
	}
	if session.Player.Name != *req.Player {
		message.SendFailure(session.Client, "start_game player must match your registered name")
		return
	}

	// Candidate pool: every other registered, connected, free player.
	// Sorted so the manager's seeded shuffle is the only source of
	// randomness in the selection.
	candidates := make([]*PlayerSession, 0, len(h.sessionsByName))
	for _, s := range h.sessionsByName {
		if s == session || s.Player == nil || s.Player.Status != StatusFree {
			continue
		}
		candidates = append(candidates, s)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Name() < candidates[j].Name()
	})

	gs, err := h.manager.StartGame(session, candidates, *req.N, *req.Holes)
	if err != nil {
		message.SendFailure(session.Client, "%s", err)
		return
	}

	infos := make([]message.ParticipantInfo, 0, len(gs.Participants()))
	for _, p := range gs.Participants() {
		infos = append(infos, message.ParticipantInfo{
			Name:     p.Player.Name,
			Address:  p.Player.Address,
			DataPort: p.Player.DataPort,
		})
	}

	message.Deliver(session.Client, message.CreateDataResponse(message.StartGameResultPayload{
		Status:  message.StatusSuccess,
		GameID:  gs.ID,
		Players: infos,
	}))

	gs.broadcastStart()
	gs.broadcastState()

	h.publisher.Publish(events.SubjectGameStarted, message.StartPayload{
		GameID:  gs.ID,
		Dealer:  gs.Dealer,
		Holes:   gs.Holes,
		Players: gs.Game().Players(),
	})

	log.Infof("[Session] Game %s started by dealer %s with players %v",
		gs.ID, gs.Dealer, gs.Game().Players())
}

// handleEnd serves both routers: a dealer may end the session from inside
// the game, and the request must fail cleanly for everyone else.
func handleEnd(h *GameHandler, session *PlayerSession, payload json.RawMessage) {
	var req struct {
		GameID *string `json:"gameId"`
		Player *string `json:"player"`
	}
	if err := json.Unmarshal(payload, &req); err != nil || req.GameID == nil || req.Player == nil {
		message.SendFailure(session.Client, "invalid payload: 'gameId' and 'player' are required")
		return
	}

	if session.Player == nil {
		message.SendFailure(session.Client, "you are not registered")
		return
	}
	if session.Player.Name != *req.Player {
		message.SendFailure(session.Client, "end player must match your registered name")
		return
	}

	gs, err := h.manager.EndGame(*req.GameID, session.Player.Name)
	if err != nil {
		message.SendFailure(session.Client, "%s", err)
		return
	}

	message.SendSuccess(session.Client)

	log.Infof("[Session] Game %s ended by dealer %s", gs.ID, gs.Dealer)
	h.finishGame(gs, "ended by dealer")
}

func (h *GameHandler) registerLobbyHandlers() {
	h.lobbyRouter["register"] = handleRegister
	h.lobbyRouter["deregister"] = handleDeregister
	h.lobbyRouter["query_players"] = handleQueryPlayers
	h.lobbyRouter["query_games"] = handleQueryGames
	h.lobbyRouter["start_game"] = handleStartGame
	h.lobbyRouter["end"] = handleEnd
}
