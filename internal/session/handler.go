package session

import (
	"encoding/json"
	"math/rand/v2"

	log "github.com/sirupsen/logrus"

	"cardgolf/internal/network"
	"cardgolf/internal/services/events"
	"cardgolf/internal/session/message"
)

// CommandHandlerFunc define a assinatura para todas as funções que lidam com
// comandos. Elas recebem o contexto da sessão e o payload bruto da mensagem.
type CommandHandlerFunc func(h *GameHandler, session *PlayerSession, payload json.RawMessage)

// GameHandler implements network.EventHandler. Every callback runs on the
// hub goroutine, which makes it the single writer for the registry, the
// game manager and all turn state; no other goroutine touches them.
type GameHandler struct {
	sessionsByClient map[ClientConn]*PlayerSession
	sessionsByName   map[string]*PlayerSession

	registry  *Registry
	manager   *GameManager
	publisher *events.Publisher

	// Um roteador para cada estado do jogador.
	lobbyRouter map[string]CommandHandlerFunc
	gameRouter  map[string]CommandHandlerFunc
}

// NewGameHandler wires the registry and session manager around an injected
// random source (matchmaking and shuffles stay reproducible under test) and
// an optional NATS publisher (nil disables eventing).
func NewGameHandler(rng *rand.Rand, publisher *events.Publisher) *GameHandler {
	h := &GameHandler{
		sessionsByClient: make(map[ClientConn]*PlayerSession),
		sessionsByName:   make(map[string]*PlayerSession),
		registry:         NewRegistry(),
		manager:          NewGameManager(rng),
		publisher:        publisher,
		lobbyRouter:      make(map[string]CommandHandlerFunc),
		gameRouter:       make(map[string]CommandHandlerFunc),
	}
	h.registerLobbyHandlers()
	h.registerGameHandlers()
	return h
}

// --- Implementação da interface network.EventHandler ---

func (h *GameHandler) OnConnect(c *network.Client)    { h.connect(c) }
func (h *GameHandler) OnDisconnect(c *network.Client) { h.disconnect(c) }
func (h *GameHandler) OnMessage(c *network.Client, msg network.Message) {
	h.dispatch(c, msg)
}

func (h *GameHandler) connect(c ClientConn) {
	session := NewPlayerSession(c)
	h.sessionsByClient[c] = session

	log.Infof("[Session] Client connected from %s. Total sessions: %d",
		c.RemoteAddr(), len(h.sessionsByClient))

	message.Deliver(c, message.CreateEvent(message.TypeWelcome, message.WelcomePayload{
		Message: "Welcome to the Six Card Golf tracker. Register to play.",
	}))
}

// disconnect handles both orderly closes and dead connections. It performs
// the same cleanup as an explicit deregistration, plus the mid-game exit.
func (h *GameHandler) disconnect(c ClientConn) {
	session, ok := h.sessionsByClient[c]
	if !ok {
		return
	}

	if session.CurrentGame != nil {
		h.leaveGame(session)
	}

	if session.Player != nil {
		h.registry.Deregister(session.Player.Name)
		delete(h.sessionsByName, session.Player.Name)
	}

	delete(h.sessionsByClient, c)
	log.Infof("[Session] Client %s disconnected. Total sessions: %d",
		c.RemoteAddr(), len(h.sessionsByClient))
}

// dispatch é o ponto único de decodificação: seleciona o roteador pelo
// estado do jogador e despacha o comando.
func (h *GameHandler) dispatch(c ClientConn, msg network.Message) {
	session, ok := h.sessionsByClient[c]
	if !ok {
		return // Ignora mensagens de clientes sem sessão.
	}

	var router map[string]CommandHandlerFunc
	switch session.State {
	case state_LOBBY:
		router = h.lobbyRouter
	case state_IN_GAME:
		router = h.gameRouter
	default:
		message.SendFailure(session.Client, "invalid session state: %s", session.State)
		return
	}

	handler, found := router[msg.Type]
	if !found {
		message.SendFailure(session.Client, "unknown or invalid command for your current state: %s", msg.Type)
		return
	}

	handler(h, session, msg.Payload)
}

// leaveGame removes a participant mid-game: their cards return to the deck,
// the rest of the table hears player_left, and the session is force-ended
// when fewer than two participants remain.
func (h *GameHandler) leaveGame(sess *PlayerSession) {
	gs := sess.CurrentGame

	sess.CurrentGame = nil
	sess.State = state_LOBBY
	if sess.Player != nil {
		sess.Player.Status = StatusFree
	}

	tooFew := gs.removeParticipant(sess)

	gs.broadcast(message.CreateEvent(message.TypePlayerLeft, message.PlayerLeftPayload{
		GameID: gs.ID,
		Player: sess.Name(),
	}))
	h.publisher.Publish(events.SubjectPlayerLeft, message.PlayerLeftPayload{
		GameID: gs.ID,
		Player: sess.Name(),
	})

	log.Infof("[Session] Player %s left game %s", sess.Name(), gs.ID)

	if tooFew {
		h.finishGame(gs, "not enough players to continue")
		return
	}
	gs.broadcastState()
}

// finishGame broadcasts the final scoreboard, frees every participant and
// removes the session from the active set. reason is empty for a normal
// hand-empty ending.
func (h *GameHandler) finishGame(gs *GameSession, reason string) {
	result := gs.finalResult(reason)

	gs.broadcast(message.CreateEvent(message.TypeFinalResult, result))
	h.publisher.Publish(events.SubjectGameFinished, result)

	for _, p := range gs.Participants() {
		if p.Player != nil {
			p.Player.Status = StatusFree
		}
		p.CurrentGame = nil
		p.State = state_LOBBY
	}

	h.manager.Remove(gs.ID)
	log.Infof("[Session] Game %s finished. Winners: %v. Active games: %d",
		gs.ID, result.Winners, h.manager.Len())
}
