package session

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"testing"

	"cardgolf/internal/game/card"
	"cardgolf/internal/network"
	"cardgolf/internal/session/message"
)

func TestMain(m *testing.M) {
	if err := card.InitGlobalCatalog(); err != nil {
		fmt.Fprintf(os.Stderr, "catalog init failed: %v\n", err)
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// fakeConn is an in-memory ClientConn. All handler callbacks run on the
// calling goroutine here, exactly as they do on the hub goroutine in
// production, so no synchronization is needed.
type fakeConn struct {
	send   chan network.Message
	addr   string
	closed bool
}

func newFakeConn(addr string) *fakeConn {
	return &fakeConn{send: make(chan network.Message, 128), addr: addr}
}

func (f *fakeConn) Send() chan<- network.Message { return f.send }
func (f *fakeConn) Close() error                 { f.closed = true; return nil }
func (f *fakeConn) RemoteAddr() string           { return f.addr }

// drain empties the outbound buffer and returns everything in order.
func (f *fakeConn) drain() []network.Message {
	var msgs []network.Message
	for {
		select {
		case m := <-f.send:
			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}

func newTestHandler() *GameHandler {
	rng := rand.New(rand.NewPCG(7, 7))
	return NewGameHandler(rng, nil)
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return data
}

func lastOfType(msgs []network.Message, msgType string) (network.Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == msgType {
			return msgs[i], true
		}
	}
	return network.Message{}, false
}

func lastStatus(t *testing.T, msgs []network.Message) message.StatusPayload {
	t.Helper()
	msg, ok := lastOfType(msgs, message.TypeResponse)
	if !ok {
		t.Fatal("no response message delivered")
	}
	var status message.StatusPayload
	if err := json.Unmarshal(msg.Payload, &status); err != nil {
		t.Fatalf("unmarshal response payload: %v", err)
	}
	return status
}

func expectFailure(t *testing.T, msgs []network.Message, reasonPart string) {
	t.Helper()
	status := lastStatus(t, msgs)
	if status.Status != message.StatusFailure {
		t.Fatalf("response status = %s, want %s", status.Status, message.StatusFailure)
	}
	if !strings.Contains(status.Reason, reasonPart) {
		t.Errorf("failure reason = %q, want containing %q", status.Reason, reasonPart)
	}
}

// registerPlayer connects a fresh fake client and registers it under name.
func registerPlayer(t *testing.T, h *GameHandler, name string) *fakeConn {
	t.Helper()
	conn := newFakeConn(name + ":7501")
	h.connect(conn)
	h.dispatch(conn, network.Message{Type: "register", Payload: mustJSON(t, map[string]any{
		"name":        name,
		"address":     "10.0.0.1",
		"controlPort": 7501,
		"dataPort":    7502,
	})})
	msgs := conn.drain()
	if status := lastStatus(t, msgs); status.Status != message.StatusSuccess {
		t.Fatalf("register %s failed: %s", name, status.Reason)
	}
	return conn
}

// startTwoPlayerGame registers Alice and Bob and has Alice deal a game with
// one opponent. Bob is the matched player, so the first turn is his.
func startTwoPlayerGame(t *testing.T, h *GameHandler) (alice, bob *fakeConn) {
	t.Helper()
	alice = registerPlayer(t, h, "Alice")
	bob = registerPlayer(t, h, "Bob")

	h.dispatch(alice, network.Message{Type: "start_game", Payload: mustJSON(t, map[string]any{
		"player": "Alice",
		"n":      1,
		"holes":  5,
	})})
	if status := lastStatus(t, alice.drain()); status.Status != message.StatusSuccess {
		t.Fatalf("start_game failed: %s", status.Reason)
	}
	bob.drain()
	return alice, bob
}

func TestConnectSendsWelcome(t *testing.T) {
	h := newTestHandler()
	conn := newFakeConn("test:1")
	h.connect(conn)

	msgs := conn.drain()
	if _, ok := lastOfType(msgs, message.TypeWelcome); !ok {
		t.Fatalf("no welcome message after connect, got %d messages", len(msgs))
	}
}

func TestRegisterDuplicateNameRejected(t *testing.T) {
	h := newTestHandler()
	registerPlayer(t, h, "Alice")

	conn := newFakeConn("other:1")
	h.connect(conn)
	h.dispatch(conn, network.Message{Type: "register", Payload: mustJSON(t, map[string]any{
		"name":        "Alice",
		"address":     "10.0.0.2",
		"controlPort": 7601,
		"dataPort":    7602,
	})})
	expectFailure(t, conn.drain(), "already registered")
}

func TestQueryPlayers(t *testing.T) {
	h := newTestHandler()
	registerPlayer(t, h, "Bob")
	alice := registerPlayer(t, h, "Alice")

	h.dispatch(alice, network.Message{Type: "query_players", Payload: nil})
	msg, ok := lastOfType(alice.drain(), message.TypeResponse)
	if !ok {
		t.Fatal("no response to query_players")
	}

	var payload message.PlayersPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatalf("unmarshal players payload: %v", err)
	}
	if payload.Count != 2 {
		t.Fatalf("Count = %d, want 2", payload.Count)
	}
	if payload.Players[0].Name != "Alice" || payload.Players[1].Name != "Bob" {
		t.Errorf("players not ordered by name: %+v", payload.Players)
	}
}

func TestStartGameMatchmaking(t *testing.T) {
	h := newTestHandler()
	alice := registerPlayer(t, h, "Alice")
	bob := registerPlayer(t, h, "Bob")

	h.dispatch(alice, network.Message{Type: "start_game", Payload: mustJSON(t, map[string]any{
		"player": "Alice",
		"n":      1,
		"holes":  5,
	})})

	aliceMsgs := alice.drain()
	msg, ok := lastOfType(aliceMsgs, message.TypeResponse)
	if !ok {
		t.Fatal("no response to start_game")
	}
	var result message.StartGameResultPayload
	if err := json.Unmarshal(msg.Payload, &result); err != nil {
		t.Fatalf("unmarshal start_game result: %v", err)
	}
	if result.Status != message.StatusSuccess {
		t.Fatalf("start_game status = %s", result.Status)
	}
	if result.GameID != "game-1" {
		t.Errorf("GameID = %s, want game-1", result.GameID)
	}
	if len(result.Players) != 2 {
		t.Fatalf("got %d participants, want 2", len(result.Players))
	}

	// Both sides move to the in-game state and are marked InPlay.
	for _, name := range []string{"Alice", "Bob"} {
		sess := h.sessionsByName[name]
		if sess.State != state_IN_GAME {
			t.Errorf("%s state = %s, want %s", name, sess.State, state_IN_GAME)
		}
		if sess.Player.Status != StatusInPlay {
			t.Errorf("%s status = %s, want %s", name, sess.Player.Status, StatusInPlay)
		}
		if sess.CurrentGame == nil {
			t.Errorf("%s has no current game", name)
		}
	}

	// The dealer is seated last, so the matched player opens the game.
	gs := h.sessionsByName["Alice"].CurrentGame
	if got := gs.Game().CurrentPlayer(); got != "Bob" {
		t.Errorf("opening turn belongs to %s, want Bob", got)
	}

	// Everyone hears start and an initial state snapshot.
	bobMsgs := bob.drain()
	if _, ok := lastOfType(bobMsgs, message.TypeStart); !ok {
		t.Error("Bob did not receive the start broadcast")
	}
	stateMsg, ok := lastOfType(bobMsgs, message.TypeGameState)
	if !ok {
		t.Fatal("Bob did not receive a game_state broadcast")
	}
	var state message.GameStatePayload
	if err := json.Unmarshal(stateMsg.Payload, &state); err != nil {
		t.Fatalf("unmarshal game_state: %v", err)
	}
	if state.You != "Bob" {
		t.Errorf("game_state You = %s, want Bob", state.You)
	}
	if len(state.Hands["Alice"]) != 6 || len(state.Hands["Bob"]) != 6 {
		t.Errorf("opening hands = %d/%d cards, want 6/6",
			len(state.Hands["Alice"]), len(state.Hands["Bob"]))
	}
}

func TestStartGameRejectsBadParameters(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		holes   int
		wantErr string
	}{
		{"n too small", 0, 5, "n must be"},
		{"n too large", 4, 5, "n must be"},
		{"holes too small", 1, 0, "holes must be"},
		{"holes too large", 1, 10, "holes must be"},
		{"not enough players", 3, 5, "not enough free players"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler()
			alice := registerPlayer(t, h, "Alice")
			registerPlayer(t, h, "Bob")

			h.dispatch(alice, network.Message{Type: "start_game", Payload: mustJSON(t, map[string]any{
				"player": "Alice",
				"n":      tt.n,
				"holes":  tt.holes,
			})})
			expectFailure(t, alice.drain(), tt.wantErr)
		})
	}
}

func TestDrawOutOfTurnRejected(t *testing.T) {
	h := newTestHandler()
	alice, _ := startTwoPlayerGame(t, h)

	// Bob opens; Alice must wait.
	h.dispatch(alice, network.Message{Type: "draw_card", Payload: nil})
	expectFailure(t, alice.drain(), "not your turn")
}

func TestDrawDiscardAdvancesTurn(t *testing.T) {
	h := newTestHandler()
	alice, bob := startTwoPlayerGame(t, h)
	gs := h.sessionsByName["Bob"].CurrentGame

	h.dispatch(bob, network.Message{Type: "draw_card", Payload: nil})
	bobMsgs := bob.drain()
	stateMsg, ok := lastOfType(bobMsgs, message.TypeGameState)
	if !ok {
		t.Fatal("no game_state after draw")
	}
	var state message.GameStatePayload
	if err := json.Unmarshal(stateMsg.Payload, &state); err != nil {
		t.Fatalf("unmarshal game_state: %v", err)
	}
	if state.Drawn == "" {
		t.Fatal("current player's snapshot carries no drawn card")
	}

	// The pending card never appears in the spectator view.
	aliceState, ok := lastOfType(alice.drain(), message.TypeGameState)
	if !ok {
		t.Fatal("Alice missed the post-draw game_state")
	}
	var spectator message.GameStatePayload
	json.Unmarshal(aliceState.Payload, &spectator)
	if spectator.Drawn != "" {
		t.Errorf("spectator snapshot leaks drawn card %s", spectator.Drawn)
	}

	// A second draw in the same turn is refused.
	h.dispatch(bob, network.Message{Type: "draw_card", Payload: nil})
	expectFailure(t, bob.drain(), "already drew")

	// Discarding the drawn card hands the turn to Alice.
	h.dispatch(bob, network.Message{Type: "discard_card", Payload: mustJSON(t, map[string]string{
		"card": state.Drawn,
	})})
	if status := lastStatus(t, bob.drain()); status.Status != message.StatusSuccess {
		t.Fatalf("discard failed: %s", status.Reason)
	}
	if got := gs.Game().CurrentPlayer(); got != "Alice" {
		t.Errorf("turn holder = %s, want Alice", got)
	}
	top := gs.Game().DiscardTop()
	if top == nil || top.Key() != state.Drawn {
		t.Errorf("discard top = %v, want %s", top, state.Drawn)
	}
}

func TestSwapKeepsDrawnCard(t *testing.T) {
	h := newTestHandler()
	_, bob := startTwoPlayerGame(t, h)
	gs := h.sessionsByName["Bob"].CurrentGame

	held := gs.Game().HandOf("Bob")[0]

	h.dispatch(bob, network.Message{Type: "draw_card", Payload: nil})
	stateMsg, _ := lastOfType(bob.drain(), message.TypeGameState)
	var state message.GameStatePayload
	json.Unmarshal(stateMsg.Payload, &state)

	h.dispatch(bob, network.Message{Type: "swap_card", Payload: mustJSON(t, map[string]string{
		"heldCard":  held,
		"drawnCard": state.Drawn,
	})})
	if status := lastStatus(t, bob.drain()); status.Status != message.StatusSuccess {
		t.Fatalf("swap failed: %s", status.Reason)
	}

	hand := gs.Game().HandOf("Bob")
	found := false
	for _, key := range hand {
		if key == held {
			t.Errorf("swapped-out card %s still in hand", held)
		}
		if key == state.Drawn {
			found = true
		}
	}
	if !found {
		t.Errorf("drawn card %s missing from hand after swap", state.Drawn)
	}
	if top := gs.Game().DiscardTop(); top == nil || top.Key() != held {
		t.Errorf("discard top after swap = %v, want %s", top, held)
	}
	if got := gs.Game().CurrentPlayer(); got != "Alice" {
		t.Errorf("turn holder after swap = %s, want Alice", got)
	}
}

func TestHandEmptyFinishesGame(t *testing.T) {
	h := newTestHandler()
	alice, bob := startTwoPlayerGame(t, h)
	conns := map[string]*fakeConn{"Alice": alice, "Bob": bob}
	gs := h.sessionsByName["Bob"].CurrentGame

	// Each player sheds a hand card every turn without drawing. Bob went
	// first, so his hand empties first and ends the game.
	for turns := 0; !gs.Game().Over(); turns++ {
		if turns > 20 {
			t.Fatal("game did not finish within the expected turns")
		}
		current := gs.Game().CurrentPlayer()
		conn := conns[current]
		h.dispatch(conn, network.Message{Type: "discard_card", Payload: mustJSON(t, map[string]string{
			"card": gs.Game().HandOf(current)[0],
		})})
		if status := lastStatus(t, conn.drain()); status.Status != message.StatusSuccess {
			t.Fatalf("discard by %s failed: %s", current, status.Reason)
		}
	}

	aliceMsgs := alice.drain()
	overMsg, ok := lastOfType(aliceMsgs, message.TypeGameOver)
	if !ok {
		t.Fatal("no game_over broadcast")
	}
	var over message.GameOverPayload
	json.Unmarshal(overMsg.Payload, &over)
	if over.Player != "Bob" {
		t.Errorf("game_over player = %s, want Bob", over.Player)
	}

	resultMsg, ok := lastOfType(aliceMsgs, message.TypeFinalResult)
	if !ok {
		t.Fatal("no final_result broadcast")
	}
	var result message.FinalResultPayload
	if err := json.Unmarshal(resultMsg.Payload, &result); err != nil {
		t.Fatalf("unmarshal final_result: %v", err)
	}
	if result.Tie || len(result.Winners) != 1 || result.Winners[0] != "Bob" {
		t.Errorf("winners = %v (tie=%v), want [Bob]", result.Winners, result.Tie)
	}
	if result.Scores["Bob"] != 0 {
		t.Errorf("empty hand score = %d, want 0", result.Scores["Bob"])
	}
	if result.Reason != "" {
		t.Errorf("normal ending carries reason %q", result.Reason)
	}

	// The session is torn down and everyone is free again.
	if h.manager.Len() != 0 {
		t.Errorf("active games after finish = %d, want 0", h.manager.Len())
	}
	for _, name := range []string{"Alice", "Bob"} {
		sess := h.sessionsByName[name]
		if sess.State != state_LOBBY || sess.CurrentGame != nil {
			t.Errorf("%s not back in lobby after finish", name)
		}
		if sess.Player.Status != StatusFree {
			t.Errorf("%s status = %s, want %s", name, sess.Player.Status, StatusFree)
		}
	}

	// Ids keep counting: the next game is game-2, never a reused id.
	h.dispatch(alice, network.Message{Type: "start_game", Payload: mustJSON(t, map[string]any{
		"player": "Alice", "n": 1, "holes": 3,
	})})
	msg, ok := lastOfType(alice.drain(), message.TypeResponse)
	if !ok {
		t.Fatal("no response to second start_game")
	}
	var second message.StartGameResultPayload
	json.Unmarshal(msg.Payload, &second)
	if second.GameID != "game-2" {
		t.Errorf("second GameID = %s, want game-2", second.GameID)
	}
}

func TestEndRequiresDealer(t *testing.T) {
	h := newTestHandler()
	alice, bob := startTwoPlayerGame(t, h)
	gameID := h.sessionsByName["Alice"].CurrentGame.ID

	h.dispatch(bob, network.Message{Type: "end", Payload: mustJSON(t, map[string]string{
		"gameId": gameID,
		"player": "Bob",
	})})
	expectFailure(t, bob.drain(), "only the dealer")

	h.dispatch(alice, network.Message{Type: "end", Payload: mustJSON(t, map[string]string{
		"gameId": gameID,
		"player": "Alice",
	})})
	aliceMsgs := alice.drain()
	if status := lastStatus(t, aliceMsgs); status.Status != message.StatusSuccess {
		t.Fatalf("dealer end failed: %s", status.Reason)
	}

	resultMsg, ok := lastOfType(aliceMsgs, message.TypeFinalResult)
	if !ok {
		t.Fatal("no final_result after dealer end")
	}
	var result message.FinalResultPayload
	json.Unmarshal(resultMsg.Payload, &result)
	if result.Reason != "ended by dealer" {
		t.Errorf("reason = %q, want 'ended by dealer'", result.Reason)
	}
	if h.manager.Len() != 0 {
		t.Errorf("active games after end = %d, want 0", h.manager.Len())
	}
}

func TestEndUnknownGame(t *testing.T) {
	h := newTestHandler()
	alice := registerPlayer(t, h, "Alice")

	h.dispatch(alice, network.Message{Type: "end", Payload: mustJSON(t, map[string]string{
		"gameId": "game-99",
		"player": "Alice",
	})})
	expectFailure(t, alice.drain(), "unknown game id")
}

func TestDisconnectMidGameForcesEnd(t *testing.T) {
	h := newTestHandler()
	alice, bob := startTwoPlayerGame(t, h)

	h.disconnect(bob)

	aliceMsgs := alice.drain()
	leftMsg, ok := lastOfType(aliceMsgs, message.TypePlayerLeft)
	if !ok {
		t.Fatal("no player_left broadcast after disconnect")
	}
	var left message.PlayerLeftPayload
	json.Unmarshal(leftMsg.Payload, &left)
	if left.Player != "Bob" {
		t.Errorf("player_left player = %s, want Bob", left.Player)
	}

	// One player cannot continue alone; the session is force-ended.
	resultMsg, ok := lastOfType(aliceMsgs, message.TypeFinalResult)
	if !ok {
		t.Fatal("no final_result after forced end")
	}
	var result message.FinalResultPayload
	json.Unmarshal(resultMsg.Payload, &result)
	if result.Reason != "not enough players to continue" {
		t.Errorf("reason = %q, want forced-end reason", result.Reason)
	}

	if h.manager.Len() != 0 {
		t.Errorf("active games = %d, want 0", h.manager.Len())
	}
	if h.registry.Len() != 1 {
		t.Errorf("registered players after disconnect = %d, want 1", h.registry.Len())
	}
	sess := h.sessionsByName["Alice"]
	if sess.State != state_LOBBY || sess.Player.Status != StatusFree {
		t.Error("Alice not returned to a free lobby state")
	}
	if _, stillThere := h.sessionsByName["Bob"]; stillThere {
		t.Error("Bob's session survived the disconnect")
	}
}

func TestThreePlayerGameSurvivesOneLeaving(t *testing.T) {
	h := newTestHandler()
	alice := registerPlayer(t, h, "Alice")
	bob := registerPlayer(t, h, "Bob")
	carol := registerPlayer(t, h, "Carol")

	h.dispatch(alice, network.Message{Type: "start_game", Payload: mustJSON(t, map[string]any{
		"player": "Alice", "n": 2, "holes": 5,
	})})
	if status := lastStatus(t, alice.drain()); status.Status != message.StatusSuccess {
		t.Fatalf("start_game failed: %s", status.Reason)
	}
	bob.drain()
	carol.drain()

	gs := h.sessionsByName["Alice"].CurrentGame
	h.disconnect(bob)

	// Two participants remain; the game keeps going without Bob.
	if h.manager.Len() != 1 {
		t.Fatalf("active games = %d, want 1", h.manager.Len())
	}
	for _, name := range gs.Game().Players() {
		if name == "Bob" {
			t.Error("Bob still listed in the game after leaving")
		}
	}
	if _, ok := lastOfType(carol.drain(), message.TypePlayerLeft); !ok {
		t.Error("Carol did not hear player_left")
	}
}

func TestCommandRoutingByState(t *testing.T) {
	h := newTestHandler()
	alice := registerPlayer(t, h, "Alice")

	// Game commands are not reachable from the lobby.
	h.dispatch(alice, network.Message{Type: "draw_card", Payload: nil})
	expectFailure(t, alice.drain(), "unknown or invalid command")

	h.dispatch(alice, network.Message{Type: "fly", Payload: nil})
	expectFailure(t, alice.drain(), "unknown or invalid command")

	// Lobby-only commands are not reachable mid-game.
	registerPlayer(t, h, "Bob")
	h.dispatch(alice, network.Message{Type: "start_game", Payload: mustJSON(t, map[string]any{
		"player": "Alice", "n": 1, "holes": 5,
	})})
	alice.drain()
	h.dispatch(alice, network.Message{Type: "deregister", Payload: mustJSON(t, map[string]string{
		"name": "Alice",
	})})
	expectFailure(t, alice.drain(), "unknown or invalid command")
}

func TestDeregisterOtherPlayerRejected(t *testing.T) {
	h := newTestHandler()
	alice := registerPlayer(t, h, "Alice")
	registerPlayer(t, h, "Bob")

	h.dispatch(alice, network.Message{Type: "deregister", Payload: mustJSON(t, map[string]string{
		"name": "Bob",
	})})
	expectFailure(t, alice.drain(), "cannot deregister another player")
	if h.registry.Len() != 2 {
		t.Errorf("registry len = %d, want 2", h.registry.Len())
	}
}
