// cardgolf/cmd/bots/simple-bot/main.go
package main

import (
	"encoding/json"
	"log"
	"math/rand/v2"
	"net/url"
	"os"
	"strings"
	"time"

	"cardgolf/internal/game/card"
	"cardgolf/internal/network"
	"cardgolf/internal/session/message"

	"github.com/gorilla/websocket"
)

// O bot se registra no tracker e fica disponível para ser sorteado por um
// dealer. Quando é a vez dele, joga uma estratégia simples: compra uma
// carta e a troca pela pior carta da mão, ou a descarta se não melhorar.

const serverAddress = "localhost:7500"

var letters = []rune("abcdefghijklmnopqrstuvwxyz")

func main() {
	if err := card.InitGlobalCatalog(); err != nil {
		log.Fatalf("FAIL: card catalog: %v", err)
	}

	name := os.Getenv("BOT_NAME")
	if name == "" {
		name = randomName()
	}

	addr := serverAddress
	if addrEnv := os.Getenv("GOLF_SERVER_ADDR"); addrEnv != "" {
		addr = strings.TrimSpace(addrEnv)
	}

	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Connection FAIL: could not connect to %s: %v", addr, err)
	}
	defer conn.Close()
	log.Printf("[%s] Connected. Registering...", name)

	register(conn, name)

	for {
		var msg network.Message
		if err := conn.ReadJSON(&msg); err != nil {
			log.Printf("[%s] Connection closed: %v", name, err)
			return
		}
		handleMessage(conn, name, msg)
	}
}

func register(conn *websocket.Conn, name string) {
	port := 7501 + rand.IntN(portRange())
	payload, _ := json.Marshal(map[string]any{
		"name":        name,
		"address":     "",
		"controlPort": port,
		"dataPort":    port,
	})
	send(conn, name, network.Message{Type: "register", Payload: payload})
}

func handleMessage(conn *websocket.Conn, name string, msg network.Message) {
	switch msg.Type {
	case message.TypeStart:
		var p message.StartPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			log.Printf("[%s] Matched into game %s (dealer %s)", name, p.GameID, p.Dealer)
		}
	case message.TypeGameState:
		var state message.GameStatePayload
		if json.Unmarshal(msg.Payload, &state) != nil {
			return
		}
		if state.CurrentPlayer != name {
			return
		}
		// Simula um jogador pensando antes de agir.
		time.Sleep(time.Duration(500+rand.IntN(1500)) * time.Millisecond)
		playTurn(conn, name, state)
	case message.TypeFinalResult:
		var p message.FinalResultPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			log.Printf("[%s] Game %s over. Winners: %v. Waiting for the next match.",
				name, p.GameID, p.Winners)
		}
	}
}

// playTurn decides one move from the personalized snapshot.
func playTurn(conn *websocket.Conn, name string, state message.GameStatePayload) {
	if state.Drawn == "" {
		send(conn, name, network.Message{Type: "draw_card"})
		return
	}

	// Troca a carta comprada pela pior da mão, se ela for melhor.
	worstKey, worstScore := "", -1
	for _, key := range state.Hands[name] {
		if c, err := card.GetCard(key); err == nil && c.Score() > worstScore {
			worstKey, worstScore = key, c.Score()
		}
	}

	drawn, err := card.GetCard(state.Drawn)
	if err == nil && worstKey != "" && drawn.Score() < worstScore {
		payload, _ := json.Marshal(map[string]string{
			"heldCard":  worstKey,
			"drawnCard": state.Drawn,
		})
		send(conn, name, network.Message{Type: "swap_card", Payload: payload})
		return
	}

	payload, _ := json.Marshal(map[string]string{"card": state.Drawn})
	send(conn, name, network.Message{Type: "discard_card", Payload: payload})
}

func send(conn *websocket.Conn, name string, msg network.Message) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[%s] FAIL: could not send %s: %v", name, msg.Type, err)
	}
}

func randomName() string {
	b := make([]rune, 8)
	for i := range b {
		b[i] = letters[rand.IntN(len(letters))]
	}
	return "bot" + string(b)
}

func portRange() int { return 7999 - 7501 + 1 }
