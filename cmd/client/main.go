// cardgolf/cmd/client/main.go
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"cardgolf/internal/network"
	"cardgolf/internal/session/message"

	"github.com/gorilla/websocket"
)

const (
	StateLobby  = "Lobby"
	StateInGame = "InGame"
)

var clientState = StateLobby
var playerName string

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	addr := "localhost:7500"
	if addrEnv := os.Getenv("GOLF_SERVER_ADDR"); addrEnv != "" {
		addr = strings.TrimSpace(addrEnv)
	}

	u := url.URL{Scheme: "ws", Host: addr, Path: "/ws"}
	log.Printf("Conectando ao servidor em %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Falha ao conectar a %s: %v", addr, err)
	}
	defer conn.Close()
	log.Println("Conexão WebSocket bem-sucedida!")

	done := make(chan struct{})
	go readLoop(conn, done)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		printPrompt()
		for scanner.Scan() {
			handleUserInput(conn, scanner, scanner.Text())
		}
	}()

	select {
	case <-done:
		log.Println("Desconectado do servidor.")
	case <-interrupt:
		log.Println("Interrupção recebida, fechando conexão.")
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}

func readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		var msg network.Message
		err := conn.ReadJSON(&msg)
		if err != nil {
			if !websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Println("\nConexão fechada normalmente.")
			} else {
				log.Printf("\nErro de leitura: %v", err)
			}
			break
		}

		printServerMessage(&msg)
		printPrompt()
	}
}

func handleUserInput(conn *websocket.Conn, scanner *bufio.Scanner, choice string) {
	switch clientState {
	case StateLobby:
		handleLobbyInput(conn, scanner, choice)
	case StateInGame:
		handleInGameInput(conn, scanner, choice)
	}
}

func handleLobbyInput(conn *websocket.Conn, scanner *bufio.Scanner, choice string) {
	var msg network.Message
	shouldSend := true
	switch choice {
	case "1":
		name := promptForString(scanner, "Digite seu nome (somente letras): ")
		controlPort, err := promptForInt(scanner, "Porta de controle [7501-7999]: ")
		if err != nil {
			fmt.Println(err)
			shouldSend = false
			break
		}
		dataPort, err := promptForInt(scanner, "Porta de dados [7501-7999]: ")
		if err != nil {
			fmt.Println(err)
			shouldSend = false
			break
		}
		payload, _ := json.Marshal(map[string]any{
			"name":        name,
			"address":     "",
			"controlPort": controlPort,
			"dataPort":    dataPort,
		})
		msg = network.Message{Type: "register", Payload: payload}
		playerName = name
	case "2":
		payload, _ := json.Marshal(map[string]string{"name": playerName})
		msg = network.Message{Type: "deregister", Payload: payload}
	case "3":
		msg.Type = "query_players"
	case "4":
		msg.Type = "query_games"
	case "5":
		n, err := promptForInt(scanner, "Quantos oponentes [1-3]? ")
		if err != nil {
			fmt.Println(err)
			shouldSend = false
			break
		}
		holes, err := promptForInt(scanner, "Quantos buracos [1-9]? ")
		if err != nil {
			fmt.Println(err)
			shouldSend = false
			break
		}
		payload, _ := json.Marshal(map[string]any{
			"player": playerName,
			"n":      n,
			"holes":  holes,
		})
		msg = network.Message{Type: "start_game", Payload: payload}
	default:
		fmt.Println("Opção inválida.")
		shouldSend = false
	}

	if shouldSend {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("Erro ao enviar mensagem: %v", err)
		}
	} else {
		printPrompt()
	}
}

func handleInGameInput(conn *websocket.Conn, scanner *bufio.Scanner, choice string) {
	var msg network.Message
	shouldSend := true
	switch choice {
	case "1":
		msg.Type = "draw_card"
	case "2":
		key := promptForString(scanner, "Digite a carta a descartar (ex: 7H): ")
		payload, _ := json.Marshal(map[string]string{"card": key})
		msg = network.Message{Type: "discard_card", Payload: payload}
	case "3":
		held := promptForString(scanner, "Carta da mão a trocar (ex: KS): ")
		drawn := promptForString(scanner, "Carta comprada a guardar (ex: 2D): ")
		payload, _ := json.Marshal(map[string]string{"heldCard": held, "drawnCard": drawn})
		msg = network.Message{Type: "swap_card", Payload: payload}
	case "4":
		msg.Type = "query_players"
	case "5":
		gameID := promptForString(scanner, "ID do jogo a encerrar: ")
		payload, _ := json.Marshal(map[string]string{"gameId": gameID, "player": playerName})
		msg = network.Message{Type: "end", Payload: payload}
	default:
		fmt.Println("Opção inválida.")
		shouldSend = false
	}

	if shouldSend {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("Erro ao enviar mensagem: %v", err)
		}
	} else {
		printPrompt()
	}
}

func printServerMessage(msg *network.Message) {
	switch msg.Type {
	case message.TypeWelcome:
		var p message.WelcomePayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			fmt.Printf("\n%s\n", p.Message)
		}
	case message.TypeResponse:
		var status message.StatusPayload
		if json.Unmarshal(msg.Payload, &status) == nil && status.Status == message.StatusFailure {
			fmt.Printf("\nErro: %s\n", status.Reason)
			return
		}
		prettyJSON, err := json.MarshalIndent(json.RawMessage(msg.Payload), "", "  ")
		if err == nil {
			fmt.Printf("\nOK:\n%s\n", string(prettyJSON))
		} else {
			fmt.Printf("\nOK: %s\n", string(msg.Payload))
		}
	case message.TypeStart:
		var p message.StartPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			fmt.Printf("\n=== Jogo %s iniciado! Dealer: %s, Buracos: %d ===\n", p.GameID, p.Dealer, p.Holes)
			fmt.Printf("Jogadores: %s\n", strings.Join(p.Players, ", "))
			clientState = StateInGame
		}
	case message.TypeGameState:
		printGameState(msg.Payload)
	case message.TypeGameOver:
		var p message.GameOverPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			fmt.Printf("\n=== %s esvaziou a mão! Fim do jogo %s. ===\n", p.Player, p.GameID)
		}
	case message.TypeFinalResult:
		var p message.FinalResultPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			fmt.Printf("\n--- Resultado final do jogo %s ---\n", p.GameID)
			for name, score := range p.Scores {
				fmt.Printf("  %s: %d pontos\n", name, score)
			}
			if p.Tie {
				fmt.Printf("Empate entre: %s\n", strings.Join(p.Winners, ", "))
			} else if len(p.Winners) == 1 {
				fmt.Printf("Vencedor: %s\n", p.Winners[0])
			}
			if p.Reason != "" {
				fmt.Printf("Motivo: %s\n", p.Reason)
			}
			clientState = StateLobby
		}
	case message.TypePlayerLeft:
		var p message.PlayerLeftPayload
		if json.Unmarshal(msg.Payload, &p) == nil {
			fmt.Printf("\n%s abandonou o jogo %s.\n", p.Player, p.GameID)
		}
	default:
		fmt.Printf("\nInfo (%s): %s\n", msg.Type, string(msg.Payload))
	}
}

func printGameState(raw json.RawMessage) {
	var p message.GameStatePayload
	if json.Unmarshal(raw, &p) != nil {
		fmt.Printf("\nInfo (game_state): %s\n", string(raw))
		return
	}

	fmt.Printf("\n--- Jogo %s ---\n", p.GameID)
	fmt.Printf("Vez de: %s\n", p.CurrentPlayer)
	if p.DiscardTop != "" {
		fmt.Printf("Topo do descarte: %s\n", p.DiscardTop)
	}
	fmt.Printf("Cartas no baralho: %d\n", p.DeckSize)
	for name, hand := range p.Hands {
		marker := ""
		if name == p.You {
			marker = " (você)"
		}
		fmt.Printf("  %s%s: %s\n", name, marker, strings.Join(hand, " "))
	}
	if p.Drawn != "" {
		fmt.Printf("Carta comprada: %s\n", p.Drawn)
	}
}

func printPrompt() {
	var prompt string
	switch clientState {
	case StateLobby:
		prompt = `
--- Six Card Golf (Lobby) ---
1. Registrar
2. Desregistrar
3. Listar Jogadores
4. Listar Jogos
5. Iniciar Jogo (dealer)
-----------------------------

(Lobby) Digite uma opção: `
	case StateInGame:
		prompt = `
--- Six Card Golf (Em Jogo) ---
1. Comprar Carta
2. Descartar Carta
3. Trocar Carta
4. Listar Jogadores
5. Encerrar Jogo (dealer)
-------------------------------

(Em Jogo) Digite uma opção: `
	}
	fmt.Print(prompt)
}

func promptForString(scanner *bufio.Scanner, prompt string) string {
	fmt.Print(prompt)
	scanner.Scan()
	return scanner.Text()
}

func promptForInt(scanner *bufio.Scanner, prompt string) (int, error) {
	fmt.Print(prompt)
	scanner.Scan()
	num, err := strconv.Atoi(scanner.Text())
	if err != nil {
		return 0, fmt.Errorf("entrada inválida. Por favor, digite um número")
	}
	return num, nil
}
