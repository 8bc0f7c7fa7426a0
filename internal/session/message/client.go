package message

// Isso aqui são as mensagens que vão no sentido servidor -> client.
import (
	"encoding/json"
	"fmt"

	"cardgolf/internal/network"
)

const (
	StatusSuccess = "SUCCESS"
	StatusFailure = "FAILURE"
)

// Envelope types for server-initiated broadcasts.
const (
	TypeResponse    = "response"
	TypeWelcome     = "welcome"
	TypeStart       = "start"
	TypeGameState   = "game_state"
	TypeGameOver    = "game_over"
	TypeFinalResult = "final_result"
	TypePlayerLeft  = "player_left"
)

// StatusPayload answers register, deregister, end and every failed request.
type StatusPayload struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// ParticipantInfo is the per-player record returned by a successful
// start_game, enough for peers to reach each other's data port.
type ParticipantInfo struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	DataPort int    `json:"dataPort"`
}

type StartGameResultPayload struct {
	Status  string            `json:"status"`
	GameID  string            `json:"gameId"`
	Players []ParticipantInfo `json:"players"`
}

type PlayerEntry struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

type PlayersPayload struct {
	Count   int           `json:"count"`
	Players []PlayerEntry `json:"players"`
}

type GameSummary struct {
	ID      string   `json:"id"`
	Dealer  string   `json:"dealer"`
	Players []string `json:"players"`
}

type GamesPayload struct {
	Count int           `json:"count"`
	Games []GameSummary `json:"games"`
}

// --- Broadcast payloads ---

type WelcomePayload struct {
	Message string `json:"message"`
}

type StartPayload struct {
	GameID  string   `json:"gameId"`
	Dealer  string   `json:"dealer"`
	Holes   int      `json:"holes"`
	Players []string `json:"players"`
}

// GameStatePayload is personalized: You carries the recipient's own name so
// each client can pick out its hand from the open Hands map.
type GameStatePayload struct {
	GameID        string              `json:"gameId"`
	You           string              `json:"you"`
	CurrentPlayer string              `json:"currentPlayer"`
	DiscardTop    string              `json:"discardTop,omitempty"`
	DeckSize      int                 `json:"deckSize"`
	Hands         map[string][]string `json:"hands"`
	Drawn         string              `json:"drawn,omitempty"`
}

type GameOverPayload struct {
	GameID string `json:"gameId"`
	Player string `json:"player"`
}

type FinalResultPayload struct {
	GameID  string         `json:"gameId"`
	Scores  map[string]int `json:"scores"`
	Winners []string       `json:"winners"`
	Tie     bool           `json:"tie"`
	Reason  string         `json:"reason,omitempty"`
}

type PlayerLeftPayload struct {
	GameID string `json:"gameId"`
	Player string `json:"player"`
}

// --- Constructors ---

func CreateSuccessResponse() network.Message {
	return createMessage(TypeResponse, StatusPayload{Status: StatusSuccess})
}

func CreateFailureResponse(format string, args ...any) network.Message {
	return createMessage(TypeResponse, StatusPayload{
		Status: StatusFailure,
		Reason: fmt.Sprintf(format, args...),
	})
}

// CreateDataResponse wraps a reply that carries its own schema
// (query results, start_game participant list).
func CreateDataResponse(payload any) network.Message {
	return createMessage(TypeResponse, payload)
}

func CreateEvent(eventType string, payload any) network.Message {
	return createMessage(eventType, payload)
}

func createMessage(msgType string, payload any) network.Message {
	payloadBytes, _ := json.Marshal(payload)
	return network.Message{
		Type:    msgType,
		Payload: payloadBytes,
	}
}
