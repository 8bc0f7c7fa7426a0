package session

import (
	"github.com/google/uuid"

	"cardgolf/internal/network"
)

// PlayerStatus is a registered player's availability for matchmaking.
type PlayerStatus string

const (
	StatusFree   PlayerStatus = "Free"
	StatusInPlay PlayerStatus = "InPlay"
)

// RegisteredPlayer is one entry of the tracker registry.
type RegisteredPlayer struct {
	Name        string
	Address     string
	ControlPort int
	DataPort    int
	Status      PlayerStatus
}

// Constantes de estado da sessão para evitar erros de digitação.
const (
	state_LOBBY   = "lobby"   // Conectado; pode registrar, consultar e iniciar partidas.
	state_IN_GAME = "in_game" // Participando de uma sessão ativa.
)

// ClientConn is the slice of network.Client the session layer depends on.
// *network.Client satisfies it; tests substitute an in-memory fake.
type ClientConn interface {
	Send() chan<- network.Message
	Close() error
	RemoteAddr() string
}

// PlayerSession representa uma conexão única com o servidor. Player fica nil
// até o cliente se registrar.
type PlayerSession struct {
	ID     string
	Client ClientConn

	Player      *RegisteredPlayer
	CurrentGame *GameSession

	State string
}

func NewPlayerSession(client ClientConn) *PlayerSession {
	return &PlayerSession{
		ID:     uuid.NewString(),
		Client: client,
		State:  state_LOBBY,
	}
}

// Name returns the registered player name, or "" before registration.
func (s *PlayerSession) Name() string {
	if s.Player == nil {
		return ""
	}
	return s.Player.Name
}
