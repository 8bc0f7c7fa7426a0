package session

import (
	"fmt"
	"regexp"
	"sort"

	"cardgolf/internal/session/message"
)

const (
	maxNameLength = 15

	// Control and data ports must fall in this range.
	portMin = 7501
	portMax = 7999
)

var nameRe = regexp.MustCompile(`^[A-Za-z]+$`)

// Registry tracks registered players by name.
//
// Single-writer ownership: the Registry is only ever touched from the hub
// goroutine, so it carries no lock.
type Registry struct {
	players map[string]*RegisteredPlayer
}

func NewRegistry() *Registry {
	return &Registry{
		players: make(map[string]*RegisteredPlayer),
	}
}

// Register validates and stores a new player with status Free.
func (r *Registry) Register(name, address string, controlPort, dataPort int) (*RegisteredPlayer, error) {
	if name == "" || len(name) > maxNameLength || !nameRe.MatchString(name) {
		return nil, fmt.Errorf("name must be 1 to %d alphabetic characters", maxNameLength)
	}
	if controlPort < portMin || controlPort > portMax {
		return nil, fmt.Errorf("control port %d outside [%d,%d]", controlPort, portMin, portMax)
	}
	if dataPort < portMin || dataPort > portMax {
		return nil, fmt.Errorf("data port %d outside [%d,%d]", dataPort, portMin, portMax)
	}
	if _, exists := r.players[name]; exists {
		return nil, fmt.Errorf("player %s is already registered", name)
	}

	player := &RegisteredPlayer{
		Name:        name,
		Address:     address,
		ControlPort: controlPort,
		DataPort:    dataPort,
		Status:      StatusFree,
	}
	r.players[name] = player
	return player, nil
}

// Deregister removes a player. Session-membership checks happen at the
// handler, which sees the active games.
func (r *Registry) Deregister(name string) error {
	if _, exists := r.players[name]; !exists {
		return fmt.Errorf("player %s is not registered", name)
	}
	delete(r.players, name)
	return nil
}

func (r *Registry) Get(name string) (*RegisteredPlayer, bool) {
	p, ok := r.players[name]
	return p, ok
}

func (r *Registry) Len() int {
	return len(r.players)
}

// Query returns a read-only snapshot of (name, status) pairs, ordered by
// name so the listing is stable.
func (r *Registry) Query() []message.PlayerEntry {
	entries := make([]message.PlayerEntry, 0, len(r.players))
	for _, p := range r.players {
		entries = append(entries, message.PlayerEntry{
			Name:   p.Name,
			Status: string(p.Status),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
