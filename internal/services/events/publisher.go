package events

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Subjects published over NATS so other services (lobby UIs, stats
// collectors) can follow session lifecycles without talking to the game
// server directly.
const (
	SubjectGameStarted  = "golf.game.started"
	SubjectGameFinished = "golf.game.finished"
	SubjectPlayerLeft   = "golf.game.player_left"
)

// Publisher is a thin fire-and-forget bridge to NATS. A nil *Publisher is a
// valid no-op publisher, so the session layer never has to branch on whether
// eventing is configured.
type Publisher struct {
	nc *nats.Conn
}

// Connect dials the NATS server. The connection reconnects forever in the
// background; the game must keep running through broker outages.
func Connect(url string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("cardgolf-server"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{nc: nc}, nil
}

func (p *Publisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	p.nc.Drain()
}

// Publish marshals v as JSON and publishes it on subject. Failures are
// logged and swallowed: eventing is best-effort and must never disturb a
// running session.
func (p *Publisher) Publish(subject string, v any) {
	if p == nil || p.nc == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		log.Warnf("[Events] Failed to marshal event for %s: %v", subject, err)
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		log.Warnf("[Events] Failed to publish %s: %v", subject, err)
	}
}
