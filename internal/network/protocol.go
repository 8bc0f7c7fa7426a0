package network

import (
	"encoding/json"
)

// Message é o envelope padrão para toda a comunicação.
// The Type field routes the message; Payload stays raw JSON so each handler
// decodes its own schema at the single dispatch point.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MaxMessageSize caps a single inbound frame. Anything larger is treated as
// a broken peer and the connection is dropped.
const MaxMessageSize = 64 * 1024
