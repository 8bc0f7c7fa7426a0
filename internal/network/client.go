package network

import (
	"net"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	// Tempo para aguardar por uma escrita na conexão.
	writeWait = 10 * time.Second

	// pongWait is the per-connection read/idle timeout. A peer that neither
	// sends a message nor answers pings within this window counts as
	// disconnected and goes through the normal cleanup path.
	pongWait = 60 * time.Second

	// Deve ser menor que pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// Client é a representação de um jogador conectado do ponto de vista do
// servidor. O Hub coloca mensagens no canal 'send' e o writeLoop as envia.
type Client struct {
	conn *websocket.Conn
	hub  *Hub
	send chan Message
}

// Conn retorna a conexão net.Conn subjacente do cliente.
func (c *Client) Conn() net.Conn {
	return c.conn.UnderlyingConn()
}

func (c *Client) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

func (c *Client) Send() chan<- Message {
	return c.send
}

// Close tears the connection down. The readLoop unblocks with an error and
// the client goes through the Hub's unregister path exactly as if the peer
// had dropped.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) readLoop() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warnf("[Network] Unexpected close from %s: %v", c.RemoteAddr(), err)
			}
			break
		}

		// A message also proves liveness.
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		c.hub.incoming <- clientMessage{client: c, msg: msg}
	}
}

// writeLoop bombeia mensagens do canal 'send' para a conexão WebSocket.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			// O canal 'send' foi fechado pelo Hub: o cliente foi desregistrado.
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(msg); err != nil {
				log.Warnf("[Network] Write error to %s: %v", c.RemoteAddr(), err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
