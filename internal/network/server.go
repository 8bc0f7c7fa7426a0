package network

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

// Server é a estrutura principal do nosso servidor de rede.
type Server struct {
	hub *Hub
}

var upgrader = websocket.Upgrader{
	// Para desenvolvimento, aceitamos qualquer origem.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// NewServer aceita um EventHandler: este é o ponto de injeção da lógica do jogo.
func NewServer(handler EventHandler) *Server {
	return &Server{
		hub: NewHub(handler),
	}
}

// wsHandler promove a requisição HTTP para uma conexão WebSocket persistente.
func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("[Network] Upgrade failed: %v", err)
		return
	}

	client := &Client{
		conn: conn,
		hub:  s.hub,
		send: make(chan Message, 64),
	}

	client.hub.register <- client

	go client.writeLoop()
	go client.readLoop()
}

// Listen inicia a goroutine do Hub e o servidor HTTP.
// Bloqueia até o servidor HTTP falhar.
func (s *Server) Listen(address string) error {
	go s.hub.Run()

	http.HandleFunc("/ws", s.wsHandler)

	log.Infof("[Network] WebSocket server listening on ws://%s/ws", address)

	return http.ListenAndServe(address, nil)
}
