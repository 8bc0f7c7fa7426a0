package message

import (
	"cardgolf/internal/network"
)

// Sender é a interface para qualquer tipo que pode receber uma mensagem.
// Isso desacopla o pacote `message` de implementações concretas como
// `network.Client`.
type Sender interface {
	Send() chan<- network.Message
	Close() error
}

// Deliver pushes a message without ever blocking the hub goroutine. A full
// send buffer means the peer stopped draining its connection; we treat it as
// unreachable and close it, which routes the client through the same cleanup
// path as a read failure. Returns false when the client was dropped.
func Deliver(s Sender, msg network.Message) bool {
	select {
	case s.Send() <- msg:
		return true
	default:
		s.Close()
		return false
	}
}

// SendFailure envia uma resposta de falha para o cliente.
func SendFailure(s Sender, format string, args ...any) {
	Deliver(s, CreateFailureResponse(format, args...))
}

// SendSuccess envia uma resposta de sucesso simples.
func SendSuccess(s Sender) {
	Deliver(s, CreateSuccessResponse())
}
