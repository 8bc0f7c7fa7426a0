package network

// EventHandler é a interface que conecta a lógica da rede com a lógica do jogo.
// Every callback runs on the Hub goroutine, so implementations may keep all
// of their state unsynchronized as long as it is only touched from here.
type EventHandler interface {
	// OnConnect é chamado quando um novo cliente se conecta com sucesso.
	OnConnect(c *Client)

	// OnDisconnect é chamado quando um cliente se desconecta.
	OnDisconnect(c *Client)

	// OnMessage é chamado quando uma nova mensagem é recebida de um cliente.
	OnMessage(c *Client, msg Message)
}
