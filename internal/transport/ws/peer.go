package ws

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"ghostwriter/internal/app"
	"ghostwriter/internal/protocol"
)

// Host is the session a peer feeds
type Host interface {
	RoomCode() string
	Connect(p app.Peer)
	Receive(id string, data []byte)
	Disconnect(id string)
}

// Peer is the host's side of one client connection
type Peer struct {
	*pipe
	id   string
	host Host
}

// NewPeer wraps an upgraded connection with a fresh transport id
func NewPeer(conn *websocket.Conn, host Host, logger *slog.Logger) *Peer {
	id := uuid.NewString()
	return &Peer{
		pipe: newPipe(conn, logger.With("transportID", id)),
		id:   id,
		host: host,
	}
}

// ID implements app.Peer
func (p *Peer) ID() string {
	return p.id
}

// Send implements app.Peer
func (p *Peer) Send(msg protocol.Message) error {
	return p.write(msg)
}

// Close implements app.Peer. Messages already sent are flushed before the
// socket closes.
func (p *Peer) Close() error {
	p.close()
	return nil
}

// Run pumps the connection until it closes, then reports the disconnect
func (p *Peer) Run() {
	go p.writeLoop(true)

	readLoop(p.conn, maxMessageSize, p.logger, func(data []byte) {
		p.host.Receive(p.id, data)
	})

	p.host.Disconnect(p.id)
	p.close()
}
