package ws

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ghostwriter/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Maximum frame a client accepts. SYNC carries the whole session.
	maxSyncSize = 1 << 20

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Connection errors
var (
	ErrClosed          = errors.New("connection closed")
	ErrSendBufferFull  = errors.New("send buffer full")
	ErrRoomNotFound    = errors.New("room not found")
	ErrMissingRoomCode = errors.New("roomCode is required")
)

// pipe owns the write side of a websocket. Every message is one text
// frame; closing the pipe flushes what is queued and then sends a close
// frame.
type pipe struct {
	conn   *websocket.Conn
	send   chan []byte
	mu     sync.Mutex
	closed bool
	logger *slog.Logger
}

func newPipe(conn *websocket.Conn, logger *slog.Logger) *pipe {
	return &pipe{
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: logger,
	}
}

// write encodes msg and queues it
func (p *pipe) write(msg protocol.Message) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	select {
	case p.send <- data:
		return nil
	default:
		p.logger.Warn("send buffer full, message dropped", "type", msg.Type())
		return ErrSendBufferFull
	}
}

// close stops accepting messages. The write loop drains the queue first.
func (p *pipe) close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	close(p.send)
}

// writeLoop pumps queued messages to the socket. With ping set it also
// keeps the connection alive.
func (p *pipe) writeLoop(ping bool) {
	var tick <-chan time.Time
	if ping {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		tick = ticker.C
	}
	defer p.conn.Close()

	for {
		select {
		case message, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				closing := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
				p.conn.WriteMessage(websocket.CloseMessage, closing)
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				p.logger.Debug("websocket write error", "error", err)
				return
			}
		case <-tick:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop feeds incoming frames of at most limit bytes to handle until the
// socket fails
func readLoop(conn *websocket.Conn, limit int64, logger *slog.Logger, handle func([]byte)) {
	conn.SetReadLimit(limit)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		err := conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		return err
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Debug("websocket read error", "error", err)
			}
			return
		}
		handle(message)
	}
}
