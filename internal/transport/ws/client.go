package ws

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/gorilla/websocket"

	"ghostwriter/internal/protocol"
)

// Receiver consumes what a client connection reads
type Receiver interface {
	Handle(msg protocol.Message)
	ConnectionClosed()
}

// Client is a player's connection to a host
type Client struct {
	*pipe
}

// JoinURL builds the websocket address of a host's room
func JoinURL(addr, roomCode string) string {
	u := url.URL{
		Scheme:   "ws",
		Host:     addr,
		Path:     "/ws",
		RawQuery: url.Values{"roomCode": {roomCode}}.Encode(),
	}
	return u.String()
}

// Dial connects to a host
func Dial(ctx context.Context, rawURL string, logger *slog.Logger) (*Client, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %s: %w", rawURL, resp.Status, err)
		}
		return nil, fmt.Errorf("dial %s: %w", rawURL, err)
	}
	return &Client{pipe: newPipe(conn, logger)}, nil
}

// Send implements app.Conn
func (c *Client) Send(msg protocol.Message) error {
	return c.write(msg)
}

// Close implements app.Conn
func (c *Client) Close() error {
	c.close()
	return nil
}

// Run pumps the connection until it closes. Frames that do not decode are
// dropped.
func (c *Client) Run(r Receiver) {
	go c.writeLoop(false)

	readLoop(c.conn, maxSyncSize, c.logger, func(data []byte) {
		msg, err := protocol.Decode(data)
		if err != nil {
			c.logger.Debug("dropping undecodable frame", "error", err)
			return
		}
		r.Handle(msg)
	})

	c.close()
	r.ConnectionClosed()
}
