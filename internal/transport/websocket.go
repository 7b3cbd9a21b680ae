package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/akiramusic/lavamon/internal/config"
	"github.com/akiramusic/lavamon/internal/errors"
)

// Conn is one live websocket session delivering server-pushed messages.
type Conn interface {
	// ReadMessage blocks until the next message or a transport error.
	ReadMessage() ([]byte, error)
	Close() error
}

// Dialer opens websocket sessions against a Lavalink node.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// wsDialer dials the node's /v4/websocket endpoint with the handshake
// headers Lavalink requires.
type wsDialer struct {
	url     string
	headers http.Header
	timeout time.Duration
}

// NewDialer builds a Dialer for the given server.
func NewDialer(srv config.Server, handshakeTimeout time.Duration) Dialer {
	scheme := "ws"
	if srv.Secure {
		scheme = "wss"
	}

	headers := http.Header{}
	headers.Set("Authorization", srv.Password)
	headers.Set("User-Id", srv.UserID)
	headers.Set("Client-Name", srv.ClientName)
	for k, v := range srv.Headers {
		headers.Set(k, v)
	}

	return &wsDialer{
		url:     fmt.Sprintf("%s://%s:%d/v4/websocket", scheme, srv.Host, srv.Port),
		headers: headers,
		timeout: handshakeTimeout,
	}
}

func (d *wsDialer) Dial(ctx context.Context) (Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: d.timeout,
	}

	conn, resp, err := dialer.DialContext(ctx, d.url, d.headers)
	if err != nil {
		if resp != nil {
			return nil, errors.Wrap(err,
				fmt.Sprintf("Websocket handshake rejected (%s)", resp.Status),
				"Check the password and that the node speaks the v4 protocol")
		}
		return nil, errors.Wrap(err,
			"Cannot reach the websocket endpoint",
			"Check the host and port, and that the node is running")
	}

	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return nil, errors.Wrap(err,
				"Server closed the websocket",
				"The node is shutting down or restarting")
		}
		return nil, err
	}
	return data, nil
}

func (c *wsConn) Close() error {
	// Best effort close frame so the server does not log an abnormal drop.
	deadline := time.Now().Add(time.Second)
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	return c.conn.Close()
}
