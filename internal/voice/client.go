// ABOUTME: Websocket Session implementation for the voice provider's chat endpoint
// ABOUTME: Authenticates with an API key header, keeps the link alive with pings, and streams frames

package voice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultURL is the provider's chat endpoint.
const DefaultURL = "wss://api.hume.ai/v0/evi/chat"

const (
	apiKeyHeader     = "X-Hume-Api-Key"
	defaultPing      = 20 * time.Second
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 10 * time.Second
	messageBuffer    = 64
)

// ClientConfig configures a Client.
type ClientConfig struct {
	URL          string
	PingInterval time.Duration
	Dialer       *websocket.Dialer
	Logger       *slog.Logger
}

// Client is a Session over a gorilla/websocket connection.
// It may be reconnected after it closes.
type Client struct {
	url    string
	ping   time.Duration
	dialer *websocket.Dialer
	logger *slog.Logger

	mu       sync.Mutex
	state    ReadyState
	conn     *websocket.Conn
	messages chan Message
	done     chan struct{}

	writeMu sync.Mutex
}

var _ Session = (*Client)(nil)

// NewClient creates an idle Client.
func NewClient(cfg ClientConfig) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPing
	}
	if cfg.Dialer == nil {
		cfg.Dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	closed := make(chan Message)
	close(closed)

	return &Client{
		url:      cfg.URL,
		ping:     cfg.PingInterval,
		dialer:   cfg.Dialer,
		logger:   cfg.Logger.With("component", "voice"),
		state:    StateIdle,
		messages: closed,
	}
}

// Connect dials the chat endpoint with configID as the config_id query parameter.
func (c *Client) Connect(ctx context.Context, creds Credentials, configID string) error {
	c.mu.Lock()
	if c.state == StateConnecting || c.state == StateOpen {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.state = StateConnecting
	c.mu.Unlock()

	endpoint, err := c.endpoint(configID)
	if err != nil {
		c.setState(StateClosed)
		return err
	}

	header := http.Header{}
	if creds.APIKey != "" {
		header.Set(apiKeyHeader, creds.APIKey)
	}

	c.logger.Info("→ connecting to voice provider", "config_id", configID)

	conn, resp, err := c.dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		c.setState(StateClosed)
		if resp != nil {
			return fmt.Errorf("connecting to voice provider: %w (status %d)", err, resp.StatusCode)
		}
		return fmt.Errorf("connecting to voice provider: %w", err)
	}

	readWait := 3 * c.ping
	conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})

	messages := make(chan Message, messageBuffer)
	done := make(chan struct{})

	c.mu.Lock()
	c.conn = conn
	c.messages = messages
	c.done = done
	c.state = StateOpen
	c.mu.Unlock()

	go c.readLoop(conn, messages, done, readWait)
	go c.keepAlive(conn, done)

	c.logger.Info("← voice session open", "config_id", configID)
	return nil
}

func (c *Client) endpoint(configID string) (string, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return "", fmt.Errorf("parsing voice url: %w", err)
	}
	if configID != "" {
		q := u.Query()
		q.Set("config_id", configID)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// readLoop forwards frames until the connection fails, then marks the client closed.
func (c *Client) readLoop(conn *websocket.Conn, messages chan<- Message, done <-chan struct{}, readWait time.Duration) {
	defer close(messages)
	defer c.closeConn(conn)

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && c.ReadyState() == StateOpen {
				c.logger.Warn("voice session read failed", "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readWait))

		if kind != websocket.TextMessage {
			continue
		}

		msg, err := ParseMessage(data)
		if err != nil {
			c.logger.Debug("ignoring voice frame", "error", err)
			continue
		}
		select {
		case messages <- msg:
		case <-done:
			return
		}
	}
}

// keepAlive sends periodic pings to keep the connection alive
func (c *Client) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(c.ping)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			c.writeMu.Unlock()
			if err != nil {
				c.logger.Debug("voice ping failed", "error", err)
				return
			}
		}
	}
}

// closeConn transitions to closed once per connection.
func (c *Client) closeConn(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != conn {
		return
	}
	c.state = StateClosed
	c.conn = nil
	close(c.done)
	conn.Close()
	c.logger.Info("voice session closed")
}

// Disconnect sends a normal close frame and closes the connection.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		c.setState(StateClosed)
		return nil
	}

	c.writeMu.Lock()
	err := conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
	c.writeMu.Unlock()

	c.closeConn(conn)

	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return fmt.Errorf("closing voice session: %w", err)
	}
	return nil
}

// ReadyState returns the current connection state.
func (c *Client) ReadyState() ReadyState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Messages returns the inbound stream of the current connection.
func (c *Client) Messages() <-chan Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.messages
}

// Send writes v as a JSON text frame.
func (c *Client) Send(ctx context.Context, v any) error {
	c.mu.Lock()
	conn, state := c.conn, c.state
	c.mu.Unlock()

	if state != StateOpen || conn == nil {
		return ErrNotOpen
	}

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("setting write deadline: %w", err)
	}
	if err := conn.WriteJSON(v); err != nil {
		return fmt.Errorf("sending voice message: %w", err)
	}
	return nil
}

func (c *Client) setState(s ReadyState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}
