// ABOUTME: Tests for the websocket voice Client against an httptest server
// ABOUTME: Verifies auth header, config_id query, frame streaming, sending and state transitions

package voice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/concierge-gateway/internal/tools"
)

type handshake struct {
	apiKey   string
	configID string
}

// newProviderServer upgrades one connection, records the handshake and writes
// frames. It then forwards client frames to received, or hangs up when received is nil.
func newProviderServer(t *testing.T, frames []string, received chan<- []byte) (*httptest.Server, <-chan handshake) {
	t.Helper()

	handshakes := make(chan handshake, 1)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handshakes <- handshake{
			apiKey:   r.Header.Get("X-Hume-Api-Key"),
			configID: r.URL.Query().Get("config_id"),
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		if received == nil {
			return
		}
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- data
		}
	}))
	t.Cleanup(srv.Close)
	return srv, handshakes
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestClient_ConnectStreamAndSend(t *testing.T) {
	received := make(chan []byte, 4)
	srv, handshakes := newProviderServer(t, []string{
		`{"type":"chat_metadata","chat_id":"chat-1"}`,
		`not json`,
		`{"type":"tool_call","name":"getMenu","parameters":"{}","tool_call_id":"call-9"}`,
	}, received)

	c := NewClient(ClientConfig{URL: wsURL(srv), PingInterval: time.Second})
	assert.Equal(t, StateIdle, c.ReadyState())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Connect(ctx, Credentials{APIKey: "key-123"}, "restaurant-concierge"))
	assert.Equal(t, StateOpen, c.ReadyState())

	hs := <-handshakes
	assert.Equal(t, "key-123", hs.apiKey)
	assert.Equal(t, "restaurant-concierge", hs.configID)

	msgs := c.Messages()
	first := <-msgs
	assert.Equal(t, TypeChatMetadata, first.Type)
	assert.Equal(t, "chat-1", first.ChatID)

	second := <-msgs
	assert.Equal(t, TypeToolCall, second.Type, "malformed frames are skipped")
	assert.Equal(t, "call-9", second.ToolCallID)

	require.NoError(t, c.Send(ctx, tools.Success("call-9", `{"items":[]}`)))
	select {
	case data := <-received:
		assert.JSONEq(t, `{"type":"tool_response","tool_call_id":"call-9","content":"{\"items\":[]}"}`, string(data))
	case <-ctx.Done():
		t.Fatal("server never received the outcome")
	}

	assert.ErrorIs(t, c.Connect(ctx, Credentials{}, ""), ErrAlreadyConnected)

	require.NoError(t, c.Disconnect())
	assert.Equal(t, StateClosed, c.ReadyState())
	assert.ErrorIs(t, c.Send(ctx, map[string]string{"type": "x"}), ErrNotOpen)

	// Stream is closed once the connection ends
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-msgs:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClient_ServerCloseMarksClosed(t *testing.T) {
	srv, _ := newProviderServer(t, nil, nil)
	c := NewClient(ClientConfig{URL: wsURL(srv)})

	require.NoError(t, c.Connect(context.Background(), Credentials{}, ""))

	require.Eventually(t, func() bool { return c.ReadyState() == StateClosed }, 2*time.Second, 10*time.Millisecond)
}

func TestClient_ConnectFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{URL: wsURL(srv)})
	err := c.Connect(context.Background(), Credentials{APIKey: "bad"}, "cfg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, StateClosed, c.ReadyState())

	_, ok := <-c.Messages()
	assert.False(t, ok)
}

func TestClient_BridgeEndToEnd(t *testing.T) {
	received := make(chan []byte, 4)
	srv, _ := newProviderServer(t, []string{
		`{"type":"tool_call","name":"getMenu","parameters":"","tool_call_id":"call-1"}`,
		`{"type":"tool_call","name":"getMenu","parameters":"","tool_call_id":"call-1"}`,
	}, received)

	c := NewClient(ClientConfig{URL: wsURL(srv)})
	require.NoError(t, c.Connect(context.Background(), Credentials{}, ""))
	defer c.Disconnect()

	b, err := NewBridge(BridgeConfig{Session: c, Dispatcher: &fakeDispatcher{}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	select {
	case data := <-received:
		assert.JSONEq(t, `{"type":"tool_response","tool_call_id":"call-1","content":"{\"tool\":\"getMenu\"}"}`, string(data))
	case <-time.After(5 * time.Second):
		t.Fatal("no outcome delivered")
	}

	require.Eventually(t, func() bool { return b.Stats().Duplicates == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-done
	b.Wait()
	assert.Equal(t, int64(1), b.Stats().Delivered)
}
