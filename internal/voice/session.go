// ABOUTME: Session interface over the voice provider connection
// ABOUTME: Implemented by the websocket Client and by fakes in tests

package voice

import (
	"context"
	"errors"
)

// Session errors
var (
	ErrNotOpen          = errors.New("voice session is not open")
	ErrAlreadyConnected = errors.New("voice session already connected")
)

// Credentials authenticate a session with the voice provider.
type Credentials struct {
	APIKey    string
	SecretKey string
}

// Session is a connection to the voice provider.
type Session interface {
	// Connect opens the session for the given provider configuration.
	Connect(ctx context.Context, creds Credentials, configID string) error

	// Disconnect closes the session. Calling it on a closed session is a no-op.
	Disconnect() error

	ReadyState() ReadyState

	// Messages returns the inbound stream of the current connection.
	// The channel is closed when the connection ends.
	Messages() <-chan Message

	// Send writes v as one JSON text frame. Returns ErrNotOpen unless open.
	Send(ctx context.Context, v any) error
}
