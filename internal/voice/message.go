// ABOUTME: Inbound voice session messages and session ready states
// ABOUTME: Only the fields the gateway acts on are decoded; the raw frame is kept

package voice

import (
	"encoding/json"
	"fmt"

	"github.com/2389/concierge-gateway/internal/tools"
)

// Message types the bridge acts on.
const (
	TypeToolCall         = "tool_call"
	TypeAssistantMessage = "assistant_message"
	TypeAssistantEnd     = "assistant_end"
	TypeUserMessage      = "user_message"
	TypeChatMetadata     = "chat_metadata"
	TypeError            = "error"
)

// ReadyState is the connection state of a Session.
type ReadyState int

const (
	StateIdle ReadyState = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s ReadyState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("ReadyState(%d)", int(s))
	}
}

// Message is one inbound frame from the voice session.
// For tool_call frames the embedded Event carries the call.
type Message struct {
	Type string `json:"type"`
	tools.Event

	// Payload is the "message" field: an object for chat messages, a string for errors.
	Payload json.RawMessage `json:"message,omitempty"`
	Code    string          `json:"code,omitempty"`
	ChatID  string          `json:"chat_id,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// ChatMessage is the payload of user_message and assistant_message frames.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ParseMessage decodes a raw frame. Frames without a type are rejected.
func ParseMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decoding voice message: %w", err)
	}
	if m.Type == "" {
		return Message{}, fmt.Errorf("decoding voice message: missing type")
	}
	m.Raw = append(json.RawMessage(nil), data...)
	return m, nil
}

// Chat returns the chat payload of user_message and assistant_message frames.
func (m Message) Chat() (ChatMessage, bool) {
	var c ChatMessage
	if len(m.Payload) == 0 || json.Unmarshal(m.Payload, &c) != nil {
		return ChatMessage{}, false
	}
	return c, true
}

// ErrorText returns the message of an error frame.
func (m Message) ErrorText() string {
	var s string
	if json.Unmarshal(m.Payload, &s) == nil {
		return s
	}
	return string(m.Payload)
}
