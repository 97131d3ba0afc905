// ABOUTME: Bridge between a voice Session and a tool dispatcher
// ABOUTME: Dispatches each tool_call once, returns outcomes by tool_call_id, and tracks speaking state

package voice

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/2389/concierge-gateway/internal/dedupe"
	"github.com/2389/concierge-gateway/internal/tools"
)

// ErrNilSession and ErrNilDispatcher are returned by NewBridge.
var (
	ErrNilSession    = errors.New("session is required")
	ErrNilDispatcher = errors.New("dispatcher is required")
)

const defaultSendTimeout = 10 * time.Second

// Dispatcher handles one tool call. *tools.Handler satisfies it.
type Dispatcher interface {
	HandleToolCall(ctx context.Context, ev tools.Event) tools.Outcome
}

// BridgeConfig configures a Bridge.
type BridgeConfig struct {
	Session    Session
	Dispatcher Dispatcher
	Logger     *slog.Logger

	// Dedupe remembers dispatched tool_call_ids. A private cache is created when nil.
	Dedupe *dedupe.Cache

	// OnSpeakingChange observes assistant speaking transitions.
	OnSpeakingChange func(speaking bool)

	SendTimeout time.Duration
}

// BridgeStats counts what the bridge did with tool calls.
type BridgeStats struct {
	Dispatched int64
	Duplicates int64
	Delivered  int64
	Discarded  int64
}

// Bridge consumes a Session's messages and answers its tool calls.
type Bridge struct {
	session     Session
	dispatcher  Dispatcher
	logger      *slog.Logger
	seen        *dedupe.Cache
	onSpeaking  func(bool)
	sendTimeout time.Duration

	speaking atomic.Bool
	inflight sync.WaitGroup

	dispatched atomic.Int64
	duplicates atomic.Int64
	delivered  atomic.Int64
	discarded  atomic.Int64
}

// NewBridge creates a Bridge.
func NewBridge(cfg BridgeConfig) (*Bridge, error) {
	if cfg.Session == nil {
		return nil, ErrNilSession
	}
	if cfg.Dispatcher == nil {
		return nil, ErrNilDispatcher
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Dedupe == nil {
		cfg.Dedupe = dedupe.New(dedupe.Options{})
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}

	return &Bridge{
		session:     cfg.Session,
		dispatcher:  cfg.Dispatcher,
		logger:      cfg.Logger.With("component", "voice-bridge"),
		seen:        cfg.Dedupe,
		onSpeaking:  cfg.OnSpeakingChange,
		sendTimeout: cfg.SendTimeout,
	}, nil
}

// Run reads messages until the session's stream ends or ctx is cancelled.
// Tool calls still in flight when Run returns keep running; use Wait to join them.
func (b *Bridge) Run(ctx context.Context) error {
	messages := b.session.Messages()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			b.handle(ctx, msg)
		}
	}
}

// Wait blocks until every dispatched tool call has finished.
func (b *Bridge) Wait() {
	b.inflight.Wait()
}

// Speaking reports whether the assistant is currently speaking.
func (b *Bridge) Speaking() bool {
	return b.speaking.Load()
}

// Stats returns a snapshot of the bridge counters.
func (b *Bridge) Stats() BridgeStats {
	return BridgeStats{
		Dispatched: b.dispatched.Load(),
		Duplicates: b.duplicates.Load(),
		Delivered:  b.delivered.Load(),
		Discarded:  b.discarded.Load(),
	}
}

func (b *Bridge) handle(ctx context.Context, msg Message) {
	switch msg.Type {
	case TypeToolCall:
		b.dispatch(ctx, msg.Event)
	case TypeAssistantMessage:
		b.setSpeaking(true)
	case TypeAssistantEnd:
		b.setSpeaking(false)
	case TypeError:
		b.logger.Warn("voice provider error", "code", msg.Code, "message", msg.ErrorText())
	case TypeChatMetadata:
		b.logger.Info("voice chat started", "chat_id", msg.ChatID)
	default:
		b.logger.Debug("voice message", "type", msg.Type)
	}
}

func (b *Bridge) setSpeaking(speaking bool) {
	if b.speaking.Swap(speaking) == speaking {
		return
	}
	if b.onSpeaking != nil {
		b.onSpeaking(speaking)
	}
}

func (b *Bridge) dispatch(ctx context.Context, ev tools.Event) {
	if ev.ToolCallID != "" && !b.seen.Claim(ev.ToolCallID) {
		b.duplicates.Add(1)
		b.logger.Warn("duplicate tool call ignored", "tool_name", ev.Name, "tool_call_id", ev.ToolCallID)
		return
	}
	b.dispatched.Add(1)

	// The call outlives the read loop: closing the session does not cancel it.
	callCtx := context.WithoutCancel(ctx)

	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()
		out := b.dispatcher.HandleToolCall(callCtx, ev)
		b.deliver(callCtx, out)
	}()
}

// deliver sends out back on the session, or drops it if the session is no longer open.
func (b *Bridge) deliver(ctx context.Context, out tools.Outcome) {
	if state := b.session.ReadyState(); state != StateOpen {
		b.discarded.Add(1)
		b.logger.Info("discarding tool outcome, session not open",
			"tool_call_id", out.ToolCallID,
			"state", state.String(),
		)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, b.sendTimeout)
	defer cancel()

	if err := b.session.Send(ctx, out); err != nil {
		b.discarded.Add(1)
		b.logger.Warn("failed to send tool outcome", "tool_call_id", out.ToolCallID, "error", err)
		return
	}
	b.delivered.Add(1)
	b.logger.Debug("← tool outcome sent", "tool_call_id", out.ToolCallID, "type", string(out.Kind))
}
