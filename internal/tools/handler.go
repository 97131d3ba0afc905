// ABOUTME: Per-agent tool-call handler: validates, executes, and normalizes tool calls.
// ABOUTME: Every failure is converted into a tool_error Outcome; nothing escapes as an error or panic.

package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/2389/concierge-gateway/internal/httpc"
)

// ErrNilRegistry indicates a handler was configured without a registry.
var ErrNilRegistry = errors.New("registry is required")

// maxResponseBytes caps how much of a backend body is read.
const maxResponseBytes = 10 << 20

// Record is what a Recorder receives for every handled tool call.
type Record struct {
	AgentType AgentType
	Event     Event
	Outcome   Outcome
	Duration  time.Duration
}

// Recorder persists handled tool calls. Errors are logged, never surfaced.
type Recorder interface {
	RecordToolCall(ctx context.Context, rec Record) error
}

// HandlerConfig contains configuration options for a Handler.
type HandlerConfig struct {
	AgentType AgentType
	Registry  *Registry
	Client    *http.Client
	Logger    *slog.Logger
	Recorder  Recorder

	// ValidateParameters checks POST parameters against the tool's schema.
	// Off by default: only JSON syntax is checked.
	ValidateParameters bool
}

// Handler dispatches tool calls for a single agent category.
// It keeps no per-call state and is safe for concurrent use.
type Handler struct {
	agentType AgentType
	registry  *Registry
	client    *http.Client
	logger    *slog.Logger
	recorder  Recorder
	validate  bool
	telemetry *instruments
}

// NewHandler creates a Handler bound to cfg.AgentType for its lifetime.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	if cfg.Registry == nil {
		return nil, ErrNilRegistry
	}
	if !cfg.AgentType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAgentType, cfg.AgentType)
	}

	client := cfg.Client
	if client == nil {
		client = httpc.NewClient(0)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		agentType: cfg.AgentType,
		registry:  cfg.Registry,
		client:    client,
		logger:    logger.With("agent_type", string(cfg.AgentType)),
		recorder:  cfg.Recorder,
		validate:  cfg.ValidateParameters,
		telemetry: newInstruments(),
	}, nil
}

// AgentType returns the category this handler serves.
func (h *Handler) AgentType() AgentType {
	return h.agentType
}

// AvailableTools returns the definitions this handler is allowed to run.
func (h *Handler) AvailableTools() []Definition {
	return h.registry.ListForAgent(h.agentType)
}

// HandleToolCall resolves ev against the registry, runs it, and returns the
// normalized outcome. The outcome always echoes ev.ToolCallID.
func (h *Handler) HandleToolCall(ctx context.Context, ev Event) Outcome {
	start := time.Now()
	ctx, span := h.telemetry.start(ctx, h.agentType, ev)
	defer span.End()

	h.logger.Info("→ tool call received",
		"tool_name", ev.Name,
		"tool_call_id", ev.ToolCallID,
	)

	out := h.dispatch(ctx, ev)
	elapsed := time.Since(start)

	if out.IsError() {
		h.logger.Warn("tool call failed",
			"tool_name", ev.Name,
			"tool_call_id", ev.ToolCallID,
			"category", string(out.Category),
			"detail", out.Content,
			"duration", elapsed,
		)
	} else {
		h.logger.Info("← tool call succeeded",
			"tool_name", ev.Name,
			"tool_call_id", ev.ToolCallID,
			"duration", elapsed,
		)
	}

	h.telemetry.finish(ctx, span, h.agentType, ev, out, elapsed)

	if h.recorder != nil {
		rec := Record{AgentType: h.agentType, Event: ev, Outcome: out, Duration: elapsed}
		if err := h.recorder.RecordToolCall(ctx, rec); err != nil {
			h.logger.Error("failed to record tool call",
				"tool_name", ev.Name,
				"tool_call_id", ev.ToolCallID,
				"error", err,
			)
		}
	}

	return out
}

// dispatch is the validate -> execute -> normalize pipeline.
func (h *Handler) dispatch(ctx context.Context, ev Event) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Failure(ev.ToolCallID, CategoryExecutionException,
				fmt.Sprintf("Failed to execute tool '%s': %v", ev.Name, r))
		}
	}()

	def, ok := h.registry.Lookup(ev.Name)
	if !ok {
		return Failure(ev.ToolCallID, CategoryToolNotFound,
			fmt.Sprintf("Tool '%s' is not available", ev.Name))
	}

	if def.AgentType != h.agentType {
		return Failure(ev.ToolCallID, CategoryToolNotAuthorizedForAgent,
			fmt.Sprintf("Tool '%s' is not available for %s agent", ev.Name, h.agentType))
	}

	body, detail := h.requestBody(def, ev)
	if detail != "" {
		return Failure(ev.ToolCallID, CategoryMalformedParameters, detail)
	}

	content, err := h.execute(ctx, def, body)
	if err != nil {
		var callErr *backendError
		if errors.As(err, &callErr) {
			return Failure(ev.ToolCallID, CategoryBackendCallFailed, callErr.Error())
		}
		return Failure(ev.ToolCallID, CategoryExecutionException,
			fmt.Sprintf("Failed to execute tool '%s': %v", ev.Name, err))
	}

	return Success(ev.ToolCallID, content)
}

// requestBody returns the compacted JSON body for POST tools.
// GET tools ignore parameters. A non-empty detail means the parameters were rejected.
func (h *Handler) requestBody(def Definition, ev Event) ([]byte, string) {
	if def.Method != MethodPost {
		return nil, ""
	}

	raw := []byte(ev.Parameters)
	if len(raw) > 0 && !json.Valid(raw) {
		return nil, fmt.Sprintf("Invalid parameters format: %s", ev.Parameters)
	}

	if h.validate {
		doc := raw
		if len(doc) == 0 {
			doc = []byte("{}")
		}
		if err := h.checkSchema(def.Name, doc); err != nil {
			return nil, fmt.Sprintf("Invalid parameters for tool '%s': %v", def.Name, err)
		}
	}

	if len(raw) == 0 {
		return nil, ""
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Sprintf("Invalid parameters format: %s", ev.Parameters)
	}
	return buf.Bytes(), ""
}

func (h *Handler) checkSchema(name string, doc []byte) error {
	params, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return err
	}
	return h.registry.validateParameters(name, params)
}

// backendError reports a non-2xx backend response.
type backendError struct {
	StatusCode int
}

func (e *backendError) Error() string {
	return fmt.Sprintf("API call failed: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// execute performs the HTTP call and returns the compacted JSON response body.
func (h *Handler) execute(ctx context.Context, def Definition, body []byte) (string, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, string(def.Method), def.Endpoint, reader)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	h.logger.Debug("calling tool backend",
		"method", string(def.Method),
		"endpoint", def.Endpoint,
	)

	resp, err := h.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return "", &backendError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}
	return buf.String(), nil
}
