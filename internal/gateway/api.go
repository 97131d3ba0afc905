// ABOUTME: HTTP API handlers for personas, tool listings, tool-call dispatch and audit history
// ABOUTME: Dispatched calls always answer 200 with the outcome; other statuses mean the call never ran

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/2389/concierge-gateway/internal/agents"
	"github.com/2389/concierge-gateway/internal/store"
	"github.com/2389/concierge-gateway/internal/tools"
)

const maxToolCallBodyBytes = 1 << 20

// Reasons a tool call is refused before dispatch.
var (
	ErrMissingToolCallID = errors.New("tool_call_id is required")
	ErrDuplicateToolCall = errors.New("duplicate tool_call_id")
	ErrRateLimited       = errors.New("rate limit exceeded")
)

// ListAgentsResponse is the JSON response for GET /api/agents.
type ListAgentsResponse struct {
	Agents []agents.Persona `json:"agents"`
}

// ListToolsResponse is the JSON response for GET /api/agents/{category}/tools.
type ListToolsResponse struct {
	AgentType tools.AgentType    `json:"agent_type"`
	Tools     []tools.Definition `json:"tools"`
}

// ListToolCallsResponse is the JSON response for GET /api/tool-calls.
type ListToolCallsResponse struct {
	ToolCalls []*store.ToolCallRecord `json:"tool_calls"`
}

// dispatchToolCall runs ev through the handler for category. The returned
// error is non-nil only when the call was refused before dispatch; client
// identifies the caller for rate limiting.
func (g *Gateway) dispatchToolCall(ctx context.Context, category, client string, ev tools.Event) (tools.Outcome, error) {
	agentType, err := tools.ParseAgentType(category)
	if err != nil {
		return tools.Outcome{}, fmt.Errorf("%w: %q", ErrUnknownAgent, category)
	}
	h, err := g.ToolHandler(agentType)
	if err != nil {
		return tools.Outcome{}, err
	}

	if ev.ToolCallID == "" {
		return tools.Outcome{}, ErrMissingToolCallID
	}
	if !g.limiter.Allow(client) {
		g.logger.Warn("tool call rate limited", "client", client, "agent_type", category)
		return tools.Outcome{}, ErrRateLimited
	}
	if !g.dedupe.Claim(ev.ToolCallID) {
		g.logger.Warn("duplicate tool call rejected", "tool_call_id", ev.ToolCallID, "tool_name", ev.Name)
		return tools.Outcome{}, fmt.Errorf("%w: %s", ErrDuplicateToolCall, ev.ToolCallID)
	}

	return h.HandleToolCall(ctx, ev), nil
}

// handleListAgents returns every concierge persona.
func (g *Gateway) handleListAgents(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, ListAgentsResponse{Agents: g.catalog.All()})
}

// handleListTools returns the tools a category may invoke.
func (g *Gateway) handleListTools(w http.ResponseWriter, r *http.Request) {
	agentType, err := tools.ParseAgentType(r.PathValue("category"))
	if err != nil {
		sendJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	defs := g.registry.ListForAgent(agentType)
	if defs == nil {
		defs = []tools.Definition{}
	}
	sendJSON(w, http.StatusOK, ListToolsResponse{AgentType: agentType, Tools: defs})
}

// handleToolCall dispatches one tool-call event for the path's category.
func (g *Gateway) handleToolCall(w http.ResponseWriter, r *http.Request) {
	var ev tools.Event
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxToolCallBodyBytes))
	if err := dec.Decode(&ev); err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	out, err := g.dispatchToolCall(r.Context(), r.PathValue("category"), clientKey(r.RemoteAddr), ev)
	if err != nil {
		sendJSONError(w, refusalStatus(err), err.Error())
		return
	}
	sendJSON(w, http.StatusOK, out)
}

// refusalStatus maps a dispatch refusal to its HTTP status.
func refusalStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnknownAgent):
		return http.StatusNotFound
	case errors.Is(err, ErrMissingToolCallID):
		return http.StatusBadRequest
	case errors.Is(err, ErrDuplicateToolCall):
		return http.StatusConflict
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// handleListToolCalls returns audit records, newest first.
// Query parameters: agent, tool, limit.
func (g *Gateway) handleListToolCalls(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.ToolCallFilter{ToolName: q.Get("tool")}

	if agent := q.Get("agent"); agent != "" {
		agentType, err := tools.ParseAgentType(agent)
		if err != nil {
			sendJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.AgentType = string(agentType)
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			sendJSONError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	records, err := g.store.ListToolCalls(r.Context(), filter)
	if err != nil {
		g.logger.Error("failed to list tool calls", "error", err)
		sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if records == nil {
		records = []*store.ToolCallRecord{}
	}
	sendJSON(w, http.StatusOK, ListToolCallsResponse{ToolCalls: records})
}

// sendJSON writes v as a JSON response with the given status.
func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// sendJSONError writes a JSON error response.
func sendJSONError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, map[string]string{"error": message})
}
