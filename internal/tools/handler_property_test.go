// ABOUTME: Property tests for handler invariants over generated tool names and agents.
// ABOUTME: Unknown tools and cross-agent calls must fail without touching a backend.

package tools

import (
	"context"
	"net/http"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestHandleToolCall_Properties(t *testing.T) {
	backend := newFakeBackend(t, http.StatusOK, `{"status":"ok"}`)
	registry, err := NewRegistry(DefaultDefinitions(backend.server.URL)...)
	require.NoError(t, err)

	handlers := make(map[AgentType]*Handler, len(AgentTypes))
	for _, agent := range AgentTypes {
		h, err := NewHandler(HandlerConfig{AgentType: agent, Registry: registry})
		require.NoError(t, err)
		handlers[agent] = h
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	agentGen := gen.OneConstOf(AgentRestaurant, AgentInsurance, AgentPhone, AgentCarAccessories)

	properties.Property("unknown tools fail with ToolNotFound and echo the call id", prop.ForAll(
		func(name, callID string, agent AgentType) bool {
			if _, ok := registry.Lookup(name); ok {
				return true
			}
			out := handlers[agent].HandleToolCall(context.Background(), Event{
				Name:       name,
				Parameters: `{}`,
				ToolCallID: callID,
			})
			return out.Category == CategoryToolNotFound && out.ToolCallID == callID
		},
		gen.AlphaString(),
		gen.Identifier(),
		agentGen,
	))

	properties.Property("tools of another category are never executed", prop.ForAll(
		func(toolName, params, callID string, agent AgentType) bool {
			if agent == AgentRestaurant {
				return true
			}
			before := backend.hits.Load()
			out := handlers[agent].HandleToolCall(context.Background(), Event{
				Name:       toolName,
				Parameters: params,
				ToolCallID: callID,
			})
			return out.Category == CategoryToolNotAuthorizedForAgent &&
				out.ToolCallID == callID &&
				backend.hits.Load() == before
		},
		gen.OneConstOf("getMenu", "createReservation"),
		gen.AnyString(),
		gen.Identifier(),
		agentGen,
	))

	properties.TestingRun(t)
}
