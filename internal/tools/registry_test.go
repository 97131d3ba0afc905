// ABOUTME: Tests for registry construction, lookup, and per-agent listing.
// ABOUTME: Covers table validation and schema compilation failures.

package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDefinition(name string) Definition {
	return Definition{
		Name:      name,
		Endpoint:  "http://localhost:8080/api/" + name,
		Method:    MethodPost,
		AgentType: AgentInsurance,
		Parameters: map[string]any{
			"type": "object",
		},
	}
}

func TestNewRegistry_DefaultTable(t *testing.T) {
	registry, err := NewRegistry(DefaultDefinitions("http://localhost:8080/")...)
	require.NoError(t, err)

	assert.Equal(t, 2, registry.Len())
	assert.Equal(t, []string{"createReservation", "getMenu"}, registry.Names())

	def, ok := registry.Lookup("createReservation")
	require.True(t, ok)
	assert.Equal(t, MethodPost, def.Method)
	assert.Equal(t, AgentRestaurant, def.AgentType)
	assert.Equal(t, "http://localhost:8080/api/restaurant/reservations", def.Endpoint)

	def, ok = registry.Lookup("getMenu")
	require.True(t, ok)
	assert.Equal(t, MethodGet, def.Method)
}

func TestRegistry_Lookup_Missing(t *testing.T) {
	registry, err := NewRegistry(DefaultDefinitions("http://localhost")...)
	require.NoError(t, err)

	def, ok := registry.Lookup("getInsuranceQuote")
	assert.False(t, ok)
	assert.Empty(t, def.Name)
}

func TestRegistry_ListForAgent(t *testing.T) {
	registry, err := NewRegistry(DefaultDefinitions("http://localhost")...)
	require.NoError(t, err)

	restaurant := registry.ListForAgent(AgentRestaurant)
	require.Len(t, restaurant, 2)
	assert.Equal(t, "createReservation", restaurant[0].Name)
	assert.Equal(t, "getMenu", restaurant[1].Name)

	for _, agent := range []AgentType{AgentInsurance, AgentPhone, AgentCarAccessories} {
		assert.Empty(t, registry.ListForAgent(agent), "agent %s", agent)
	}
}

func TestNewRegistry_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		defs    func() []Definition
		wantErr error
	}{
		{
			name: "duplicate name",
			defs: func() []Definition {
				return []Definition{validDefinition("quote"), validDefinition("quote")}
			},
			wantErr: ErrDuplicateTool,
		},
		{
			name: "empty name",
			defs: func() []Definition {
				return []Definition{validDefinition("")}
			},
			wantErr: ErrInvalidDefinition,
		},
		{
			name: "unknown agent type",
			defs: func() []Definition {
				d := validDefinition("quote")
				d.AgentType = "bakery"
				return []Definition{d}
			},
			wantErr: ErrInvalidDefinition,
		},
		{
			name: "unsupported method",
			defs: func() []Definition {
				d := validDefinition("quote")
				d.Method = "DELETE"
				return []Definition{d}
			},
			wantErr: ErrInvalidDefinition,
		},
		{
			name: "relative endpoint",
			defs: func() []Definition {
				d := validDefinition("quote")
				d.Endpoint = "/api/quote"
				return []Definition{d}
			},
			wantErr: ErrInvalidDefinition,
		},
		{
			name: "schema does not compile",
			defs: func() []Definition {
				d := validDefinition("quote")
				d.Parameters = map[string]any{"type": 12}
				return []Definition{d}
			},
			wantErr: ErrInvalidDefinition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry, err := NewRegistry(tt.defs()...)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, registry)
		})
	}
}

func TestNewRegistry_NoParameters(t *testing.T) {
	d := validDefinition("ping")
	d.Parameters = nil

	registry, err := NewRegistry(d)
	require.NoError(t, err)
	assert.NoError(t, registry.validateParameters("ping", map[string]any{"anything": true}))
}

func TestParseAgentType(t *testing.T) {
	for _, agent := range AgentTypes {
		got, err := ParseAgentType(string(agent))
		require.NoError(t, err)
		assert.Equal(t, agent, got)
	}

	_, err := ParseAgentType("Restaurant")
	assert.ErrorIs(t, err, ErrUnknownAgentType)
}
