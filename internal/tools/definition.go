// ABOUTME: Tool definitions and the fixed table of tools exposed to agents.
// ABOUTME: Each definition routes a tool name to an HTTP endpoint owned by one agent category.

package tools

import (
	"net/http"
	"strings"
)

// Method is the HTTP method used to call a tool's backend.
type Method string

const (
	MethodGet  Method = http.MethodGet
	MethodPost Method = http.MethodPost
)

// Definition describes a single tool and where it routes.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	Endpoint    string         `json:"endpoint"`
	Method      Method         `json:"method"`
	AgentType   AgentType      `json:"agent_type"`
}

// Route paths for the tools served by the gateway's own backends.
const (
	MenuPath         = "/api/restaurant/menu"
	ReservationsPath = "/api/restaurant/reservations"
)

// DefaultDefinitions returns the fixed tool table with endpoints rooted at baseURL.
// Changing the available tools means editing this table and the matching backend route.
func DefaultDefinitions(baseURL string) []Definition {
	base := strings.TrimRight(baseURL, "/")
	return []Definition{
		{
			Name:        "getMenu",
			Description: "Get the restaurant's current menu with prices, descriptions, and categories",
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
				"required":   []any{},
			},
			Endpoint:  base + MenuPath,
			Method:    MethodGet,
			AgentType: AgentRestaurant,
		},
		{
			Name:        "createReservation",
			Description: "Create a dining reservation with party size, date, time, and special requests",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"party_size": map[string]any{
						"type":        "integer",
						"description": "Number of people for the reservation",
					},
					"date": map[string]any{
						"type":        "string",
						"description": "Reservation date in YYYY-MM-DD format",
					},
					"time": map[string]any{
						"type":        "string",
						"description": "Reservation time in HH:MM format",
					},
					"special_requests": map[string]any{
						"type":        "string",
						"description": "Any special dietary requirements or requests",
					},
				},
				"required": []any{"party_size", "date", "time"},
			},
			Endpoint:  base + ReservationsPath,
			Method:    MethodPost,
			AgentType: AgentRestaurant,
		},
	}
}
