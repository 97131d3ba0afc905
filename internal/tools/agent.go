// ABOUTME: Agent categories that partition which tools may be invoked.
// ABOUTME: The set is closed; unknown categories are rejected at parse time.

package tools

import (
	"errors"
	"fmt"
)

// ErrUnknownAgentType indicates a string that is not one of the agent categories.
var ErrUnknownAgentType = errors.New("unknown agent type")

// AgentType identifies one of the fixed concierge personas.
type AgentType string

const (
	AgentRestaurant     AgentType = "restaurant"
	AgentInsurance      AgentType = "insurance"
	AgentPhone          AgentType = "phone"
	AgentCarAccessories AgentType = "car_accessories"
)

// AgentTypes lists every agent category in display order.
var AgentTypes = []AgentType{
	AgentRestaurant,
	AgentInsurance,
	AgentPhone,
	AgentCarAccessories,
}

// Valid reports whether t is one of the known agent categories.
func (t AgentType) Valid() bool {
	switch t {
	case AgentRestaurant, AgentInsurance, AgentPhone, AgentCarAccessories:
		return true
	default:
		return false
	}
}

// ParseAgentType converts s into an AgentType.
// Returns ErrUnknownAgentType if s is not a known category.
func ParseAgentType(s string) (AgentType, error) {
	t := AgentType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownAgentType, s)
	}
	return t, nil
}
