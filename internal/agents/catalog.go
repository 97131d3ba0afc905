// ABOUTME: Catalog of concierge personas, one per agent category
// ABOUTME: Voice configuration ids may be overridden per category from config

package agents

import (
	"errors"
	"fmt"

	"github.com/2389/concierge-gateway/internal/tools"
)

// ErrNotFound is returned when no persona exists for a category.
var ErrNotFound = errors.New("agent not found")

// Persona describes a concierge agent shown to callers.
type Persona struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Role          string          `json:"role"`
	Avatar        string          `json:"avatar"`
	Features      []string        `json:"features"`
	SupportCall   bool            `json:"support_call"`
	SupportChat   bool            `json:"support_chat"`
	Description   string          `json:"description,omitempty"`
	Category      tools.AgentType `json:"category"`
	VoiceConfigID string          `json:"voice_config_id"`
}

const avatarBase = "https://api.dicebear.com/7.x/adventurer/svg?seed="

// DefaultPersonas returns the built-in persona for every category.
func DefaultPersonas() []Persona {
	return []Persona{
		{
			ID:            "rest-001",
			Name:          "Sofia",
			Role:          "Restaurant Concierge",
			Avatar:        avatarBase + "Sofia",
			Features:      []string{"Table reservations", "Menu recommendations"},
			SupportCall:   true,
			Category:      tools.AgentRestaurant,
			VoiceConfigID: "restaurant-concierge",
		},
		{
			ID:            "ins-001",
			Name:          "Insurance Concierge",
			Role:          "Insurance Concierge",
			Avatar:        avatarBase + "Insurance",
			Features:      []string{"Insurance quotes", "Claims assistance"},
			SupportCall:   true,
			Category:      tools.AgentInsurance,
			VoiceConfigID: "insurance-concierge",
		},
		{
			ID:            "phone-001",
			Name:          "Phone Concierge",
			Role:          "Phone Concierge",
			Avatar:        avatarBase + "Phone",
			Features:      []string{"Phone support", "Phone assistance"},
			SupportCall:   true,
			Category:      tools.AgentPhone,
			VoiceConfigID: "phone-concierge",
		},
		{
			ID:            "car-001",
			Name:          "Car Accessories Concierge",
			Role:          "Car Accessories Concierge",
			Avatar:        avatarBase + "Car",
			Features:      []string{"Car accessories", "Car accessories assistance"},
			SupportCall:   true,
			Category:      tools.AgentCarAccessories,
			VoiceConfigID: "car-accessories-concierge",
		},
	}
}

// Catalog is an immutable set of personas keyed by category.
type Catalog struct {
	personas []Persona
	byType   map[tools.AgentType]int
}

// NewCatalog builds a catalog from the default personas, replacing the voice
// config id of any category present in overrides. Empty override values are ignored.
func NewCatalog(overrides map[string]string) (*Catalog, error) {
	personas := DefaultPersonas()
	c := &Catalog{
		personas: personas,
		byType:   make(map[tools.AgentType]int, len(personas)),
	}
	for i, p := range personas {
		c.byType[p.Category] = i
	}

	for category, configID := range overrides {
		t, err := tools.ParseAgentType(category)
		if err != nil {
			return nil, fmt.Errorf("voice config override: %w", err)
		}
		if configID != "" {
			c.personas[c.byType[t]].VoiceConfigID = configID
		}
	}
	return c, nil
}

// All returns every persona in display order.
func (c *Catalog) All() []Persona {
	out := make([]Persona, len(c.personas))
	copy(out, c.personas)
	return out
}

// Get returns the persona for category.
func (c *Catalog) Get(category tools.AgentType) (Persona, error) {
	i, ok := c.byType[category]
	if !ok {
		return Persona{}, fmt.Errorf("%w: %q", ErrNotFound, category)
	}
	return c.personas[i], nil
}

// VoiceConfigID returns the voice configuration id for category.
func (c *Catalog) VoiceConfigID(category tools.AgentType) (string, error) {
	p, err := c.Get(category)
	if err != nil {
		return "", err
	}
	return p.VoiceConfigID, nil
}
