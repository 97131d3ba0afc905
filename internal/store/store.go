// ABOUTME: Store interface and data types for concierge-gateway persistence
// ABOUTME: Defines menu items, reservations and tool-call audit records

package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ReservationStatusConfirmed is the status of a newly created reservation
const ReservationStatusConfirmed = "confirmed"

// MenuItem is a single dish on the restaurant menu
type MenuItem struct {
	ID            string    `json:"_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	Category      string    `json:"category"`
	IsBestSelling bool      `json:"isBestSelling"`
	ImageURL      string    `json:"imageUrl"`
	Ingredients   []string  `json:"ingredients"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Reservation is a dining booking
type Reservation struct {
	ID              string    `json:"id"`
	CustomerName    string    `json:"customer_name,omitempty"`
	PartySize       int       `json:"party_size"`
	Date            string    `json:"date"` // YYYY-MM-DD
	Time            string    `json:"time"` // HH:MM
	SpecialRequests string    `json:"special_requests,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// ToolCallRecord is one audited tool call
type ToolCallRecord struct {
	ID         string    `json:"id"`
	ToolCallID string    `json:"tool_call_id"`
	AgentType  string    `json:"agent_type"`
	ToolName   string    `json:"tool_name"`
	Kind       string    `json:"kind"`
	Category   string    `json:"category,omitempty"`
	Error      string    `json:"error,omitempty"`
	Content    string    `json:"content"`
	Level      string    `json:"level,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToolCallFilter narrows ListToolCalls results
type ToolCallFilter struct {
	AgentType string // empty matches all agents
	ToolName  string // empty matches all tools
	Limit     int    // default 100, max 1000
}

// Store defines the persistence operations used by the gateway
type Store interface {
	ListMenuItems(ctx context.Context) ([]*MenuItem, error)
	UpsertMenuItem(ctx context.Context, item *MenuItem) error

	CreateReservation(ctx context.Context, r *Reservation) error
	GetReservation(ctx context.Context, id string) (*Reservation, error)
	ListReservations(ctx context.Context, date string) ([]*Reservation, error)

	AppendToolCall(ctx context.Context, rec *ToolCallRecord) error
	ListToolCalls(ctx context.Context, filter ToolCallFilter) ([]*ToolCallRecord, error)

	Ping(ctx context.Context) error
	Close() error
}
