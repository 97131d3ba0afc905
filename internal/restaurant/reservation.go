// ABOUTME: Reservation request decoding and validation
// ABOUTME: Accepts snake_case fields from tool parameters and camelCase from web clients

package restaurant

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxPartySize is the largest party accepted for a single booking.
const MaxPartySize = 20

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Validation errors returned by ReservationRequest.Validate.
var (
	ErrInvalidPartySize = errors.New("party_size must be between 1 and 20")
	ErrInvalidDate      = errors.New("date must be in YYYY-MM-DD format")
	ErrInvalidTime      = errors.New("time must be in HH:MM format")
)

// ReservationRequest is the body of POST /api/restaurant/reservations.
type ReservationRequest struct {
	PartySize       int    `json:"party_size"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	SpecialRequests string `json:"special_requests,omitempty"`
	CustomerName    string `json:"customer_name,omitempty"`
}

// ReservationResponse is returned when a reservation is created.
type ReservationResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	ReservationID string `json:"reservation_id"`
}

// UnmarshalJSON accepts both snake_case and camelCase field names.
// snake_case wins when both are present.
func (r *ReservationRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		PartySize            *int   `json:"party_size"`
		PartySizeCamel       *int   `json:"partySize"`
		Date                 string `json:"date"`
		Time                 string `json:"time"`
		SpecialRequests      string `json:"special_requests"`
		SpecialRequestsCamel string `json:"specialRequests"`
		CustomerName         string `json:"customer_name"`
		CustomerNameCamel    string `json:"customerName"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = ReservationRequest{
		Date:            raw.Date,
		Time:            raw.Time,
		SpecialRequests: firstNonEmpty(raw.SpecialRequests, raw.SpecialRequestsCamel),
		CustomerName:    firstNonEmpty(raw.CustomerName, raw.CustomerNameCamel),
	}
	switch {
	case raw.PartySize != nil:
		r.PartySize = *raw.PartySize
	case raw.PartySizeCamel != nil:
		r.PartySize = *raw.PartySizeCamel
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Normalize trims whitespace from the string fields.
func (r *ReservationRequest) Normalize() {
	r.Date = strings.TrimSpace(r.Date)
	r.Time = strings.TrimSpace(r.Time)
	r.SpecialRequests = strings.TrimSpace(r.SpecialRequests)
	r.CustomerName = strings.TrimSpace(r.CustomerName)
}

// Validate checks party size, date and time.
func (r *ReservationRequest) Validate() error {
	if r.PartySize < 1 || r.PartySize > MaxPartySize {
		return ErrInvalidPartySize
	}
	if _, err := time.Parse(dateLayout, r.Date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, r.Date)
	}
	if _, err := time.Parse(timeLayout, r.Time); err != nil || len(r.Time) != len(timeLayout) {
		return fmt.Errorf("%w: %q", ErrInvalidTime, r.Time)
	}
	return nil
}

// confirmationMessage is the sentence the agent reads back to the caller.
func confirmationMessage(r *ReservationRequest) string {
	people := "people"
	if r.PartySize == 1 {
		people = "person"
	}
	msg := fmt.Sprintf("Reservation confirmed for %d %s on %s at %s", r.PartySize, people, r.Date, r.Time)
	if r.CustomerName != "" {
		msg += " under the name " + r.CustomerName
	}
	return msg + "."
}
