// ABOUTME: HTTP handlers for the restaurant backend that the restaurant tools call
// ABOUTME: Serves the menu and creates and fetches reservations

package restaurant

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/2389/concierge-gateway/internal/store"
	"github.com/2389/concierge-gateway/internal/tools"
)

const maxRequestBytes = 1 << 20

// Store is the subset of store.Store the restaurant backend needs.
type Store interface {
	ListMenuItems(ctx context.Context) ([]*store.MenuItem, error)
	CreateReservation(ctx context.Context, r *store.Reservation) error
	GetReservation(ctx context.Context, id string) (*store.Reservation, error)
}

// MenuResponse is the body of GET /api/restaurant/menu.
type MenuResponse struct {
	Items []*store.MenuItem `json:"items"`
}

// Handler serves the restaurant routes.
type Handler struct {
	store  Store
	logger *slog.Logger
}

// NewHandler creates a restaurant Handler backed by s.
func NewHandler(s Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:  s,
		logger: logger.With("component", "restaurant"),
	}
}

// Register mounts the restaurant routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET "+tools.MenuPath, h.handleMenu)
	mux.HandleFunc("POST "+tools.ReservationsPath, h.handleCreateReservation)
	mux.HandleFunc("GET "+tools.ReservationsPath+"/{id}", h.handleGetReservation)
}

func (h *Handler) handleMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListMenuItems(r.Context())
	if err != nil {
		h.logger.Error("failed to list menu items", "error", err)
		sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	sendJSON(w, http.StatusOK, MenuResponse{Items: items})
}

func (h *Handler) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	var req ReservationRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.Normalize()

	if err := req.Validate(); err != nil {
		sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := &store.Reservation{
		CustomerName:    req.CustomerName,
		PartySize:       req.PartySize,
		Date:            req.Date,
		Time:            req.Time,
		SpecialRequests: req.SpecialRequests,
	}
	if err := h.store.CreateReservation(r.Context(), res); err != nil {
		h.logger.Error("failed to create reservation", "error", err)
		sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("reservation created",
		"reservation_id", res.ID,
		"date", res.Date,
		"time", res.Time,
		"party_size", res.PartySize,
	)

	sendJSON(w, http.StatusCreated, ReservationResponse{
		Status:        res.Status,
		Message:       confirmationMessage(&req),
		ReservationID: res.ID,
	})
}

func (h *Handler) handleGetReservation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	res, err := h.store.GetReservation(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		sendJSONError(w, http.StatusNotFound, "reservation not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get reservation", "reservation_id", id, "error", err)
		sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	sendJSON(w, http.StatusOK, res)
}

func sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sendJSONError writes a JSON error response.
func sendJSONError(w http.ResponseWriter, status int, message string) {
	sendJSON(w, status, map[string]string{"error": message})
}
