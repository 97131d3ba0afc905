// ABOUTME: Tests for the restaurant HTTP handlers
// ABOUTME: Exercises menu listing, reservation validation, creation and lookup

package restaurant

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/concierge-gateway/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.SQLiteStore) {
	t.Helper()

	s, err := store.NewSQLiteStore(store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	mux := http.NewServeMux()
	NewHandler(s, nil).Register(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, s
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestMenu_ReturnsSeededItems(t *testing.T) {
	srv, s := newTestServer(t)
	_, err := s.SeedMenu(context.Background(), DefaultMenu())
	require.NoError(t, err)

	resp, err := http.Get(srv.URL + "/api/restaurant/menu")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var body MenuResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Items, len(DefaultMenu()))
}

func TestMenu_EmptyStoreReturnsEmptyList(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/restaurant/menu")
	require.NoError(t, err)
	defer resp.Body.Close()

	var raw map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&raw))
	assert.JSONEq(t, `[]`, string(raw["items"]))
}

func TestCreateReservation_Confirmed(t *testing.T) {
	srv, s := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/restaurant/reservations",
		`{"party_size":4,"date":"2025-06-12","time":"19:30","special_requests":"gluten free"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body ReservationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "confirmed", body.Status)
	assert.Equal(t, "Reservation confirmed for 4 people on 2025-06-12 at 19:30.", body.Message)
	require.NotEmpty(t, body.ReservationID)

	got, err := s.GetReservation(context.Background(), body.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, "gluten free", got.SpecialRequests)
}

func TestCreateReservation_AcceptsCamelCase(t *testing.T) {
	srv, s := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/restaurant/reservations",
		`{"partySize":1,"date":"2025-06-12","time":"12:00","customerName":"Grace"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body ReservationResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Reservation confirmed for 1 person on 2025-06-12 at 12:00 under the name Grace.", body.Message)

	got, err := s.GetReservation(context.Background(), body.ReservationID)
	require.NoError(t, err)
	assert.Equal(t, "Grace", got.CustomerName)
	assert.Equal(t, 1, got.PartySize)
}

func TestCreateReservation_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"party_size":`},
		{"missing party size", `{"date":"2025-06-12","time":"19:30"}`},
		{"party too large", `{"party_size":21,"date":"2025-06-12","time":"19:30"}`},
		{"bad date", `{"party_size":2,"date":"12/06/2025","time":"19:30"}`},
		{"impossible date", `{"party_size":2,"date":"2025-02-30","time":"19:30"}`},
		{"bad time", `{"party_size":2,"date":"2025-06-12","time":"7pm"}`},
		{"single digit hour", `{"party_size":2,"date":"2025-06-12","time":"9:30"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/api/restaurant/reservations", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var errResp map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
			assert.NotEmpty(t, errResp["error"])
		})
	}
}

func TestGetReservation(t *testing.T) {
	srv, s := newTestServer(t)

	res := &store.Reservation{PartySize: 2, Date: "2025-01-01", Time: "18:00"}
	require.NoError(t, s.CreateReservation(context.Background(), res))

	resp, err := http.Get(srv.URL + "/api/restaurant/reservations/" + res.ID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got store.Reservation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, res.ID, got.ID)
	assert.Equal(t, "confirmed", got.Status)

	missing, err := http.Get(srv.URL + "/api/restaurant/reservations/does-not-exist")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestReservationRequest_Validate(t *testing.T) {
	ok := ReservationRequest{PartySize: 2, Date: "2025-06-12", Time: "19:30"}
	assert.NoError(t, ok.Validate())

	tooSmall := ok
	tooSmall.PartySize = 0
	assert.ErrorIs(t, tooSmall.Validate(), ErrInvalidPartySize)

	badDate := ok
	badDate.Date = "tomorrow"
	assert.ErrorIs(t, badDate.Validate(), ErrInvalidDate)

	badTime := ok
	badTime.Time = "25:00"
	assert.ErrorIs(t, badTime.Validate(), ErrInvalidTime)
}
