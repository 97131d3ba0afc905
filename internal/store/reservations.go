// ABOUTME: Reservation persistence for the restaurant backend
// ABOUTME: Assigns UUIDs and creation timestamps, and queries bookings by date

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateReservation inserts r. ID, Status and CreatedAt are filled in when empty.
func (s *SQLiteStore) CreateReservation(ctx context.Context, r *Reservation) error {
	if r.PartySize <= 0 {
		return fmt.Errorf("party size must be positive, got %d", r.PartySize)
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Status == "" {
		r.Status = ReservationStatusConfirmed
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reservations (id, customer_name, party_size, date, time, special_requests, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.CustomerName, r.PartySize, r.Date, r.Time, r.SpecialRequests, r.Status, formatTime(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting reservation: %w", err)
	}

	s.logger.Debug("created reservation", "id", r.ID, "date", r.Date, "time", r.Time, "party_size", r.PartySize)
	return nil
}

// GetReservation retrieves a reservation by ID.
// Returns ErrNotFound if it doesn't exist.
func (s *SQLiteStore) GetReservation(ctx context.Context, id string) (*Reservation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, customer_name, party_size, date, time, special_requests, status, created_at
		FROM reservations
		WHERE id = ?
	`, id)

	r, err := scanReservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListReservations returns reservations for date ordered by time.
// An empty date returns every reservation.
func (s *SQLiteStore) ListReservations(ctx context.Context, date string) ([]*Reservation, error) {
	query := `
		SELECT id, customer_name, party_size, date, time, special_requests, status, created_at
		FROM reservations
	`
	var args []any
	if date != "" {
		query += " WHERE date = ?"
		args = append(args, date)
	}
	query += " ORDER BY date, time, created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying reservations: %w", err)
	}
	defer rows.Close()

	reservations := []*Reservation{}
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reservations: %w", err)
	}
	return reservations, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*Reservation, error) {
	var (
		r         Reservation
		createdAt string
	)
	err := row.Scan(&r.ID, &r.CustomerName, &r.PartySize, &r.Date, &r.Time,
		&r.SpecialRequests, &r.Status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scanning reservation: %w", err)
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &r, nil
}
