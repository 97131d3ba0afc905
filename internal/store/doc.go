// Package store provides SQLite persistence for the concierge gateway.
//
// # Tables
//
//   - menu_items: the restaurant menu served by the getMenu tool backend
//   - reservations: bookings created by the createReservation tool backend
//   - tool_calls: audit history of every dispatched tool call and its outcome
//
// The schema is created on open. The driver is modernc.org/sqlite (pure Go).
//
// # Usage
//
//	s, err := store.NewSQLiteStore("/var/lib/concierge/gateway.db")
//	defer s.Close()
//
//	items, err := s.ListMenuItems(ctx)
//	res := &store.Reservation{PartySize: 2, Date: "2025-01-01", Time: "19:00"}
//	err = s.CreateReservation(ctx, res) // fills res.ID and res.Status
package store
