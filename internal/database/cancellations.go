package database

import (
	"context"
	"database/sql"
	"fmt"

	"mydienst/internal/models"
)

// ListCancellations returns archive rows, optionally restricted to
// original slot dates in [from,to], ordered by slot date then time.
// The archive is append-only; the single insert happens in
// CancelBooking.
func (db *DB) ListCancellations(ctx context.Context, from, to string) ([]*models.CanceledBooking, error) {
	query := `SELECT id, booking_id, slot_date, slot_time, duration, full_name, email, phone,
			address, postal_code, city, units, note, reason, canceled_by, canceled_by_id, created_at
		FROM canceled_bookings WHERE 1=1`
	args := []any{}
	if from != "" {
		query += ` AND slot_date >= ?`
		args = append(args, from)
	}
	if to != "" {
		query += ` AND slot_date <= ?`
		args = append(args, to)
	}
	query += ` ORDER BY slot_date, slot_time`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list cancellations: %w", err)
	}
	defer rows.Close()

	var records []*models.CanceledBooking
	for rows.Next() {
		r := &models.CanceledBooking{}
		var (
			units sql.NullInt64
			note  sql.NullString
		)
		err := rows.Scan(
			&r.ID, &r.BookingID, &r.SlotDate, &r.SlotTime, &r.Duration,
			&r.FullName, &r.Email, &r.Phone, &r.Address, &r.PostalCode,
			&r.City, &units, &note, &r.Reason, &r.CanceledBy,
			&r.CanceledByID, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cancellation: %w", err)
		}
		if units.Valid {
			v := units.Int64
			r.Units = &v
		}
		r.Note = note.String
		records = append(records, r)
	}
	return records, rows.Err()
}

// CountCancellations returns the archive size.
func (db *DB) CountCancellations(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM canceled_bookings`).Scan(&n)
	return n, err
}
