package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mydienst/internal/models"
)

const bookingWithSlotColumns = `
	b.id, b.slot_id, b.full_name, b.email, b.phone, b.address,
	b.postal_code, b.city, b.units, b.note, b.created_at,
	b.completed_by, b.completed_at,
	s.date, s.time, s.duration`

// CreateBooking reserves a slot inside one transaction: the
// status-guarded UPDATE flips the slot free->booked, then the booking
// row is inserted. When two requests race on the same slot, exactly
// one UPDATE wins; the loser gets ErrSlotTaken and no row is written.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create booking: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM slots WHERE id = ?`, booking.SlotID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSlotNotFound
	}
	if err != nil {
		return fmt.Errorf("check slot: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE slots SET status = ? WHERE id = ? AND status = ?`,
		models.SlotBooked, booking.SlotID, models.SlotFree)
	if err != nil {
		return fmt.Errorf("mark slot booked: %w", err)
	}
	if updated, _ := result.RowsAffected(); updated == 0 {
		return ErrSlotTaken
	}

	now := time.Now().UTC()
	insert, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (slot_id, full_name, email, phone, address, postal_code, city, units, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		booking.SlotID, booking.FullName, booking.Email, booking.Phone,
		booking.Address, booking.PostalCode, booking.City, booking.Units,
		booking.Note, now)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	id, err := insert.LastInsertId()
	if err != nil {
		return fmt.Errorf("booking insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create booking: %w", err)
	}

	booking.ID = id
	booking.CreatedAt = now
	return nil
}

// GetBooking returns one booking joined with its slot.
func (db *DB) GetBooking(ctx context.Context, id int64) (*models.BookingWithSlot, error) {
	query := `SELECT ` + bookingWithSlotColumns + `
		FROM bookings b JOIN slots s ON s.id = b.slot_id
		WHERE b.id = ?`

	b, err := scanBookingWithSlot(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, nil
}

// ListBookings returns open (not completed) bookings joined with their
// slots, optionally restricted to slot dates in [from,to], ordered by
// slot date then time.
func (db *DB) ListBookings(ctx context.Context, from, to string) ([]*models.BookingWithSlot, error) {
	return db.listBookings(ctx, `b.completed_at IS NULL`, from, to)
}

// ListCompletedBookings returns completed bookings, same filtering and
// order as ListBookings.
func (db *DB) ListCompletedBookings(ctx context.Context, from, to string) ([]*models.BookingWithSlot, error) {
	return db.listBookings(ctx, `b.completed_at IS NOT NULL`, from, to)
}

// ListAllBookings returns every booking regardless of completion, for
// the export endpoints.
func (db *DB) ListAllBookings(ctx context.Context, from, to string) ([]*models.BookingWithSlot, error) {
	return db.listBookings(ctx, `1=1`, from, to)
}

func (db *DB) listBookings(ctx context.Context, where, from, to string) ([]*models.BookingWithSlot, error) {
	query := `SELECT ` + bookingWithSlotColumns + `
		FROM bookings b JOIN slots s ON s.id = b.slot_id
		WHERE ` + where
	args := []any{}
	if from != "" {
		query += ` AND s.date >= ?`
		args = append(args, from)
	}
	if to != "" {
		query += ` AND s.date <= ?`
		args = append(args, to)
	}
	query += ` ORDER BY s.date, s.time`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*models.BookingWithSlot
	for rows.Next() {
		b, err := scanBookingWithSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// CompleteBooking stamps completed_by/completed_at once. Completing an
// already-completed booking is a no-op success; the original stamp is
// kept.
func (db *DB) CompleteBooking(ctx context.Context, id int64, actor string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE bookings SET completed_by = ?, completed_at = ? WHERE id = ? AND completed_at IS NULL`,
		actor, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("complete booking: %w", err)
	}

	if updated, _ := result.RowsAffected(); updated == 0 {
		var exists int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM bookings WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrBookingNotFound
		}
		if err != nil {
			return fmt.Errorf("complete booking lookup: %w", err)
		}
		// already completed: idempotent
	}
	return nil
}

// CancelBooking performs the cancellation triple atomically: snapshot
// into canceled_bookings, delete the booking row, free the slot. The
// returned record is the archive row as written.
func (db *DB) CancelBooking(ctx context.Context, id int64, reason, actor string, actorID int64) (*models.CanceledBooking, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin cancel booking: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `SELECT ` + bookingWithSlotColumns + `
		FROM bookings b JOIN slots s ON s.id = b.slot_id
		WHERE b.id = ?`
	b, err := scanBookingWithSlot(tx.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cancel booking lookup: %w", err)
	}

	now := time.Now().UTC()
	record := &models.CanceledBooking{
		BookingID:    b.ID,
		SlotDate:     b.Date,
		SlotTime:     b.Time,
		Duration:     b.Duration,
		FullName:     b.FullName,
		Email:        b.Email,
		Phone:        b.Phone,
		Address:      b.Address,
		PostalCode:   b.PostalCode,
		City:         b.City,
		Units:        b.Units,
		Note:         b.Note,
		Reason:       reason,
		CanceledBy:   actor,
		CanceledByID: actorID,
		CreatedAt:    now,
	}

	insert, err := tx.ExecContext(ctx,
		`INSERT INTO canceled_bookings (booking_id, slot_date, slot_time, duration, full_name, email, phone,
			address, postal_code, city, units, note, reason, canceled_by, canceled_by_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.BookingID, record.SlotDate, record.SlotTime, record.Duration,
		record.FullName, record.Email, record.Phone, record.Address,
		record.PostalCode, record.City, record.Units, record.Note,
		record.Reason, record.CanceledBy, record.CanceledByID, now)
	if err != nil {
		return nil, fmt.Errorf("archive canceled booking: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete booking: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE slots SET status = ? WHERE id = ?`, models.SlotFree, b.SlotID); err != nil {
		return nil, fmt.Errorf("free slot: %w", err)
	}

	recordID, err := insert.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("cancellation insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit cancel booking: %w", err)
	}

	record.ID = recordID
	return record, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBookingWithSlot(row rowScanner) (*models.BookingWithSlot, error) {
	b := &models.BookingWithSlot{}
	var (
		units       sql.NullInt64
		note        sql.NullString
		completedBy sql.NullString
		completedAt sql.NullTime
	)
	err := row.Scan(
		&b.ID, &b.SlotID, &b.FullName, &b.Email, &b.Phone, &b.Address,
		&b.PostalCode, &b.City, &units, &note, &b.CreatedAt,
		&completedBy, &completedAt,
		&b.Date, &b.Time, &b.Duration,
	)
	if err != nil {
		return nil, err
	}
	if units.Valid {
		v := units.Int64
		b.Units = &v
	}
	b.Note = note.String
	b.CompletedBy = completedBy.String
	if completedAt.Valid {
		t := completedAt.Time
		b.CompletedAt = &t
	}
	return b, nil
}
