package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mydienst/internal/models"
)

// ListSlots returns every slot, or only the slots of one date when
// date is non-empty, ordered by date then time.
func (db *DB) ListSlots(ctx context.Context, date string) ([]*models.Slot, error) {
	query := `SELECT id, date, time, duration, status FROM slots ORDER BY date, time`
	args := []any{}
	if date != "" {
		query = `SELECT id, date, time, duration, status FROM slots WHERE date = ? ORDER BY time`
		args = append(args, date)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	defer rows.Close()

	var slots []*models.Slot
	for rows.Next() {
		s := &models.Slot{}
		if err := rows.Scan(&s.ID, &s.Date, &s.Time, &s.Duration, &s.Status); err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// GetSlot returns one slot by id.
func (db *DB) GetSlot(ctx context.Context, id int64) (*models.Slot, error) {
	s := &models.Slot{}
	err := db.QueryRowContext(ctx,
		`SELECT id, date, time, duration, status FROM slots WHERE id = ?`, id).
		Scan(&s.ID, &s.Date, &s.Time, &s.Duration, &s.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}
	return s, nil
}

// CreateSlot inserts a new free slot. Overlapping slots are allowed;
// several appointments may start at the same time.
func (db *DB) CreateSlot(ctx context.Context, slot *models.Slot) error {
	if slot.Duration <= 0 {
		slot.Duration = models.DefaultSlotDuration
	}
	slot.Status = models.SlotFree

	result, err := db.ExecContext(ctx,
		`INSERT INTO slots (date, time, duration, status) VALUES (?, ?, ?, ?)`,
		slot.Date, slot.Time, slot.Duration, slot.Status)
	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("slot insert id: %w", err)
	}
	slot.ID = id
	return nil
}

// CreateSlotsBulk walks the date range [from,to] and inserts a free
// slot at the given time for every day whose ISO weekday (1=Mon..7=Sun)
// is in daysOfWeek. Dates that already carry a slot at the same time
// are counted instead of inserted: skipped when that slot is free,
// conflicts when it is booked. The whole run is one transaction.
func (db *DB) CreateSlotsBulk(ctx context.Context, from, to time.Time, slotTime string, duration int64, daysOfWeek []int) (models.BulkResult, error) {
	var result models.BulkResult

	wanted := make(map[int]bool, len(daysOfWeek))
	for _, d := range daysOfWeek {
		wanted[d] = true
	}
	if duration <= 0 {
		duration = models.DefaultSlotDuration
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin bulk create: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if !wanted[isoWeekday(day)] {
			continue
		}
		dateStr := day.Format(models.DateLayout)

		var status string
		err := tx.QueryRowContext(ctx,
			`SELECT status FROM slots WHERE date = ? AND time = ? LIMIT 1`,
			dateStr, slotTime).Scan(&status)
		switch {
		case err == nil:
			if status == models.SlotBooked {
				result.Conflicts++
			} else {
				result.Skipped++
			}
			continue
		case errors.Is(err, sql.ErrNoRows):
			// no slot at this date+time yet, insert below
		default:
			return models.BulkResult{}, fmt.Errorf("bulk check slot %s %s: %w", dateStr, slotTime, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO slots (date, time, duration, status) VALUES (?, ?, ?, ?)`,
			dateStr, slotTime, duration, models.SlotFree); err != nil {
			return models.BulkResult{}, fmt.Errorf("bulk insert slot %s %s: %w", dateStr, slotTime, err)
		}
		result.Created++
	}

	if err := tx.Commit(); err != nil {
		return models.BulkResult{}, fmt.Errorf("commit bulk create: %w", err)
	}
	return result, nil
}

// DeleteSlot removes a free slot. Booked slots are refused; the
// booking has to be canceled first. Returns the number of deleted rows
// (0 when the id does not exist).
func (db *DB) DeleteSlot(ctx context.Context, id int64) (int64, error) {
	var status string
	err := db.QueryRowContext(ctx, `SELECT status FROM slots WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("delete slot lookup: %w", err)
	}
	if status == models.SlotBooked {
		return 0, ErrSlotBooked
	}

	result, err := db.ExecContext(ctx, `DELETE FROM slots WHERE id = ? AND status != ?`, id, models.SlotBooked)
	if err != nil {
		return 0, fmt.Errorf("delete slot: %w", err)
	}
	deleted, _ := result.RowsAffected()
	return deleted, nil
}

// isoWeekday maps time.Weekday to ISO 8601 numbering (1=Mon..7=Sun),
// the convention the admin calendar uses.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
