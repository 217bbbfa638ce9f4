package database

import (
	"context"
	"sync"
	"testing"

	"mydienst/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBooking(slotID int64) *models.Booking {
	return &models.Booking{
		SlotID:     slotID,
		FullName:   "Max Mustermann",
		Email:      "max@example.com",
		Phone:      "+49 170 0000000",
		Address:    "Musterstr. 1",
		PostalCode: "10115",
		City:       "Berlin",
		Note:       "Hinterhof",
	}
}

func bookTestSlot(t *testing.T, db *DB, slotID int64) *models.Booking {
	t.Helper()
	b := testBooking(slotID)
	require.NoError(t, db.CreateBooking(context.Background(), b))
	return b
}

func TestCreateBooking(t *testing.T) {
	db := setupTestDB(t)
	slot := createTestSlot(t, db, "2025-03-01", "09:00")

	b := testBooking(slot.ID)
	require.NoError(t, db.CreateBooking(context.Background(), b))
	assert.NotZero(t, b.ID)
	assert.False(t, b.CreatedAt.IsZero())

	got, err := db.GetSlot(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SlotBooked, got.Status)
}

func TestCreateBooking_SlotNotFound(t *testing.T) {
	db := setupTestDB(t)

	err := db.CreateBooking(context.Background(), testBooking(999))
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestCreateBooking_SlotTaken(t *testing.T) {
	db := setupTestDB(t)
	slot := createTestSlot(t, db, "2025-03-01", "09:00")
	bookTestSlot(t, db, slot.ID)

	err := db.CreateBooking(context.Background(), testBooking(slot.ID))
	assert.ErrorIs(t, err, ErrSlotTaken)

	// The loser left no booking row behind.
	rows, err := db.ListBookings(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestCreateBooking_ConcurrentOneWinner(t *testing.T) {
	db := setupTestDB(t)
	slot := createTestSlot(t, db, "2025-03-01", "09:00")

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = db.CreateBooking(context.Background(), testBooking(slot.ID))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrSlotTaken)
		}
	}
	assert.Equal(t, 1, winners)

	rows, err := db.ListBookings(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestGetBooking(t *testing.T) {
	db := setupTestDB(t)
	slot := createTestSlot(t, db, "2025-03-01", "09:00")
	b := bookTestSlot(t, db, slot.ID)

	got, err := db.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Max Mustermann", got.FullName)
	assert.Equal(t, "2025-03-01", got.Date)
	assert.Equal(t, "09:00", got.Time)
	assert.Nil(t, got.Units)
	assert.Nil(t, got.CompletedAt)

	_, err = db.GetBooking(context.Background(), 999)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCreateBooking_WithUnits(t *testing.T) {
	db := setupTestDB(t)
	slot := createTestSlot(t, db, "2025-03-01", "09:00")

	units := int64(3)
	b := testBooking(slot.ID)
	b.Units = &units
	require.NoError(t, db.CreateBooking(context.Background(), b))

	got, err := db.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Units)
	assert.Equal(t, int64(3), *got.Units)
}

func TestListBookings_DateRange(t *testing.T) {
	db := setupTestDB(t)
	for _, date := range []string{"2025-03-01", "2025-03-05", "2025-03-10"} {
		slot := createTestSlot(t, db, date, "09:00")
		bookTestSlot(t, db, slot.ID)
	}

	rows, err := db.ListBookings(context.Background(), "2025-03-02", "2025-03-09")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-03-05", rows[0].Date)

	rows, err = db.ListBookings(context.Background(), "2025-03-05", "")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestCompleteBooking(t *testing.T) {
	db := setupTestDB(t)
	slot := createTestSlot(t, db, "2025-03-01", "09:00")
	b := bookTestSlot(t, db, slot.ID)

	require.NoError(t, db.CompleteBooking(context.Background(), b.ID, "anna"))

	got, err := db.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "anna", got.CompletedBy)
	require.NotNil(t, got.CompletedAt)
	firstStamp := *got.CompletedAt

	// Completed bookings move between the two listings.
	open, err := db.ListBookings(context.Background(), "", "")
	require.NoError(t, err)
	assert.Empty(t, open)
	done, err := db.ListCompletedBookings(context.Background(), "", "")
	require.NoError(t, err)
	assert.Len(t, done, 1)

	// Re-completing is a no-op; the first stamp survives.
	require.NoError(t, db.CompleteBooking(context.Background(), b.ID, "bert"))
	got, err = db.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "anna", got.CompletedBy)
	assert.Equal(t, firstStamp, *got.CompletedAt)
}

func TestCompleteBooking_NotFound(t *testing.T) {
	db := setupTestDB(t)

	err := db.CompleteBooking(context.Background(), 999, "anna")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestCancelBooking(t *testing.T) {
	db := setupTestDB(t)
	slot := createTestSlot(t, db, "2025-03-01", "09:00")
	b := bookTestSlot(t, db, slot.ID)

	record, err := db.CancelBooking(context.Background(), b.ID, "Kunde verhindert", "anna", 7)
	require.NoError(t, err)
	assert.NotZero(t, record.ID)
	assert.Equal(t, b.ID, record.BookingID)
	assert.Equal(t, "2025-03-01", record.SlotDate)
	assert.Equal(t, "Max Mustermann", record.FullName)
	assert.Equal(t, "Kunde verhindert", record.Reason)
	assert.Equal(t, "anna", record.CanceledBy)
	assert.Equal(t, int64(7), record.CanceledByID)

	// Booking row gone, slot free again, archive row present.
	_, err = db.GetBooking(context.Background(), b.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)

	got, err := db.GetSlot(context.Background(), slot.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SlotFree, got.Status)

	archive, err := db.ListCancellations(context.Background(), "", "")
	require.NoError(t, err)
	require.Len(t, archive, 1)
	assert.Equal(t, record.ID, archive[0].ID)

	// The freed slot can be booked again.
	require.NoError(t, db.CreateBooking(context.Background(), testBooking(slot.ID)))
}

func TestCancelBooking_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.CancelBooking(context.Background(), 999, "reason", "anna", 1)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListCancellations_DateRange(t *testing.T) {
	db := setupTestDB(t)
	for _, date := range []string{"2025-03-01", "2025-03-20"} {
		slot := createTestSlot(t, db, date, "09:00")
		b := bookTestSlot(t, db, slot.ID)
		_, err := db.CancelBooking(context.Background(), b.ID, "Grund", "anna", 1)
		require.NoError(t, err)
	}

	rows, err := db.ListCancellations(context.Background(), "2025-03-10", "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2025-03-20", rows[0].SlotDate)

	count, err := db.CountCancellations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
