package booking

import (
	"context"
	"testing"
	"time"

	"mydienst/internal/database"
	"mydienst/internal/events"
	"mydienst/internal/logging"
	"mydienst/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	bookings     map[int64]*models.BookingWithSlot
	nextID       int64
	createErr    error
	completeErr  error
	cancelErr    error
	completedBy  string
	canceledWith string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{bookings: map[int64]*models.BookingWithSlot{}, nextID: 1}
}

func (f *fakeRepo) GetSlot(context.Context, int64) (*models.Slot, error)       { return nil, nil }
func (f *fakeRepo) ListSlots(context.Context, string) ([]*models.Slot, error)  { return nil, nil }
func (f *fakeRepo) CreateSlot(context.Context, *models.Slot) error             { return nil }
func (f *fakeRepo) DeleteSlot(context.Context, int64) (int64, error)           { return 0, nil }
func (f *fakeRepo) CreateSlotsBulk(context.Context, time.Time, time.Time, string, int64, []int) (models.BulkResult, error) {
	return models.BulkResult{}, nil
}
func (f *fakeRepo) ListBookings(context.Context, string, string) ([]*models.BookingWithSlot, error) {
	return nil, nil
}
func (f *fakeRepo) ListCompletedBookings(context.Context, string, string) ([]*models.BookingWithSlot, error) {
	return nil, nil
}
func (f *fakeRepo) ListCancellations(context.Context, string, string) ([]*models.CanceledBooking, error) {
	return nil, nil
}

func (f *fakeRepo) CreateBooking(_ context.Context, b *models.Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	b.ID = f.nextID
	f.nextID++
	b.CreatedAt = time.Now()
	f.bookings[b.ID] = &models.BookingWithSlot{Booking: *b, Date: "2025-03-01", Time: "09:00", Duration: 120}
	return nil
}

func (f *fakeRepo) GetBooking(_ context.Context, id int64) (*models.BookingWithSlot, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, database.ErrBookingNotFound
	}
	return b, nil
}

func (f *fakeRepo) CompleteBooking(_ context.Context, id int64, actor string) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completedBy = actor
	return nil
}

func (f *fakeRepo) CancelBooking(_ context.Context, id int64, reason, actor string, actorID int64) (*models.CanceledBooking, error) {
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	f.canceledWith = reason
	return &models.CanceledBooking{
		BookingID:    id,
		SlotDate:     "2025-03-01",
		SlotTime:     "09:00",
		Reason:       reason,
		CanceledBy:   actor,
		CanceledByID: actorID,
	}, nil
}

type fakeBus struct {
	published []string
}

func (f *fakeBus) PublishJSON(eventType string, _ any) error {
	f.published = append(f.published, eventType)
	return nil
}

func validRequest(slotID int64) CreateRequest {
	return CreateRequest{
		SlotID:     slotID,
		FullName:   "Max Mustermann",
		Email:      "max@example.com",
		Phone:      "+49 170 0000000",
		Address:    "Musterstr. 1",
		PostalCode: "10115",
		City:       "Berlin",
	}
}

func newTestService(repo *fakeRepo, bus *fakeBus) *Service {
	return NewService(repo, bus, logging.Nop())
}

func TestCreate(t *testing.T) {
	repo := newFakeRepo()
	bus := &fakeBus{}
	svc := newTestService(repo, bus)

	b, err := svc.Create(context.Background(), validRequest(5))
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.ID)
	assert.Equal(t, int64(5), b.SlotID)
	assert.Equal(t, []string{events.EventBookingCreated}, bus.published)
}

func TestCreate_TrimsFields(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeBus{})

	req := validRequest(1)
	req.FullName = "  Max Mustermann  "
	req.Note = " Hinterhof "

	b, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Max Mustermann", b.FullName)
	assert.Equal(t, "Hinterhof", b.Note)
}

func TestCreate_MissingFields(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakeBus{})

	cases := map[string]func(*CreateRequest){
		"no slot":     func(r *CreateRequest) { r.SlotID = 0 },
		"no name":     func(r *CreateRequest) { r.FullName = "  " },
		"no email":    func(r *CreateRequest) { r.Email = "" },
		"no phone":    func(r *CreateRequest) { r.Phone = "" },
		"no address":  func(r *CreateRequest) { r.Address = "" },
		"no postcode": func(r *CreateRequest) { r.PostalCode = "" },
		"no city":     func(r *CreateRequest) { r.City = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validRequest(1)
			mutate(&req)
			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, ErrMissingFields)
		})
	}
}

func TestCreate_RepoErrorPassesThrough(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = database.ErrSlotTaken
	bus := &fakeBus{}
	svc := newTestService(repo, bus)

	_, err := svc.Create(context.Background(), validRequest(1))
	assert.ErrorIs(t, err, database.ErrSlotTaken)
	assert.Empty(t, bus.published)
}

func TestComplete(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakeBus{})

	require.NoError(t, svc.Complete(context.Background(), 1, "anna"))
	assert.Equal(t, "anna", repo.completedBy)

	repo.completeErr = database.ErrBookingNotFound
	err := svc.Complete(context.Background(), 2, "anna")
	assert.ErrorIs(t, err, database.ErrBookingNotFound)
}

func TestCancel(t *testing.T) {
	repo := newFakeRepo()
	bus := &fakeBus{}
	svc := newTestService(repo, bus)

	record, err := svc.Cancel(context.Background(), 1, "  Kunde verhindert ", "anna", 7)
	require.NoError(t, err)
	assert.Equal(t, "Kunde verhindert", record.Reason)
	assert.Equal(t, "Kunde verhindert", repo.canceledWith)
	assert.Equal(t, []string{events.EventBookingCanceled}, bus.published)
}

func TestCancel_ReasonRequired(t *testing.T) {
	bus := &fakeBus{}
	svc := newTestService(newFakeRepo(), bus)

	_, err := svc.Cancel(context.Background(), 1, "   ", "anna", 7)
	assert.ErrorIs(t, err, ErrReasonRequired)
	assert.Empty(t, bus.published)
}

func TestCancel_NotFound(t *testing.T) {
	repo := newFakeRepo()
	repo.cancelErr = database.ErrBookingNotFound
	bus := &fakeBus{}
	svc := newTestService(repo, bus)

	_, err := svc.Cancel(context.Background(), 9, "Grund", "anna", 7)
	assert.ErrorIs(t, err, database.ErrBookingNotFound)
	assert.Empty(t, bus.published)
}
