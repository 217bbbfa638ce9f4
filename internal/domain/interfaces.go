package domain

import (
	"context"
	"time"

	"mydienst/internal/models"
)

// Repository is the storage surface the booking lifecycle service
// depends on. *database.DB implements it; tests substitute fakes.
type Repository interface {
	GetSlot(ctx context.Context, id int64) (*models.Slot, error)
	ListSlots(ctx context.Context, date string) ([]*models.Slot, error)
	CreateSlot(ctx context.Context, slot *models.Slot) error
	CreateSlotsBulk(ctx context.Context, from, to time.Time, slotTime string, duration int64, daysOfWeek []int) (models.BulkResult, error)
	DeleteSlot(ctx context.Context, id int64) (int64, error)

	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.BookingWithSlot, error)
	ListBookings(ctx context.Context, from, to string) ([]*models.BookingWithSlot, error)
	ListCompletedBookings(ctx context.Context, from, to string) ([]*models.BookingWithSlot, error)
	CompleteBooking(ctx context.Context, id int64, actor string) error
	CancelBooking(ctx context.Context, id int64, reason, actor string, actorID int64) (*models.CanceledBooking, error)

	ListCancellations(ctx context.Context, from, to string) ([]*models.CanceledBooking, error)
}

// EventPublisher decouples the lifecycle service from its listeners
// (the notification dispatcher subscribes on the other side).
type EventPublisher interface {
	PublishJSON(eventType string, payload any) error
}

// Mailer delivers a single rendered email. Implementations: SMTP via
// gomail, a no-op for disabled configs, fakes in tests.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Message is one outbound email, already rendered.
type Message struct {
	To      string
	Subject string
	HTML    string
	ReplyTo string
}
