package events

import (
	"encoding/json"
	"sync"
	"time"

	"mydienst/internal/models"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingCanceled  = "booking_canceled"
	EventBookingCompleted = "booking_completed"
)

// BookingPayload is the snapshot event consumers see. For canceled
// bookings the contact fields come from the archive record, because
// the booking row is already gone when handlers run.
type BookingPayload struct {
	BookingID  int64  `json:"booking_id"`
	SlotID     int64  `json:"slot_id,omitempty"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Duration   int64  `json:"duration"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Units      *int64 `json:"units,omitempty"`
	Note       string `json:"note,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Actor      string `json:"actor,omitempty"`
}

// PayloadFromBooking builds an event payload from a live booking row.
func PayloadFromBooking(b *models.BookingWithSlot) BookingPayload {
	return BookingPayload{
		BookingID:  b.ID,
		SlotID:     b.SlotID,
		Date:       b.Date,
		Time:       b.Time,
		Duration:   b.Duration,
		FullName:   b.FullName,
		Email:      b.Email,
		Phone:      b.Phone,
		Address:    b.Address,
		PostalCode: b.PostalCode,
		City:       b.City,
		Units:      b.Units,
		Note:       b.Note,
	}
}

// PayloadFromCancellation builds an event payload from an archive row.
func PayloadFromCancellation(r *models.CanceledBooking) BookingPayload {
	return BookingPayload{
		BookingID:  r.BookingID,
		Date:       r.SlotDate,
		Time:       r.SlotTime,
		Duration:   r.Duration,
		FullName:   r.FullName,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		PostalCode: r.PostalCode,
		City:       r.City,
		Units:      r.Units,
		Note:       r.Note,
		Reason:     r.Reason,
		Actor:      r.CanceledBy,
	}
}

// Event is a lightweight in-process domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Handler reacts to an event. Handlers must not block; slow work
// belongs in a worker queue.
type Handler func(event *Event) error

// Bus provides in-process pub/sub. Publishing never fails the caller:
// handler errors are collected and returned for logging only.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for an event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// PublishJSON encodes payload and delivers it to all subscribers of
// eventType synchronously, in subscription order.
func (b *Bus) PublishJSON(eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	event := &Event{Type: eventType, Payload: data, CreatedAt: time.Now()}

	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[eventType]...)
	b.mu.RUnlock()

	var firstErr error
	for _, h := range handlers {
		if err := h(event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
