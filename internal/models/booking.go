package models

import "time"

// Booking is an active reservation of a slot. A booking row exists only
// while the reservation is alive; cancellation moves the data into the
// cancellation archive and deletes the row.
type Booking struct {
	ID          int64      `json:"id"`
	SlotID      int64      `json:"slot_id"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Address     string     `json:"address"`
	PostalCode  string     `json:"postal_code"`
	City        string     `json:"city"`
	Units       *int64     `json:"units,omitempty"`
	Note        string     `json:"note,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedBy string     `json:"completed_by,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Completed reports whether the booking has been marked done.
func (b *Booking) Completed() bool {
	return b.CompletedAt != nil
}

// BookingWithSlot joins a booking with its slot for listings, exports
// and notifications.
type BookingWithSlot struct {
	Booking
	Date     string `json:"date"`
	Time     string `json:"time"`
	Duration int64  `json:"duration"`
}
