package models

import "time"

// CanceledBooking is the immutable audit snapshot written when a
// booking is canceled. It copies the slot and customer fields as they
// were at cancellation time; the row is never updated or deleted.
type CanceledBooking struct {
	ID           int64     `json:"id"`
	BookingID    int64     `json:"booking_id"`
	SlotDate     string    `json:"date"`
	SlotTime     string    `json:"time"`
	Duration     int64     `json:"duration"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	PostalCode   string    `json:"postal_code"`
	City         string    `json:"city"`
	Units        *int64    `json:"units,omitempty"`
	Note         string    `json:"note,omitempty"`
	Reason       string    `json:"reason"`
	CanceledBy   string    `json:"canceled_by"`
	CanceledByID int64     `json:"canceled_by_id"`
	CreatedAt    time.Time `json:"created_at"`
}
