package database

import "errors"

var (
	// ErrSlotNotFound is returned when a slot id does not exist.
	ErrSlotNotFound = errors.New("slot not found")

	// ErrSlotTaken is returned when a booking targets a slot that is
	// not free. Of two concurrent attempts on the same slot exactly one
	// receives this error.
	ErrSlotTaken = errors.New("slot already booked")

	// ErrSlotBooked is returned when deleting a slot that has an
	// active booking.
	ErrSlotBooked = errors.New("slot has an active booking")

	// ErrBookingNotFound is returned when a booking id does not exist.
	ErrBookingNotFound = errors.New("booking not found")

	// ErrUserNotFound is returned when a user id or username does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists is returned when creating a user with a taken username.
	ErrUserExists = errors.New("username already exists")
)
