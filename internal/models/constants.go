package models

const (
	SlotFree   = "free"
	SlotBooked = "booked"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const (
	// DateLayout is the wire and storage format for slot dates.
	DateLayout = "2006-01-02"

	// TimeLayout is the wire and storage format for slot times.
	TimeLayout = "15:04"

	// DefaultSlotDuration in minutes, applied when a request omits it.
	DefaultSlotDuration = 120
)

// ValidRole reports whether s is a known staff role.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleUser
}
