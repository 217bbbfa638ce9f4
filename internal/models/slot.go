package models

// Slot is a bookable appointment window. Date and Time are kept as
// ISO strings ("2006-01-02", "15:04") exactly as stored; lexicographic
// order equals chronological order.
type Slot struct {
	ID       int64  `json:"id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Duration int64  `json:"duration"`
	Status   string `json:"status"` // free, booked
}

// BulkResult reports the outcome of a recurring slot creation.
type BulkResult struct {
	Created   int `json:"created"`
	Skipped   int `json:"skipped"`
	Conflicts int `json:"conflicts"`
}
