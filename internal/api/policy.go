package api

import "mydienst/internal/models"

// Staff actions. Handlers name the action they need and ask the
// capability table, so role checks live in exactly one place.
const (
	ActionSlotCreate      = "slot:create"
	ActionSlotBulkCreate  = "slot:bulk_create"
	ActionSlotDelete      = "slot:delete"
	ActionBookingList     = "booking:list"
	ActionBookingComplete = "booking:complete"
	ActionBookingCancel   = "booking:cancel"
	ActionBookingExport   = "booking:export"
	ActionUserManage      = "user:manage"
)

var capabilities = map[string]map[string]bool{
	models.RoleAdmin: {
		ActionSlotCreate:      true,
		ActionSlotBulkCreate:  true,
		ActionSlotDelete:      true,
		ActionBookingList:     true,
		ActionBookingComplete: true,
		ActionBookingCancel:   true,
		ActionBookingExport:   true,
		ActionUserManage:      true,
	},
	models.RoleUser: {
		ActionSlotCreate:      true,
		ActionBookingList:     true,
		ActionBookingComplete: true,
		ActionBookingCancel:   true,
		ActionBookingExport:   true,
	},
}

// Allowed reports whether the role may perform the action. Unknown
// roles and unknown actions are both denied.
func Allowed(role, action string) bool {
	return capabilities[role][action]
}
