package domain

import "time"

// VendorAssignment records the hand-off of a ticket to an external
// vendor. Created transactionally with the PENDING_VENDOR status write.
type VendorAssignment struct {
	ID                 string
	TicketID           string
	VendorID           string
	VendorTicketNumber string
	Notes              string
	Reason             string
	AssignedByID       string
	CreatedAt          time.Time
}
