package domain

import "time"

// ApprovalStatus enumerates approval decision states.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

// ApprovalRecord captures one approval decision for a ticket. Records
// are immutable once decided; a correction is a new record, and the
// latest record (most recent CreatedAt) is authoritative.
type ApprovalRecord struct {
	ID          string
	TicketID    string
	Status      ApprovalStatus
	DecidedByID *string
	Reason      string
	CreatedAt   time.Time
}

// Decided reports whether the record holds a final decision.
func (r *ApprovalRecord) Decided() bool {
	return r.Status == ApprovalStatusApproved || r.Status == ApprovalStatusRejected
}
