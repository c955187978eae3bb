package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen            TicketStatus = "OPEN"
	TicketStatusPending         TicketStatus = "PENDING"
	TicketStatusPendingApproval TicketStatus = "PENDING_APPROVAL"
	TicketStatusApproved        TicketStatus = "APPROVED"
	TicketStatusRejected        TicketStatus = "REJECTED"
	TicketStatusInProgress      TicketStatus = "IN_PROGRESS"
	TicketStatusPendingVendor   TicketStatus = "PENDING_VENDOR"
	TicketStatusResolved        TicketStatus = "RESOLVED"
	TicketStatusClosed          TicketStatus = "CLOSED"
	TicketStatusCancelled       TicketStatus = "CANCELLED"
)

// AllTicketStatuses lists every status a ticket may hold.
var AllTicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusPending,
	TicketStatusPendingApproval,
	TicketStatusApproved,
	TicketStatusRejected,
	TicketStatusInProgress,
	TicketStatusPendingVendor,
	TicketStatusResolved,
	TicketStatusClosed,
	TicketStatusCancelled,
}

// IsKnownStatus reports whether s is one of the defined ticket statuses.
func IsKnownStatus(s TicketStatus) bool {
	for _, candidate := range AllTicketStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow       TicketPriority = "LOW"
	TicketPriorityMedium    TicketPriority = "MEDIUM"
	TicketPriorityHigh      TicketPriority = "HIGH"
	TicketPriorityCritical  TicketPriority = "CRITICAL"
	TicketPriorityEmergency TicketPriority = "EMERGENCY"
)

// Ticket is the aggregate for helpdesk requests. TicketNumber is the
// human-facing sequential identifier, immutable once assigned.
type Ticket struct {
	ID           string
	TicketNumber int64
	ServiceID    string
	CreatedByID  string
	AssignedToID *string
	BranchID     string
	Title        string
	Description  string
	Status       TicketStatus
	Priority     TicketPriority
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ResolvedAt   *time.Time
	ClosedAt     *time.Time
}

// Assigned reports whether the ticket currently has an assignee.
func (t *Ticket) Assigned() bool {
	return t.AssignedToID != nil && *t.AssignedToID != ""
}
