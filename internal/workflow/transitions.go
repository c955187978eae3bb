// Package workflow implements the ticket transition authority and the
// approval sub-state-machine.
package workflow

import (
	"time"

	"github.com/helpdeskhq/helpdesk-service/internal/domain"
	apperrors "github.com/helpdeskhq/helpdesk-service/pkg/util"
)

// TransitionInput carries the data accompanying a status change request.
type TransitionInput struct {
	Comment            string
	VendorID           string
	VendorTicketNumber string
}

// reopenable lists the states a ticket may leave back to OPEN.
var reopenable = map[domain.TicketStatus]bool{
	domain.TicketStatusClosed:          true,
	domain.TicketStatusCancelled:       true,
	domain.TicketStatusResolved:        true,
	domain.TicketStatusRejected:        true,
	domain.TicketStatusPendingApproval: true,
	domain.TicketStatusApproved:        true,
	domain.TicketStatusPending:         true,
}

// Reopenable reports whether a ticket in the given status may be
// reopened to OPEN by an actor with status-update rights.
func Reopenable(status domain.TicketStatus) bool {
	return reopenable[status]
}

// ValidateTransition checks a requested status change. The transition
// table is deliberately permissive: actor eligibility is gated before
// this is consulted, and any known status is a legal target except for
// the vendor hand-off, which must carry vendor identifiers and go
// through the vendor-assignment flow.
func ValidateTransition(current, next domain.TicketStatus, in TransitionInput) error {
	if !domain.IsKnownStatus(next) {
		return apperrors.NewValidationError("unknown ticket status", map[string]any{
			"status": string(next),
		})
	}
	if next == domain.TicketStatusPendingVendor {
		if in.VendorID == "" || in.VendorTicketNumber == "" {
			return apperrors.NewValidationError(
				"vendor_id and vendor_ticket_number are required to move a ticket to PENDING_VENDOR",
				nil,
			)
		}
	}
	return nil
}

// ValidateApprovalExit enforces the approval gate: a ticket whose
// service requires approval may not leave PENDING_APPROVAL without an
// approval history.
func ValidateApprovalExit(current, next domain.TicketStatus, requiresApproval bool, latest *domain.ApprovalRecord) error {
	if !requiresApproval || current != domain.TicketStatusPendingApproval || next == current {
		return nil
	}
	if latest == nil {
		return apperrors.NewValidationError(
			"ticket requires an approval decision before leaving PENDING_APPROVAL",
			nil,
		)
	}
	return nil
}

// ApplySideEffects mutates the ticket for entry into the target status.
// Re-entering RESOLVED or CLOSED overwrites the earlier timestamp: the
// most recent resolution cycle wins.
func ApplySideEffects(t *domain.Ticket, next domain.TicketStatus, now time.Time) {
	switch next {
	case domain.TicketStatusResolved:
		resolved := now
		t.ResolvedAt = &resolved
	case domain.TicketStatusClosed:
		closed := now
		t.ClosedAt = &closed
	}
	t.Status = next
	t.UpdatedAt = now
}
