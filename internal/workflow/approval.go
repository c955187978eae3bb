package workflow

import (
	"strings"
	"time"

	"github.com/helpdeskhq/helpdesk-service/internal/domain"
	apperrors "github.com/helpdeskhq/helpdesk-service/pkg/util"
)

// Decide produces a new approval record for the ticket. Decided records
// are immutable: a re-approval or re-rejection is always a fresh record
// and "latest" is the most recently created one.
func Decide(ticketID, deciderID string, status domain.ApprovalStatus, reason string, now time.Time) (*domain.ApprovalRecord, error) {
	switch status {
	case domain.ApprovalStatusApproved:
	case domain.ApprovalStatusRejected:
		if strings.TrimSpace(reason) == "" {
			return nil, apperrors.NewValidationError("a rejection requires a reason", nil)
		}
	default:
		return nil, apperrors.NewValidationError("approval decision must be APPROVED or REJECTED", nil)
	}
	return &domain.ApprovalRecord{
		TicketID:    ticketID,
		Status:      status,
		DecidedByID: &deciderID,
		Reason:      strings.TrimSpace(reason),
		CreatedAt:   now,
	}, nil
}

// StatusAfterDecision maps an approval decision onto the ticket status
// it implies when the ticket is still awaiting approval.
func StatusAfterDecision(status domain.ApprovalStatus) domain.TicketStatus {
	if status == domain.ApprovalStatusApproved {
		return domain.TicketStatusApproved
	}
	return domain.TicketStatusRejected
}
