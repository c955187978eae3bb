package access

import "github.com/helpdeskhq/helpdesk-service/internal/domain"

// DenialReason distinguishes why a view was refused so the caller can
// render an actionable message instead of a generic forbidden.
type DenialReason string

const (
	DenialRequiresApproval DenialReason = "REQUIRES_APPROVAL"
	DenialApprovalPending  DenialReason = "APPROVAL_PENDING"
	DenialApprovalRejected DenialReason = "APPROVAL_REJECTED"
	DenialGeneric          DenialReason = "FORBIDDEN"
)

// Message returns the human-readable explanation for the denial.
func (d DenialReason) Message() string {
	switch d {
	case DenialRequiresApproval:
		return "ticket requires manager approval before it can be viewed by technicians"
	case DenialApprovalPending:
		return "ticket approval is still pending"
	case DenialApprovalRejected:
		return "ticket approval was rejected"
	default:
		return "you do not have permission to view this ticket"
	}
}

// ViewDenial classifies a CanView refusal. Call only after CanView has
// returned false.
func ViewDenial(s Snapshot, actor domain.Actor) DenialReason {
	if !s.Service.RequiresApproval || !actor.IsFieldRole() {
		return DenialGeneric
	}
	if s.LatestApproval == nil {
		return DenialRequiresApproval
	}
	switch s.LatestApproval.Status {
	case domain.ApprovalStatusPending:
		return DenialApprovalPending
	case domain.ApprovalStatusRejected:
		return DenialApprovalRejected
	}
	return DenialGeneric
}
