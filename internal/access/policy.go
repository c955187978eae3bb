// Package access implements the access-control evaluator for tickets.
//
// Every predicate is a pure function over a ticket snapshot and an
// explicit actor, so the same check can run optimistically for UI
// affordance and authoritatively immediately before a write.
package access

import "github.com/helpdeskhq/helpdesk-service/internal/domain"

// Snapshot bundles the ticket state the evaluator needs. LatestApproval
// is the most recently created approval record, nil when none exists.
type Snapshot struct {
	Ticket         domain.Ticket
	Service        domain.Service
	CreatorEmail   string
	CreatorBranch  string
	AssigneeEmail  string
	LatestApproval *domain.ApprovalRecord
}

func (s Snapshot) approvalApproved() bool {
	return s.LatestApproval != nil && s.LatestApproval.Status == domain.ApprovalStatusApproved
}

// CanView decides whether the actor may read the ticket at all.
func CanView(s Snapshot, actor domain.Actor) bool {
	// Claims-support technicians fall through to the regular technician
	// visibility rule; only their write rights are stripped.
	if actor.IsAdmin() {
		return true
	}
	if s.CreatorEmail == actor.Email {
		return true
	}
	switch actor.Role {
	case domain.RoleTechnician, domain.RoleSecurityAnalyst:
		if s.AssigneeEmail != "" && s.AssigneeEmail == actor.Email {
			return true
		}
		if !s.Service.RequiresApproval {
			return true
		}
		return s.approvalApproved()
	case domain.RoleManager:
		// TODO: restrict to the manager's branch once branch scoping for
		// managers is specified.
		return true
	case domain.RoleUser, domain.RoleAgent:
		return s.CreatorBranch == actor.BranchID
	}
	return false
}

// EligibleClaimant reports whether the actor's role and support group
// allow claiming at all, ignoring ticket state. A refusal here is a
// permission matter, never a claim conflict.
func EligibleClaimant(s Snapshot, actor domain.Actor) bool {
	if actor.IsClaimsSupportOnly() {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	if !actor.IsFieldRole() {
		return false
	}
	if s.Service.SupportGroupID != nil {
		if actor.SupportGroupID == nil || *actor.SupportGroupID != *s.Service.SupportGroupID {
			return false
		}
	}
	return true
}

// CanClaim decides whether the actor may claim the ticket. Admins may
// claim in any status and ahead of the approval gate; only an existing
// assignment stops them. This is the optimistic form of the check; the
// claim arbitrator re-runs it against a fresh snapshot immediately
// before the conditional write.
func CanClaim(s Snapshot, actor domain.Actor) bool {
	if !EligibleClaimant(s, actor) {
		return false
	}
	if s.Ticket.Assigned() {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	if s.Ticket.Status != domain.TicketStatusOpen {
		return false
	}
	if s.Service.RequiresApproval && !s.approvalApproved() {
		return false
	}
	return true
}

// CanRelease decides whether the actor may release the ticket's claim.
// SUPER_ADMIN intentionally has no release right; only ADMIN does.
func CanRelease(s Snapshot, actor domain.Actor) bool {
	if actor.IsClaimsSupportOnly() {
		return false
	}
	if actor.Role == domain.RoleAdmin {
		return true
	}
	if actor.IsFieldRole() {
		return s.AssigneeEmail != "" && s.AssigneeEmail == actor.Email
	}
	return false
}

// CanUpdateStatus decides whether the actor may write the status field.
func CanUpdateStatus(s Snapshot, actor domain.Actor) bool {
	if actor.IsClaimsSupportOnly() {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	if actor.IsFieldRole() {
		return s.AssigneeEmail != "" && s.AssigneeEmail == actor.Email
	}
	return false
}

// CanModify implies CanUpdateStatus and additionally gates task edits.
func CanModify(s Snapshot, actor domain.Actor) bool {
	return CanUpdateStatus(s, actor)
}

// CanAddComment is intentionally permissive: read access implies comment
// access. Claims-support technicians may comment, but the comment is
// forced internal (see ForceInternalComment).
func CanAddComment(s Snapshot, actor domain.Actor) bool {
	return CanView(s, actor)
}

// ForceInternalComment reports whether comments from this actor must be
// persisted as internal regardless of the requested visibility.
func ForceInternalComment(actor domain.Actor) bool {
	return actor.IsClaimsSupportOnly()
}
