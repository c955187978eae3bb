package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/helpdeskhq/helpdesk-service/internal/domain"
)

func strPtr(s string) *string { return &s }

func openTicket() domain.Ticket {
	return domain.Ticket{
		ID:          "t-1",
		ServiceID:   "svc-1",
		CreatedByID: "creator-1",
		BranchID:    "branch-a",
		Status:      domain.TicketStatusOpen,
	}
}

func technician(email string) domain.Actor {
	return domain.Actor{
		ID:    "tech-1",
		Role:  domain.RoleTechnician,
		Email: email,
	}
}

func claimsSupportTech() domain.Actor {
	return domain.Actor{
		ID:               "tech-claims",
		Role:             domain.RoleTechnician,
		Email:            "claims@corp.example",
		SupportGroupCode: strPtr(domain.SupportGroupClaimsOnly),
	}
}

func TestCanView(t *testing.T) {
	base := Snapshot{
		Ticket:        openTicket(),
		Service:       domain.Service{ID: "svc-1", IsActive: true},
		CreatorEmail:  "creator@corp.example",
		CreatorBranch: "branch-a",
	}

	t.Run("admins always see", func(t *testing.T) {
		assert.True(t, CanView(base, domain.Actor{Role: domain.RoleAdmin}))
		assert.True(t, CanView(base, domain.Actor{Role: domain.RoleSuperAdmin}))
	})

	t.Run("creator sees own ticket", func(t *testing.T) {
		actor := domain.Actor{Role: domain.RoleUser, Email: "creator@corp.example", BranchID: "branch-z"}
		assert.True(t, CanView(base, actor))
	})

	t.Run("technician sees non-approval tickets", func(t *testing.T) {
		assert.True(t, CanView(base, technician("tech@corp.example")))
	})

	t.Run("technician blocked before approval", func(t *testing.T) {
		s := base
		s.Service.RequiresApproval = true
		assert.False(t, CanView(s, technician("tech@corp.example")))

		s.LatestApproval = &domain.ApprovalRecord{Status: domain.ApprovalStatusPending}
		assert.False(t, CanView(s, technician("tech@corp.example")))

		s.LatestApproval = &domain.ApprovalRecord{Status: domain.ApprovalStatusRejected}
		assert.False(t, CanView(s, technician("tech@corp.example")))

		s.LatestApproval = &domain.ApprovalRecord{Status: domain.ApprovalStatusApproved}
		assert.True(t, CanView(s, technician("tech@corp.example")))
	})

	t.Run("assigned technician sees despite approval gate", func(t *testing.T) {
		s := base
		s.Service.RequiresApproval = true
		s.Ticket.AssignedToID = strPtr("tech-1")
		s.AssigneeEmail = "tech@corp.example"
		assert.True(t, CanView(s, technician("tech@corp.example")))
	})

	t.Run("manager sees everything", func(t *testing.T) {
		s := base
		s.Service.RequiresApproval = true
		assert.True(t, CanView(s, domain.Actor{Role: domain.RoleManager, BranchID: "branch-z"}))
	})

	t.Run("requesters scoped to branch", func(t *testing.T) {
		sameBranch := domain.Actor{Role: domain.RoleUser, Email: "other@corp.example", BranchID: "branch-a"}
		otherBranch := domain.Actor{Role: domain.RoleAgent, Email: "other@corp.example", BranchID: "branch-b"}
		assert.True(t, CanView(base, sameBranch))
		assert.False(t, CanView(base, otherBranch))
	})

	t.Run("claims-support technician keeps read access", func(t *testing.T) {
		assert.True(t, CanView(base, claimsSupportTech()))
	})
}

func TestViewDenialReasons(t *testing.T) {
	s := Snapshot{
		Ticket:  openTicket(),
		Service: domain.Service{ID: "svc-1", RequiresApproval: true},
	}
	tech := technician("tech@corp.example")

	assert.Equal(t, DenialRequiresApproval, ViewDenial(s, tech))

	s.LatestApproval = &domain.ApprovalRecord{Status: domain.ApprovalStatusPending}
	assert.Equal(t, DenialApprovalPending, ViewDenial(s, tech))

	s.LatestApproval = &domain.ApprovalRecord{Status: domain.ApprovalStatusRejected}
	assert.Equal(t, DenialApprovalRejected, ViewDenial(s, tech))

	plain := Snapshot{Ticket: openTicket(), Service: domain.Service{ID: "svc-1"}}
	assert.Equal(t, DenialGeneric, ViewDenial(plain, domain.Actor{Role: domain.RoleUser, BranchID: "branch-x"}))
}

func TestCanClaim(t *testing.T) {
	base := Snapshot{
		Ticket:  openTicket(),
		Service: domain.Service{ID: "svc-1", IsActive: true},
	}

	t.Run("technician claims open unassigned ticket", func(t *testing.T) {
		assert.True(t, CanClaim(base, technician("tech@corp.example")))
	})

	t.Run("claims-support technician never claims", func(t *testing.T) {
		assert.False(t, CanClaim(base, claimsSupportTech()))
	})

	t.Run("assigned ticket not claimable", func(t *testing.T) {
		s := base
		s.Ticket.AssignedToID = strPtr("someone")
		assert.False(t, CanClaim(s, technician("tech@corp.example")))
		assert.False(t, CanClaim(s, domain.Actor{Role: domain.RoleAdmin}))
	})

	t.Run("only OPEN tickets claimable", func(t *testing.T) {
		for _, status := range []domain.TicketStatus{
			domain.TicketStatusPendingApproval,
			domain.TicketStatusInProgress,
			domain.TicketStatusResolved,
			domain.TicketStatusClosed,
		} {
			s := base
			s.Ticket.Status = status
			assert.False(t, CanClaim(s, technician("tech@corp.example")), string(status))
		}
	})

	t.Run("approval gate blocks claims until approved", func(t *testing.T) {
		s := base
		s.Service.RequiresApproval = true
		assert.False(t, CanClaim(s, technician("tech@corp.example")))

		s.LatestApproval = &domain.ApprovalRecord{Status: domain.ApprovalStatusApproved}
		assert.True(t, CanClaim(s, technician("tech@corp.example")))
	})

	t.Run("admin claims regardless of status or approval", func(t *testing.T) {
		s := base
		s.Ticket.Status = domain.TicketStatusPendingApproval
		s.Service.RequiresApproval = true

		// No approval record exists; only an existing assignment may
		// block an admin claim.
		assert.True(t, CanClaim(s, domain.Actor{Role: domain.RoleAdmin}))
		assert.False(t, CanClaim(s, technician("tech@corp.example")))

		s.Ticket.AssignedToID = strPtr("someone")
		assert.False(t, CanClaim(s, domain.Actor{Role: domain.RoleAdmin}))
	})

	t.Run("support group must match when set", func(t *testing.T) {
		s := base
		s.Service.SupportGroupID = strPtr("sg-net")

		wrong := technician("tech@corp.example")
		wrong.SupportGroupID = strPtr("sg-db")
		assert.False(t, CanClaim(s, wrong))

		none := technician("tech@corp.example")
		assert.False(t, CanClaim(s, none))

		right := technician("tech@corp.example")
		right.SupportGroupID = strPtr("sg-net")
		assert.True(t, CanClaim(s, right))

		// Admins bypass the group restriction.
		assert.True(t, CanClaim(s, domain.Actor{Role: domain.RoleAdmin}))
	})

	t.Run("requesters and managers cannot claim", func(t *testing.T) {
		assert.False(t, CanClaim(base, domain.Actor{Role: domain.RoleUser}))
		assert.False(t, CanClaim(base, domain.Actor{Role: domain.RoleAgent}))
		assert.False(t, CanClaim(base, domain.Actor{Role: domain.RoleManager}))
	})
}

func TestEligibleClaimant(t *testing.T) {
	base := Snapshot{
		Ticket:  openTicket(),
		Service: domain.Service{ID: "svc-1", IsActive: true},
	}

	// Eligibility ignores ticket state entirely.
	assigned := base
	assigned.Ticket.AssignedToID = strPtr("someone")
	assert.True(t, EligibleClaimant(assigned, technician("tech@corp.example")))
	assert.True(t, EligibleClaimant(assigned, domain.Actor{Role: domain.RoleAdmin}))

	assert.False(t, EligibleClaimant(base, domain.Actor{Role: domain.RoleUser}))
	assert.False(t, EligibleClaimant(base, domain.Actor{Role: domain.RoleManager}))
	assert.False(t, EligibleClaimant(base, claimsSupportTech()))

	grouped := base
	grouped.Service.SupportGroupID = strPtr("sg-net")
	mismatch := technician("tech@corp.example")
	mismatch.SupportGroupID = strPtr("sg-db")
	assert.False(t, EligibleClaimant(grouped, mismatch))
	assert.True(t, EligibleClaimant(grouped, domain.Actor{Role: domain.RoleAdmin}))
}

func TestCanRelease(t *testing.T) {
	assigned := Snapshot{
		Ticket:        openTicket(),
		Service:       domain.Service{ID: "svc-1"},
		AssigneeEmail: "holder@corp.example",
	}
	assigned.Ticket.AssignedToID = strPtr("holder-1")

	t.Run("holder releases own claim", func(t *testing.T) {
		assert.True(t, CanRelease(assigned, technician("holder@corp.example")))
	})

	t.Run("other technician cannot release", func(t *testing.T) {
		assert.False(t, CanRelease(assigned, technician("other@corp.example")))
	})

	t.Run("admin releases anyone", func(t *testing.T) {
		assert.True(t, CanRelease(assigned, domain.Actor{Role: domain.RoleAdmin}))
	})

	t.Run("super admin has no release right", func(t *testing.T) {
		assert.False(t, CanRelease(assigned, domain.Actor{Role: domain.RoleSuperAdmin}))
	})

	t.Run("claims-support cannot release", func(t *testing.T) {
		s := assigned
		s.AssigneeEmail = "claims@corp.example"
		assert.False(t, CanRelease(s, claimsSupportTech()))
	})
}

func TestCanUpdateStatus(t *testing.T) {
	s := Snapshot{
		Ticket:        openTicket(),
		Service:       domain.Service{ID: "svc-1"},
		AssigneeEmail: "holder@corp.example",
	}

	assert.True(t, CanUpdateStatus(s, domain.Actor{Role: domain.RoleAdmin}))
	assert.True(t, CanUpdateStatus(s, domain.Actor{Role: domain.RoleSuperAdmin}))
	assert.True(t, CanUpdateStatus(s, technician("holder@corp.example")))
	assert.False(t, CanUpdateStatus(s, technician("other@corp.example")))
	assert.False(t, CanUpdateStatus(s, domain.Actor{Role: domain.RoleUser, Email: "holder@corp.example"}))
	assert.False(t, CanUpdateStatus(s, claimsSupportTech()))
}

func TestCommentRules(t *testing.T) {
	s := Snapshot{
		Ticket:        openTicket(),
		Service:       domain.Service{ID: "svc-1"},
		CreatorEmail:  "creator@corp.example",
		CreatorBranch: "branch-a",
	}

	// Read access implies comment access.
	assert.True(t, CanAddComment(s, technician("tech@corp.example")))
	assert.True(t, CanAddComment(s, claimsSupportTech()))
	assert.False(t, CanAddComment(s, domain.Actor{Role: domain.RoleUser, BranchID: "branch-b"}))

	assert.True(t, ForceInternalComment(claimsSupportTech()))
	assert.False(t, ForceInternalComment(technician("tech@corp.example")))
}
