package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdeskhq/helpdesk-service/internal/domain"
	apperrors "github.com/helpdeskhq/helpdesk-service/pkg/util"
)

func TestValidateTransition(t *testing.T) {
	t.Run("unknown target status rejected", func(t *testing.T) {
		err := ValidateTransition(domain.TicketStatusOpen, domain.TicketStatus("ARCHIVED"), TransitionInput{})
		require.Error(t, err)
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, apperrors.CodeValidationFailed, domainErr.Code)
	})

	t.Run("any known status is a legal target", func(t *testing.T) {
		for _, next := range domain.AllTicketStatuses {
			if next == domain.TicketStatusPendingVendor {
				continue
			}
			assert.NoError(t, ValidateTransition(domain.TicketStatusClosed, next, TransitionInput{}), string(next))
		}
	})

	t.Run("vendor hand-off requires vendor identifiers", func(t *testing.T) {
		err := ValidateTransition(domain.TicketStatusInProgress, domain.TicketStatusPendingVendor, TransitionInput{})
		require.Error(t, err)

		err = ValidateTransition(domain.TicketStatusInProgress, domain.TicketStatusPendingVendor, TransitionInput{
			VendorID: "vendor-1",
		})
		require.Error(t, err)

		err = ValidateTransition(domain.TicketStatusInProgress, domain.TicketStatusPendingVendor, TransitionInput{
			VendorID:           "vendor-1",
			VendorTicketNumber: "EXT-42",
		})
		assert.NoError(t, err)
	})
}

func TestReopenable(t *testing.T) {
	for _, status := range []domain.TicketStatus{
		domain.TicketStatusClosed,
		domain.TicketStatusCancelled,
		domain.TicketStatusResolved,
		domain.TicketStatusRejected,
		domain.TicketStatusPendingApproval,
		domain.TicketStatusApproved,
		domain.TicketStatusPending,
	} {
		assert.True(t, Reopenable(status), string(status))
	}
	assert.False(t, Reopenable(domain.TicketStatusInProgress))
}

func TestValidateApprovalExit(t *testing.T) {
	t.Run("approval-gated ticket may not leave without a record", func(t *testing.T) {
		err := ValidateApprovalExit(domain.TicketStatusPendingApproval, domain.TicketStatusOpen, true, nil)
		require.Error(t, err)
	})

	t.Run("record present allows exit", func(t *testing.T) {
		latest := &domain.ApprovalRecord{Status: domain.ApprovalStatusApproved}
		assert.NoError(t, ValidateApprovalExit(domain.TicketStatusPendingApproval, domain.TicketStatusOpen, true, latest))
	})

	t.Run("gate only applies to approval-required services", func(t *testing.T) {
		assert.NoError(t, ValidateApprovalExit(domain.TicketStatusPendingApproval, domain.TicketStatusOpen, false, nil))
	})

	t.Run("gate only applies when leaving PENDING_APPROVAL", func(t *testing.T) {
		assert.NoError(t, ValidateApprovalExit(domain.TicketStatusOpen, domain.TicketStatusInProgress, true, nil))
	})
}

func TestApplySideEffects(t *testing.T) {
	t.Run("resolving stamps resolved_at", func(t *testing.T) {
		ticket := &domain.Ticket{Status: domain.TicketStatusInProgress}
		now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

		ApplySideEffects(ticket, domain.TicketStatusResolved, now)

		assert.Equal(t, domain.TicketStatusResolved, ticket.Status)
		require.NotNil(t, ticket.ResolvedAt)
		assert.Equal(t, now, *ticket.ResolvedAt)
		assert.Nil(t, ticket.ClosedAt)
		assert.Equal(t, now, ticket.UpdatedAt)
	})

	t.Run("re-resolving overwrites the earlier timestamp", func(t *testing.T) {
		first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		second := first.Add(48 * time.Hour)

		ticket := &domain.Ticket{Status: domain.TicketStatusInProgress}
		ApplySideEffects(ticket, domain.TicketStatusResolved, first)
		ApplySideEffects(ticket, domain.TicketStatusOpen, first.Add(time.Hour))
		ApplySideEffects(ticket, domain.TicketStatusResolved, second)

		require.NotNil(t, ticket.ResolvedAt)
		assert.Equal(t, second, *ticket.ResolvedAt)
	})

	t.Run("closing stamps closed_at", func(t *testing.T) {
		now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
		ticket := &domain.Ticket{Status: domain.TicketStatusResolved}

		ApplySideEffects(ticket, domain.TicketStatusClosed, now)

		require.NotNil(t, ticket.ClosedAt)
		assert.Equal(t, now, *ticket.ClosedAt)
	})
}
