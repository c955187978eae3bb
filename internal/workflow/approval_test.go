package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdeskhq/helpdesk-service/internal/domain"
)

func TestDecide(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	t.Run("approval needs no reason", func(t *testing.T) {
		record, err := Decide("t-1", "mgr-1", domain.ApprovalStatusApproved, "", now)
		require.NoError(t, err)
		assert.Equal(t, domain.ApprovalStatusApproved, record.Status)
		require.NotNil(t, record.DecidedByID)
		assert.Equal(t, "mgr-1", *record.DecidedByID)
		assert.True(t, record.Decided())
	})

	t.Run("rejection requires a reason", func(t *testing.T) {
		_, err := Decide("t-1", "mgr-1", domain.ApprovalStatusRejected, "   ", now)
		require.Error(t, err)

		record, err := Decide("t-1", "mgr-1", domain.ApprovalStatusRejected, "budget exceeded", now)
		require.NoError(t, err)
		assert.Equal(t, "budget exceeded", record.Reason)
	})

	t.Run("pending is not a decision", func(t *testing.T) {
		_, err := Decide("t-1", "mgr-1", domain.ApprovalStatusPending, "", now)
		require.Error(t, err)
	})
}

func TestStatusAfterDecision(t *testing.T) {
	assert.Equal(t, domain.TicketStatusApproved, StatusAfterDecision(domain.ApprovalStatusApproved))
	assert.Equal(t, domain.TicketStatusRejected, StatusAfterDecision(domain.ApprovalStatusRejected))
}
