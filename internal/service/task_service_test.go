package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdeskhq/helpdesk-service/internal/domain"
	apperrors "github.com/helpdeskhq/helpdesk-service/pkg/util"
)

func setupTaskEnv(t *testing.T) (*testEnv, *domain.Task) {
	t.Helper()
	env := newTestEnv(claimFixtureUsers()...)
	env.addService(domain.Service{ID: "svc-basic", IsActive: true})
	ticket := env.addTicket(domain.Ticket{
		ServiceID:   "svc-basic",
		CreatedByID: "creator",
		Status:      domain.TicketStatusInProgress,
	})

	task := &domain.Task{
		TicketID:   ticket.ID,
		Label:      "backup user data",
		IsRequired: true,
		Status:     domain.TaskStatusPending,
	}
	require.NoError(t, env.tasks.CreateForTicket(context.Background(), task))
	return env, task
}

func TestUpdateTaskStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("admin completes a task", func(t *testing.T) {
		env, task := setupTaskEnv(t)
		updated, err := env.taskSvc.UpdateTaskStatus(ctx, adminActor(), task.ID, domain.TaskStatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusCompleted, updated.Status)
		require.NotNil(t, updated.UpdatedByID)
		assert.Equal(t, "admin-1", *updated.UpdatedByID)
	})

	t.Run("required task may not be skipped", func(t *testing.T) {
		env, task := setupTaskEnv(t)
		_, err := env.taskSvc.UpdateTaskStatus(ctx, adminActor(), task.ID, domain.TaskStatusSkipped)
		require.Error(t, err)
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, apperrors.CodeValidationFailed, domainErr.Code)
	})

	t.Run("optional task skippable", func(t *testing.T) {
		env, task := setupTaskEnv(t)
		optional := &domain.Task{
			TicketID: task.TicketID,
			Label:    "notify neighbor desk",
			Status:   domain.TaskStatusPending,
		}
		require.NoError(t, env.tasks.CreateForTicket(ctx, optional))

		updated, err := env.taskSvc.UpdateTaskStatus(ctx, adminActor(), optional.ID, domain.TaskStatusSkipped)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusSkipped, updated.Status)
	})

	t.Run("unassigned technician denied", func(t *testing.T) {
		env, task := setupTaskEnv(t)
		_, err := env.taskSvc.UpdateTaskStatus(ctx, techActor("tech-1", "tech1@corp.example"), task.ID, domain.TaskStatusCompleted)
		require.Error(t, err)
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, apperrors.CodePermissionDenied, domainErr.Code)
	})

	t.Run("unknown task", func(t *testing.T) {
		env, _ := setupTaskEnv(t)
		_, err := env.taskSvc.UpdateTaskStatus(ctx, adminActor(), "missing", domain.TaskStatusCompleted)
		require.Error(t, err)
		var domainErr *apperrors.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, apperrors.CodeNotFound, domainErr.Code)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		env, task := setupTaskEnv(t)
		_, err := env.taskSvc.UpdateTaskStatus(ctx, adminActor(), task.ID, domain.TaskStatus("DEFERRED"))
		require.Error(t, err)
	})
}
