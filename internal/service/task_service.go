package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpdeskhq/helpdesk-service/internal/access"
	"github.com/helpdeskhq/helpdesk-service/internal/domain"
	"github.com/helpdeskhq/helpdesk-service/internal/repository"
	apperrors "github.com/helpdeskhq/helpdesk-service/pkg/util"
)

// TaskService manages ticket checklist items.
type TaskService struct {
	tasks  repository.TaskRepository
	loader snapshotLoader
	now    func() time.Time
}

// TaskDependencies bundles dependencies.
type TaskDependencies struct {
	TaskRepo     repository.TaskRepository
	TicketRepo   repository.TicketRepository
	UserRepo     repository.UserRepository
	CatalogRepo  repository.ServiceCatalogRepository
	ApprovalRepo repository.ApprovalRepository
	Now          func() time.Time
}

// NewTaskService constructs the service.
func NewTaskService(deps TaskDependencies) *TaskService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TaskService{
		tasks: deps.TaskRepo,
		loader: snapshotLoader{
			tickets:   deps.TicketRepo,
			users:     deps.UserRepo,
			catalog:   deps.CatalogRepo,
			approvals: deps.ApprovalRepo,
		},
		now: now,
	}
}

// UpdateTaskStatus moves a checklist item. Task edits are gated by the
// modify predicate; required items may not be skipped.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, actor domain.Actor, taskID string, status domain.TaskStatus) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("task", map[string]any{"task_id": taskID})
		}
		return nil, apperrors.MapError(err)
	}

	_, snapshot, err := s.loader.byID(ctx, task.TicketID)
	if err != nil {
		return nil, err
	}
	if !access.CanModify(snapshot, actor) {
		return nil, apperrors.NewPermissionDenied("you may not modify this ticket's tasks", "")
	}

	switch status {
	case domain.TaskStatusPending, domain.TaskStatusInProgress, domain.TaskStatusCompleted:
	case domain.TaskStatusSkipped:
		if task.IsRequired {
			return nil, apperrors.NewValidationError("required tasks may not be skipped", map[string]any{
				"task_id": taskID,
			})
		}
	default:
		return nil, apperrors.NewValidationError("unknown task status", map[string]any{
			"status": string(status),
		})
	}

	if err := s.tasks.UpdateStatus(ctx, taskID, status, actor.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	task.Status = status
	actorID := actor.ID
	task.UpdatedByID = &actorID
	task.UpdatedAt = s.now()
	return task, nil
}
