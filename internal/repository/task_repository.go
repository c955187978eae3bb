package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdeskhq/helpdesk-service/internal/domain"
)

// TaskRepository persists ticket checklist items and their templates.
type TaskRepository interface {
	CreateForTicket(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	UpdateStatus(ctx context.Context, taskID string, status domain.TaskStatus, updatedByID string) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Task, error)
	TemplateItemsByService(ctx context.Context, serviceID string) ([]domain.TaskTemplateItem, error)
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository instantiates repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) CreateForTicket(ctx context.Context, task *domain.Task) error {
	const query = `
        INSERT INTO ticket_tasks (ticket_id, template_item_id, label, is_required, status)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		task.TicketID,
		task.TemplateItemID,
		task.Label,
		task.IsRequired,
		task.Status,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	const query = `
        SELECT id, ticket_id, template_item_id, label, is_required, status, updated_by_id, created_at, updated_at
        FROM ticket_tasks WHERE id=$1`
	var task domain.Task
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&task.ID,
		&task.TicketID,
		&task.TemplateItemID,
		&task.Label,
		&task.IsRequired,
		&task.Status,
		&task.UpdatedByID,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, taskID string, status domain.TaskStatus, updatedByID string) error {
	const query = `
        UPDATE ticket_tasks SET status=$1, updated_by_id=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, status, updatedByID, taskID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Task, error) {
	const query = `
        SELECT id, ticket_id, template_item_id, label, is_required, status, updated_by_id, created_at, updated_at
        FROM ticket_tasks WHERE ticket_id=$1
        ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Task
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(
			&task.ID,
			&task.TicketID,
			&task.TemplateItemID,
			&task.Label,
			&task.IsRequired,
			&task.Status,
			&task.UpdatedByID,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}

func (r *taskRepository) TemplateItemsByService(ctx context.Context, serviceID string) ([]domain.TaskTemplateItem, error) {
	const query = `
        SELECT id, service_id, label, is_required, sort_order
        FROM task_template_items WHERE service_id=$1
        ORDER BY sort_order ASC`
	rows, err := r.pool.Query(ctx, query, serviceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TaskTemplateItem
	for rows.Next() {
		var item domain.TaskTemplateItem
		if err := rows.Scan(
			&item.ID,
			&item.ServiceID,
			&item.Label,
			&item.IsRequired,
			&item.SortOrder,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
