package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdeskhq/helpdesk-service/internal/domain"
)

// ApprovalRepository persists approval records. Records are append-only;
// decided records are never mutated.
type ApprovalRepository interface {
	Create(ctx context.Context, record *domain.ApprovalRecord) error
	LatestByTicket(ctx context.Context, ticketID string) (*domain.ApprovalRecord, error)
	ListByTicket(ctx context.Context, ticketID string) ([]domain.ApprovalRecord, error)
}

type approvalRepository struct {
	pool *pgxpool.Pool
}

// NewApprovalRepository instantiates repository.
func NewApprovalRepository(pool *pgxpool.Pool) ApprovalRepository {
	return &approvalRepository{pool: pool}
}

func (r *approvalRepository) Create(ctx context.Context, record *domain.ApprovalRecord) error {
	const query = `
        INSERT INTO approval_records (ticket_id, status, decided_by_id, reason)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		record.TicketID,
		record.Status,
		record.DecidedByID,
		record.Reason,
	).Scan(&record.ID, &record.CreatedAt)
}

// LatestByTicket returns the most recently created record, or nil when
// the ticket has no approval history.
func (r *approvalRepository) LatestByTicket(ctx context.Context, ticketID string) (*domain.ApprovalRecord, error) {
	const query = `
        SELECT id, ticket_id, status, decided_by_id, reason, created_at
        FROM approval_records WHERE ticket_id=$1
        ORDER BY created_at DESC LIMIT 1`
	var record domain.ApprovalRecord
	err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&record.ID,
		&record.TicketID,
		&record.Status,
		&record.DecidedByID,
		&record.Reason,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (r *approvalRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.ApprovalRecord, error) {
	const query = `
        SELECT id, ticket_id, status, decided_by_id, reason, created_at
        FROM approval_records WHERE ticket_id=$1
        ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ApprovalRecord
	for rows.Next() {
		var record domain.ApprovalRecord
		if err := rows.Scan(
			&record.ID,
			&record.TicketID,
			&record.Status,
			&record.DecidedByID,
			&record.Reason,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}
