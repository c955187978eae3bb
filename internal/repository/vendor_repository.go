package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpdeskhq/helpdesk-service/internal/domain"
)

// VendorAssignmentRepository persists vendor hand-off records.
type VendorAssignmentRepository interface {
	// AssignTransactional inserts the vendor record and writes the
	// PENDING_VENDOR status in one database transaction: the status must
	// never be observed without a matching vendor assignment.
	AssignTransactional(ctx context.Context, assignment *domain.VendorAssignment) error
	GetByTicket(ctx context.Context, ticketID string) (*domain.VendorAssignment, error)
}

type vendorAssignmentRepository struct {
	pool *pgxpool.Pool
}

// NewVendorAssignmentRepository instantiates repository.
func NewVendorAssignmentRepository(pool *pgxpool.Pool) VendorAssignmentRepository {
	return &vendorAssignmentRepository{pool: pool}
}

func (r *vendorAssignmentRepository) AssignTransactional(ctx context.Context, assignment *domain.VendorAssignment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertQuery = `
        INSERT INTO vendor_assignments (ticket_id, vendor_id, vendor_ticket_number, notes, reason, assigned_by_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insertQuery,
		assignment.TicketID,
		assignment.VendorID,
		assignment.VendorTicketNumber,
		assignment.Notes,
		assignment.Reason,
		assignment.AssignedByID,
	).Scan(&assignment.ID, &assignment.CreatedAt); err != nil {
		return err
	}

	const statusQuery = `
        UPDATE tickets SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := tx.Exec(ctx, statusQuery, domain.TicketStatusPendingVendor, assignment.TicketID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

func (r *vendorAssignmentRepository) GetByTicket(ctx context.Context, ticketID string) (*domain.VendorAssignment, error) {
	const query = `
        SELECT id, ticket_id, vendor_id, vendor_ticket_number, notes, reason, assigned_by_id, created_at
        FROM vendor_assignments WHERE ticket_id=$1
        ORDER BY created_at DESC LIMIT 1`
	var assignment domain.VendorAssignment
	err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&assignment.ID,
		&assignment.TicketID,
		&assignment.VendorID,
		&assignment.VendorTicketNumber,
		&assignment.Notes,
		&assignment.Reason,
		&assignment.AssignedByID,
		&assignment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}
