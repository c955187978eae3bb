package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/helpdeskhq/helpdesk-service/internal/access"
	"github.com/helpdeskhq/helpdesk-service/internal/domain"
	"github.com/helpdeskhq/helpdesk-service/internal/repository"
	apperrors "github.com/helpdeskhq/helpdesk-service/pkg/util"
)

// snapshotLoader assembles the access.Snapshot an eligibility check
// needs: ticket, catalog service, creator/assignee identity and the
// latest approval record.
type snapshotLoader struct {
	tickets   repository.TicketRepository
	users     repository.UserRepository
	catalog   repository.ServiceCatalogRepository
	approvals repository.ApprovalRepository
}

func (l *snapshotLoader) byID(ctx context.Context, ticketID string) (*domain.Ticket, access.Snapshot, error) {
	ticket, err := l.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, access.Snapshot{}, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, access.Snapshot{}, apperrors.MapError(err)
	}
	snapshot, err := l.forTicket(ctx, ticket)
	return ticket, snapshot, err
}

func (l *snapshotLoader) forTicket(ctx context.Context, ticket *domain.Ticket) (access.Snapshot, error) {
	svc, err := l.catalog.GetService(ctx, ticket.ServiceID)
	if err != nil {
		return access.Snapshot{}, apperrors.MapError(err)
	}

	creator, err := l.users.GetByID(ctx, ticket.CreatedByID)
	if err != nil {
		return access.Snapshot{}, apperrors.MapError(err)
	}

	snapshot := access.Snapshot{
		Ticket:        *ticket,
		Service:       *svc,
		CreatorEmail:  creator.Email,
		CreatorBranch: creator.BranchID,
	}

	if ticket.AssignedToID != nil {
		assignee, err := l.users.GetByID(ctx, *ticket.AssignedToID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return access.Snapshot{}, apperrors.MapError(err)
		}
		if assignee != nil {
			snapshot.AssigneeEmail = assignee.Email
		}
	}

	if svc.RequiresApproval {
		latest, err := l.approvals.LatestByTicket(ctx, ticket.ID)
		if err != nil {
			return access.Snapshot{}, apperrors.MapError(err)
		}
		snapshot.LatestApproval = latest
	}

	return snapshot, nil
}
