package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/helpdeskhq/helpdesk-service/internal/domain"
	"github.com/helpdeskhq/helpdesk-service/internal/events"
	"github.com/helpdeskhq/helpdesk-service/internal/repository"
	"github.com/helpdeskhq/helpdesk-service/internal/workflow"
	apperrors "github.com/helpdeskhq/helpdesk-service/pkg/util"
)

// ApprovalService records approval decisions for tickets.
type ApprovalService struct {
	tickets    repository.TicketRepository
	approvals  repository.ApprovalRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	loader     snapshotLoader
	now        func() time.Time
}

// ApprovalDependencies bundles dependencies.
type ApprovalDependencies struct {
	TicketRepo   repository.TicketRepository
	UserRepo     repository.UserRepository
	CatalogRepo  repository.ServiceCatalogRepository
	ApprovalRepo repository.ApprovalRepository
	HistoryRepo  repository.TicketHistoryRepository
	Dispatcher   events.Dispatcher
	Now          func() time.Time
}

// NewApprovalService constructs the service.
func NewApprovalService(deps ApprovalDependencies) *ApprovalService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &ApprovalService{
		tickets:    deps.TicketRepo,
		approvals:  deps.ApprovalRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		loader: snapshotLoader{
			tickets:   deps.TicketRepo,
			users:     deps.UserRepo,
			catalog:   deps.CatalogRepo,
			approvals: deps.ApprovalRepo,
		},
		now: now,
	}
}

// canApprove is the approver predicate. Approval authority sits with
// managers and administrators.
func canApprove(actor domain.Actor) bool {
	switch actor.Role {
	case domain.RoleManager, domain.RoleAdmin, domain.RoleSuperAdmin:
		return true
	}
	return false
}

// Decide records an approval decision as a new immutable record. When
// the ticket is still awaiting approval its status follows the
// decision; once APPROVED the ticket becomes claimable and technician
// visibility unlocks.
func (s *ApprovalService) Decide(ctx context.Context, actor domain.Actor, ticketID string, decision domain.ApprovalStatus, reason string) (*domain.ApprovalRecord, error) {
	if !canApprove(actor) {
		return nil, apperrors.NewPermissionDenied("only managers and administrators may decide approvals", "")
	}

	ticket, snapshot, err := s.loader.byID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !snapshot.Service.RequiresApproval {
		return nil, apperrors.NewValidationError("ticket's service does not require approval", nil)
	}

	record, err := workflow.Decide(ticket.ID, actor.ID, decision, reason, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.approvals.Create(ctx, record); err != nil {
		return nil, apperrors.MapError(err)
	}

	if ticket.Status == domain.TicketStatusPendingApproval {
		oldStatus := ticket.Status
		workflow.ApplySideEffects(ticket, workflow.StatusAfterDecision(decision), s.now())
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return nil, apperrors.MapError(err)
		}
		if s.history != nil {
			actorID := actor.ID
			if err := s.history.Create(ctx, &domain.TicketHistory{
				TicketID:    ticket.ID,
				ChangedByID: &actorID,
				ChangeType:  domain.ChangeTypeApproval,
				OldValue:    map[string]any{"status": oldStatus},
				NewValue:    map[string]any{"status": ticket.Status, "decision": decision},
			}); err != nil {
				return nil, apperrors.MapError(err)
			}
		}
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventApprovalDecided,
			TicketID:  ticket.ID,
			ActorID:   actor.ID,
			Timestamp: s.now(),
			Payload: events.ApprovalDecidedPayload{
				ApprovalID: record.ID,
				Decision:   decision,
				Reason:     reason,
			},
		})
	}
	return record, nil
}

// History returns the full approval trail, newest first.
func (s *ApprovalService) History(ctx context.Context, actor domain.Actor, ticketID string) ([]domain.ApprovalRecord, error) {
	if _, _, err := s.loader.byID(ctx, ticketID); err != nil {
		return nil, err
	}
	return s.approvals.ListByTicket(ctx, ticketID)
}
