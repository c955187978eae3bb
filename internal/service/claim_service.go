package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/helpdeskhq/helpdesk-service/internal/access"
	"github.com/helpdeskhq/helpdesk-service/internal/domain"
	"github.com/helpdeskhq/helpdesk-service/internal/events"
	"github.com/helpdeskhq/helpdesk-service/internal/repository"
	apperrors "github.com/helpdeskhq/helpdesk-service/pkg/util"
)

// ClaimConflict identifies the benign race outcomes of claim/release.
// Conflicts are ordinary results of concurrent operation, not faults,
// so they travel as values rather than errors inside the service layer.
type ClaimConflict string

const (
	ClaimConflictNone            ClaimConflict = ""
	ClaimConflictAlreadyAssigned ClaimConflict = "ALREADY_ASSIGNED"
	ClaimConflictNotAssignee     ClaimConflict = "NOT_ASSIGNEE"
)

// ClaimResult carries either the updated ticket or a conflict.
type ClaimResult struct {
	Ticket   *domain.Ticket
	Conflict ClaimConflict
}

// BulkItemResult reports the outcome for one ticket in a bulk call.
type BulkItemResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// BulkResult aggregates a bulk operation. Bulk operations are never
// all-or-nothing; partial success is expected and reported.
type BulkResult struct {
	Successful int              `json:"successful"`
	Results    []BulkItemResult `json:"results"`
}

// ClaimService arbitrates ticket claims.
type ClaimService struct {
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
	dispatcher events.Dispatcher
	ticketSvc  *TicketService
	loader     snapshotLoader
	now        func() time.Time
}

// ClaimDependencies bundles dependencies for the claim service.
type ClaimDependencies struct {
	TicketRepo    repository.TicketRepository
	UserRepo      repository.UserRepository
	CatalogRepo   repository.ServiceCatalogRepository
	ApprovalRepo  repository.ApprovalRepository
	HistoryRepo   repository.TicketHistoryRepository
	Dispatcher    events.Dispatcher
	TicketService *TicketService
	Now           func() time.Time
}

// NewClaimService constructs the service.
func NewClaimService(deps ClaimDependencies) *ClaimService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &ClaimService{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		dispatcher: deps.Dispatcher,
		ticketSvc:  deps.TicketService,
		loader: snapshotLoader{
			tickets:   deps.TicketRepo,
			users:     deps.UserRepo,
			catalog:   deps.CatalogRepo,
			approvals: deps.ApprovalRepo,
		},
		now: now,
	}
}

// Eligible runs the optimistic claim check for UI affordance. The same
// predicate runs again inside Claim against a fresh snapshot.
func (s *ClaimService) Eligible(ctx context.Context, actor domain.Actor, ticketID string) (bool, error) {
	_, snapshot, err := s.loader.byID(ctx, ticketID)
	if err != nil {
		return false, err
	}
	return access.CanClaim(snapshot, actor), nil
}

// Claim assigns the ticket to the actor. Eligibility is re-checked
// against a freshly loaded ticket immediately before the conditional
// write, then the write itself is a single compare-and-swap against the
// store; zero rows affected is the authoritative conflict signal.
func (s *ClaimService) Claim(ctx context.Context, actor domain.Actor, ticketID string) (ClaimResult, error) {
	_, snapshot, err := s.loader.byID(ctx, ticketID)
	if err != nil {
		return ClaimResult{}, err
	}
	if !access.CanClaim(snapshot, actor) {
		// The assigned-conflict answer is reserved for actors who could
		// otherwise claim; everyone else gets a permission error.
		if access.EligibleClaimant(snapshot, actor) && snapshot.Ticket.Assigned() {
			return ClaimResult{Conflict: ClaimConflictAlreadyAssigned}, nil
		}
		return ClaimResult{}, apperrors.NewPermissionDenied("you may not claim this ticket", "")
	}

	won, err := s.tickets.ClaimAssignee(ctx, ticketID, actor.ID)
	if err != nil {
		return ClaimResult{}, apperrors.MapError(err)
	}
	if !won {
		return ClaimResult{Conflict: ClaimConflictAlreadyAssigned}, nil
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return ClaimResult{}, apperrors.MapError(err)
	}

	if err := s.recordAssigneeChange(ctx, actor.ID, ticket.ID, nil, ticket.AssignedToID); err != nil {
		return ClaimResult{}, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketClaimed,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload:  events.TicketClaimedPayload{AssignedToID: actor.ID},
	})
	return ClaimResult{Ticket: ticket}, nil
}

// Release clears the actor's claim. The conditional write only matches
// when the actor currently holds the claim.
func (s *ClaimService) Release(ctx context.Context, actor domain.Actor, ticketID string) (ClaimResult, error) {
	_, snapshot, err := s.loader.byID(ctx, ticketID)
	if err != nil {
		return ClaimResult{}, err
	}
	if !access.CanRelease(snapshot, actor) {
		return ClaimResult{}, apperrors.NewPermissionDenied("you may not release this ticket", "")
	}

	// ADMIN may release any holder's claim; everyone else only their own.
	holderID := actor.ID
	if actor.Role == domain.RoleAdmin && snapshot.Ticket.AssignedToID != nil {
		holderID = *snapshot.Ticket.AssignedToID
	}

	released, err := s.tickets.ReleaseAssignee(ctx, ticketID, holderID)
	if err != nil {
		return ClaimResult{}, apperrors.MapError(err)
	}
	if !released {
		return ClaimResult{Conflict: ClaimConflictNotAssignee}, nil
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return ClaimResult{}, apperrors.MapError(err)
	}

	if err := s.recordAssigneeChange(ctx, actor.ID, ticket.ID, &holderID, nil); err != nil {
		return ClaimResult{}, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketReleased,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload:  events.TicketReleasedPayload{PreviousAssigneeID: holderID},
	})
	return ClaimResult{Ticket: ticket}, nil
}

// BulkClaim claims each ticket independently, accumulating per-item
// outcomes.
func (s *ClaimService) BulkClaim(ctx context.Context, actor domain.Actor, ticketIDs []string) BulkResult {
	result := BulkResult{Results: make([]BulkItemResult, 0, len(ticketIDs))}
	for _, id := range ticketIDs {
		outcome, err := s.Claim(ctx, actor, id)
		switch {
		case err != nil:
			result.Results = append(result.Results, BulkItemResult{ID: id, Error: errorCode(err)})
		case outcome.Conflict != ClaimConflictNone:
			result.Results = append(result.Results, BulkItemResult{ID: id, Error: string(outcome.Conflict)})
		default:
			result.Successful++
			result.Results = append(result.Results, BulkItemResult{ID: id, OK: true})
		}
	}
	return result
}

// BulkStatus applies a status to each ticket independently.
func (s *ClaimService) BulkStatus(ctx context.Context, actor domain.Actor, ticketIDs []string, status domain.TicketStatus) BulkResult {
	result := BulkResult{Results: make([]BulkItemResult, 0, len(ticketIDs))}
	for _, id := range ticketIDs {
		if _, err := s.ticketSvc.UpdateStatus(ctx, actor, id, status, ""); err != nil {
			result.Results = append(result.Results, BulkItemResult{ID: id, Error: errorCode(err)})
			continue
		}
		result.Successful++
		result.Results = append(result.Results, BulkItemResult{ID: id, OK: true})
	}
	return result
}

func errorCode(err error) string {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return apperrors.CodeUpstreamFailure
}

func (s *ClaimService) recordAssigneeChange(ctx context.Context, actorID, ticketID string, oldAssignee, newAssignee *string) error {
	if s.history == nil {
		return nil
	}
	return s.history.Create(ctx, &domain.TicketHistory{
		TicketID:    ticketID,
		ChangedByID: &actorID,
		ChangeType:  domain.ChangeTypeAssignee,
		OldValue: map[string]any{
			"assigned_to_id": oldAssignee,
		},
		NewValue: map[string]any{
			"assigned_to_id": newAssignee,
		},
	})
}

func (s *ClaimService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
