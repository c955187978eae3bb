package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helpdeskhq/helpdesk-service/internal/access"
	"github.com/helpdeskhq/helpdesk-service/internal/domain"
	"github.com/helpdeskhq/helpdesk-service/internal/events"
	"github.com/helpdeskhq/helpdesk-service/internal/repository"
	"github.com/helpdeskhq/helpdesk-service/internal/workflow"
	apperrors "github.com/helpdeskhq/helpdesk-service/pkg/util"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	catalog     repository.ServiceCatalogRepository
	users       repository.UserRepository
	approvals   repository.ApprovalRepository
	tasks       repository.TaskRepository
	vendors     repository.VendorAssignmentRepository
	history     repository.TicketHistoryRepository
	dispatcher  events.Dispatcher
	loader      snapshotLoader
	now         func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	CatalogRepo    repository.ServiceCatalogRepository
	UserRepo       repository.UserRepository
	ApprovalRepo   repository.ApprovalRepository
	TaskRepo       repository.TaskRepository
	VendorRepo     repository.VendorAssignmentRepository
	HistoryRepo    repository.TicketHistoryRepository
	Dispatcher     events.Dispatcher
	Now            func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	ServiceID   string
	Title       string
	Description string
	Priority    domain.TicketPriority
}

// TicketListFilter describes listing filters.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	ServiceID   *string
	AssignedTo  *string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// CommentInput describes a new discussion entry.
type CommentInput struct {
	Body        string
	IsInternal  bool
	Attachments []AttachmentInput
}

// AttachmentInput defines attachment metadata.
type AttachmentInput struct {
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
}

// AttachmentFailure reports a single file that could not be stored.
// Attachment failures do not abort the comment: the comment proceeds
// with whichever attachments succeeded.
type AttachmentFailure struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

// VendorInput carries the vendor hand-off data.
type VendorInput struct {
	VendorID           string
	VendorTicketNumber string
	Notes              string
	Reason             string
}

// TicketDetail is the composite read model for a ticket view.
type TicketDetail struct {
	Ticket   *domain.Ticket
	Comments []domain.Comment
	Tasks    []domain.Task
	History  []domain.TicketHistory
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		catalog:     deps.CatalogRepo,
		users:       deps.UserRepo,
		approvals:   deps.ApprovalRepo,
		tasks:       deps.TaskRepo,
		vendors:     deps.VendorRepo,
		history:     deps.HistoryRepo,
		dispatcher:  deps.Dispatcher,
		loader: snapshotLoader{
			tickets:   deps.TicketRepo,
			users:     deps.UserRepo,
			catalog:   deps.CatalogRepo,
			approvals: deps.ApprovalRepo,
		},
		now: now,
	}
}

// ResolveTicket loads a ticket by durable id or by its human-facing
// number. The second return value reports whether the reference was the
// durable id, so the HTTP layer can redirect to the canonical
// number-based URL.
func (s *TicketService) ResolveTicket(ctx context.Context, ref string) (*domain.Ticket, bool, error) {
	if number, err := strconv.ParseInt(ref, 10, 64); err == nil {
		ticket, err := s.tickets.GetByNumber(ctx, number)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, false, apperrors.NewNotFound("ticket", map[string]any{"ticket_number": number})
			}
			return nil, false, apperrors.MapError(err)
		}
		return ticket, false, nil
	}
	ticket, err := s.tickets.GetByID(ctx, ref)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ref})
		}
		return nil, false, apperrors.MapError(err)
	}
	return ticket, true, nil
}

// CreateTicket opens a ticket for the actor. Tickets against a service
// that requires approval start in PENDING_APPROVAL with an initial
// PENDING approval record; everything else starts OPEN. Checklist tasks
// are instantiated from the service's template.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	svc, err := s.catalog.GetService(ctx, input.ServiceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", map[string]any{"service_id": input.ServiceID})
		}
		return nil, apperrors.MapError(err)
	}
	if !svc.IsActive {
		return nil, apperrors.NewValidationError("service is not active", nil)
	}

	status := domain.TicketStatusOpen
	if svc.RequiresApproval {
		status = domain.TicketStatusPendingApproval
	}

	ticket := &domain.Ticket{
		ServiceID:   svc.ID,
		CreatedByID: actor.ID,
		BranchID:    actor.BranchID,
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
		Status:      status,
		Priority:    input.Priority,
	}
	if ticket.Priority == "" {
		ticket.Priority = domain.TicketPriorityMedium
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if svc.RequiresApproval {
		record := &domain.ApprovalRecord{
			TicketID: ticket.ID,
			Status:   domain.ApprovalStatusPending,
		}
		if err := s.approvals.Create(ctx, record); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	items, err := s.tasks.TemplateItemsByService(ctx, svc.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, item := range items {
		task := &domain.Task{
			TicketID:       ticket.ID,
			TemplateItemID: item.ID,
			Label:          item.Label,
			IsRequired:     item.IsRequired,
			Status:         domain.TaskStatusPending,
		}
		if err := s.tasks.CreateForTicket(ctx, task); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			ServiceID:    ticket.ServiceID,
			Priority:     ticket.Priority,
			Status:       ticket.Status,
			Title:        ticket.Title,
		},
	})
	return ticket, nil
}

// GetTicket returns the ticket detail after the view gate. A denial
// carries the approval sub-reason so callers know whether to wait,
// escalate, or give up.
func (s *TicketService) GetTicket(ctx context.Context, actor domain.Actor, ticketID string) (*TicketDetail, error) {
	ticket, snapshot, err := s.loader.byID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !access.CanView(snapshot, actor) {
		denial := access.ViewDenial(snapshot, actor)
		return nil, apperrors.NewPermissionDenied(denial.Message(), string(denial))
	}

	includeInternal := actor.Role != domain.RoleUser && actor.Role != domain.RoleAgent
	comments, err := s.comments.ListByTicket(ctx, ticket.ID, includeInternal)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range comments {
		attachments, err := s.attachments.ListByComment(ctx, comments[i].ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		comments[i].Attachments = attachments
	}

	tasks, err := s.tasks.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	history, err := s.history.ListByTicket(ctx, ticket.ID, 100, 0)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	return &TicketDetail{
		Ticket:   ticket,
		Comments: comments,
		Tasks:    tasks,
		History:  history,
	}, nil
}

// ListTickets returns tickets visible to the actor. Requesters and
// agents are scoped to their branch; field roles and managers see the
// shared queue.
func (s *TicketService) ListTickets(ctx context.Context, actor domain.Actor, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		ServiceID:    filter.ServiceID,
		AssignedToID: filter.AssignedTo,
		Statuses:     filter.Statuses,
		Priorities:   filter.Priorities,
		SearchTerm:   filter.SearchTerm,
		CreatedFrom:  filter.CreatedFrom,
		CreatedTo:    filter.CreatedTo,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	}
	switch actor.Role {
	case domain.RoleUser, domain.RoleAgent:
		branch := actor.BranchID
		repoFilter.BranchID = &branch
	}
	return s.tickets.ListWithFilter(ctx, repoFilter)
}

// UpdateStatus applies a status transition. The optional comment is
// written before the status so a concurrent reader never observes the
// new status without the comment that justified it.
func (s *TicketService) UpdateStatus(ctx context.Context, actor domain.Actor, ticketID string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	ticket, snapshot, err := s.loader.byID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !access.CanUpdateStatus(snapshot, actor) {
		return nil, apperrors.NewPermissionDenied("you may not update this ticket's status", "")
	}
	if err := workflow.ValidateTransition(ticket.Status, newStatus, workflow.TransitionInput{Comment: comment}); err != nil {
		return nil, err
	}
	if err := workflow.ValidateApprovalExit(ticket.Status, newStatus, snapshot.Service.RequiresApproval, snapshot.LatestApproval); err != nil {
		return nil, err
	}

	if strings.TrimSpace(comment) != "" {
		entry := &domain.Comment{
			TicketID:   ticket.ID,
			AuthorID:   actor.ID,
			Body:       strings.TrimSpace(comment),
			IsInternal: access.ForceInternalComment(actor),
		}
		if err := s.comments.Create(ctx, entry); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	oldStatus := ticket.Status
	workflow.ApplySideEffects(ticket, newStatus, s.now())
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if err := s.recordStatusChange(ctx, actor.ID, ticket.ID, oldStatus, newStatus, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	return ticket, nil
}

// ResolveAndClose is the compound transition: RESOLVED then CLOSED as
// two sequential writes. A failure after the first write leaves the
// ticket durably RESOLVED; that is accepted, reopening recovers.
func (s *TicketService) ResolveAndClose(ctx context.Context, actor domain.Actor, ticketID, comment string) (*domain.Ticket, error) {
	if _, err := s.UpdateStatus(ctx, actor, ticketID, domain.TicketStatusResolved, comment); err != nil {
		return nil, err
	}
	return s.UpdateStatus(ctx, actor, ticketID, domain.TicketStatusClosed, "")
}

// AssignVendor hands the ticket to an external vendor. The vendor
// record and the PENDING_VENDOR status are written in one transaction.
func (s *TicketService) AssignVendor(ctx context.Context, actor domain.Actor, ticketID string, input VendorInput) (*domain.Ticket, error) {
	ticket, snapshot, err := s.loader.byID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !access.CanUpdateStatus(snapshot, actor) {
		return nil, apperrors.NewPermissionDenied("you may not update this ticket's status", "")
	}
	if err := workflow.ValidateTransition(ticket.Status, domain.TicketStatusPendingVendor, workflow.TransitionInput{
		VendorID:           input.VendorID,
		VendorTicketNumber: input.VendorTicketNumber,
	}); err != nil {
		return nil, err
	}

	assignment := &domain.VendorAssignment{
		TicketID:           ticket.ID,
		VendorID:           input.VendorID,
		VendorTicketNumber: input.VendorTicketNumber,
		Notes:              input.Notes,
		Reason:             input.Reason,
		AssignedByID:       actor.ID,
	}
	if err := s.vendors.AssignTransactional(ctx, assignment); err != nil {
		return nil, apperrors.MapError(err)
	}

	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusPendingVendor
	ticket.UpdatedAt = s.now()

	if err := s.recordStatusChange(ctx, actor.ID, ticket.ID, oldStatus, ticket.Status, input.Reason); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventVendorAssigned,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.VendorAssignedPayload{
			VendorID:           input.VendorID,
			VendorTicketNumber: input.VendorTicketNumber,
		},
	})
	return ticket, nil
}

// UpdatePriority changes ticket priority. Last writer wins; concurrent
// updates are not arbitrated.
func (s *TicketService) UpdatePriority(ctx context.Context, actor domain.Actor, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	ticket, snapshot, err := s.loader.byID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !access.CanModify(snapshot, actor) {
		return nil, apperrors.NewPermissionDenied("you may not modify this ticket", "")
	}
	oldPriority := ticket.Priority
	ticket.Priority = newPriority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketPriorityChanged,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketPriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: newPriority,
		},
	})
	return ticket, nil
}

// AddComment appends a discussion entry. Claims-support actors get
// their comments forced internal regardless of the requested
// visibility. Attachment failures are reported per file and do not
// abort the comment.
func (s *TicketService) AddComment(ctx context.Context, actor domain.Actor, ticketID string, input CommentInput) (*domain.Comment, []AttachmentFailure, error) {
	ticket, snapshot, err := s.loader.byID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if !access.CanAddComment(snapshot, actor) {
		denial := access.ViewDenial(snapshot, actor)
		return nil, nil, apperrors.NewPermissionDenied(denial.Message(), string(denial))
	}
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, nil, apperrors.NewValidationError("comment body required", nil)
	}

	isInternal := input.IsInternal
	if access.ForceInternalComment(actor) {
		isInternal = true
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		AuthorID:   actor.ID,
		Body:       body,
		IsInternal: isInternal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	var failures []AttachmentFailure
	for _, att := range input.Attachments {
		record := &domain.Attachment{
			CommentID:  comment.ID,
			StorageKey: att.StorageKey,
			FileName:   att.FileName,
			MimeType:   att.MimeType,
			SizeBytes:  att.SizeBytes,
		}
		if err := s.attachments.Create(ctx, record); err != nil {
			failures = append(failures, AttachmentFailure{
				FileName: att.FileName,
				Reason:   apperrors.ToDomainError(err).Code,
			})
			continue
		}
		comment.Attachments = append(comment.Attachments, *record)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketCommentAddedPayload{
			CommentID:   comment.ID,
			IsInternal:  comment.IsInternal,
			BodyPreview: stringPreview(comment.Body, 120),
		},
	})
	return comment, failures, nil
}

func (s *TicketService) recordStatusChange(ctx context.Context, actorID, ticketID string, oldStatus, newStatus domain.TicketStatus, comment string) error {
	if s.history == nil {
		return nil
	}
	return s.history.Create(ctx, &domain.TicketHistory{
		TicketID:    ticketID,
		ChangedByID: &actorID,
		ChangeType:  domain.ChangeTypeStatus,
		OldValue: map[string]any{
			"status": oldStatus,
		},
		NewValue: map[string]any{
			"status":  newStatus,
			"comment": comment,
		},
	})
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
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

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
