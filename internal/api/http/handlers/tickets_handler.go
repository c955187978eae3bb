package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdeskhq/helpdesk-service/internal/api/dto"
	"github.com/helpdeskhq/helpdesk-service/internal/auth"
	"github.com/helpdeskhq/helpdesk-service/internal/domain"
	"github.com/helpdeskhq/helpdesk-service/internal/service"
	apperrors "github.com/helpdeskhq/helpdesk-service/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
	claims  *service.ClaimService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, claims *service.ClaimService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, claims: claims}
}

// resolve loads the ticket behind :ref. When the ticket was addressed
// by its durable id the redirect target to the canonical number-based
// URL is returned alongside.
func (h *TicketsHandler) resolve(c *fiber.Ctx) (*domain.Ticket, string, error) {
	ticket, byID, err := h.tickets.ResolveTicket(c.Context(), c.Params("ref"))
	if err != nil {
		return nil, "", err
	}
	if byID {
		canonical := strings.Replace(c.Path(), c.Params("ref"), fmt.Sprintf("%d", ticket.TicketNumber), 1)
		return ticket, canonical, nil
	}
	return ticket, "", nil
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ServiceID == "" || req.Title == "" || req.Description == "" {
		return apperrors.NewValidationError("service_id, title, description required", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.Context(), actor, service.TicketCreateInput{
		ServiceID:   req.ServiceID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tickets, err := h.tickets.ListTickets(c.Context(), actor, parseTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:ref. Id-based access redirects to the
// canonical number-based URL.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, canonical, err := h.resolve(c)
	if err != nil {
		return err
	}
	if canonical != "" {
		return c.Redirect(canonical, http.StatusMovedPermanently)
	}
	detail, err := h.tickets.GetTicket(c.Context(), actor, ticket.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(detail)})
}

// ClaimTicket POST /tickets/:ref/claim.
func (h *TicketsHandler) ClaimTicket(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, _, err := h.resolve(c)
	if err != nil {
		return err
	}
	result, err := h.claims.Claim(c.Context(), actor, ticket.ID)
	if err != nil {
		return err
	}
	if result.Conflict == service.ClaimConflictAlreadyAssigned {
		return apperrors.NewAlreadyAssigned(ticket.ID)
	}
	return c.JSON(fiber.Map{"data": ticketSummary(result.Ticket)})
}

// ReleaseTicket DELETE /tickets/:ref/claim.
func (h *TicketsHandler) ReleaseTicket(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, _, err := h.resolve(c)
	if err != nil {
		return err
	}
	result, err := h.claims.Release(c.Context(), actor, ticket.ID)
	if err != nil {
		return err
	}
	if result.Conflict == service.ClaimConflictNotAssignee {
		return apperrors.NewNotAssignee(ticket.ID)
	}
	return c.JSON(fiber.Map{"data": ticketSummary(result.Ticket)})
}

// UpdateStatus PATCH /tickets/:ref/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, _, err := h.resolve(c)
	if err != nil {
		return err
	}
	updated, err := h.tickets.UpdateStatus(c.Context(), actor, ticket.ID, req.Status, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(updated)})
}

// AssignVendor PUT /tickets/:ref/status (vendor hand-off flow).
func (h *TicketsHandler) AssignVendor(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.VendorAssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status != domain.TicketStatusPendingVendor {
		return apperrors.NewValidationError("vendor flow only accepts status PENDING_VENDOR", nil)
	}
	ticket, _, err := h.resolve(c)
	if err != nil {
		return err
	}
	updated, err := h.tickets.AssignVendor(c.Context(), actor, ticket.ID, service.VendorInput{
		VendorID:           req.VendorID,
		VendorTicketNumber: req.VendorTicketNumber,
		Notes:              req.VendorNotes,
		Reason:             req.Reason,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(updated)})
}

// ResolveAndClose POST /tickets/:ref/resolve-close.
func (h *TicketsHandler) ResolveAndClose(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		req = dto.UpdateStatusRequest{}
	}
	ticket, _, err := h.resolve(c)
	if err != nil {
		return err
	}
	updated, err := h.tickets.ResolveAndClose(c.Context(), actor, ticket.ID, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(updated)})
}

// UpdatePriority PATCH /tickets/:ref/priority.
func (h *TicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, _, err := h.resolve(c)
	if err != nil {
		return err
	}
	updated, err := h.tickets.UpdatePriority(c.Context(), actor, ticket.ID, req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(updated)})
}

// AddComment POST /tickets/:ref/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, _, err := h.resolve(c)
	if err != nil {
		return err
	}
	attachments := make([]service.AttachmentInput, 0, len(req.Attachments))
	for _, att := range req.Attachments {
		attachments = append(attachments, service.AttachmentInput{
			StorageKey: att.StorageKey,
			FileName:   att.FileName,
			MimeType:   att.MimeType,
			SizeBytes:  att.SizeBytes,
		})
	}
	comment, failures, err := h.tickets.AddComment(c.Context(), actor, ticket.ID, service.CommentInput{
		Body:        req.Body,
		IsInternal:  req.IsInternal,
		Attachments: attachments,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.CommentCreatedResponse{
		Comment:           commentResponse(comment),
		FailedAttachments: failures,
	}})
}

func parseTicketQuery(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if serviceID := c.Query("service_id"); serviceID != "" {
		filter.ServiceID = &serviceID
	}
	if assignee := c.Query("assigned_to"); assignee != "" {
		filter.AssignedTo = &assignee
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:           ticket.ID,
		TicketNumber: ticket.TicketNumber,
		ServiceID:    ticket.ServiceID,
		AssignedToID: ticket.AssignedToID,
		Title:        ticket.Title,
		Status:       ticket.Status,
		Priority:     ticket.Priority,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}

func ticketDetail(detail *service.TicketDetail) dto.TicketDetailResponse {
	ticket := detail.Ticket
	comments := make([]dto.CommentResponse, 0, len(detail.Comments))
	for i := range detail.Comments {
		comments = append(comments, commentResponse(&detail.Comments[i]))
	}
	tasks := make([]dto.TaskResponse, 0, len(detail.Tasks))
	for _, task := range detail.Tasks {
		tasks = append(tasks, dto.TaskResponse{
			ID:         task.ID,
			Label:      task.Label,
			IsRequired: task.IsRequired,
			Status:     task.Status,
			UpdatedAt:  task.UpdatedAt,
		})
	}
	history := make([]dto.TicketHistoryResponse, 0, len(detail.History))
	for _, entry := range detail.History {
		history = append(history, dto.TicketHistoryResponse{
			ID:          entry.ID,
			ChangeType:  entry.ChangeType,
			ChangedByID: entry.ChangedByID,
			OldValue:    entry.OldValue,
			NewValue:    entry.NewValue,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return dto.TicketDetailResponse{
		ID:           ticket.ID,
		TicketNumber: ticket.TicketNumber,
		ServiceID:    ticket.ServiceID,
		AssignedToID: ticket.AssignedToID,
		Title:        ticket.Title,
		Description:  ticket.Description,
		Status:       ticket.Status,
		Priority:     ticket.Priority,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
		ResolvedAt:   ticket.ResolvedAt,
		ClosedAt:     ticket.ClosedAt,
		Comments:     comments,
		Tasks:        tasks,
		History:      history,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	attachments := make([]dto.AttachmentResponse, 0, len(comment.Attachments))
	for _, att := range comment.Attachments {
		attachments = append(attachments, dto.AttachmentResponse{
			ID:        att.ID,
			FileName:  att.FileName,
			MimeType:  att.MimeType,
			SizeBytes: att.SizeBytes,
		})
	}
	return dto.CommentResponse{
		ID:          comment.ID,
		AuthorID:    comment.AuthorID,
		Body:        comment.Body,
		IsInternal:  comment.IsInternal,
		Attachments: attachments,
		CreatedAt:   comment.CreatedAt,
	}
}
