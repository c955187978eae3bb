package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/helpdeskhq/helpdesk-service/internal/api/dto"
	"github.com/helpdeskhq/helpdesk-service/internal/auth"
	"github.com/helpdeskhq/helpdesk-service/internal/domain"
	"github.com/helpdeskhq/helpdesk-service/internal/service"
	apperrors "github.com/helpdeskhq/helpdesk-service/pkg/util"
)

// ApprovalsHandler manages approval endpoints.
type ApprovalsHandler struct {
	tickets   *service.TicketService
	approvals *service.ApprovalService
}

// NewApprovalsHandler constructs handler.
func NewApprovalsHandler(tickets *service.TicketService, approvals *service.ApprovalService) *ApprovalsHandler {
	return &ApprovalsHandler{tickets: tickets, approvals: approvals}
}

// Decide POST /tickets/:ref/approvals.
func (h *ApprovalsHandler) Decide(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ApprovalDecisionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Decision != domain.ApprovalStatusApproved && req.Decision != domain.ApprovalStatusRejected {
		return apperrors.NewValidationError("decision must be APPROVED or REJECTED", nil)
	}

	ticket, _, err := h.tickets.ResolveTicket(c.Context(), c.Params("ref"))
	if err != nil {
		return err
	}
	record, err := h.approvals.Decide(c.Context(), actor, ticket.ID, req.Decision, req.Reason)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": approvalResponse(record)})
}

// History GET /tickets/:ref/approvals.
func (h *ApprovalsHandler) History(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ticket, _, err := h.tickets.ResolveTicket(c.Context(), c.Params("ref"))
	if err != nil {
		return err
	}
	records, err := h.approvals.History(c.Context(), actor, ticket.ID)
	if err != nil {
		return err
	}
	items := make([]dto.ApprovalResponse, 0, len(records))
	for i := range records {
		items = append(items, approvalResponse(&records[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func approvalResponse(record *domain.ApprovalRecord) dto.ApprovalResponse {
	return dto.ApprovalResponse{
		ID:          record.ID,
		Status:      record.Status,
		DecidedByID: record.DecidedByID,
		Reason:      record.Reason,
		CreatedAt:   record.CreatedAt,
	}
}
