package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpdeskhq/helpdesk-service/internal/api/dto"
	"github.com/helpdeskhq/helpdesk-service/internal/auth"
	"github.com/helpdeskhq/helpdesk-service/internal/service"
	apperrors "github.com/helpdeskhq/helpdesk-service/pkg/util"
)

const bulkMaxItems = 100

// BulkHandler manages multi-ticket operations. Each item is processed
// independently and reported per item.
type BulkHandler struct {
	claims *service.ClaimService
}

// NewBulkHandler constructs handler.
func NewBulkHandler(claims *service.ClaimService) *BulkHandler {
	return &BulkHandler{claims: claims}
}

// BulkClaim POST /tickets/bulk/claim.
func (h *BulkHandler) BulkClaim(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.BulkClaimRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.TicketIDs) == 0 {
		return apperrors.NewValidationError("ticket_ids required", nil)
	}
	if len(req.TicketIDs) > bulkMaxItems {
		return apperrors.NewValidationError("too many tickets in one request", map[string]any{
			"max": bulkMaxItems,
		})
	}
	result := h.claims.BulkClaim(c.Context(), actor, req.TicketIDs)
	return c.JSON(fiber.Map{"data": result})
}

// BulkStatus POST /tickets/bulk/status.
func (h *BulkHandler) BulkStatus(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.BulkStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.TicketIDs) == 0 || req.Status == "" {
		return apperrors.NewValidationError("ticket_ids and status required", nil)
	}
	if len(req.TicketIDs) > bulkMaxItems {
		return apperrors.NewValidationError("too many tickets in one request", map[string]any{
			"max": bulkMaxItems,
		})
	}
	result := h.claims.BulkStatus(c.Context(), actor, req.TicketIDs, req.Status)
	return c.JSON(fiber.Map{"data": result})
}
