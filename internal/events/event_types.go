package events

import (
	"time"

	"github.com/helpdeskhq/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketClaimed         EventType = "ticket_claimed"
	EventTicketReleased        EventType = "ticket_released"
	EventTicketCommentAdded    EventType = "ticket_comment_added"
	EventApprovalDecided       EventType = "ticket_approval_decided"
	EventVendorAssigned        EventType = "ticket_vendor_assigned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketNumber int64                 `json:"ticket_number"`
	ServiceID    string                `json:"service_id"`
	Priority     domain.TicketPriority `json:"priority"`
	Status       domain.TicketStatus   `json:"status"`
	Title        string                `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketClaimedPayload payload.
type TicketClaimedPayload struct {
	AssignedToID string `json:"assigned_to_id"`
}

// TicketReleasedPayload payload.
type TicketReleasedPayload struct {
	PreviousAssigneeID string `json:"previous_assignee_id"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	IsInternal  bool   `json:"is_internal"`
	BodyPreview string `json:"body_preview"`
}

// ApprovalDecidedPayload payload.
type ApprovalDecidedPayload struct {
	ApprovalID string                `json:"approval_id"`
	Decision   domain.ApprovalStatus `json:"decision"`
	Reason     string                `json:"reason,omitempty"`
}

// VendorAssignedPayload payload.
type VendorAssignedPayload struct {
	VendorID           string `json:"vendor_id"`
	VendorTicketNumber string `json:"vendor_ticket_number"`
}
