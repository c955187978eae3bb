package dto

import (
	"time"

	"github.com/helpdeskhq/helpdesk-service/internal/domain"
	"github.com/helpdeskhq/helpdesk-service/internal/service"
)

// CreateTicketRequest payload for POST /tickets.
type CreateTicketRequest struct {
	ServiceID   string                `json:"service_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
}

// UpdateStatusRequest payload for PATCH /tickets/:ref/status.
type UpdateStatusRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment string              `json:"comment"`
}

// VendorAssignRequest payload for PUT /tickets/:ref/status.
type VendorAssignRequest struct {
	Status             domain.TicketStatus `json:"status"`
	VendorID           string              `json:"vendor_id"`
	VendorTicketNumber string              `json:"vendor_ticket_number"`
	VendorNotes        string              `json:"vendor_notes"`
	Reason             string              `json:"reason"`
}

// UpdatePriorityRequest payload for PATCH /tickets/:ref/priority.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// CreateCommentRequest payload for POST /tickets/:ref/comments.
type CreateCommentRequest struct {
	Body        string              `json:"body"`
	IsInternal  bool                `json:"is_internal"`
	Attachments []AttachmentRequest `json:"attachments"`
}

// AttachmentRequest describes an uploaded file reference.
type AttachmentRequest struct {
	StorageKey string `json:"storage_key"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
}

// ApprovalDecisionRequest payload for POST /tickets/:ref/approvals.
type ApprovalDecisionRequest struct {
	Decision domain.ApprovalStatus `json:"decision"`
	Reason   string                `json:"reason"`
}

// UpdateTaskRequest payload for PATCH /tasks/:id.
type UpdateTaskRequest struct {
	Status domain.TaskStatus `json:"status"`
}

// BulkClaimRequest payload for POST /tickets/bulk/claim.
type BulkClaimRequest struct {
	TicketIDs []string `json:"ticket_ids"`
}

// BulkStatusRequest payload for POST /tickets/bulk/status.
type BulkStatusRequest struct {
	TicketIDs []string            `json:"ticket_ids"`
	Status    domain.TicketStatus `json:"status"`
}

// TicketSummary is the list/summary representation.
type TicketSummary struct {
	ID           string                `json:"id"`
	TicketNumber int64                 `json:"ticket_number"`
	ServiceID    string                `json:"service_id"`
	AssignedToID *string               `json:"assigned_to_id,omitempty"`
	Title        string                `json:"title"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TicketDetailResponse is the full view of a ticket.
type TicketDetailResponse struct {
	ID           string                  `json:"id"`
	TicketNumber int64                   `json:"ticket_number"`
	ServiceID    string                  `json:"service_id"`
	AssignedToID *string                 `json:"assigned_to_id,omitempty"`
	Title        string                  `json:"title"`
	Description  string                  `json:"description"`
	Status       domain.TicketStatus     `json:"status"`
	Priority     domain.TicketPriority   `json:"priority"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
	ResolvedAt   *time.Time              `json:"resolved_at,omitempty"`
	ClosedAt     *time.Time              `json:"closed_at,omitempty"`
	Comments     []CommentResponse       `json:"comments"`
	Tasks        []TaskResponse          `json:"tasks"`
	History      []TicketHistoryResponse `json:"history"`
}

// CommentResponse is a discussion entry.
type CommentResponse struct {
	ID          string               `json:"id"`
	AuthorID    string               `json:"author_id"`
	Body        string               `json:"body"`
	IsInternal  bool                 `json:"is_internal"`
	Attachments []AttachmentResponse `json:"attachments"`
	CreatedAt   time.Time            `json:"created_at"`
}

// CommentCreatedResponse includes per-file attachment failures.
type CommentCreatedResponse struct {
	Comment           CommentResponse             `json:"comment"`
	FailedAttachments []service.AttachmentFailure `json:"failed_attachments,omitempty"`
}

// AttachmentResponse is attachment metadata.
type AttachmentResponse struct {
	ID        string `json:"id"`
	FileName  string `json:"file_name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

// TaskResponse is a checklist item.
type TaskResponse struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	IsRequired bool              `json:"is_required"`
	Status     domain.TaskStatus `json:"status"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// ApprovalResponse is an approval record.
type ApprovalResponse struct {
	ID          string                `json:"id"`
	Status      domain.ApprovalStatus `json:"status"`
	DecidedByID *string               `json:"decided_by_id,omitempty"`
	Reason      string                `json:"reason,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

// TicketHistoryResponse is an audit entry.
type TicketHistoryResponse struct {
	ID          string                  `json:"id"`
	ChangeType  domain.TicketChangeType `json:"change_type"`
	ChangedByID *string                 `json:"changed_by_id,omitempty"`
	OldValue    map[string]any          `json:"old_value"`
	NewValue    map[string]any          `json:"new_value"`
	CreatedAt   time.Time               `json:"created_at"`
}
