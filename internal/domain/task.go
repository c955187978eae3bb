package domain

import "time"

// TaskStatus enumerates checklist item states.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusSkipped    TaskStatus = "SKIPPED"
)

// TaskTemplateItem defines a checklist item attached to a service.
type TaskTemplateItem struct {
	ID         string
	ServiceID  string
	Label      string
	IsRequired bool
	SortOrder  int
}

// Task is a checklist item instantiated on a ticket from a template
// item. Required items may not be skipped.
type Task struct {
	ID             string
	TicketID       string
	TemplateItemID string
	Label          string
	IsRequired     bool
	Status         TaskStatus
	UpdatedByID    *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
