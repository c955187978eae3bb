package domain

import "time"

// Category groups related services in the catalog.
type Category struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

// Service is a catalog entry tickets are raised against. When
// RequiresApproval is set a ticket cannot leave PENDING_APPROVAL without
// an approval record, and technicians cannot see or claim it until the
// latest approval is APPROVED.
type Service struct {
	ID               string
	CategoryID       string
	Name             string
	RequiresApproval bool
	SupportGroupID   *string
	IsActive         bool
	CreatedAt        time.Time
}
