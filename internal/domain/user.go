package domain

import "time"

// User is the persisted account backing an Actor.
type User struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string
	Role             Role
	BranchID         string
	SupportGroupID   *string
	SupportGroupCode *string
	Active           bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AsActor converts the stored user into the request-scoped actor tuple.
func (u *User) AsActor() Actor {
	return Actor{
		ID:               u.ID,
		Role:             u.Role,
		Email:            u.Email,
		BranchID:         u.BranchID,
		SupportGroupID:   u.SupportGroupID,
		SupportGroupCode: u.SupportGroupCode,
	}
}
