package user

import (
	"time"

	"github.com/google/uuid"
)

// User is the read-only identity record the workflow consults. ManagerID and
// AppraiserID are the reporting links used for reviewer resolution.
type User struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name        string     `gorm:"type:varchar(100);not null" json:"name"`
	Email       string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Role        Role       `gorm:"type:varchar(20);not null;default:'employee'" json:"role"`
	ManagerID   *uuid.UUID `gorm:"type:uuid;index" json:"manager_id,omitempty"`
	AppraiserID *uuid.UUID `gorm:"type:uuid;index" json:"appraiser_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Actor is the already-authenticated caller of a workflow operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) IsReviewerOrAdmin() bool {
	return a.Role == RoleReviewer || a.Role == RoleAdmin
}
