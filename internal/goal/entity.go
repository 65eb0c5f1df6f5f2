package goal

import (
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/assignment"
	"github.com/saulo-duarte/appraisal-lambda/internal/user"
	util "github.com/saulo-duarte/appraisal-lambda/internal/utils"
)

type Goal struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OwnerID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"owner_id"`
	Owner              user.User  `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Title              string     `gorm:"type:varchar(255);not null" json:"title"`
	Description        string     `gorm:"type:text;not null" json:"description"`
	Target             string     `gorm:"type:varchar(255);not null" json:"target"`
	Quarter            Quarter    `gorm:"type:varchar(2);not null" json:"quarter"`
	StartDate          util.Date  `gorm:"type:date;not null" json:"start_date"`
	EndDate            util.Date  `gorm:"type:date;not null" json:"end_date"`
	Comments           string     `gorm:"type:text" json:"comments,omitempty"`
	ReviewerID         *uuid.UUID `gorm:"type:uuid;index" json:"reviewer_id,omitempty"`
	AssignedReviewerID *uuid.UUID `gorm:"type:uuid;index" json:"assigned_reviewer_id,omitempty"`
	Status             Status     `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	Progress           float64    `gorm:"type:numeric(5,2);not null;default:0" json:"progress"`
	ProgressUpdatedAt  *time.Time `json:"progress_updated_at,omitempty"`
	Version            int        `gorm:"not null;default:1" json:"version"`
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ReviewerFor returns who reviews g. Once submitted the reviewer pinned at
// submission holds, whatever happened to owner's links since.
func (g *Goal) ReviewerFor(owner *user.User) *uuid.UUID {
	if g.Status != StatusDraft && g.AssignedReviewerID != nil {
		return g.AssignedReviewerID
	}
	return assignment.ResolveReviewer(g.ReviewerID, owner)
}

// ProgressEntry is one immutable line of a goal's progress ledger.
type ProgressEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GoalID    uuid.UUID `gorm:"type:uuid;not null;index:idx_progress_goal_created,priority:1" json:"goal_id"`
	Goal      Goal      `gorm:"foreignKey:GoalID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID  uuid.UUID `gorm:"type:uuid;not null" json:"author_id"`
	Progress  float64   `gorm:"type:numeric(5,2);not null" json:"progress"`
	Comments  string    `gorm:"type:text" json:"comments,omitempty"`
	CreatedAt time.Time `gorm:"not null;index:idx_progress_goal_created,priority:2" json:"created_at"`
}

func (ProgressEntry) TableName() string {
	return "progress_entries"
}
