package review

import (
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/goal"
)

// Review is a self-assessment or manager review of one goal for one period.
// (goal_id, quarter, review_type) is unique; resubmitting overwrites.
type Review struct {
	ID                  uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	GoalID              uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_review_natural_key,priority:1" json:"goal_id"`
	Goal                goal.Goal  `gorm:"foreignKey:GoalID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	ReviewType          ReviewType `gorm:"type:varchar(20);not null;uniqueIndex:idx_review_natural_key,priority:3" json:"review_type"`
	Quarter             string     `gorm:"type:varchar(10);not null;uniqueIndex:idx_review_natural_key,priority:2" json:"quarter"`
	Rating              int        `gorm:"not null;check:rating BETWEEN 1 AND 5" json:"rating"`
	Comments            string     `gorm:"type:text" json:"comments,omitempty"`
	Strengths           string     `gorm:"type:text" json:"strengths,omitempty"`
	AreasForImprovement string     `gorm:"type:text" json:"areas_for_improvement,omitempty"`
	CreatedAt           time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
