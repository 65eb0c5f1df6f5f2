package goal

import (
	"time"

	"github.com/google/uuid"
	util "github.com/saulo-duarte/appraisal-lambda/internal/utils"
)

// GoalFieldsDTO carries the descriptive fields for both create and update;
// an update replaces all of them.
type GoalFieldsDTO struct {
	Title       string     `json:"title" validate:"notblank,max=255"`
	Description string     `json:"description" validate:"notblank"`
	Target      string     `json:"target" validate:"notblank,max=255"`
	Quarter     Quarter    `json:"quarter" validate:"required,oneof=Q1 Q2 Q3 Q4"`
	StartDate   util.Date  `json:"start_date"`
	EndDate     util.Date  `json:"end_date"`
	Comments    string     `json:"comments"`
	ReviewerID  *uuid.UUID `json:"reviewer_id"`
}

type ReviewGoalDTO struct {
	Action   ReviewAction `json:"action" validate:"required,oneof=approve reject return"`
	Feedback string       `json:"feedback"`
}

type RecordProgressDTO struct {
	Progress *float64 `json:"progress" validate:"required,min=0,max=100"`
	Comments string   `json:"comments"`
}

type GoalResponse struct {
	ID                 uuid.UUID  `json:"id"`
	OwnerID            uuid.UUID  `json:"owner_id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Target             string     `json:"target"`
	Quarter            Quarter    `json:"quarter"`
	StartDate          util.Date  `json:"start_date"`
	EndDate            util.Date  `json:"end_date"`
	Comments           string     `json:"comments,omitempty"`
	ReviewerID         *uuid.UUID `json:"reviewer_id,omitempty"`
	AssignedReviewerID *uuid.UUID `json:"assigned_reviewer_id,omitempty"`
	Status             Status     `json:"status"`
	Progress           float64    `json:"progress"`
	ProgressUpdatedAt  *time.Time `json:"progress_updated_at,omitempty"`
	Version            int        `json:"version"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type ProgressEntryResponse struct {
	ID        uuid.UUID `json:"id"`
	GoalID    uuid.UUID `json:"goal_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Progress  float64   `json:"progress"`
	Comments  string    `json:"comments,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type ProgressResult struct {
	Goal  GoalResponse          `json:"goal"`
	Entry ProgressEntryResponse `json:"entry"`
}

type SubmitFailure struct {
	GoalID  uuid.UUID `json:"goal_id"`
	Error   string    `json:"error"`
	Message string    `json:"message"`
}

// SubmitAllResult reports each draft goal independently; one goal failing
// does not undo the others.
type SubmitAllResult struct {
	Updated   int             `json:"updated"`
	Submitted []GoalResponse  `json:"submitted"`
	Failed    []SubmitFailure `json:"failed,omitempty"`
}

func toResponse(g *Goal) GoalResponse {
	return GoalResponse{
		ID:                 g.ID,
		OwnerID:            g.OwnerID,
		Title:              g.Title,
		Description:        g.Description,
		Target:             g.Target,
		Quarter:            g.Quarter,
		StartDate:          g.StartDate,
		EndDate:            g.EndDate,
		Comments:           g.Comments,
		ReviewerID:         g.ReviewerID,
		AssignedReviewerID: g.AssignedReviewerID,
		Status:             g.Status,
		Progress:           g.Progress,
		ProgressUpdatedAt:  g.ProgressUpdatedAt,
		Version:            g.Version,
		CreatedAt:          g.CreatedAt,
		UpdatedAt:          g.UpdatedAt,
	}
}

func toResponses(goals []*Goal) []GoalResponse {
	responses := make([]GoalResponse, 0, len(goals))
	for _, g := range goals {
		responses = append(responses, toResponse(g))
	}
	return responses
}

func toEntryResponse(e *ProgressEntry) ProgressEntryResponse {
	return ProgressEntryResponse{
		ID:        e.ID,
		GoalID:    e.GoalID,
		AuthorID:  e.AuthorID,
		Progress:  e.Progress,
		Comments:  e.Comments,
		CreatedAt: e.CreatedAt,
	}
}
