package review

import (
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/goal"
)

// SubmitReviewDTO is the body for both review types; the type comes from the
// route.
type SubmitReviewDTO struct {
	Quarter             string `json:"quarter" validate:"required,period"`
	Rating              int    `json:"rating" validate:"min=1,max=5"`
	Comments            string `json:"comments"`
	Strengths           string `json:"strengths"`
	AreasForImprovement string `json:"areas_for_improvement"`
}

type ReviewFilter struct {
	GoalID     *uuid.UUID
	ReviewType ReviewType
	Quarter    string
}

type ReviewResponse struct {
	ID                  uuid.UUID  `json:"id"`
	GoalID              uuid.UUID  `json:"goal_id"`
	AuthorID            uuid.UUID  `json:"author_id"`
	ReviewType          ReviewType `json:"review_type"`
	Quarter             string     `json:"quarter"`
	Rating              int        `json:"rating"`
	Comments            string     `json:"comments,omitempty"`
	Strengths           string     `json:"strengths,omitempty"`
	AreasForImprovement string     `json:"areas_for_improvement,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

const NotSubmitted = "not submitted"

// Comparison pairs the two reviews of one goal for one period. A missing side
// is nil and its label reads "not submitted".
type Comparison struct {
	GoalID              uuid.UUID       `json:"goal_id"`
	GoalTitle           string          `json:"goal_title"`
	GoalQuarter         goal.Quarter    `json:"goal_quarter"`
	Quarter             string          `json:"quarter"`
	SelfAssessment      *ReviewResponse `json:"self_assessment"`
	ManagerReview       *ReviewResponse `json:"manager_review"`
	SelfAssessmentLabel string          `json:"self_assessment_label,omitempty"`
	ManagerReviewLabel  string          `json:"manager_review_label,omitempty"`
	RatingDifference    *int            `json:"rating_difference"`
}

type Summary struct {
	TotalReviews  int                `json:"total_reviews"`
	AverageRating float64            `json:"average_rating"`
	ReviewsByType map[ReviewType]int `json:"reviews_by_type"`
	RecentReviews []ReviewResponse   `json:"recent_reviews"`
}

func toResponse(r *Review) ReviewResponse {
	return ReviewResponse{
		ID:                  r.ID,
		GoalID:              r.GoalID,
		AuthorID:            r.AuthorID,
		ReviewType:          r.ReviewType,
		Quarter:             r.Quarter,
		Rating:              r.Rating,
		Comments:            r.Comments,
		Strengths:           r.Strengths,
		AreasForImprovement: r.AreasForImprovement,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func toResponses(reviews []Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		out = append(out, toResponse(&reviews[i]))
	}
	return out
}
