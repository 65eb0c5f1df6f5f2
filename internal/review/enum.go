package review

type ReviewType string

const (
	TypeSelfAssessment ReviewType = "self_assessment"
	TypeManagerReview  ReviewType = "manager_review"
)

var AllTypes = []ReviewType{TypeSelfAssessment, TypeManagerReview}

func (t ReviewType) IsValid() bool {
	return t == TypeSelfAssessment || t == TypeManagerReview
}
