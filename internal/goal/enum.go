package goal

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

var AllStatuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusApproved,
	StatusRejected,
}

func (s Status) IsValid() bool {
	for _, v := range AllStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// CanTransition reports whether the lifecycle allows moving from s to next.
// The only edge back into draft is a reviewer returning a submitted goal.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusSubmitted
	case StatusSubmitted:
		return next == StatusApproved || next == StatusRejected || next == StatusDraft
	default:
		return false
	}
}

type Quarter string

const (
	Q1 Quarter = "Q1"
	Q2 Quarter = "Q2"
	Q3 Quarter = "Q3"
	Q4 Quarter = "Q4"
)

type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionReject  ReviewAction = "reject"
	ActionReturn  ReviewAction = "return"
)

// Target is the status a submitted goal moves to under the action.
func (a ReviewAction) Target() (Status, bool) {
	switch a {
	case ActionApprove:
		return StatusApproved, true
	case ActionReject:
		return StatusRejected, true
	case ActionReturn:
		return StatusDraft, true
	default:
		return "", false
	}
}
