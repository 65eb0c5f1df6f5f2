package review

import (
	"github.com/saulo-duarte/appraisal-lambda/internal/goal"
	"github.com/saulo-duarte/appraisal-lambda/internal/user"
)

// Reviews can be written once the owner has put the goal up for review.
func isReviewable(s goal.Status) bool {
	return s == goal.StatusSubmitted || s == goal.StatusApproved || s == goal.StatusRejected
}

func CanSelfAssess(actor user.Actor, g *goal.Goal) bool {
	return goal.IsOwner(actor, g)
}

func CanManagerReview(actor user.Actor, g *goal.Goal, owner *user.User) bool {
	return goal.CanReview(actor, g, owner)
}

// CanSee: admins see everything and authors see their own reviews. Beyond
// that, employees see reviews on their goals and reviewers see reviews on
// goals they are the reviewer of.
func CanSee(actor user.Actor, r *Review, g *goal.Goal, owner *user.User) bool {
	if actor.IsAdmin() || r.AuthorID == actor.ID {
		return true
	}
	if actor.Role == user.RoleReviewer {
		return assignment.IsReviewer(actor, g.ReviewerFor(owner))
	}
	return g.OwnerID == actor.ID
}

// CanDelete allows the author or an admin.
func CanDelete(actor user.Actor, r *Review) bool {
	return actor.IsAdmin() || r.AuthorID == actor.ID
}
