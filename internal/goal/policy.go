package goal

import (
	"github.com/saulo-duarte/appraisal-lambda/internal/assignment"
	"github.com/saulo-duarte/appraisal-lambda/internal/user"
)

// Permission predicates. Each answers only "may this actor do this to this
// goal"; lifecycle checks live with the transitions.

func IsOwner(actor user.Actor, g *Goal) bool {
	return actor.ID == g.OwnerID
}

func CanCreate(actor user.Actor) bool {
	return actor.Role == user.RoleEmployee
}

// CanEdit covers update and delete: owner only, and only while draft.
func CanEdit(actor user.Actor, g *Goal) bool {
	return IsOwner(actor, g) && g.Status == StatusDraft
}

func CanSubmit(actor user.Actor, g *Goal) bool {
	return IsOwner(actor, g)
}

func CanRecordProgress(actor user.Actor, g *Goal) bool {
	return IsOwner(actor, g)
}

func CanReview(actor user.Actor, g *Goal, owner *user.User) bool {
	return assignment.IsReviewer(actor, g.ReviewerFor(owner))
}

func CanViewHistory(actor user.Actor, g *Goal) bool {
	return IsOwner(actor, g) || actor.IsReviewerOrAdmin()
}

// CanView allows the owner, admins, the resolved reviewer and the owner's
// line manager.
func CanView(actor user.Actor, g *Goal, owner *user.User) bool {
	if IsOwner(actor, g) || actor.IsAdmin() {
		return true
	}
	if !actor.IsReviewerOrAdmin() {
		return false
	}
	if assignment.IsReviewer(actor, g.ReviewerFor(owner)) {
		return true
	}
	return owner != nil && owner.ManagerID != nil && *owner.ManagerID == actor.ID
}
