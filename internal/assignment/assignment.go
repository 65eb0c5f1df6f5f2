// Package assignment decides who reviews an employee's goals.
//
// Resolution order is: the reviewer set explicitly on the goal, then the
// owner's manager, then the owner's appraiser. Submission is gated on the
// organizational links alone; an explicit per-goal reviewer never substitutes
// for a missing manager or appraiser.
package assignment

import (
	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/user"
)

// ResolveReviewer returns the id of the user responsible for reviewing a goal
// owned by owner with the optional explicit reviewer override, or nil.
func ResolveReviewer(explicit *uuid.UUID, owner *user.User) *uuid.UUID {
	if explicit != nil && *explicit != uuid.Nil {
		return explicit
	}
	if owner == nil {
		return nil
	}
	if owner.ManagerID != nil && *owner.ManagerID != uuid.Nil {
		return owner.ManagerID
	}
	if owner.AppraiserID != nil && *owner.AppraiserID != uuid.Nil {
		return owner.AppraiserID
	}
	return nil
}

// CanSubmit reports whether owner has an organizational reviewer.
func CanSubmit(owner *user.User) bool {
	if owner == nil {
		return false
	}
	hasManager := owner.ManagerID != nil && *owner.ManagerID != uuid.Nil
	hasAppraiser := owner.AppraiserID != nil && *owner.AppraiserID != uuid.Nil
	return hasManager || hasAppraiser
}

// IsAuthorizedReviewer reports whether actor may act as reviewer on a goal.
// Admins always may; anyone else only when they are the resolved reviewer and
// hold the reviewer or admin role.
func IsAuthorizedReviewer(actor user.Actor, explicit *uuid.UUID, owner *user.User) bool {
	return IsReviewer(actor, ResolveReviewer(explicit, owner))
}

// IsReviewer reports whether actor may act as the already resolved reviewer.
func IsReviewer(actor user.Actor, reviewer *uuid.UUID) bool {
	if actor.IsAdmin() {
		return true
	}
	if !actor.IsReviewerOrAdmin() {
		return false
	}
	return reviewer != nil && *reviewer == actor.ID
}
