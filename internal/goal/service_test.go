package goal_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/apperror"
	"github.com/saulo-duarte/appraisal-lambda/internal/goal"
	"github.com/saulo-duarte/appraisal-lambda/internal/goal/goaltest"
	"github.com/saulo-duarte/appraisal-lambda/internal/notification"
	"github.com/saulo-duarte/appraisal-lambda/internal/user"
	"github.com/saulo-duarte/appraisal-lambda/internal/user/usertest"
	util "github.com/saulo-duarte/appraisal-lambda/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu        sync.Mutex
	submitted []notification.GoalSubmitted
	reviewed  []notification.GoalReviewed
}

func (n *recordingNotifier) GoalSubmitted(_ context.Context, evt notification.GoalSubmitted) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submitted = append(n.submitted, evt)
	return nil
}

func (n *recordingNotifier) GoalReviewed(_ context.Context, evt notification.GoalReviewed) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reviewed = append(n.reviewed, evt)
	return nil
}

type fixture struct {
	users    *usertest.Repository
	goals    *goaltest.Repository
	notifier *recordingNotifier
	svc      goal.GoalService

	admin, manager, appraiser, outsider *user.User
	employee, orphan                    *user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		admin:     usertest.NewUser("ada", user.RoleAdmin),
		manager:   usertest.NewUser("maria", user.RoleReviewer),
		appraiser: usertest.NewUser("april", user.RoleReviewer),
		outsider:  usertest.NewUser("oscar", user.RoleReviewer),
		employee:  usertest.NewUser("ed", user.RoleEmployee),
		orphan:    usertest.NewUser("otto", user.RoleEmployee),
		goals:     goaltest.NewRepository(),
		notifier:  &recordingNotifier{},
	}
	f.employee.ManagerID = &f.manager.ID
	f.users = usertest.NewRepository(f.admin, f.manager, f.appraiser, f.outsider, f.employee, f.orphan)
	f.svc = goal.NewService(f.goals, f.users, f.notifier)
	return f
}

func actorOf(u *user.User) user.Actor {
	return user.Actor{ID: u.ID, Role: u.Role}
}

func validFields(title string) goal.GoalFieldsDTO {
	return goal.GoalFieldsDTO{
		Title:       title,
		Description: "reduce p99 latency",
		Target:      "p99 under 200ms",
		Quarter:     goal.Q1,
		StartDate:   util.NewDate(2025, time.January, 1),
		EndDate:     util.NewDate(2025, time.March, 31),
	}
}

func (f *fixture) put(t *testing.T, owner *user.User, title string, status goal.Status, offset time.Duration) *goal.Goal {
	t.Helper()
	g := goaltest.NewGoal(owner.ID, title, offset)
	g.Status = status
	f.goals.Put(g)
	return g
}

func (f *fixture) stored(t *testing.T, id uuid.UUID) *goal.Goal {
	t.Helper()
	g, err := f.goals.FindByID(id)
	require.NoError(t, err)
	return g
}

func progress(v float64) *float64 { return &v }

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("EmployeeCreatesDraft", func(t *testing.T) {
		f := newFixture(t)
		resp, err := f.svc.Create(ctx, actorOf(f.employee), validFields("latency"))
		require.NoError(t, err)

		assert.Equal(t, goal.StatusDraft, resp.Status)
		assert.Zero(t, resp.Progress)
		assert.Equal(t, f.employee.ID, resp.OwnerID)
		assert.Equal(t, f.employee.ID, f.stored(t, resp.ID).OwnerID)
	})

	t.Run("ReviewerCannotCreate", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Create(ctx, actorOf(f.manager), validFields("latency"))
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	invalid := []struct {
		name   string
		mutate func(*goal.GoalFieldsDTO)
		field  string
	}{
		{"BlankTitle", func(d *goal.GoalFieldsDTO) { d.Title = "   " }, "title"},
		{"MissingDescription", func(d *goal.GoalFieldsDTO) { d.Description = "" }, "description"},
		{"MissingTarget", func(d *goal.GoalFieldsDTO) { d.Target = "" }, "target"},
		{"UnknownQuarter", func(d *goal.GoalFieldsDTO) { d.Quarter = "Q5" }, "quarter"},
		{"MissingStartDate", func(d *goal.GoalFieldsDTO) { d.StartDate = util.Date{} }, "start_date"},
		{"MissingEndDate", func(d *goal.GoalFieldsDTO) { d.EndDate = util.Date{} }, "end_date"},
		{"EndBeforeStart", func(d *goal.GoalFieldsDTO) { d.EndDate = util.NewDate(2024, time.December, 31) }, "end_date"},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			dto := validFields("latency")
			tc.mutate(&dto)

			_, err := f.svc.Create(ctx, actorOf(f.employee), dto)
			require.ErrorIs(t, err, apperror.ErrValidation)

			var appErr *apperror.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tc.field, appErr.Field)
		})
	}

	t.Run("SameDayRangeAllowed", func(t *testing.T) {
		f := newFixture(t)
		dto := validFields("one day")
		dto.EndDate = dto.StartDate
		_, err := f.svc.Create(ctx, actorOf(f.employee), dto)
		assert.NoError(t, err)
	})

	t.Run("ReviewerOverrideMustExist", func(t *testing.T) {
		f := newFixture(t)
		dto := validFields("latency")
		ghost := uuid.New()
		dto.ReviewerID = &ghost
		_, err := f.svc.Create(ctx, actorOf(f.employee), dto)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("OwnerCannotReviewOwnGoal", func(t *testing.T) {
		f := newFixture(t)
		dto := validFields("latency")
		dto.ReviewerID = &f.employee.ID
		_, err := f.svc.Create(ctx, actorOf(f.employee), dto)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestEditAndDeleteOnlyWhileDraft(t *testing.T) {
	ctx := context.Background()

	for _, status := range []goal.Status{goal.StatusSubmitted, goal.StatusApproved, goal.StatusRejected} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			g := f.put(t, f.employee, "locked", status, 0)

			_, err := f.svc.Update(ctx, actorOf(f.employee), g.ID, validFields("renamed"))
			assert.ErrorIs(t, err, apperror.ErrForbidden)

			err = f.svc.Delete(ctx, actorOf(f.employee), g.ID)
			assert.ErrorIs(t, err, apperror.ErrForbidden)

			assert.Equal(t, "locked", f.stored(t, g.ID).Title)
		})
	}

	t.Run("OwnerUpdatesDraft", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "draft", goal.StatusDraft, 0)

		resp, err := f.svc.Update(ctx, actorOf(f.employee), g.ID, validFields("renamed"))
		require.NoError(t, err)
		assert.Equal(t, "renamed", resp.Title)
		assert.Equal(t, g.Version+1, resp.Version)
	})

	t.Run("NonOwnerCannotTouchDraft", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "draft", goal.StatusDraft, 0)

		_, err := f.svc.Update(ctx, actorOf(f.admin), g.ID, validFields("renamed"))
		assert.ErrorIs(t, err, apperror.ErrForbidden)
		assert.ErrorIs(t, f.svc.Delete(ctx, actorOf(f.manager), g.ID), apperror.ErrForbidden)
	})

	t.Run("OwnerDeletesDraft", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "draft", goal.StatusDraft, 0)

		require.NoError(t, f.svc.Delete(ctx, actorOf(f.employee), g.ID))
		_, err := f.goals.FindByID(g.ID)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("MissingGoal", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Update(ctx, actorOf(f.employee), uuid.New(), validFields("x"))
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("NoReviewerThenAdminAssignsManager", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.orphan, "orphaned", goal.StatusDraft, 0)

		_, err := f.svc.Submit(ctx, actorOf(f.orphan), g.ID)
		require.ErrorIs(t, err, apperror.ErrNoReviewerAssigned)
		assert.Equal(t, goal.StatusDraft, f.stored(t, g.ID).Status)

		users := user.NewService(f.users)
		_, err = users.SetReportingLinks(ctx, actorOf(f.admin), f.orphan.ID, user.UpdateReportingDTO{ManagerID: &f.manager.ID})
		require.NoError(t, err)

		resp, err := f.svc.Submit(ctx, actorOf(f.orphan), g.ID)
		require.NoError(t, err)
		assert.Equal(t, goal.StatusSubmitted, resp.Status)
	})

	t.Run("ExplicitReviewerDoesNotBypassGate", func(t *testing.T) {
		f := newFixture(t)
		g := goaltest.NewGoal(f.orphan.ID, "override", 0)
		g.ReviewerID = &f.outsider.ID
		f.goals.Put(g)

		_, err := f.svc.Submit(ctx, actorOf(f.orphan), g.ID)
		assert.ErrorIs(t, err, apperror.ErrNoReviewerAssigned)
	})

	t.Run("AppraiserSatisfiesGate", func(t *testing.T) {
		f := newFixture(t)
		f.orphan.AppraiserID = &f.appraiser.ID
		f.users.Put(f.orphan)
		g := f.put(t, f.orphan, "appraised", goal.StatusDraft, 0)

		_, err := f.svc.Submit(ctx, actorOf(f.orphan), g.ID)
		require.NoError(t, err)

		require.Len(t, f.notifier.submitted, 1)
		assert.Equal(t, f.appraiser.ID, f.notifier.submitted[0].ReviewerID)
	})

	t.Run("OnlyOwnerSubmits", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "mine", goal.StatusDraft, 0)

		_, err := f.svc.Submit(ctx, actorOf(f.manager), g.ID)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("AlreadySubmitted", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "mine", goal.StatusSubmitted, 0)

		_, err := f.svc.Submit(ctx, actorOf(f.employee), g.ID)
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})
}

func TestReviewerPinnedAtSubmission(t *testing.T) {
	ctx := context.Background()
	approve := goal.ReviewGoalDTO{Action: goal.ActionApprove}

	t.Run("ManagerReassignedAfterSubmit", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "latency", goal.StatusDraft, 0)

		_, err := f.svc.Submit(ctx, actorOf(f.employee), g.ID)
		require.NoError(t, err)
		require.NotNil(t, f.stored(t, g.ID).AssignedReviewerID)
		assert.Equal(t, f.manager.ID, *f.stored(t, g.ID).AssignedReviewerID)

		require.NoError(t, f.users.UpdateReportingLinks(f.employee.ID, &f.outsider.ID, nil))

		queue, err := f.svc.ReviewQueue(ctx, actorOf(f.manager))
		require.NoError(t, err)
		assert.Len(t, queue, 1)
		queue, err = f.svc.ReviewQueue(ctx, actorOf(f.outsider))
		require.NoError(t, err)
		assert.Empty(t, queue)

		_, err = f.svc.Review(ctx, actorOf(f.outsider), g.ID, approve)
		assert.ErrorIs(t, err, apperror.ErrForbidden)

		resp, err := f.svc.Review(ctx, actorOf(f.manager), g.ID, approve)
		require.NoError(t, err)
		assert.Equal(t, goal.StatusApproved, resp.Status)
	})

	t.Run("LinksClearedAfterSubmit", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "latency", goal.StatusDraft, 0)

		_, err := f.svc.Submit(ctx, actorOf(f.employee), g.ID)
		require.NoError(t, err)
		require.NoError(t, f.users.UpdateReportingLinks(f.employee.ID, nil, nil))

		_, err = f.svc.Review(ctx, actorOf(f.manager), g.ID, approve)
		assert.NoError(t, err)
	})

	t.Run("ExplicitReviewerPinned", func(t *testing.T) {
		f := newFixture(t)
		g := goaltest.NewGoal(f.employee.ID, "override", 0)
		g.ReviewerID = &f.outsider.ID
		f.goals.Put(g)

		_, err := f.svc.Submit(ctx, actorOf(f.employee), g.ID)
		require.NoError(t, err)
		assert.Equal(t, f.outsider.ID, *f.stored(t, g.ID).AssignedReviewerID)
		require.Len(t, f.notifier.submitted, 1)
		assert.Equal(t, f.outsider.ID, f.notifier.submitted[0].ReviewerID)
	})

	t.Run("ReturnReleasesPin", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "latency", goal.StatusDraft, 0)

		_, err := f.svc.Submit(ctx, actorOf(f.employee), g.ID)
		require.NoError(t, err)
		_, err = f.svc.Review(ctx, actorOf(f.manager), g.ID, goal.ReviewGoalDTO{Action: goal.ActionReturn})
		require.NoError(t, err)
		assert.Nil(t, f.stored(t, g.ID).AssignedReviewerID)

		require.NoError(t, f.users.UpdateReportingLinks(f.employee.ID, &f.outsider.ID, nil))
		_, err = f.svc.Submit(ctx, actorOf(f.employee), g.ID)
		require.NoError(t, err)
		assert.Equal(t, f.outsider.ID, *f.stored(t, g.ID).AssignedReviewerID)

		_, err = f.svc.Review(ctx, actorOf(f.manager), g.ID, approve)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("FailedSubmitLeavesNoPin", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "latency", goal.StatusDraft, 0)
		svc := goal.NewService(&conflictingRepo{Repository: f.goals, loser: g.ID}, f.users, f.notifier)

		_, err := svc.Submit(ctx, actorOf(f.employee), g.ID)
		require.ErrorIs(t, err, apperror.ErrConflict)
		assert.Nil(t, f.stored(t, g.ID).AssignedReviewerID)
	})
}

// conflictingRepo fails Update for one goal as if another writer got there
// first.
type conflictingRepo struct {
	*goaltest.Repository
	loser uuid.UUID
}

func (r *conflictingRepo) Update(g *goal.Goal) error {
	if g.ID == r.loser {
		return apperror.Conflict("goal %s was modified concurrently, reload and retry", g.ID)
	}
	return r.Repository.Update(g)
}

func TestSubmitAll(t *testing.T) {
	ctx := context.Background()

	t.Run("SubmitsDraftsInCreationOrder", func(t *testing.T) {
		f := newFixture(t)
		second := f.put(t, f.employee, "second", goal.StatusDraft, 2*time.Hour)
		first := f.put(t, f.employee, "first", goal.StatusDraft, time.Hour)
		approved := f.put(t, f.employee, "done", goal.StatusApproved, 0)

		result, err := f.svc.SubmitAll(ctx, actorOf(f.employee))
		require.NoError(t, err)

		assert.Equal(t, 2, result.Updated)
		require.Len(t, result.Submitted, 2)
		assert.Equal(t, first.ID, result.Submitted[0].ID)
		assert.Equal(t, second.ID, result.Submitted[1].ID)
		assert.Empty(t, result.Failed)
		assert.Equal(t, goal.StatusApproved, f.stored(t, approved.ID).Status)
		for _, sub := range result.Submitted {
			assert.Equal(t, f.manager.ID, *sub.AssignedReviewerID)
		}
		assert.Len(t, f.notifier.submitted, 2)
	})

	t.Run("NoDrafts", func(t *testing.T) {
		f := newFixture(t)
		f.put(t, f.employee, "done", goal.StatusApproved, 0)

		_, err := f.svc.SubmitAll(ctx, actorOf(f.employee))
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("NoReviewer", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.orphan, "stuck", goal.StatusDraft, 0)

		_, err := f.svc.SubmitAll(ctx, actorOf(f.orphan))
		assert.ErrorIs(t, err, apperror.ErrNoReviewerAssigned)
		assert.Equal(t, goal.StatusDraft, f.stored(t, g.ID).Status)
	})

	t.Run("OneFailureDoesNotRollBackOthers", func(t *testing.T) {
		f := newFixture(t)
		first := f.put(t, f.employee, "first", goal.StatusDraft, time.Hour)
		raced := f.put(t, f.employee, "raced", goal.StatusDraft, 2*time.Hour)
		third := f.put(t, f.employee, "third", goal.StatusDraft, 3*time.Hour)

		svc := goal.NewService(&conflictingRepo{Repository: f.goals, loser: raced.ID}, f.users, f.notifier)
		result, err := svc.SubmitAll(ctx, actorOf(f.employee))
		require.NoError(t, err)

		assert.Equal(t, 2, result.Updated)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, raced.ID, result.Failed[0].GoalID)
		assert.Equal(t, string(apperror.KindConflict), result.Failed[0].Error)

		assert.Equal(t, goal.StatusSubmitted, f.stored(t, first.ID).Status)
		assert.Equal(t, goal.StatusDraft, f.stored(t, raced.ID).Status)
		assert.Equal(t, goal.StatusSubmitted, f.stored(t, third.ID).Status)
	})
}

func TestReview(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		action goal.ReviewAction
		want   goal.Status
	}{
		{goal.ActionApprove, goal.StatusApproved},
		{goal.ActionReject, goal.StatusRejected},
		{goal.ActionReturn, goal.StatusDraft},
	}
	for _, tc := range cases {
		t.Run(string(tc.action), func(t *testing.T) {
			f := newFixture(t)
			g := f.put(t, f.employee, "latency", goal.StatusSubmitted, 0)

			resp, err := f.svc.Review(ctx, actorOf(f.manager), g.ID, goal.ReviewGoalDTO{Action: tc.action})
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.Status)

			require.Len(t, f.notifier.reviewed, 1)
			assert.Equal(t, string(tc.action), f.notifier.reviewed[0].Action)
			assert.Equal(t, f.employee.ID, f.notifier.reviewed[0].OwnerID)
		})
	}

	t.Run("UnrelatedReviewerForbidden", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "latency", goal.StatusSubmitted, 0)

		_, err := f.svc.Review(ctx, actorOf(f.outsider), g.ID, goal.ReviewGoalDTO{Action: goal.ActionApprove})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
		assert.Equal(t, goal.StatusSubmitted, f.stored(t, g.ID).Status)
	})

	t.Run("ExplicitReviewerReplacesManager", func(t *testing.T) {
		f := newFixture(t)
		g := goaltest.NewGoal(f.employee.ID, "override", 0)
		g.Status = goal.StatusSubmitted
		g.ReviewerID = &f.outsider.ID
		f.goals.Put(g)

		_, err := f.svc.Review(ctx, actorOf(f.manager), g.ID, goal.ReviewGoalDTO{Action: goal.ActionApprove})
		assert.ErrorIs(t, err, apperror.ErrForbidden)

		_, err = f.svc.Review(ctx, actorOf(f.outsider), g.ID, goal.ReviewGoalDTO{Action: goal.ActionApprove})
		assert.NoError(t, err)
	})

	t.Run("EmployeeForbiddenEvenIfResolved", func(t *testing.T) {
		f := newFixture(t)
		peer := usertest.NewUser("pat", user.RoleEmployee)
		f.users.Put(peer)
		g := goaltest.NewGoal(f.employee.ID, "peer", 0)
		g.Status = goal.StatusSubmitted
		g.ReviewerID = &peer.ID
		f.goals.Put(g)

		_, err := f.svc.Review(ctx, actorOf(peer), g.ID, goal.ReviewGoalDTO{Action: goal.ActionApprove})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("AdminMayReviewAnyGoal", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "latency", goal.StatusSubmitted, 0)

		resp, err := f.svc.Review(ctx, actorOf(f.admin), g.ID, goal.ReviewGoalDTO{Action: goal.ActionReject})
		require.NoError(t, err)
		assert.Equal(t, goal.StatusRejected, resp.Status)
	})

	t.Run("OnlySubmittedGoals", func(t *testing.T) {
		for _, status := range []goal.Status{goal.StatusDraft, goal.StatusApproved, goal.StatusRejected} {
			f := newFixture(t)
			g := f.put(t, f.employee, "latency", status, 0)

			_, err := f.svc.Review(ctx, actorOf(f.manager), g.ID, goal.ReviewGoalDTO{Action: goal.ActionApprove})
			assert.ErrorIs(t, err, apperror.ErrValidation, status)
			assert.Equal(t, status, f.stored(t, g.ID).Status)
		}
	})

	t.Run("UnknownAction", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "latency", goal.StatusSubmitted, 0)

		_, err := f.svc.Review(ctx, actorOf(f.manager), g.ID, goal.ReviewGoalDTO{Action: "escalate"})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("FeedbackAppendedToComments", func(t *testing.T) {
		f := newFixture(t)
		g := goaltest.NewGoal(f.employee.ID, "latency", 0)
		g.Status = goal.StatusSubmitted
		g.Comments = "owner notes"
		f.goals.Put(g)

		resp, err := f.svc.Review(ctx, actorOf(f.manager), g.ID,
			goal.ReviewGoalDTO{Action: goal.ActionReturn, Feedback: "  split into two goals "})
		require.NoError(t, err)
		assert.Equal(t, "owner notes\n[Reviewer]: split into two goals", resp.Comments)
	})

	t.Run("LosingConcurrentReviewConflicts", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "latency", goal.StatusSubmitted, 0)

		svc := goal.NewService(&conflictingRepo{Repository: f.goals, loser: g.ID}, f.users, f.notifier)
		_, err := svc.Review(ctx, actorOf(f.manager), g.ID, goal.ReviewGoalDTO{Action: goal.ActionApprove})
		assert.ErrorIs(t, err, apperror.ErrConflict)
		assert.Equal(t, goal.StatusSubmitted, f.stored(t, g.ID).Status)
		assert.Empty(t, f.notifier.reviewed)
	})
}

func TestStaleVersionLosesRace(t *testing.T) {
	f := newFixture(t)
	g := f.put(t, f.employee, "latency", goal.StatusSubmitted, 0)

	first := f.stored(t, g.ID)
	second := f.stored(t, g.ID)

	first.Status = goal.StatusApproved
	require.NoError(t, f.goals.Update(first))

	second.Status = goal.StatusRejected
	assert.ErrorIs(t, f.goals.Update(second), apperror.ErrConflict)
	assert.Equal(t, goal.StatusApproved, f.stored(t, g.ID).Status)
}

func TestRecordProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("LastWriteWins", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "latency", goal.StatusSubmitted, 0)

		_, err := f.svc.RecordProgress(ctx, actorOf(f.employee), g.ID, goal.RecordProgressDTO{Progress: progress(40)})
		require.NoError(t, err)
		result, err := f.svc.RecordProgress(ctx, actorOf(f.employee), g.ID,
			goal.RecordProgressDTO{Progress: progress(25), Comments: "scope grew"})
		require.NoError(t, err)

		assert.Equal(t, 25.0, result.Goal.Progress)
		assert.Equal(t, "scope grew", result.Entry.Comments)
		require.NotNil(t, result.Goal.ProgressUpdatedAt)
		assert.True(t, result.Goal.ProgressUpdatedAt.Equal(result.Entry.CreatedAt))

		stored := f.stored(t, g.ID)
		assert.Equal(t, 25.0, stored.Progress)
	})

	t.Run("RoundedToStoredPrecision", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "latency", goal.StatusSubmitted, 0)

		result, err := f.svc.RecordProgress(ctx, actorOf(f.employee), g.ID, goal.RecordProgressDTO{Progress: progress(33.333)})
		require.NoError(t, err)
		assert.Equal(t, 33.33, result.Entry.Progress)
		assert.Equal(t, 33.33, result.Goal.Progress)

		ledger, err := f.svc.History(ctx, actorOf(f.employee), g.ID)
		require.NoError(t, err)
		assert.Equal(t, 33.33, ledger.Current())
	})

	t.Run("CachedProgressMatchesLatestEntry", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "latency", goal.StatusApproved, 0)

		for _, p := range []float64{10, 90, 55, 0, 100} {
			_, err := f.svc.RecordProgress(ctx, actorOf(f.employee), g.ID, goal.RecordProgressDTO{Progress: progress(p)})
			require.NoError(t, err)
		}

		ledger, err := f.svc.History(ctx, actorOf(f.employee), g.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, ledger.Len())
		assert.Equal(t, f.stored(t, g.ID).Progress, ledger.Current())

		var prev time.Time
		for e := range ledger.All() {
			assert.True(t, e.CreatedAt.After(prev), "ledger timestamps must strictly increase")
			prev = e.CreatedAt
		}
	})

	t.Run("DraftRejected", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "latency", goal.StatusDraft, 0)

		_, err := f.svc.RecordProgress(ctx, actorOf(f.employee), g.ID, goal.RecordProgressDTO{Progress: progress(10)})
		assert.ErrorIs(t, err, apperror.ErrValidation)
		assert.Zero(t, f.stored(t, g.ID).Progress)
	})

	t.Run("RejectedGoalClosed", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "latency", goal.StatusRejected, 0)

		_, err := f.svc.RecordProgress(ctx, actorOf(f.employee), g.ID, goal.RecordProgressDTO{Progress: progress(10)})
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("OutOfRange", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "latency", goal.StatusSubmitted, 0)

		for _, dto := range []goal.RecordProgressDTO{
			{Progress: progress(-1)},
			{Progress: progress(100.5)},
			{},
		} {
			_, err := f.svc.RecordProgress(ctx, actorOf(f.employee), g.ID, dto)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		}
	})

	t.Run("BoundsInclusive", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "latency", goal.StatusSubmitted, 0)

		for _, p := range []float64{0, 100} {
			_, err := f.svc.RecordProgress(ctx, actorOf(f.employee), g.ID, goal.RecordProgressDTO{Progress: progress(p)})
			assert.NoError(t, err)
		}
	})

	t.Run("OnlyOwner", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "latency", goal.StatusSubmitted, 0)

		_, err := f.svc.RecordProgress(ctx, actorOf(f.manager), g.ID, goal.RecordProgressDTO{Progress: progress(10)})
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("ConcurrentAppendsStayOrdered", func(t *testing.T) {
		f := newFixture(t)
		g := f.put(t, f.employee, "latency", goal.StatusSubmitted, 0)

		var wg sync.WaitGroup
		for i := range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.svc.RecordProgress(ctx, actorOf(f.employee), g.ID,
					goal.RecordProgressDTO{Progress: progress(float64(i * 5))})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		ledger, err := f.svc.History(ctx, actorOf(f.employee), g.ID)
		require.NoError(t, err)
		assert.Equal(t, 20, ledger.Len())

		latest, ok := ledger.Latest()
		require.True(t, ok)
		assert.Equal(t, latest.Progress, f.stored(t, g.ID).Progress)
	})
}

func TestHistoryVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := f.put(t, f.employee, "latency", goal.StatusSubmitted, 0)

	for _, u := range []*user.User{f.employee, f.manager, f.outsider, f.admin} {
		_, err := f.svc.History(ctx, actorOf(u), g.ID)
		assert.NoError(t, err, u.Name)
	}

	_, err := f.svc.History(ctx, actorOf(f.orphan), g.ID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestQueries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	own := f.put(t, f.employee, "latency", goal.StatusSubmitted, 0)
	override := goaltest.NewGoal(f.employee.ID, "override", time.Hour)
	override.Status = goal.StatusSubmitted
	override.ReviewerID = &f.outsider.ID
	f.goals.Put(override)
	draft := f.put(t, f.employee, "draft", goal.StatusDraft, 2*time.Hour)
	stranger := f.put(t, f.orphan, "orphan", goal.StatusSubmitted, 3*time.Hour)
	lead := usertest.NewUser("lena", user.RoleReviewer)
	lead.ManagerID = &f.manager.ID
	f.users.Put(lead)
	f.put(t, lead, "lead draft", goal.StatusDraft, 4*time.Hour)

	ids := func(resps []goal.GoalResponse) []uuid.UUID {
		out := make([]uuid.UUID, 0, len(resps))
		for _, r := range resps {
			out = append(out, r.ID)
		}
		return out
	}

	t.Run("ListOwn", func(t *testing.T) {
		got, err := f.svc.ListOwn(ctx, actorOf(f.employee))
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{own.ID, override.ID, draft.ID}, ids(got))
	})

	t.Run("ReviewQueueForManager", func(t *testing.T) {
		got, err := f.svc.ReviewQueue(ctx, actorOf(f.manager))
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{own.ID}, ids(got))
	})

	t.Run("ReviewQueueForExplicitReviewer", func(t *testing.T) {
		got, err := f.svc.ReviewQueue(ctx, actorOf(f.outsider))
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{override.ID}, ids(got))
	})

	t.Run("ReviewQueueForAdmin", func(t *testing.T) {
		got, err := f.svc.ReviewQueue(ctx, actorOf(f.admin))
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{own.ID, override.ID, stranger.ID}, ids(got))
	})

	t.Run("ReviewQueueNotForEmployees", func(t *testing.T) {
		_, err := f.svc.ReviewQueue(ctx, actorOf(f.employee))
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	// lena reports to maria but is a reviewer, so her goals stay out.
	t.Run("ListTeamForManager", func(t *testing.T) {
		got, err := f.svc.ListTeam(ctx, actorOf(f.manager))
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{own.ID, override.ID, draft.ID}, ids(got))
	})

	t.Run("ListTeamForAdmin", func(t *testing.T) {
		got, err := f.svc.ListTeam(ctx, actorOf(f.admin))
		require.NoError(t, err)
		assert.Len(t, got, 5)
	})

	t.Run("GetVisibility", func(t *testing.T) {
		_, err := f.svc.Get(ctx, actorOf(f.manager), draft.ID)
		assert.NoError(t, err)
		_, err = f.svc.Get(ctx, actorOf(f.outsider), override.ID)
		assert.NoError(t, err)
		_, err = f.svc.Get(ctx, actorOf(f.outsider), own.ID)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
		_, err = f.svc.Get(ctx, actorOf(f.orphan), own.ID)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})
}
