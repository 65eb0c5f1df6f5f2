package goal

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/apperror"
	"github.com/saulo-duarte/appraisal-lambda/internal/assignment"
	"github.com/saulo-duarte/appraisal-lambda/internal/config"
	"github.com/saulo-duarte/appraisal-lambda/internal/notification"
	"github.com/saulo-duarte/appraisal-lambda/internal/user"
	"github.com/saulo-duarte/appraisal-lambda/internal/validation"
	"github.com/sirupsen/logrus"
)

type GoalService interface {
	Create(ctx context.Context, actor user.Actor, dto GoalFieldsDTO) (*GoalResponse, error)
	Get(ctx context.Context, actor user.Actor, id uuid.UUID) (*GoalResponse, error)
	ListOwn(ctx context.Context, actor user.Actor) ([]GoalResponse, error)
	ListTeam(ctx context.Context, actor user.Actor) ([]GoalResponse, error)
	ReviewQueue(ctx context.Context, actor user.Actor) ([]GoalResponse, error)
	Update(ctx context.Context, actor user.Actor, id uuid.UUID, dto GoalFieldsDTO) (*GoalResponse, error)
	Delete(ctx context.Context, actor user.Actor, id uuid.UUID) error
	Submit(ctx context.Context, actor user.Actor, id uuid.UUID) (*GoalResponse, error)
	SubmitAll(ctx context.Context, actor user.Actor) (*SubmitAllResult, error)
	Review(ctx context.Context, actor user.Actor, id uuid.UUID, dto ReviewGoalDTO) (*GoalResponse, error)

	RecordProgress(ctx context.Context, actor user.Actor, id uuid.UUID, dto RecordProgressDTO) (*ProgressResult, error)
	History(ctx context.Context, actor user.Actor, id uuid.UUID) (*Ledger, error)
}

type goalService struct {
	repo     GoalRepository
	userRepo user.UserRepository
	notifier notification.Notifier
}

func NewService(repo GoalRepository, userRepo user.UserRepository, notifier notification.Notifier) GoalService {
	return &goalService{
		repo:     repo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

func goalLogger(ctx context.Context, actor user.Actor, goalID uuid.UUID) logrus.FieldLogger {
	return config.WithContext(ctx).WithFields(logrus.Fields{
		"goal_id":  goalID,
		"actor_id": actor.ID,
	})
}

func (s *goalService) validateFields(dto GoalFieldsDTO, ownerID uuid.UUID) error {
	if err := validation.Struct(dto); err != nil {
		return err
	}
	if dto.StartDate.IsZero() {
		return apperror.FieldValidation("start_date", "start_date is required")
	}
	if dto.EndDate.IsZero() {
		return apperror.FieldValidation("end_date", "end_date is required")
	}
	if dto.EndDate.Before(dto.StartDate) {
		return apperror.FieldValidation("end_date", "end_date must not be before start_date")
	}
	if dto.ReviewerID != nil {
		if *dto.ReviewerID == ownerID {
			return apperror.FieldValidation("reviewer_id", "a goal cannot be reviewed by its owner")
		}
		if _, err := s.userRepo.GetByID(*dto.ReviewerID); err != nil {
			if apperror.KindOf(err) == apperror.KindNotFound {
				return apperror.FieldValidation("reviewer_id", "reviewer_id does not reference a user")
			}
			return err
		}
	}
	return nil
}

func applyFields(g *Goal, dto GoalFieldsDTO) {
	g.Title = strings.TrimSpace(dto.Title)
	g.Description = strings.TrimSpace(dto.Description)
	g.Target = strings.TrimSpace(dto.Target)
	g.Quarter = dto.Quarter
	g.StartDate = dto.StartDate
	g.EndDate = dto.EndDate
	g.Comments = dto.Comments
	g.ReviewerID = dto.ReviewerID
}

func (s *goalService) Create(ctx context.Context, actor user.Actor, dto GoalFieldsDTO) (*GoalResponse, error) {
	log := config.WithContext(ctx).WithField("actor_id", actor.ID)

	if !CanCreate(actor) {
		log.Warn("Non-employee attempted to create a goal")
		return nil, apperror.Forbidden("only employees can create goals")
	}
	if err := s.validateFields(dto, actor.ID); err != nil {
		log.WithError(err).Warn("Invalid goal fields")
		return nil, err
	}

	now := time.Now().UTC()
	g := &Goal{
		ID:        uuid.New(),
		OwnerID:   actor.ID,
		Status:    StatusDraft,
		Progress:  0,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyFields(g, dto)

	if err := s.repo.Create(g); err != nil {
		log.WithError(err).Error("Failed to create goal")
		return nil, err
	}

	log.WithField("goal_id", g.ID).Info("Goal created")
	resp := toResponse(g)
	return &resp, nil
}

func (s *goalService) Get(ctx context.Context, actor user.Actor, id uuid.UUID) (*GoalResponse, error) {
	log := goalLogger(ctx, actor, id)

	g, err := s.repo.FindByID(id)
	if err != nil {
		log.WithError(err).Warn("Goal lookup failed")
		return nil, err
	}

	if !IsOwner(actor, g) {
		owner, err := s.userRepo.GetByID(g.OwnerID)
		if err != nil {
			log.WithError(err).Error("Failed to load goal owner")
			return nil, err
		}
		if !CanView(actor, g, owner) {
			log.Warn("Goal read denied")
			return nil, apperror.Forbidden("you cannot view this goal")
		}
	}

	resp := toResponse(g)
	return &resp, nil
}

func (s *goalService) ListOwn(ctx context.Context, actor user.Actor) ([]GoalResponse, error) {
	goals, err := s.repo.ListByOwner(actor.ID)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to list own goals")
		return nil, err
	}
	return toResponses(goals), nil
}

// ListTeam returns every goal for admins, the goals of direct reports with the
// employee role for reviewers, and the caller's own goals for employees.
func (s *goalService) ListTeam(ctx context.Context, actor user.Actor) ([]GoalResponse, error) {
	log := config.WithContext(ctx).WithField("actor_id", actor.ID)

	var (
		goals []*Goal
		err   error
	)
	switch actor.Role {
	case user.RoleAdmin:
		goals, err = s.repo.ListAll()
	case user.RoleReviewer:
		var reports []*user.User
		reports, err = s.userRepo.ListByManager(actor.ID)
		if err == nil {
			ids := make([]uuid.UUID, 0, len(reports))
			for _, r := range reports {
				if r.Role == user.RoleEmployee {
					ids = append(ids, r.ID)
				}
			}
			goals, err = s.repo.ListByOwners(ids)
		}
	default:
		goals, err = s.repo.ListByOwner(actor.ID)
	}
	if err != nil {
		log.WithError(err).Error("Failed to list team goals")
		return nil, err
	}
	return toResponses(goals), nil
}

// ReviewQueue lists submitted goals the actor may currently act on.
func (s *goalService) ReviewQueue(ctx context.Context, actor user.Actor) ([]GoalResponse, error) {
	log := config.WithContext(ctx).WithField("actor_id", actor.ID)

	if !actor.IsReviewerOrAdmin() {
		log.Warn("Employee attempted to read the review queue")
		return nil, apperror.Forbidden("only reviewers and admins have a review queue")
	}

	submitted, err := s.repo.ListByStatus(StatusSubmitted)
	if err != nil {
		log.WithError(err).Error("Failed to list submitted goals")
		return nil, err
	}
	if actor.IsAdmin() {
		return toResponses(submitted), nil
	}

	owners := map[uuid.UUID]*user.User{}
	queue := make([]*Goal, 0, len(submitted))
	for _, g := range submitted {
		owner, ok := owners[g.OwnerID]
		if !ok {
			owner, err = s.userRepo.GetByID(g.OwnerID)
			if err != nil {
				log.WithError(err).WithField("goal_id", g.ID).Warn("Skipping goal with unknown owner")
				continue
			}
			owners[g.OwnerID] = owner
		}
		if CanReview(actor, g, owner) {
			queue = append(queue, g)
		}
	}
	return toResponses(queue), nil
}

func (s *goalService) Update(ctx context.Context, actor user.Actor, id uuid.UUID, dto GoalFieldsDTO) (*GoalResponse, error) {
	log := goalLogger(ctx, actor, id)

	g, err := s.repo.FindByID(id)
	if err != nil {
		log.WithError(err).Warn("Goal lookup failed")
		return nil, err
	}
	if !CanEdit(actor, g) {
		log.WithField("status", g.Status).Warn("Goal edit denied")
		return nil, apperror.Forbidden("only the owner can edit a goal, and only while it is a draft")
	}
	if err := s.validateFields(dto, g.OwnerID); err != nil {
		log.WithError(err).Warn("Invalid goal fields")
		return nil, err
	}

	applyFields(g, dto)
	if err := s.repo.Update(g); err != nil {
		log.WithError(err).Warn("Failed to update goal")
		return nil, err
	}

	log.Info("Goal updated")
	resp := toResponse(g)
	return &resp, nil
}

func (s *goalService) Delete(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	log := goalLogger(ctx, actor, id)

	g, err := s.repo.FindByID(id)
	if err != nil {
		log.WithError(err).Warn("Goal lookup failed")
		return err
	}
	if !CanEdit(actor, g) {
		log.WithField("status", g.Status).Warn("Goal delete denied")
		return apperror.Forbidden("only the owner can delete a goal, and only while it is a draft")
	}

	if err := s.repo.Delete(g); err != nil {
		log.WithError(err).Warn("Failed to delete goal")
		return err
	}

	log.Info("Goal deleted")
	return nil
}

func (s *goalService) Submit(ctx context.Context, actor user.Actor, id uuid.UUID) (*GoalResponse, error) {
	log := goalLogger(ctx, actor, id)

	g, err := s.repo.FindByID(id)
	if err != nil {
		log.WithError(err).Warn("Goal lookup failed")
		return nil, err
	}
	if !CanSubmit(actor, g) {
		log.Warn("Goal submit denied")
		return nil, apperror.Forbidden("only the owner can submit a goal")
	}
	if g.Status != StatusDraft {
		return nil, apperror.Validation("only draft goals can be submitted, goal is %s", g.Status)
	}

	owner, err := s.submissionOwner(ctx, actor)
	if err != nil {
		return nil, err
	}

	if err := s.transition(g, StatusSubmitted, owner); err != nil {
		log.WithError(err).Warn("Failed to submit goal")
		return nil, err
	}

	log.Info("Goal submitted")
	s.notifySubmitted(ctx, g, owner)

	resp := toResponse(g)
	return &resp, nil
}

// SubmitAll submits every draft goal of the actor in creation order. Each goal
// transitions on its own; a goal that loses a race is reported in Failed and
// the rest still go through.
func (s *goalService) SubmitAll(ctx context.Context, actor user.Actor) (*SubmitAllResult, error) {
	log := config.WithContext(ctx).WithField("actor_id", actor.ID)

	drafts, err := s.repo.ListByOwnerAndStatus(actor.ID, StatusDraft)
	if err != nil {
		log.WithError(err).Error("Failed to list draft goals")
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, apperror.Validation("no draft goals available to submit for review")
	}

	owner, err := s.submissionOwner(ctx, actor)
	if err != nil {
		return nil, err
	}

	result := &SubmitAllResult{Submitted: make([]GoalResponse, 0, len(drafts))}
	for _, g := range drafts {
		if err := s.transition(g, StatusSubmitted, owner); err != nil {
			log.WithError(err).WithField("goal_id", g.ID).Warn("Goal not submitted in batch")
			result.Failed = append(result.Failed, SubmitFailure{
				GoalID:  g.ID,
				Error:   string(apperror.KindOf(err)),
				Message: err.Error(),
			})
			continue
		}
		result.Submitted = append(result.Submitted, toResponse(g))
		s.notifySubmitted(ctx, g, owner)
	}
	result.Updated = len(result.Submitted)

	log.WithFields(logrus.Fields{
		"submitted": result.Updated,
		"failed":    len(result.Failed),
	}).Info("Draft goals submitted")
	return result, nil
}

// submissionOwner loads the actor's user record and enforces that an
// organizational reviewer exists.
func (s *goalService) submissionOwner(ctx context.Context, actor user.Actor) (*user.User, error) {
	log := config.WithContext(ctx).WithField("actor_id", actor.ID)

	owner, err := s.userRepo.GetByID(actor.ID)
	if err != nil {
		log.WithError(err).Error("Failed to load submitting user")
		return nil, err
	}
	if !assignment.CanSubmit(owner) {
		log.Warn("Submission blocked, no manager or appraiser assigned")
		return nil, apperror.NoReviewerAssigned(
			"cannot submit goals for review: no reviewer has been assigned to you, please contact your administrator")
	}
	return owner, nil
}

func (s *goalService) Review(ctx context.Context, actor user.Actor, id uuid.UUID, dto ReviewGoalDTO) (*GoalResponse, error) {
	log := goalLogger(ctx, actor, id)

	g, err := s.repo.FindByID(id)
	if err != nil {
		log.WithError(err).Warn("Goal lookup failed")
		return nil, err
	}

	owner, err := s.userRepo.GetByID(g.OwnerID)
	if err != nil {
		log.WithError(err).Error("Failed to load goal owner")
		return nil, err
	}
	if !CanReview(actor, g, owner) {
		log.Warn("Goal review denied")
		return nil, apperror.Forbidden("you are not the assigned reviewer for this goal")
	}

	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	if g.Status != StatusSubmitted {
		return nil, apperror.Validation("only submitted goals can be reviewed, goal is %s", g.Status)
	}

	target, _ := dto.Action.Target()
	if feedback := strings.TrimSpace(dto.Feedback); feedback != "" {
		if g.Comments != "" {
			g.Comments += "\n"
		}
		g.Comments += "[Reviewer]: " + feedback
	}

	if err := s.transition(g, target, owner); err != nil {
		log.WithError(err).Warn("Failed to apply review")
		return nil, err
	}

	log.WithField("action", dto.Action).Info("Goal reviewed")
	if err := s.notifier.GoalReviewed(ctx, notification.GoalReviewed{
		GoalID:     g.ID,
		GoalTitle:  g.Title,
		OwnerID:    g.OwnerID,
		ReviewerID: actor.ID,
		Action:     string(dto.Action),
		Feedback:   dto.Feedback,
	}); err != nil {
		log.WithError(err).Warn("Failed to notify goal owner")
	}

	resp := toResponse(g)
	return &resp, nil
}

// transition moves g to next if the lifecycle allows it and persists the
// change with a version check. Submission pins the reviewer resolved from
// owner in the same write; returning to draft releases it.
func (s *goalService) transition(g *Goal, next Status, owner *user.User) error {
	if !g.Status.CanTransition(next) {
		return apperror.Validation("goal cannot move from %s to %s", g.Status, next)
	}
	prevStatus, prevReviewer := g.Status, g.AssignedReviewerID
	switch next {
	case StatusSubmitted:
		g.AssignedReviewerID = assignment.ResolveReviewer(g.ReviewerID, owner)
	case StatusDraft:
		g.AssignedReviewerID = nil
	}
	g.Status = next
	if err := s.repo.Update(g); err != nil {
		g.Status, g.AssignedReviewerID = prevStatus, prevReviewer
		return err
	}
	return nil
}

func (s *goalService) notifySubmitted(ctx context.Context, g *Goal, owner *user.User) {
	reviewer := g.ReviewerFor(owner)
	if reviewer == nil {
		return
	}
	if err := s.notifier.GoalSubmitted(ctx, notification.GoalSubmitted{
		GoalID:     g.ID,
		GoalTitle:  g.Title,
		OwnerID:    g.OwnerID,
		ReviewerID: *reviewer,
	}); err != nil {
		config.WithContext(ctx).WithError(err).WithField("goal_id", g.ID).Warn("Failed to notify reviewer")
	}
}
