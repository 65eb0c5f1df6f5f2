package review

import (
	"context"
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/apperror"
	"github.com/saulo-duarte/appraisal-lambda/internal/config"
	"github.com/saulo-duarte/appraisal-lambda/internal/goal"
	"github.com/saulo-duarte/appraisal-lambda/internal/user"
	"github.com/saulo-duarte/appraisal-lambda/internal/validation"
	"github.com/sirupsen/logrus"
)

const recentReviewsLimit = 5

type ReviewService interface {
	SubmitSelfAssessment(ctx context.Context, actor user.Actor, goalID uuid.UUID, dto SubmitReviewDTO) (*ReviewResponse, error)
	SubmitManagerReview(ctx context.Context, actor user.Actor, goalID uuid.UUID, dto SubmitReviewDTO) (*ReviewResponse, error)
	List(ctx context.Context, actor user.Actor, filter ReviewFilter) ([]ReviewResponse, error)
	Get(ctx context.Context, actor user.Actor, id uuid.UUID) (*ReviewResponse, error)
	Delete(ctx context.Context, actor user.Actor, id uuid.UUID) error
	Summary(ctx context.Context, actor user.Actor) (*Summary, error)
	Compare(ctx context.Context, actor user.Actor, goalID uuid.UUID, quarter string) ([]Comparison, error)
}

type reviewService struct {
	repo     ReviewRepository
	goalRepo goal.GoalRepository
	userRepo user.UserRepository
}

func NewService(repo ReviewRepository, goalRepo goal.GoalRepository, userRepo user.UserRepository) ReviewService {
	return &reviewService{
		repo:     repo,
		goalRepo: goalRepo,
		userRepo: userRepo,
	}
}

func (s *reviewService) SubmitSelfAssessment(ctx context.Context, actor user.Actor, goalID uuid.UUID, dto SubmitReviewDTO) (*ReviewResponse, error) {
	log := config.WithContext(ctx).WithFields(logrus.Fields{"goal_id": goalID, "actor_id": actor.ID})

	g, err := s.goalRepo.FindByID(goalID)
	if err != nil {
		log.WithError(err).Warn("Goal lookup failed")
		return nil, err
	}
	if !CanSelfAssess(actor, g) {
		log.Warn("Self-assessment denied")
		return nil, apperror.Forbidden("only the goal owner can submit a self-assessment")
	}

	return s.upsert(ctx, actor, g, TypeSelfAssessment, dto)
}

func (s *reviewService) SubmitManagerReview(ctx context.Context, actor user.Actor, goalID uuid.UUID, dto SubmitReviewDTO) (*ReviewResponse, error) {
	log := config.WithContext(ctx).WithFields(logrus.Fields{"goal_id": goalID, "actor_id": actor.ID})

	g, err := s.goalRepo.FindByID(goalID)
	if err != nil {
		log.WithError(err).Warn("Goal lookup failed")
		return nil, err
	}
	owner, err := s.userRepo.GetByID(g.OwnerID)
	if err != nil {
		log.WithError(err).Error("Failed to load goal owner")
		return nil, err
	}
	if !CanManagerReview(actor, g, owner) {
		log.Warn("Manager review denied")
		return nil, apperror.Forbidden("only the assigned reviewer or an admin can submit a manager review")
	}

	return s.upsert(ctx, actor, g, TypeManagerReview, dto)
}

func (s *reviewService) upsert(ctx context.Context, actor user.Actor, g *goal.Goal, reviewType ReviewType, dto SubmitReviewDTO) (*ReviewResponse, error) {
	log := config.WithContext(ctx).WithFields(logrus.Fields{
		"goal_id":     g.ID,
		"actor_id":    actor.ID,
		"review_type": reviewType,
	})

	dto.Quarter = strings.TrimSpace(dto.Quarter)
	if err := validation.Struct(dto); err != nil {
		return nil, err
	}
	if !isReviewable(g.Status) {
		return nil, apperror.Validation("goal must be submitted for review before it can be assessed, goal is %s", g.Status)
	}

	stored, err := s.repo.Upsert(&Review{
		ID:                  uuid.New(),
		GoalID:              g.ID,
		AuthorID:            actor.ID,
		ReviewType:          reviewType,
		Quarter:             dto.Quarter,
		Rating:              dto.Rating,
		Comments:            strings.TrimSpace(dto.Comments),
		Strengths:           strings.TrimSpace(dto.Strengths),
		AreasForImprovement: strings.TrimSpace(dto.AreasForImprovement),
	})
	if err != nil {
		log.WithError(err).Error("Failed to store review")
		return nil, err
	}

	log.WithFields(logrus.Fields{"quarter": stored.Quarter, "rating": stored.Rating}).Info("Review stored")
	resp := toResponse(stored)
	return &resp, nil
}

// visibility memoizes goal and owner lookups while filtering many reviews.
type visibility struct {
	s      *reviewService
	actor  user.Actor
	goals  map[uuid.UUID]*goal.Goal
	owners map[uuid.UUID]*user.User
}

func (s *reviewService) visibility(actor user.Actor) *visibility {
	return &visibility{
		s:      s,
		actor:  actor,
		goals:  map[uuid.UUID]*goal.Goal{},
		owners: map[uuid.UUID]*user.User{},
	}
}

func (v *visibility) canSee(r *Review) (bool, error) {
	if v.actor.IsAdmin() || r.AuthorID == v.actor.ID {
		return true, nil
	}

	g, ok := v.goals[r.GoalID]
	if !ok {
		var err error
		if g, err = v.s.goalRepo.FindByID(r.GoalID); err != nil {
			return false, err
		}
		v.goals[r.GoalID] = g
	}

	owner, ok := v.owners[g.OwnerID]
	if !ok {
		var err error
		if owner, err = v.s.userRepo.GetByID(g.OwnerID); err != nil {
			return false, err
		}
		v.owners[g.OwnerID] = owner
	}

	return CanSee(v.actor, r, g, owner), nil
}

func (s *reviewService) visible(ctx context.Context, actor user.Actor, filter ReviewFilter) ([]Review, error) {
	log := config.WithContext(ctx).WithField("actor_id", actor.ID)

	if filter.ReviewType != "" && !filter.ReviewType.IsValid() {
		return nil, apperror.FieldValidation("review_type", "review_type must be one of [self_assessment manager_review]")
	}
	if filter.Quarter != "" && !validation.IsPeriod(filter.Quarter) {
		return nil, apperror.FieldValidation("quarter", "quarter must look like \"Q1 2025\"")
	}

	all, err := s.repo.List(filter)
	if err != nil {
		log.WithError(err).Error("Failed to list reviews")
		return nil, err
	}

	v := s.visibility(actor)
	out := make([]Review, 0, len(all))
	for i := range all {
		ok, err := v.canSee(&all[i])
		if err != nil {
			if apperror.KindOf(err) == apperror.KindNotFound {
				continue
			}
			log.WithError(err).Error("Failed to resolve review visibility")
			return nil, err
		}
		if ok {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (s *reviewService) List(ctx context.Context, actor user.Actor, filter ReviewFilter) ([]ReviewResponse, error) {
	reviews, err := s.visible(ctx, actor, filter)
	if err != nil {
		return nil, err
	}
	return toResponses(reviews), nil
}

func (s *reviewService) Get(ctx context.Context, actor user.Actor, id uuid.UUID) (*ReviewResponse, error) {
	log := config.WithContext(ctx).WithFields(logrus.Fields{"review_id": id, "actor_id": actor.ID})

	r, err := s.repo.FindByID(id)
	if err != nil {
		log.WithError(err).Warn("Review lookup failed")
		return nil, err
	}

	ok, err := s.visibility(actor).canSee(r)
	if err != nil {
		log.WithError(err).Error("Failed to resolve review visibility")
		return nil, err
	}
	if !ok {
		log.Warn("Review read denied")
		return nil, apperror.Forbidden("you cannot view this review")
	}

	resp := toResponse(r)
	return &resp, nil
}

func (s *reviewService) Delete(ctx context.Context, actor user.Actor, id uuid.UUID) error {
	log := config.WithContext(ctx).WithFields(logrus.Fields{"review_id": id, "actor_id": actor.ID})

	r, err := s.repo.FindByID(id)
	if err != nil {
		log.WithError(err).Warn("Review lookup failed")
		return err
	}
	if !CanDelete(actor, r) {
		log.Warn("Review delete denied")
		return apperror.Forbidden("only the author or an admin can delete a review")
	}

	if err := s.repo.Delete(id); err != nil {
		log.WithError(err).Error("Failed to delete review")
		return err
	}

	log.Info("Review deleted")
	return nil
}

func (s *reviewService) Summary(ctx context.Context, actor user.Actor) (*Summary, error) {
	reviews, err := s.visible(ctx, actor, ReviewFilter{})
	if err != nil {
		return nil, err
	}
	return Summarize(reviews), nil
}

// Summarize computes totals over reviews. The average is rounded to two
// decimals and is 0 when there are no reviews.
func Summarize(reviews []Review) *Summary {
	sum := &Summary{
		TotalReviews:  len(reviews),
		ReviewsByType: map[ReviewType]int{},
		RecentReviews: []ReviewResponse{},
	}
	if len(reviews) == 0 {
		return sum
	}

	total := 0
	for _, r := range reviews {
		total += r.Rating
		sum.ReviewsByType[r.ReviewType]++
	}
	avg := float64(total) / float64(len(reviews))
	sum.AverageRating = math.Round(avg*100) / 100

	recent := slices.Clone(reviews)
	slices.SortStableFunc(recent, func(a, b Review) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(recent) > recentReviewsLimit {
		recent = recent[:recentReviewsLimit]
	}
	sum.RecentReviews = toResponses(recent)
	return sum
}

func (s *reviewService) Compare(ctx context.Context, actor user.Actor, goalID uuid.UUID, quarter string) ([]Comparison, error) {
	log := config.WithContext(ctx).WithFields(logrus.Fields{"goal_id": goalID, "actor_id": actor.ID})

	quarter = strings.TrimSpace(quarter)
	if quarter != "" && !validation.IsPeriod(quarter) {
		return nil, apperror.FieldValidation("quarter", "quarter must look like \"Q1 2025\"")
	}

	g, err := s.goalRepo.FindByID(goalID)
	if err != nil {
		log.WithError(err).Warn("Goal lookup failed")
		return nil, err
	}
	owner, err := s.userRepo.GetByID(g.OwnerID)
	if err != nil {
		log.WithError(err).Error("Failed to load goal owner")
		return nil, err
	}
	if !goal.CanView(actor, g, owner) {
		log.Warn("Review comparison denied")
		return nil, apperror.Forbidden("you cannot view reviews for this goal")
	}

	reviews, err := s.repo.List(ReviewFilter{GoalID: &g.ID, Quarter: quarter})
	if err != nil {
		log.WithError(err).Error("Failed to list reviews")
		return nil, err
	}

	return Compare(g, reviews, quarter), nil
}
