package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/saulo-duarte/appraisal-lambda/internal/apperror"
	"github.com/saulo-duarte/appraisal-lambda/internal/config"
	"github.com/sirupsen/logrus"
)

type UserService interface {
	GetUser(ctx context.Context, actor Actor) (*User, error)
	SetReportingLinks(ctx context.Context, actor Actor, userID uuid.UUID, dto UpdateReportingDTO) (*User, error)
}

type userService struct {
	repo UserRepository
}

func NewService(repo UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetUser(ctx context.Context, actor Actor) (*User, error) {
	u, err := s.repo.GetByID(actor.ID)
	if err != nil {
		config.WithContext(ctx).WithError(err).Warn("Failed to load current user")
		return nil, err
	}
	return u, nil
}

// SetReportingLinks is the admin operation that assigns a user's manager and
// appraiser. It is what unblocks goal submission for users with neither.
func (s *userService) SetReportingLinks(ctx context.Context, actor Actor, userID uuid.UUID, dto UpdateReportingDTO) (*User, error) {
	log := config.WithContext(ctx).WithField("target_user_id", userID)

	if !actor.IsAdmin() {
		log.Warn("Non-admin attempted to change reporting links")
		return nil, apperror.Forbidden("only admins can change reporting links")
	}
	if (dto.ManagerID != nil && *dto.ManagerID == userID) || (dto.AppraiserID != nil && *dto.AppraiserID == userID) {
		return nil, apperror.Validation("a user cannot review themselves")
	}

	for _, linked := range []*uuid.UUID{dto.ManagerID, dto.AppraiserID} {
		if linked == nil {
			continue
		}
		if _, err := s.repo.GetByID(*linked); err != nil {
			log.WithError(err).Warn("Reporting link points to unknown user")
			return nil, err
		}
	}

	if err := s.repo.UpdateReportingLinks(userID, dto.ManagerID, dto.AppraiserID); err != nil {
		log.WithError(err).Error("Failed to update reporting links")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"manager_id":   dto.ManagerID,
		"appraiser_id": dto.AppraiserID,
	}).Info("Reporting links updated")

	return s.repo.GetByID(userID)
}
