package review

import (
	"github.com/saulo-duarte/appraisal-lambda/internal/goal"
	"github.com/saulo-duarte/appraisal-lambda/internal/user"
	"gorm.io/gorm"
)

type ReviewContainer struct {
	Handler *Handler
	Service ReviewService
}

func NewReviewContainer(db *gorm.DB, goalRepo goal.GoalRepository, userRepo user.UserRepository) *ReviewContainer {
	repo := NewRepository(db)
	service := NewService(repo, goalRepo, userRepo)
	handler := NewHandler(service)

	return &ReviewContainer{
		Handler: handler,
		Service: service,
	}
}
