package goal

import (
	"github.com/saulo-duarte/appraisal-lambda/internal/notification"
	"github.com/saulo-duarte/appraisal-lambda/internal/user"
	"gorm.io/gorm"
)

type GoalContainer struct {
	Handler *Handler
	Service GoalService
	Repo    GoalRepository
}

func NewGoalContainer(db *gorm.DB, userRepo user.UserRepository, notifier notification.Notifier) *GoalContainer {
	repo := NewRepository(db)
	service := NewService(repo, userRepo, notifier)
	handler := NewHandler(service)

	return &GoalContainer{
		Handler: handler,
		Service: service,
		Repo:    repo,
	}
}
