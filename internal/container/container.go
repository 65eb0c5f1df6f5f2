package container

import (
	"context"

	"github.com/saulo-duarte/appraisal-lambda/internal/auth"
	"github.com/saulo-duarte/appraisal-lambda/internal/config"
	"github.com/saulo-duarte/appraisal-lambda/internal/goal"
	"github.com/saulo-duarte/appraisal-lambda/internal/notification"
	"github.com/saulo-duarte/appraisal-lambda/internal/review"
	"github.com/saulo-duarte/appraisal-lambda/internal/user"
)

type Container struct {
	UserContainer   *user.UserContainer
	GoalContainer   *goal.GoalContainer
	ReviewContainer *review.ReviewContainer
}

func New() *Container {
	config.Init()
	auth.Init()

	ctx := context.Background()
	log := config.WithContext(ctx)

	dsn := config.GetEnv("DATABASE_DSN")
	if err := config.Connect(ctx, dsn); err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	if config.GetEnv("AUTO_MIGRATE", "true") == "true" {
		if err := config.Migrate(config.DB,
			&user.User{},
			&goal.Goal{},
			&goal.ProgressEntry{},
			&review.Review{},
		); err != nil {
			log.WithError(err).Fatal("Failed to migrate database")
		}
	}

	userContainer := user.NewUserContainer(config.DB)

	notifier := notification.NewLogNotifier()
	if mailCfg, ok := notification.MailConfigFromEnv(); ok {
		notifier = notification.Multi(
			notifier,
			notification.NewMailNotifier(notification.NewDialer(mailCfg), mailCfg.From, userContainer.Repo),
		)
		log.WithField("smtp_host", mailCfg.Host).Info("Mail notifications enabled")
	}

	goalContainer := goal.NewGoalContainer(config.DB, userContainer.Repo, notifier)
	reviewContainer := review.NewReviewContainer(config.DB, goalContainer.Repo, userContainer.Repo)

	return &Container{
		UserContainer:   userContainer,
		GoalContainer:   goalContainer,
		ReviewContainer: reviewContainer,
	}
}
