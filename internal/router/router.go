package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/saulo-duarte/appraisal-lambda/docs"
	"github.com/saulo-duarte/appraisal-lambda/internal/auth"
	"github.com/saulo-duarte/appraisal-lambda/internal/config"
	"github.com/saulo-duarte/appraisal-lambda/internal/goal"
	"github.com/saulo-duarte/appraisal-lambda/internal/middlewares"
	"github.com/saulo-duarte/appraisal-lambda/internal/review"
	"github.com/saulo-duarte/appraisal-lambda/internal/user"
)

type RouterConfig struct {
	UserHandler   *user.Handler
	GoalHandler   *goal.Handler
	ReviewHandler *review.Handler
}

func New(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: config.Logger, NoColor: true}))
	r.Use(middleware.Recoverer)
	r.Use(middlewares.CorsMiddleware)

	r.Get("/swagger/*", httpSwagger.WrapHandler)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		config.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware)

		r.Mount("/users", user.Routes(cfg.UserHandler))
		r.Mount("/goals", goal.Routes(cfg.GoalHandler))
		r.Mount("/reviews", review.Routes(cfg.ReviewHandler))
	})
	return r
}
