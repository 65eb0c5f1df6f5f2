package main

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"

	"github.com/saulo-duarte/appraisal-lambda/internal/config"
	"github.com/saulo-duarte/appraisal-lambda/internal/container"
	"github.com/saulo-duarte/appraisal-lambda/internal/router"
)

// @title Appraisal API
// @version 1.0
// @description Goal lifecycle and review workflow.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	c := container.New()

	r := router.New(router.RouterConfig{
		UserHandler:   c.UserContainer.Handler,
		GoalHandler:   c.GoalContainer.Handler,
		ReviewHandler: c.ReviewContainer.Handler,
	})

	if config.GetEnv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		adapter := chiadapter.New(r)
		lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
			return adapter.ProxyWithContext(ctx, req)
		})
		return
	}

	port := config.GetEnv("PORT", "8080")
	config.Logger.WithField("port", port).Info("Starting HTTP server")
	if err := http.ListenAndServe(":"+port, r); err != nil {
		config.Logger.WithError(err).Fatal("HTTP server stopped")
	}
}
