// Command lambda serves the ideaboard API behind API Gateway HTTP APIs.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"ideaboard/infrastructure/config"
	"ideaboard/infrastructure/di"
	"ideaboard/interfaces/http/rest"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var (
	app *lambdaApp

	coldStart     = true
	coldStartTime time.Time
)

// lambdaApp holds what survives between invocations of a warm container
type lambdaApp struct {
	adapter   *chiadapter.ChiLambdaV2
	container *di.Container
	cleanup   func()
}

func newLambdaApp(ctx context.Context, cfg *config.Config) (*lambdaApp, error) {
	cfg.IsLambda = true

	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize container: %w", err)
	}

	router := rest.NewRouter(
		container.Controller,
		container.Notices,
		container.LocalExpander,
		container.Metrics,
		container.Logger,
		rest.Options{EnableCORS: cfg.EnableCORS, Debug: cfg.IsDevelopment()},
	)

	mux, ok := router.Setup().(*chi.Mux)
	if !ok {
		cleanup()
		return nil, fmt.Errorf("router is not a chi.Mux")
	}

	return &lambdaApp{
		adapter:   chiadapter.NewV2(mux),
		container: container,
		cleanup:   cleanup,
	}, nil
}

func (a *lambdaApp) handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	resp, err := a.adapter.ProxyWithContextV2(ctx, req)
	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}

	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		resp.Headers["X-Cold-Start-Duration"] = time.Since(coldStartTime).String()
		coldStart = false
	} else {
		resp.Headers["X-Cold-Start"] = "false"
	}
	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Request-ID"] = req.RequestContext.RequestID
	}

	a.container.Logger.Debug("Lambda response",
		zap.String("method", req.RequestContext.HTTP.Method),
		zap.String("path", req.RequestContext.HTTP.Path),
		zap.String("request_id", req.RequestContext.RequestID),
		zap.Int("status_code", resp.StatusCode),
	)
	if resp.StatusCode >= 500 {
		a.container.Logger.Error("Lambda error response",
			zap.String("body", resp.Body),
			zap.Int("status_code", resp.StatusCode),
		)
	}

	return resp, err
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	return app.handle(ctx, req)
}

func main() {
	coldStartTime = time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err = newLambdaApp(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Lambda init failed: %v", err)
	}
	defer app.cleanup()

	app.container.Logger.Info("Lambda cold start completed",
		zap.Duration("duration", time.Since(coldStartTime)),
		zap.String("storage", cfg.StorageBackend),
	)

	lambda.Start(Handler)
}
