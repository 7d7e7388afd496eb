package main

import (
	"context"
	"log"
	"os"

	"stockhome/cmd"
	"stockhome/internal/logger"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
)

// The lambda runs one screening pass per scheduled CloudWatch event; the
// schedule itself lives in the event rule, not here.
type lambdaHandler struct {
	handler *cmd.Handler
}

func (m lambdaHandler) Handle(ctx context.Context, event events.CloudWatchEvent) error {
	ctx = context.WithValue(ctx, logger.ContextKey, logger.New())
	log := logger.FromContext(ctx)

	log.Infow("scheduled event received", "source", event.Source, "time", event.Time)

	artifact, err := m.handler.ScreenerService.Run(ctx)
	if err != nil {
		return err
	}
	log.Infow("run published", "runID", artifact.RunID, "buys", len(artifact.Buys))
	return nil
}

func main() {
	configPath := os.Getenv("STOCKHOME_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	handler, err := cmd.InitializeDependencies(configPath)
	if err != nil {
		log.Fatal(err)
	}
	lambda.Start(lambdaHandler{handler: handler}.Handle)
}
