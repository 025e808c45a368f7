package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/rs/zerolog/log"

	"github.com/Kunal-047/Chess-engine/app"
	"github.com/Kunal-047/Chess-engine/app/config"
	"github.com/Kunal-047/Chess-engine/app/logger"
)

var ginLambda *ginadapter.GinLambda

// init runs once per Lambda container (cold start)
func init() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	cfg.Logs.Style = "json"
	logger.Init(cfg.Logs)

	ctx := context.Background()
	app.MustInitDB(ctx, cfg.DB)

	var sender app.MessageSender
	if cfg.QueueURL != "" {
		client, err := app.NewSQSClient(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create SQS client")
		}
		sender = client
	}

	router, err := app.NewRouter(cfg, sender)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize router")
	}
	ginLambda = ginadapter.New(router)
}

// Handler is the Lambda entrypoint for API Gateway REST/HTTP API (proxy integration)
func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
