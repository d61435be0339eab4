package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/marcheligne/storefront/internal/aws"
	"github.com/marcheligne/storefront/internal/cart"
	"github.com/marcheligne/storefront/internal/catalog"
	"github.com/marcheligne/storefront/internal/config"
	"github.com/marcheligne/storefront/internal/handlers"
	"github.com/marcheligne/storefront/internal/metrics"
	"github.com/marcheligne/storefront/internal/render"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(handlers.RequestLogger(cfg.Logger))
	r.SetHTMLTemplate(cfg.Renderer.Template())
	r.Static("/static", "./static")

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	countries := handlers.RegisterPageRoutes(r, cfg)
	handlers.RegisterCartRoutes(r, cfg)
	handlers.RegisterSearchRoutes(r, cfg, countries)

	return r
}

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "storefront").Logger()

	cf, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()
	clients, err := aws.NewAWSClients(ctx, cf.AWSRegion)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init aws clients")
	}

	renderer, err := render.New(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse templates")
	}

	cartStore := cart.NewStore(cart.NewDynamoStorage(clients.DynamoDB, cf.CartsTable), logger)
	catalogStore := catalog.NewStore(clients.DynamoDB, cf.CatalogTable, cf.CategoriesTable, cf.CountriesTable)

	cfg := handlers.HandlerConfig{
		Cart:     cartStore,
		Catalog:  catalogStore,
		Renderer: renderer,
		Metrics:  metrics.NewPublisher(clients.CloudWatch, cf.MetricsNamespace, logger),
		Logger:   logger,
	}

	// downstream analytics consume cart activity from the queue
	if cf.CartEventsQueueURL != "" {
		publisher := aws.NewPublisher(clients.SQS, cf.CartEventsQueueURL)
		handlers.PublishCartEvents(cartStore, func(ctx context.Context, ev cart.Event) error {
			body, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			return publisher.SendCartEvent(ctx, string(body), map[string]string{
				"cart_id": ev.CartID,
				"action":  ev.Action,
			})
		}, logger)
	}

	r := setupRouter(cfg)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if cf.RunLocal {
		addr := ":" + cf.ServerPort
		logger.Info().Str("addr", addr).Msg("running local server")
		if err := r.Run(addr); err != nil {
			logger.Fatal().Err(err).Msg("failed to run local server")
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
