package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/helporphan/donations-api/internal/auth"
	"github.com/helporphan/donations-api/internal/aws"
	"github.com/helporphan/donations-api/internal/handlers"
)

func setupRouter(cfg handlers.HandlerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handlers.RegisterWishlistRoutes(r, cfg)
	handlers.RegisterDonationRoutes(r, cfg)

	return r
}

func main() {
	clients, err := aws.NewAWSClients(context.Background())

	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	cfg := handlers.HandlerConfig{
		DynamoDBClient:    clients.DynamoDB,
		SQSClient:         clients.SQS,
		CloudWatchClient:  clients.CloudWatch,
		WishlistTable:     os.Getenv("WISHLIST_TABLE"),
		DonationsTable:    os.Getenv("DONATIONS_TABLE"),
		QueueURL:          os.Getenv("NOTIFY_QUEUE_URL"),
		Verifier:          auth.NewVerifier(os.Getenv("JWT_SECRET")),
		AdminEmails:       auth.ParseAdminSet(os.Getenv("ADMIN_EMAILS")),
		MetricsNamespace:  os.Getenv("METRICS_NAMESPACE"),
		StrictFulfillment: os.Getenv("STRICT_FULFILLMENT") == "true",
	}

	r := setupRouter(cfg)

	// if environment variable RUN_LOCAL is set to "true", run local HTTP server for development.
	if os.Getenv("RUN_LOCAL") == "true" {
		addr := ":8080"
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		}
		log.Printf("running local server on %s", addr)
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (interface{}, error) {
		// the adapter handles proxying; use adapter.ProxyWithContext for proper context propagation
		return adapter.ProxyWithContext(ctx, req)
	})
}
