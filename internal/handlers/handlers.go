package handlers

import (
	"github.com/helporphan/donations-api/internal/auth"
	"github.com/helporphan/donations-api/internal/aws"
)

// HandlerConfig groups dependencies for the API handlers.
type HandlerConfig struct {
	DynamoDBClient   aws.DynamoDBAPI
	SQSClient        aws.SQSAPI
	CloudWatchClient aws.CloudWatchAPI

	WishlistTable  string
	DonationsTable string
	QueueURL       string

	Verifier    *auth.Verifier
	AdminEmails auth.AdminSet

	MetricsNamespace  string
	StrictFulfillment bool
}
