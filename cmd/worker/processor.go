package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aws/aws-lambda-go/events"

	"github.com/helporphan/donations-api/internal/aws"
	"github.com/helporphan/donations-api/internal/notify"
	"github.com/helporphan/donations-api/internal/wishlist"
)

// Processor delivers thank-you emails for logged commitments and performs
// best-effort fulfillment reconciliation for items the commit-time patch
// missed.
type Processor struct {
	mailer        *notify.Mailer
	wishlistStore *wishlist.Store
}

// NewProcessor creates a worker processor with AWS clients injected.
func NewProcessor(clients *aws.AWSClients, wishlistTable, senderEmail string) *Processor {
	return &Processor{
		mailer:        notify.NewMailer(clients.SES, senderEmail),
		wishlistStore: wishlist.NewStore(clients.DynamoDB, wishlistTable),
	}
}

// Handle receives an SQS batch event and processes each message.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) error {
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			// Return error: Lambda will retry. If failed too many times, message goes to DLQ.
			log.Printf("worker error: %v", err)
			return err
		}
	}
	return nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var job NotificationJob
	if err := json.Unmarshal([]byte(rec.Body), &job); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}

	log.Printf("[worker] received donation=%s item=%s corr=%s",
		job.DonationID, job.ItemID, job.CorrelationID)

	// Step 1: deliver the thank-you email. Errors here let SQS retry; the
	// commitment itself was settled long before this point.
	if err := p.mailer.SendThankYou(ctx, job.DonorName, job.ContactEmail, job.ItemCommitted); err != nil {
		return fmt.Errorf("send thank-you for donation=%s: %w", job.DonationID, err)
	}

	// Step 2: reconcile. The commit-time patch can have failed while the log
	// write succeeded; if the item still exists unfulfilled, retry the patch.
	// Best-effort: reconciliation failures never fail the message.
	p.reconcile(ctx, job)

	log.Printf("[worker] completed donation=%s", job.DonationID)
	return nil
}

func (p *Processor) reconcile(ctx context.Context, job NotificationJob) {
	item, err := p.wishlistStore.Get(ctx, job.ItemID)
	if err != nil {
		log.Printf("[worker] reconcile read item=%s: %v", job.ItemID, err)
		return
	}
	if item == nil {
		// the weak reference points nowhere; the log entry stays as-is
		log.Printf("[worker] reconcile: item=%s no longer exists, donation=%s left unreconciled", job.ItemID, job.DonationID)
		return
	}
	if item.Fulfilled {
		return
	}
	if _, err := p.wishlistStore.ApplyFulfillment(ctx, job.ItemID, true, job.DonorName, false); err != nil {
		log.Printf("[worker] reconcile patch item=%s: %v", job.ItemID, err)
		return
	}
	log.Printf("[worker] reconciled item=%s for donation=%s", job.ItemID, job.DonationID)
}
