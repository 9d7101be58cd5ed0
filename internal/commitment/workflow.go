package commitment

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/helporphan/donations-api/internal/aws"
	"github.com/helporphan/donations-api/internal/donations"
	"github.com/helporphan/donations-api/internal/wishlist"
)

// Outcome classifies a commitment that got past the donation-log write.
// A failed log write is a hard failure and is reported as an error instead.
type Outcome string

const (
	// OutcomeCommitted: log written and item patched.
	OutcomeCommitted Outcome = "committed"
	// OutcomePartial: log written but the item patch failed; the record stays.
	OutcomePartial Outcome = "partial"
)

// PartialReason explains why a commitment ended partial.
type PartialReason string

const (
	ReasonItemNotFound PartialReason = "item_not_found"
	ReasonConflict     PartialReason = "already_fulfilled"
	ReasonStoreError   PartialReason = "store_error"
)

// CommitRequest is the donor's intent to fulfill a specific wishlist item.
// ItemID is a weak reference: existence is not checked before the log write.
type CommitRequest struct {
	ItemID        string
	DonorName     string
	ContactEmail  string
	ItemCommitted string // client-supplied fallback name, used when the item cannot be read
}

// Result is the consolidated tri-state outcome of a commitment.
type Result struct {
	Donation donations.Record
	Item     *wishlist.Item // nil unless the patch succeeded
	Outcome  Outcome
	Reason   PartialReason // set only when Outcome is OutcomePartial
	PatchErr error         // underlying patch failure, for logging/diagnostics
}

// NotificationMessage is the payload enqueued for the notification worker.
type NotificationMessage struct {
	DonationID    string `json:"donation_id"`
	ItemID        string `json:"item_id"`
	DonorName     string `json:"donor_name"`
	ContactEmail  string `json:"contact_email"`
	ItemCommitted string `json:"item_committed"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// Workflow turns a donor's commitment into durable state plus a queued
// thank-you notification. The two writes (donation log, then fulfillment
// patch) span two tables with no transaction between them: a failed patch
// leaves the log entry in place and is surfaced as a partial result.
type Workflow struct {
	Donations *donations.Store
	Wishlist  *wishlist.Store
	Notifier  *aws.Publisher
	Metrics   *aws.Metrics

	// StrictFulfillment makes the patch conditional on the item not already
	// being fulfilled (first writer wins). Off by default: the legacy
	// behavior lets concurrent commitments race and the last write land.
	StrictFulfillment bool
}

// Commit runs the workflow:
//  1. persist the donation record (hard failure aborts everything),
//  2. patch the referenced item (failure is partial, never rolled back),
//  3. enqueue the notification and record a metric, both best-effort.
func (w *Workflow) Commit(ctx context.Context, req CommitRequest) (Result, error) {
	// Resolve the item-name snapshot. Best-effort: the log write must not
	// depend on the wishlist read, so a miss falls back to the client value.
	itemName := req.ItemCommitted
	if it, err := w.Wishlist.Get(ctx, req.ItemID); err == nil && it != nil {
		itemName = it.Item
	}

	rec, err := w.Donations.Create(ctx, donations.Record{
		ItemID:        req.ItemID,
		ItemCommitted: itemName,
		DonorName:     req.DonorName,
		ContactEmail:  req.ContactEmail,
	})
	if err != nil {
		return Result{}, err
	}

	res := Result{Donation: rec, Outcome: OutcomeCommitted}

	item, patchErr := w.Wishlist.ApplyFulfillment(ctx, req.ItemID, true, req.DonorName, w.StrictFulfillment)
	if patchErr != nil {
		res.Outcome = OutcomePartial
		res.PatchErr = patchErr
		switch {
		case errors.Is(patchErr, wishlist.ErrNotFound):
			res.Reason = ReasonItemNotFound
		case errors.Is(patchErr, wishlist.ErrAlreadyFulfilled):
			res.Reason = ReasonConflict
		default:
			res.Reason = ReasonStoreError
		}
		log.Printf("[commit] donation=%s logged but item patch failed: %v", rec.DonationID, patchErr)
	} else {
		res.Item = item
	}

	w.notify(ctx, rec, itemName)
	w.record(ctx, res)

	return res, nil
}

// notify enqueues the thank-you job. Failures are logged only; they never
// change the outcome determined by the two writes above.
func (w *Workflow) notify(ctx context.Context, rec donations.Record, itemName string) {
	if w.Notifier == nil {
		return
	}
	msg := NotificationMessage{
		DonationID:    rec.DonationID,
		ItemID:        rec.ItemID,
		DonorName:     rec.DonorName,
		ContactEmail:  rec.ContactEmail,
		ItemCommitted: itemName,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[commit] marshal notification for donation=%s: %v", rec.DonationID, err)
		return
	}
	attrs := map[string]string{
		"donation_id": rec.DonationID,
		"item_id":     rec.ItemID,
	}
	if err := w.Notifier.SendNotificationMessage(ctx, string(body), attrs); err != nil {
		log.Printf("[commit] enqueue notification for donation=%s: %v", rec.DonationID, err)
	}
}

func (w *Workflow) record(ctx context.Context, res Result) {
	if w.Metrics == nil {
		return
	}
	outcome := string(res.Outcome)
	if res.Reason == ReasonConflict {
		outcome = "conflict"
	}
	if err := w.Metrics.RecordCommitOutcome(ctx, outcome); err != nil {
		log.Printf("[commit] record metric: %v", err)
	}
}
