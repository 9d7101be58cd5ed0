package commitment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/helporphan/donations-api/internal/aws"
	"github.com/helporphan/donations-api/internal/awstest"
	"github.com/helporphan/donations-api/internal/donations"
	"github.com/helporphan/donations-api/internal/wishlist"
)

const (
	wishlistTable  = "wishlist-test"
	donationsTable = "donations-test"
)

type fixture struct {
	wf   *Workflow
	mock *awstest.DynaMock
	sqs  *awstest.FakeSQS
	cw   *awstest.FakeCloudWatch
}

func newFixture(strict bool) *fixture {
	mock := awstest.NewDynaMock().
		AddTable(wishlistTable, "item_id").
		AddTable(donationsTable, "donation_id")
	sqs := &awstest.FakeSQS{}
	cw := &awstest.FakeCloudWatch{}

	wf := &Workflow{
		Donations:         donations.NewStore(mock, donationsTable),
		Wishlist:          wishlist.NewStore(mock, wishlistTable),
		Notifier:          aws.NewPublisher(sqs, "https://queue.test/notify"),
		Metrics:           aws.NewMetrics(cw, "Test/Donations"),
		StrictFulfillment: strict,
	}
	return &fixture{wf: wf, mock: mock, sqs: sqs, cw: cw}
}

func (f *fixture) seedItem(t *testing.T, id, name string, fulfilled bool) {
	t.Helper()
	err := f.mock.Seed(wishlistTable, wishlist.Item{
		ItemID:    id,
		Item:      name,
		Quantity:  1,
		Urgency:   wishlist.UrgencyHigh,
		Orphanage: "Sunrise Home",
		Fulfilled: fulfilled,
	})
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
}

func TestCommit_FullSuccess(t *testing.T) {
	f := newFixture(false)
	f.seedItem(t, "abc123", "Shoes", false)
	ctx := context.Background()

	res, err := f.wf.Commit(ctx, CommitRequest{
		ItemID:       "abc123",
		DonorName:    "Asha",
		ContactEmail: "asha@example.com",
	})
	if err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	if res.Outcome != OutcomeCommitted {
		t.Fatalf("expected committed outcome, got %q (reason %q)", res.Outcome, res.Reason)
	}
	if res.Donation.ItemID != "abc123" || res.Donation.ItemCommitted != "Shoes" || res.Donation.DonorName != "Asha" {
		t.Fatalf("donation record mismatch: %+v", res.Donation)
	}
	if res.Donation.Status != donations.StatusCommitted {
		t.Fatalf("expected default status, got %q", res.Donation.Status)
	}
	if res.Item == nil || !res.Item.Fulfilled || res.Item.CommittedBy != "Asha" {
		t.Fatalf("item not patched: %+v", res.Item)
	}
	if f.mock.Len(donationsTable) != 1 {
		t.Fatalf("expected exactly one donation record, got %d", f.mock.Len(donationsTable))
	}

	// notification enqueued with the denormalized item name
	sent := f.sqs.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected one notification message, got %d", len(sent))
	}
	var msg NotificationMessage
	if err := json.Unmarshal([]byte(sent[0]), &msg); err != nil {
		t.Fatalf("unmarshal notification: %v", err)
	}
	if msg.DonorName != "Asha" || msg.ContactEmail != "asha@example.com" || msg.ItemCommitted != "Shoes" {
		t.Fatalf("notification payload mismatch: %+v", msg)
	}
	if f.cw.Count() != 1 {
		t.Fatalf("expected a metric publication, got %d", f.cw.Count())
	}
}

func TestCommit_LogWriteFails_HardFailure(t *testing.T) {
	f := newFixture(false)
	f.seedItem(t, "abc123", "Shoes", false)
	f.mock.FailPut[donationsTable] = errors.New("provisioned throughput exceeded")
	ctx := context.Background()

	_, err := f.wf.Commit(ctx, CommitRequest{
		ItemID:       "abc123",
		DonorName:    "Asha",
		ContactEmail: "asha@example.com",
	})
	if err == nil {
		t.Fatalf("expected hard failure")
	}

	// nothing else ran: no item mutation, no notification
	it, getErr := f.wf.Wishlist.Get(ctx, "abc123")
	if getErr != nil {
		t.Fatalf("Get error: %v", getErr)
	}
	if it.Fulfilled || it.CommittedBy != "" {
		t.Fatalf("item mutated despite log failure: %+v", it)
	}
	if len(f.sqs.Sent()) != 0 {
		t.Fatalf("notification sent despite log failure")
	}
}

func TestCommit_UnknownItem_PartialFailure(t *testing.T) {
	f := newFixture(false)
	ctx := context.Background()

	res, err := f.wf.Commit(ctx, CommitRequest{
		ItemID:        "doesnotexist",
		DonorName:     "Asha",
		ContactEmail:  "asha@example.com",
		ItemCommitted: "Shoes",
	})
	if err != nil {
		t.Fatalf("expected partial result, got hard failure: %v", err)
	}
	if res.Outcome != OutcomePartial {
		t.Fatalf("expected partial outcome, got %q", res.Outcome)
	}
	if res.Reason != ReasonItemNotFound {
		t.Fatalf("expected item_not_found reason, got %q", res.Reason)
	}
	if !errors.Is(res.PatchErr, wishlist.ErrNotFound) {
		t.Fatalf("expected wrapped ErrNotFound, got %v", res.PatchErr)
	}
	// the log entry stands, referencing the dangling id with the fallback name
	if f.mock.Len(donationsTable) != 1 {
		t.Fatalf("expected donation record to remain, got %d", f.mock.Len(donationsTable))
	}
	if res.Donation.ItemID != "doesnotexist" || res.Donation.ItemCommitted != "Shoes" {
		t.Fatalf("donation record mismatch: %+v", res.Donation)
	}
	if res.Item != nil {
		t.Fatalf("no item should be returned on partial, got %+v", res.Item)
	}
}

func TestCommit_StrictMode_ConflictOnFulfilledItem(t *testing.T) {
	f := newFixture(true)
	f.seedItem(t, "abc123", "Shoes", false)
	ctx := context.Background()

	first, err := f.wf.Commit(ctx, CommitRequest{ItemID: "abc123", DonorName: "Asha", ContactEmail: "asha@example.com"})
	if err != nil || first.Outcome != OutcomeCommitted {
		t.Fatalf("first commit: outcome=%q err=%v", first.Outcome, err)
	}

	second, err := f.wf.Commit(ctx, CommitRequest{ItemID: "abc123", DonorName: "Binod", ContactEmail: "binod@example.com"})
	if err != nil {
		t.Fatalf("second commit should be partial, got hard failure: %v", err)
	}
	if second.Outcome != OutcomePartial || second.Reason != ReasonConflict {
		t.Fatalf("expected conflict partial, got outcome=%q reason=%q", second.Outcome, second.Reason)
	}

	// first writer keeps the item; both log entries exist
	it, _ := f.wf.Wishlist.Get(ctx, "abc123")
	if it.CommittedBy != "Asha" {
		t.Fatalf("expected first donor to keep the item, got %q", it.CommittedBy)
	}
	if f.mock.Len(donationsTable) != 2 {
		t.Fatalf("expected both donation records, got %d", f.mock.Len(donationsTable))
	}
}

func TestCommit_LegacyMode_LastWriterWins(t *testing.T) {
	f := newFixture(false)
	f.seedItem(t, "abc123", "Shoes", false)
	ctx := context.Background()

	for _, donor := range []string{"Asha", "Binod"} {
		res, err := f.wf.Commit(ctx, CommitRequest{ItemID: "abc123", DonorName: donor, ContactEmail: donor + "@example.com"})
		if err != nil || res.Outcome != OutcomeCommitted {
			t.Fatalf("commit by %s: outcome=%q err=%v", donor, res.Outcome, err)
		}
	}

	it, _ := f.wf.Wishlist.Get(ctx, "abc123")
	if it.CommittedBy != "Binod" {
		t.Fatalf("legacy mode: expected last writer, got %q", it.CommittedBy)
	}
	if f.mock.Len(donationsTable) != 2 {
		t.Fatalf("expected two donation records, got %d", f.mock.Len(donationsTable))
	}
}

func TestCommit_NotificationFailureDoesNotChangeOutcome(t *testing.T) {
	f := newFixture(false)
	f.seedItem(t, "abc123", "Shoes", false)
	f.sqs.Err = errors.New("queue unavailable")
	ctx := context.Background()

	res, err := f.wf.Commit(ctx, CommitRequest{ItemID: "abc123", DonorName: "Asha", ContactEmail: "asha@example.com"})
	if err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	if res.Outcome != OutcomeCommitted {
		t.Fatalf("notification failure changed outcome: %q", res.Outcome)
	}
	if res.Item == nil || !res.Item.Fulfilled {
		t.Fatalf("item not patched: %+v", res.Item)
	}
}

func TestCommit_NoNotifierConfigured(t *testing.T) {
	f := newFixture(false)
	f.seedItem(t, "abc123", "Shoes", false)
	f.wf.Notifier = nil
	f.wf.Metrics = nil

	res, err := f.wf.Commit(context.Background(), CommitRequest{ItemID: "abc123", DonorName: "Asha", ContactEmail: "asha@example.com"})
	if err != nil {
		t.Fatalf("Commit error: %v", err)
	}
	if res.Outcome != OutcomeCommitted {
		t.Fatalf("expected committed outcome, got %q", res.Outcome)
	}
}
