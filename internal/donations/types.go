package donations

import "time"

// StatusCommitted is the default status label for a freshly logged commitment.
// Free text; an admin may later relabel (e.g., "Delivered") out of band.
const StatusCommitted = "Committed"

// Record is the append-only donation log entry stored in the donations table.
// item_id is a weak reference: the wishlist item may change or disappear later,
// which is why item_committed carries a snapshot of the name at commitment time.
type Record struct {
	DonationID          string    `dynamodbav:"donation_id" json:"id"` // PK
	ItemID              string    `dynamodbav:"item_id" json:"itemId"`
	ItemCommitted       string    `dynamodbav:"item_committed" json:"itemCommitted"`
	DonorName           string    `dynamodbav:"donor_name" json:"donorName"`
	ContactEmail        string    `dynamodbav:"contact_email" json:"contactEmail"`
	Status              string    `dynamodbav:"status" json:"status"`
	CommitmentTimestamp time.Time `dynamodbav:"commitment_timestamp" json:"commitmentTimestamp"`
}
