package wishlist

import "time"

// Urgency levels
const (
	UrgencyLow    = "low"
	UrgencyMedium = "medium"
	UrgencyHigh   = "high"
)

// Item represents a wishlist entry stored in the wishlist DynamoDB table.
type Item struct {
	ItemID      string    `dynamodbav:"item_id" json:"id"` // PK
	Item        string    `dynamodbav:"item" json:"item"`
	Quantity    int       `dynamodbav:"quantity" json:"quantity"`
	Urgency     string    `dynamodbav:"urgency" json:"urgency"` // low | medium | high
	Orphanage   string    `dynamodbav:"orphanage" json:"orphanage"`
	Fulfilled   bool      `dynamodbav:"fulfilled" json:"fulfilled"`
	CommittedBy string    `dynamodbav:"committed_by,omitempty" json:"committedBy,omitempty"` // donor name; empty until fulfilled by a commitment
	CreatedAt   time.Time `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `dynamodbav:"updated_at" json:"updatedAt"`
}
