package main

// NotificationJob is the payload sent from API -> SQS -> Worker.
type NotificationJob struct {
	DonationID    string `json:"donation_id"`
	ItemID        string `json:"item_id"`
	DonorName     string `json:"donor_name"`
	ContactEmail  string `json:"contact_email"`
	ItemCommitted string `json:"item_committed"`
	CorrelationID string `json:"correlation_id,omitempty"`
}
