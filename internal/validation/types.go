package validation

// CreateItemRequest is the payload for POST /wishlist.
type CreateItemRequest struct {
	Item      string `json:"item" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Urgency   string `json:"urgency" validate:"omitempty,oneof=low medium high"` // defaults to medium when absent
	Orphanage string `json:"orphanage" validate:"required"`
}

// UpdateItemRequest is the payload for PUT /wishlist/:id. Full-document
// replace semantics: omitted fields reset to defaults.
type UpdateItemRequest struct {
	Item        string `json:"item" validate:"required"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
	Urgency     string `json:"urgency" validate:"omitempty,oneof=low medium high"`
	Orphanage   string `json:"orphanage" validate:"required"`
	Fulfilled   bool   `json:"fulfilled"`
	CommittedBy string `json:"committedBy,omitempty"`
}

// CommitRequest is the payload for POST /donations. The item id is a weak
// reference; its existence is checked only by the fulfillment patch step.
type CommitRequest struct {
	ItemID        string `json:"itemId" validate:"required"`
	DonorName     string `json:"donorName" validate:"required"`
	ContactEmail  string `json:"contactEmail" validate:"required,email"`
	ItemCommitted string `json:"itemCommitted,omitempty"` // optional name snapshot fallback
}

// FulfillmentPatchRequest is the payload for PATCH /wishlist/:id.
// Fulfilled is a pointer so "false" and "absent" are distinguishable.
type FulfillmentPatchRequest struct {
	Fulfilled   *bool  `json:"fulfilled" validate:"required"`
	CommittedBy string `json:"committedBy,omitempty"`
}
