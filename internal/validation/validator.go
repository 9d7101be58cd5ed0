package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// a patch marking an item fulfilled must name the donor who committed;
	// a patch reopening an item must not carry one.
	v.RegisterStructValidation(fulfillmentPatchStructValidation, FulfillmentPatchRequest{})

	return v
}

func fulfillmentPatchStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(FulfillmentPatchRequest)
	if req.Fulfilled == nil {
		return // the field-level "required" rule reports this
	}
	if *req.Fulfilled && req.CommittedBy == "" {
		sl.ReportError(req.CommittedBy, "committedBy", "CommittedBy", "required_when_fulfilled", "")
	}
	if !*req.Fulfilled && req.CommittedBy != "" {
		sl.ReportError(req.CommittedBy, "committedBy", "CommittedBy", "must_be_empty_when_reopening", "")
	}
}
