// Error codes returned in the ErrorResponse envelope.
//
// Codes are lowercase snake_case and stable: clients branch on them, never on
// the message. Generic codes mirror HTTP status semantics; domain codes name
// the failed resource or collaborator.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "vendor_not_found",
//	  "message": "vendor has not checked in"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeUnauthorized     = "unauthorized"
	ErrCodeForbidden        = "forbidden"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeTooLarge         = "payload_too_large"
	ErrCodeRateLimited      = "too_many_requests"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeValidation          = "validation_failed"
	ErrCodeVendorNotFound      = "vendor_not_found"
	ErrCodeMenuItemNotFound    = "menu_item_not_found"
	ErrCodeTransactionNotFound = "transaction_not_found"
	ErrCodePaymentsDisabled    = "payments_disabled"
	ErrCodePaymentGateway      = "payment_gateway_error"
	ErrCodeStorage             = "storage_unavailable"
)
