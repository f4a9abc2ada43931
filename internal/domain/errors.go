package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the caller does not own the entity or lacks the role.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState indicates the entity cannot leave its current state.
	ErrInvalidState = errors.New("invalid state")
	// ErrEmptyCart indicates checkout was attempted with no active cart lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidStatus indicates an unrecognized order status value.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrProductUnavailable indicates the product is inactive or missing.
	ErrProductUnavailable = errors.New("product unavailable")
	// ErrValidation indicates malformed input shape or range.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a concurrent update was detected.
	ErrConflict = errors.New("conflict")
)
