package domain

import "errors"

var (
	// ErrValidation marks client-fixable bad input.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound indicates the referenced cart, order or user is absent.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a state-machine precondition was violated,
	// e.g. confirming an already paid order.
	ErrConflict = errors.New("conflict")

	// ErrDelivery indicates a downstream mail transport failure. It is
	// logged, never surfaced once the state transition committed.
	ErrDelivery = errors.New("delivery failed")
)
