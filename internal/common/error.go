// Package common defines shared constants and sentinel errors used across
// the engine, the card service client and the warehouse layer. Callers should
// use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors are raised before any network call is made.
	ErrValidation = errors.New("validation error")

	// Store-level failures. Typed errors in cardservice and warehouse match
	// these via errors.Is.
	ErrWarehouse     = errors.New("warehouse error")
	ErrRemoteService = errors.New("card service error")
	ErrUnavailable   = errors.New("card service unavailable")
)
