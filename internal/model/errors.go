package model

import "errors"

// Error taxonomy for the memory layer. Callers classify failures with
// errors.Is; messages wrapped around these sentinels carry the detail.
var (
	// ErrValidation marks missing or physiologically implausible input.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks a referenced user, plan, or record that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSafetyViolation marks an allergen conflict with a critical
	// restriction. Always fatal to the operation, never downgraded.
	ErrSafetyViolation = errors.New("safety violation")

	// ErrStorage marks an unavailable or failing structured store.
	ErrStorage = errors.New("storage error")

	// ErrSemanticIndex marks a semantic-store failure. After a successful
	// structured write it is reported as a warning, not an operation failure.
	ErrSemanticIndex = errors.New("semantic index error")
)
