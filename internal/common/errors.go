// Package common contains shared constants, sentinel errors, and small
// helpers used across labelcheck components. Callers should use errors.Is
// to match the sentinel values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateLogin = errors.New("login already exists")
	ErrStorage        = errors.New("storage error")

	// Validation / scan flow errors.
	ErrValidation        = errors.New("validation error")
	ErrIncompleteScan    = errors.New("incomplete scan")
	ErrOverridePending   = errors.New("override pending, resolve or cancel it first")
	ErrNoPendingOverride = errors.New("no pending override")

	// Credential / authorization errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInsufficientRole   = errors.New("insufficient role")
	ErrMissingReason      = errors.New("missing divergence reason")

	// System state errors.
	ErrBootstrapRequired = errors.New("no active admin, bootstrap required")
)
