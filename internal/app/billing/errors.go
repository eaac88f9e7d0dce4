// internal/app/billing/errors.go
package billing

import "errors"

var (
	// ErrMembershipNotFound is surfaced immediately to the caller and
	// never auto-retried.
	ErrMembershipNotFound = errors.New("membership not found")

	// ErrInvalidAmount rejects non-positive payment or plan amounts
	// before any write happens.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrMissingTenant rejects operations without a tenant scope.
	ErrMissingTenant = errors.New("tenant id is required")

	// ErrMembershipExists guards the one-live-membership-per-user
	// invariant at creation time.
	ErrMembershipExists = errors.New("user already has a live membership")
)
