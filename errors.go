package paygate

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("paygate: not found")
	ErrAlreadyExists = errors.New("paygate: already exists")
	ErrInvalidInput  = errors.New("paygate: invalid input")
	ErrUnauthorized  = errors.New("paygate: unauthorized")
	ErrNotOwner      = errors.New("paygate: caller is not the owner")
	ErrNotMerchant   = errors.New("paygate: caller is not an authorized merchant")
	ErrNotSubscriber = errors.New("paygate: caller is not the subscriber")

	// Initialization errors
	ErrNotInitialized     = errors.New("paygate: gateway not initialized")
	ErrAlreadyInitialized = errors.New("paygate: gateway already initialized")
	ErrNoTransferor       = errors.New("paygate: no token transferor configured")

	// Validation errors
	ErrInvalidAmount   = errors.New("paygate: amount must be positive")
	ErrInvalidInterval = errors.New("paygate: interval must be positive")

	// Merchant registry errors
	ErrMerchantRegistered    = errors.New("paygate: merchant already registered")
	ErrMerchantNotRegistered = errors.New("paygate: merchant not registered")

	// Payment link errors
	ErrLinkNotFound = errors.New("paygate: payment link not found")
	ErrLinkInactive = errors.New("paygate: payment link is inactive")

	// Subscription plan errors
	ErrPlanNotFound = errors.New("paygate: plan not found")
	ErrPlanInactive = errors.New("paygate: plan is inactive")

	// Subscription errors
	ErrSubscriptionNotFound = errors.New("paygate: subscription not found")
	ErrSubscriptionInactive = errors.New("paygate: subscription is inactive")
	ErrNotDue               = errors.New("paygate: subscription payment not due yet")

	// Transfer errors
	ErrTransferFailed = errors.New("paygate: token transfer failed")

	// Store errors
	ErrStoreNotReady   = errors.New("paygate: store not ready")
	ErrStoreClosed     = errors.New("paygate: store is closed")
	ErrMigrationFailed = errors.New("paygate: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("paygate: validation failed for %s: %s", e.Field, e.Message)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrLinkNotFound) ||
		errors.Is(err, ErrPlanNotFound) ||
		errors.Is(err, ErrSubscriptionNotFound) ||
		errors.Is(err, ErrMerchantNotRegistered)
}

// IsAuthorizationError returns true if the error is an authorization failure.
func IsAuthorizationError(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrNotOwner) ||
		errors.Is(err, ErrNotMerchant) ||
		errors.Is(err, ErrNotSubscriber)
}

// IsInactive returns true if the error is caused by a deactivated entity.
func IsInactive(err error) bool {
	return errors.Is(err, ErrLinkInactive) ||
		errors.Is(err, ErrPlanInactive) ||
		errors.Is(err, ErrSubscriptionInactive)
}
