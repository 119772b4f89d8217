package services

import "errors"

var (
	// Token errors. Expired is distinguished from invalid so handlers
	// can offer "request a new link" messaging.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	// ErrConcurrentModification signals a lost lock race; callers
	// should retry the transition.
	ErrConcurrentModification = errors.New("concurrent modification, retry")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrAddressNotFound    = errors.New("address not found")

	ErrNotificationFailed = errors.New("notification delivery failed")
)
