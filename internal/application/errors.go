package application

import "errors"

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserBlocked        = errors.New("account is blocked")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrSelfAction         = errors.New("cannot perform this action on your own account")
	ErrAccountHasOrders   = errors.New("account has orders and cannot be deleted")

	ErrProductNotFound = errors.New("product not found")
	ErrImageRequired   = errors.New("at least one product image is required")

	ErrOrderNotFound       = errors.New("order not found")
	ErrNoOrderItems        = errors.New("no order items")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrOrderForbidden      = errors.New("not authorized to view this order")
	ErrConcurrentUpdate    = errors.New("order was modified concurrently")
	ErrDuplicateSubmission = errors.New("an order with this idempotency key is still being processed")

	ErrMediaUnavailable = errors.New("media storage is not configured")
)
