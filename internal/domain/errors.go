package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrDuplicateProduct  = errors.New("product id already in use")
	ErrInvalidProduct    = errors.New("invalid product")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNegativeStock     = errors.New("stock cannot be negative")

	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrCartFull        = errors.New("cart has too many items")
	ErrCartEmpty       = errors.New("cart is empty")

	ErrOrderNotFound     = errors.New("order not found")
	ErrDuplicateOrder    = errors.New("order id already in use")
	ErrInvalidStatus     = errors.New("unknown status")
	ErrIllegalTransition = errors.New("illegal status transition")

	ErrLocationNotFound = errors.New("pickup location not found")
)

// ValidationError is a user-facing rejection of a single input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}
