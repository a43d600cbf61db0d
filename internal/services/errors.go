// Package services defines the business logic for vendor availability,
// discovery, menus and payments. This file centralizes the service-level
// error values so that they can be consistently returned by service methods
// and checked by callers.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer:
//   - *ValidationError       → 400
//   - not-found sentinels    → 404
//   - *PersistenceError      → 500 (retryable)
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrVendorNotFound indicates that the vendor has never checked in.
	ErrVendorNotFound = errors.New("vendor not found")

	// ErrMenuItemNotFound indicates that the menu item does not exist or is
	// owned by another vendor.
	ErrMenuItemNotFound = errors.New("menu item not found")

	// ErrTransactionNotFound indicates an unknown transaction or checkout id.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrPaymentsDisabled is returned when no payment gateway is configured.
	ErrPaymentsDisabled = errors.New("payments are not configured")

	// ErrSweeperRunning is returned by Sweeper.Run when another Run loop is
	// already active on the same Sweeper.
	ErrSweeperRunning = errors.New("expiry sweeper already running")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// PersistenceError wraps a storage failure. Callers may retry the operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Retryable reports that the failed operation is safe to retry.
func (e *PersistenceError) Retryable() bool { return true }

func persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}
