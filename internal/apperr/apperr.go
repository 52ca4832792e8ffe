// Package apperr defines the error kinds the service layer reports so
// handlers can map them to HTTP statuses without string matching.
package apperr

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound marks a missing party/invoice/ticket. Wrap it with
// context via NotFound; check with errors.Is.
var ErrNotFound = errors.New("not found")

// NotFound wraps ErrNotFound with the name of the missing thing
func NotFound(what string) error {
	return fmt.Errorf("%s: %w", what, ErrNotFound)
}

// ValidationError rejects a malformed request before any mutation
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError from a format string
func Validation(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientFundsError is returned under the strict balance policy
// when a decrease would push a pool below zero.
type InsufficientFundsError struct {
	PartyType string
	Pool      string
	Balance   decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient %s %s balance: have %s, need %s",
		e.PartyType, e.Pool, e.Balance.String(), e.Requested.String())
}
