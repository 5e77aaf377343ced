// Package errors holds the sentinel errors shared by the payroll ledger.
// Every failing operation wraps one of them, so callers match with errors.Is.
package errors

import (
	"fmt"
)

var (
	ErrNotFound        = fmt.Errorf("not found")
	ErrCompanyNotFound = fmt.Errorf("company not found")
	ErrAlreadyExists   = fmt.Errorf("already exists")
	ErrInvalidInput    = fmt.Errorf("invalid input")

	// Authorization failures.
	ErrUnauthorized      = fmt.Errorf("unauthorized")
	ErrNotPayrollManager = fmt.Errorf("not payroll manager")

	// State conflicts.
	ErrAlreadyAccepted = fmt.Errorf("already accepted")
	ErrAlreadyClaimed  = fmt.Errorf("already claimed")
	ErrNotActive       = fmt.Errorf("employee not active")

	// ErrLocked is returned when a payment is claimed before its release time.
	ErrLocked = fmt.Errorf("locked")

	ErrInsufficientFunds = fmt.Errorf("insufficient funds")
)
