package custody

import (
	"errors"
	"fmt"

	"github.com/xraph/custody/access"
	"github.com/xraph/custody/contribution"
	"github.com/xraph/custody/oracle"
	"github.com/xraph/custody/types"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("custody: not found")
	ErrAlreadyExists = errors.New("custody: already exists")
	ErrInvalidInput  = errors.New("custody: invalid input")

	// Funding errors
	ErrContributionTooSmall = errors.New("custody: contribution below minimum")
	ErrOracleUnavailable    = oracle.ErrUnavailable
	ErrFundingNotFound      = errors.New("custody: funding not found")

	// Ledger errors
	ErrIndexOutOfRange = contribution.ErrIndexOutOfRange
	ErrOverflow        = types.ErrOverflow

	// Withdrawal errors
	ErrNotOwner           = access.ErrNotOwner
	ErrTransferFailed     = errors.New("custody: transfer failed")
	ErrWithdrawalNotFound = errors.New("custody: withdrawal not found")

	// State errors
	ErrInconsistentState = errors.New("custody: ledger state is inconsistent")
	ErrHalted            = errors.New("custody: ledger is halted")
	ErrReentrantCall     = errors.New("custody: re-entrant call")
	ErrNotStarted        = errors.New("custody: ledger not started")

	// Store errors
	ErrStoreNotReady     = errors.New("custody: store not ready")
	ErrStoreClosed       = errors.New("custody: store is closed")
	ErrTransactionFailed = errors.New("custody: transaction failed")
	ErrMigrationFailed   = errors.New("custody: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("custody: validation failed for %s: %s", e.Field, e.Message)
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "custody: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("custody: %d errors occurred", len(e.Errors))
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e MultiError) Unwrap() []error { return e.Errors }

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrFundingNotFound) ||
		errors.Is(err, ErrWithdrawalNotFound)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrOracleUnavailable) ||
		errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed) ||
		(errors.Is(err, ErrTransferFailed) && !errors.Is(err, ErrInconsistentState))
}

// IsFatal returns true if the ledger can no longer be trusted without
// operator intervention.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInconsistentState) ||
		errors.Is(err, ErrHalted) ||
		errors.Is(err, ErrOverflow)
}
