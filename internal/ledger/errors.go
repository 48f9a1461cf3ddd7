package ledger

import (
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
)

var (
	// ErrNotAuthenticated is returned when a mutation runs without a session user.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrAccountNotFound is returned when a referenced account does not exist
	// or belongs to another user.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound is returned when a referenced transaction does not exist.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrStaleSnapshot is returned when the caller's view of a transaction no
	// longer matches the stored record.
	ErrStaleSnapshot = errors.New("transaction snapshot is stale")

	// ErrAccountInUse is returned when deleting an account that transactions
	// still reference.
	ErrAccountInUse = errors.New("account is referenced by transactions")
)

// ValidationError reports a malformed payload. It is always raised before any write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ConsistencyError reports that a balance delta could not be applied because
// its account disappeared. The enclosing mutation must not be committed.
type ConsistencyError struct {
	AccountID uuid.UUID
	Delta     int64
	Err       error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency: cannot apply %+d to account %s: %v", e.Delta, e.AccountID, e.Err)
}

func (e *ConsistencyError) Unwrap() error {
	return e.Err
}

// StoreError wraps a storage failure with the step that failed.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsConsistency reports whether err is or wraps a ConsistencyError.
func IsConsistency(err error) bool {
	var c *ConsistencyError
	return errors.As(err, &c)
}

// WrapStore tags err with the failing step unless it already belongs to the
// ledger taxonomy.
func WrapStore(op string, err error) error {
	if err == nil {
		return nil
	}
	var (
		v *ValidationError
		c *ConsistencyError
		s *StoreError
	)
	switch {
	case errors.As(err, &v), errors.As(err, &c), errors.As(err, &s),
		errors.Is(err, ErrNotAuthenticated),
		errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrTransactionNotFound),
		errors.Is(err, ErrStaleSnapshot),
		errors.Is(err, ErrAccountInUse):
		return err
	}
	return &StoreError{Op: op, Err: err}
}
