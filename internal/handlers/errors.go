// Package handlers holds what the versioned HTTP handlers share.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = time.DateOnly

// ServiceError maps a service error onto an HTTP status. failure is the
// message used for unexpected errors.
func ServiceError(failure string, err error) error {
	var (
		validation  *ledger.ValidationError
		consistency *ledger.ConsistencyError
	)
	// ConsistencyError wraps ErrAccountNotFound, so it is matched first.
	switch {
	case errors.As(err, &validation):
		return huma.NewError(http.StatusBadRequest, validation.Error(), err)
	case errors.Is(err, ledger.ErrNotAuthenticated):
		return huma.NewError(http.StatusUnauthorized, "authentication required", err)
	case errors.As(err, &consistency):
		return huma.NewError(http.StatusConflict, "balances could not be updated consistently", err)
	case errors.Is(err, ledger.ErrAccountNotFound):
		return huma.NewError(http.StatusNotFound, "account not found", err)
	case errors.Is(err, ledger.ErrTransactionNotFound):
		return huma.NewError(http.StatusNotFound, "transaction not found", err)
	case errors.Is(err, ledger.ErrStaleSnapshot):
		return huma.NewError(http.StatusConflict, "transaction was changed by another request", err)
	case errors.Is(err, ledger.ErrAccountInUse):
		return huma.NewError(http.StatusConflict, "account is still referenced by transactions", err)
	}
	return huma.NewError(http.StatusInternalServerError, failure, err)
}
