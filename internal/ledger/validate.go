package ledger

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Input carries the fields of a transaction that validation looks at.
type Input struct {
	Type        Type
	Amount      int64
	AccountID   uuid.UUID
	ToAccountID uuid.UUID
	CategoryID  uuid.UUID
	Date        time.Time
}

// Effect is the balance effect the input would have once stored.
func (in Input) Effect() Effect {
	return ComputeEffect(in.Type, in.Amount, in.AccountID, in.ToAccountID)
}

// Validate checks the structural invariants of a transaction payload.
func Validate(in Input) error {
	if !in.Type.Valid() {
		return &ValidationError{Field: "type", Reason: "must be income, expense or transfer"}
	}
	if in.Amount <= 0 {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if in.AccountID == uuid.Nil {
		return &ValidationError{Field: "accountID", Reason: "is required"}
	}
	if in.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}

	if in.Type == TypeTransfer {
		if in.ToAccountID == uuid.Nil {
			return &ValidationError{Field: "toAccountID", Reason: "is required for transfers"}
		}
		if in.ToAccountID == in.AccountID {
			return &ValidationError{Field: "toAccountID", Reason: "must differ from accountID"}
		}
		if in.CategoryID != uuid.Nil {
			return &ValidationError{Field: "categoryID", Reason: "must be empty for transfers"}
		}
		return nil
	}

	if in.ToAccountID != uuid.Nil {
		return &ValidationError{Field: "toAccountID", Reason: "is only allowed for transfers"}
	}
	return nil
}
