package service

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/money"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
)

// Transaction represents a transaction in the service layer, joined with the
// names of the accounts it touches.
type Transaction struct {
	ID            uuid.UUID
	Type          ledger.Type
	Amount        int64
	AmountDisplay string
	Currency      string
	AccountID     uuid.UUID
	AccountName   string
	ToAccountID   uuid.UUID
	ToAccountName string
	CategoryID    uuid.UUID
	Date          time.Time
	Description   string
	Memo          string
	CreatedAt     time.Time
}

// TransactionInput is the full set of editable fields. Amount is in minor
// units of the account currency; Currency may be left empty.
type TransactionInput struct {
	Type        ledger.Type
	Amount      int64
	Currency    string
	AccountID   uuid.UUID
	ToAccountID uuid.UUID
	CategoryID  uuid.UUID
	Date        time.Time
	Description string
	Memo        string
}

// Snapshot is the caller's last known view of the fields that determine a
// transaction's balance effect.
type Snapshot struct {
	Type        ledger.Type
	Amount      int64
	AccountID   uuid.UUID
	ToAccountID uuid.UUID
}

// TransactionFilter narrows a transaction listing. Zero fields do not filter.
type TransactionFilter struct {
	From       *time.Time
	To         *time.Time
	Type       ledger.Type
	AccountID  uuid.UUID
	CategoryID uuid.UUID
	Search     string
}

// TransactionCursor identifies a position in a paginated result set
// and carries the limit and maxCreationTime so subsequent pages are consistent.
type TransactionCursor struct {
	Position        int
	Limit           int
	MaxCreationTime time.Time
}

func (in TransactionInput) toStorage(userID uuid.UUID) *transaction.TransactionCreate {
	return &transaction.TransactionCreate{
		UserID:      userID,
		Type:        in.Type,
		Amount:      in.Amount,
		Currency:    in.Currency,
		AccountID:   in.AccountID,
		ToAccountID: in.ToAccountID,
		CategoryID:  in.CategoryID,
		Date:        in.Date,
		Description: in.Description,
		Memo:        in.Memo,
	}
}

func (s *Snapshot) toStorage() *transaction.Transaction {
	if s == nil {
		return nil
	}
	return &transaction.Transaction{
		Type:        s.Type,
		Amount:      s.Amount,
		AccountID:   s.AccountID,
		ToAccountID: transaction.NullID(s.ToAccountID),
	}
}

func transactionFromStorage(row *transaction.Transaction, names map[uuid.UUID]string) Transaction {
	t := Transaction{
		ID:            row.ID,
		Type:          row.Type,
		Amount:        row.Amount,
		Currency:      row.Currency,
		AccountID:     row.AccountID,
		AccountName:   names[row.AccountID],
		ToAccountID:   row.ToAccountID.UUID,
		ToAccountName: names[row.ToAccountID.UUID],
		CategoryID:    row.CategoryID.UUID,
		Date:          row.Date,
		Description:   row.Description,
		Memo:          row.Memo,
		CreatedAt:     row.CreatedAt,
	}
	if c, ok := money.Lookup(row.Currency); ok {
		t.AmountDisplay = money.ToDisplayValue(row.Amount, c.DecimalPlaces)
	}
	return t
}
