package transaction

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

// Transaction represents a transaction record.
type Transaction struct {
	ID          uuid.UUID     `db:"id"`
	UserID      uuid.UUID     `db:"user_id"`
	Type        ledger.Type   `db:"type"`
	Amount      int64         `db:"amount"`
	Currency    string        `db:"currency"`
	AccountID   uuid.UUID     `db:"account_id"`
	ToAccountID uuid.NullUUID `db:"to_account_id"`
	CategoryID  uuid.NullUUID `db:"category_id"`
	Date        time.Time     `db:"date"`
	Description string        `db:"description"`
	Memo        string        `db:"memo"`
	CreatedAt   time.Time     `db:"created_at"`
}

// Effect is the balance effect this record has while it exists.
func (t *Transaction) Effect() ledger.Effect {
	return ledger.ComputeEffect(t.Type, t.Amount, t.AccountID, t.ToAccountID.UUID)
}

// SameEffect reports whether t and other imply the same balance effect.
func (t *Transaction) SameEffect(other *Transaction) bool {
	return t.Type == other.Type &&
		t.Amount == other.Amount &&
		t.AccountID == other.AccountID &&
		t.ToAccountID.UUID == other.ToAccountID.UUID
}

// TransactionCreate is the input for writing a transaction. It is used for
// both inserts and full updates. uuid.Nil means absent for the optional ids.
type TransactionCreate struct {
	UserID      uuid.UUID
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

// Effect is the balance effect the record will have once written.
func (c *TransactionCreate) Effect() ledger.Effect {
	return ledger.ComputeEffect(c.Type, c.Amount, c.AccountID, c.ToAccountID)
}

// LedgerInput extracts the fields checked by ledger.Validate.
func (c *TransactionCreate) LedgerInput() ledger.Input {
	return ledger.Input{
		Type:        c.Type,
		Amount:      c.Amount,
		AccountID:   c.AccountID,
		ToAccountID: c.ToAccountID,
		CategoryID:  c.CategoryID,
		Date:        c.Date,
	}
}

// NullID converts uuid.Nil to a NULL-able id.
func NullID(id uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: id, Valid: id != uuid.Nil}
}

// DateOnly truncates t to its calendar date in UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TransactionFilter specifies filters for listing transactions. Zero values
// do not filter. From and To are inclusive calendar dates.
type TransactionFilter struct {
	UserID          uuid.UUID
	From            *time.Time
	To              *time.Time
	AccountID       *uuid.UUID
	CategoryID      *uuid.UUID
	Type            ledger.Type
	Limit           int
	Offset          int
	MaxCreationTime *time.Time
}

// Matches reports whether t passes every filter condition. AccountID matches
// either side of a transfer.
func (f *TransactionFilter) Matches(t *Transaction) bool {
	if f == nil {
		return true
	}
	if f.UserID != uuid.Nil && t.UserID != f.UserID {
		return false
	}
	if f.From != nil && t.Date.Before(DateOnly(*f.From)) {
		return false
	}
	if f.To != nil && t.Date.After(DateOnly(*f.To)) {
		return false
	}
	if f.AccountID != nil && t.AccountID != *f.AccountID && t.ToAccountID.UUID != *f.AccountID {
		return false
	}
	if f.CategoryID != nil && (!t.CategoryID.Valid || t.CategoryID.UUID != *f.CategoryID) {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.MaxCreationTime != nil && t.CreatedAt.After(*f.MaxCreationTime) {
		return false
	}
	return true
}

// TransactionCursor identifies a position in a paginated result set
// and carries the limit and maxCreationTime so subsequent pages are consistent.
type TransactionCursor struct {
	Position        int
	Limit           int
	MaxCreationTime time.Time
}

// TransactionListResult contains a page of transactions and an optional next cursor.
type TransactionListResult struct {
	Transactions []*Transaction
	NextCursor   *TransactionCursor
}

// Less is the listing order: newest date first, then newest creation, then id.
func Less(a, b *Transaction) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() > b.ID.String()
}

// Page trims rows fetched with limit+1 to limit and builds the next cursor.
// The creation-time bound is taken from the filter if set, else from the
// newest row of the first page.
func Page(rows []*Transaction, filter *TransactionFilter) ([]*Transaction, *TransactionCursor) {
	if filter == nil || filter.Limit <= 0 || len(rows) <= filter.Limit {
		return rows, nil
	}
	rows = rows[:filter.Limit]

	maxCreationTime := rows[0].CreatedAt
	if filter.MaxCreationTime != nil {
		maxCreationTime = *filter.MaxCreationTime
	} else {
		for _, row := range rows {
			if row.CreatedAt.After(maxCreationTime) {
				maxCreationTime = row.CreatedAt
			}
		}
	}

	return rows, &TransactionCursor{
		Position:        filter.Offset + filter.Limit,
		Limit:           filter.Limit,
		MaxCreationTime: maxCreationTime,
	}
}
