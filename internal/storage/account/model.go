package account

import (
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
)

// Type is the kind of an account.
type Type string

const (
	TypeChecking   Type = "checking"
	TypeSavings    Type = "savings"
	TypeInvestment Type = "investment"
	TypeCreditCard Type = "credit_card"
	TypeCash       Type = "cash"
)

// Types lists account types in display order.
var Types = []Type{TypeChecking, TypeSavings, TypeInvestment, TypeCreditCard, TypeCash}

// Valid reports whether t is a known account type.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// Account represents an account record.
type Account struct {
	ID            uuid.UUID `db:"id"`
	UserID        uuid.UUID `db:"user_id"`
	Name          string    `db:"name"`
	Institution   string    `db:"institution"`
	Type          Type      `db:"type"`
	Currency      string    `db:"currency"`
	Balance       int64     `db:"balance"`
	AccountNumber string    `db:"account_number"`
	Color         string    `db:"color"`
	Icon          string    `db:"icon"`
	Memo          string    `db:"memo"`
	SortOrder     int       `db:"sort_order"`
	CreatedAt     time.Time `db:"created_at"`
}

// AccountCreate is the input for creating a new account. Balance is the
// opening balance in minor units.
type AccountCreate struct {
	UserID        uuid.UUID
	Name          string
	Institution   string
	Type          Type
	Currency      string
	Balance       int64
	AccountNumber string
	Color         string
	Icon          string
	Memo          string
	SortOrder     int
}

// AccountUpdate carries metadata changes. Unset fields are left untouched;
// balance and currency are not editable here.
type AccountUpdate struct {
	Name          omit.Val[string]
	Institution   omit.Val[string]
	Type          omit.Val[Type]
	AccountNumber omit.Val[string]
	Color         omit.Val[string]
	Icon          omit.Val[string]
	Memo          omit.Val[string]
	SortOrder     omit.Val[int]
}

// Apply copies the set fields of u onto a.
func (u *AccountUpdate) Apply(a *Account) {
	if v, ok := u.Name.Get(); ok {
		a.Name = v
	}
	if v, ok := u.Institution.Get(); ok {
		a.Institution = v
	}
	if v, ok := u.Type.Get(); ok {
		a.Type = v
	}
	if v, ok := u.AccountNumber.Get(); ok {
		a.AccountNumber = v
	}
	if v, ok := u.Color.Get(); ok {
		a.Color = v
	}
	if v, ok := u.Icon.Get(); ok {
		a.Icon = v
	}
	if v, ok := u.Memo.Get(); ok {
		a.Memo = v
	}
	if v, ok := u.SortOrder.Get(); ok {
		a.SortOrder = v
	}
}

// AccountFilter specifies filters for listing accounts.
type AccountFilter struct {
	UserID uuid.UUID
	Limit  int
	Offset int
}

// AccountCursor identifies a position in a paginated result set.
type AccountCursor struct {
	Position int
	Limit    int
}

// AccountListResult contains a page of accounts and an optional next cursor.
type AccountListResult struct {
	Accounts   []*Account
	NextCursor *AccountCursor
}

// Less orders accounts by sort order, then name, then id.
func Less(a, b *Account) bool {
	if a.SortOrder != b.SortOrder {
		return a.SortOrder < b.SortOrder
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID.String() < b.ID.String()
}

// Page trims rows fetched with limit+1 to limit and returns the next cursor,
// if any.
func Page(rows []*Account, offset, limit int) ([]*Account, *AccountCursor) {
	if limit <= 0 || len(rows) <= limit {
		return rows, nil
	}
	return rows[:limit], &AccountCursor{Position: offset + limit, Limit: limit}
}
