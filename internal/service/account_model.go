package service

import (
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/money"
	"github.com/carson-networks/ledger-server/internal/storage/account"
)

// Account represents an account in the service layer.
type Account struct {
	ID             uuid.UUID
	Name           string
	Institution    string
	Type           account.Type
	Currency       string
	Balance        int64
	BalanceDisplay string
	BalanceText    string
	AccountNumber  string
	Color          string
	Icon           string
	Memo           string
	SortOrder      int
	CreatedAt      time.Time
}

// AccountCreate is a new account. InitialBalance is a display value in the
// account currency, e.g. "1500.25".
type AccountCreate struct {
	Name           string
	Institution    string
	Type           account.Type
	Currency       string
	InitialBalance string
	AccountNumber  string
	Color          string
	Icon           string
	Memo           string
	SortOrder      int
}

// AccountUpdate changes account metadata. Unset fields are kept.
type AccountUpdate struct {
	Name          omit.Val[string]
	Institution   omit.Val[string]
	Type          omit.Val[account.Type]
	AccountNumber omit.Val[string]
	Color         omit.Val[string]
	Icon          omit.Val[string]
	Memo          omit.Val[string]
	SortOrder     omit.Val[int]
}

// AccountCursor identifies a position in a paginated result set.
type AccountCursor struct {
	Position int
	Limit    int
}

func accountFromStorage(row *account.Account) Account {
	a := Account{
		ID:            row.ID,
		Name:          row.Name,
		Institution:   row.Institution,
		Type:          row.Type,
		Currency:      row.Currency,
		Balance:       row.Balance,
		AccountNumber: row.AccountNumber,
		Color:         row.Color,
		Icon:          row.Icon,
		Memo:          row.Memo,
		SortOrder:     row.SortOrder,
		CreatedAt:     row.CreatedAt,
	}
	if c, ok := money.Lookup(row.Currency); ok {
		a.BalanceDisplay = money.ToDisplayValue(row.Balance, c.DecimalPlaces)
		a.BalanceText = money.Format(row.Balance, c)
	}
	return a
}

func (u AccountUpdate) toStorage() *account.AccountUpdate {
	return &account.AccountUpdate{
		Name:          u.Name,
		Institution:   u.Institution,
		Type:          u.Type,
		AccountNumber: u.AccountNumber,
		Color:         u.Color,
		Icon:          u.Icon,
		Memo:          u.Memo,
		SortOrder:     u.SortOrder,
	}
}
