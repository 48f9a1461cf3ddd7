package account

import (
	"time"

	"github.com/carson-networks/ledger-server/internal/service"
)

// Account is the API response model for an account.
type Account struct {
	ID             string `json:"id" doc:"Account UUID"`
	Name           string `json:"name" doc:"Account name"`
	Institution    string `json:"institution" doc:"Bank or card issuer"`
	Type           string `json:"type" doc:"Account type"`
	Currency       string `json:"currency" doc:"ISO 4217 currency code"`
	Balance        int64  `json:"balance" doc:"Balance in minor units of the currency"`
	BalanceDisplay string `json:"balanceDisplay" doc:"Decimal balance, e.g. 1500.25"`
	BalanceText    string `json:"balanceText" doc:"Balance formatted with the currency symbol"`
	AccountNumber  string `json:"accountNumber,omitempty" doc:"Account number as printed by the institution"`
	Color          string `json:"color,omitempty" doc:"Display color"`
	Icon           string `json:"icon,omitempty" doc:"Display icon"`
	Memo           string `json:"memo,omitempty" doc:"Free-form note"`
	SortOrder      int    `json:"sortOrder" doc:"Position in account listings"`
	CreatedAt      string `json:"createdAt" doc:"RFC3339 creation time"`
}

func fromService(a *service.Account) Account {
	return Account{
		ID:             a.ID.String(),
		Name:           a.Name,
		Institution:    a.Institution,
		Type:           string(a.Type),
		Currency:       a.Currency,
		Balance:        a.Balance,
		BalanceDisplay: a.BalanceDisplay,
		BalanceText:    a.BalanceText,
		AccountNumber:  a.AccountNumber,
		Color:          a.Color,
		Icon:           a.Icon,
		Memo:           a.Memo,
		SortOrder:      a.SortOrder,
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
	}
}

// AccountOutput is the Huma output for endpoints returning one account.
type AccountOutput struct {
	Status int
	Body   Account
}
