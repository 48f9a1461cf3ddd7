package transaction

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/handlers"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/service"
)

// Transaction is the API response model for a transaction.
// It is used only for responses, not for request bodies.
type Transaction struct {
	ID            string `json:"id" doc:"Transaction UUID"`
	Type          string `json:"type" doc:"income, expense or transfer"`
	Amount        int64  `json:"amount" doc:"Amount in minor units of the currency"`
	AmountDisplay string `json:"amountDisplay" doc:"Decimal amount, e.g. 12.50"`
	Currency      string `json:"currency" doc:"ISO 4217 currency code"`
	AccountID     string `json:"accountID" doc:"Source account UUID"`
	AccountName   string `json:"accountName" doc:"Source account name"`
	ToAccountID   string `json:"toAccountID,omitempty" doc:"Destination account UUID for transfers"`
	ToAccountName string `json:"toAccountName,omitempty" doc:"Destination account name for transfers"`
	CategoryID    string `json:"categoryID,omitempty" doc:"Category UUID"`
	Date          string `json:"date" doc:"Transaction date, YYYY-MM-DD"`
	Description   string `json:"description" doc:"What the transaction was for"`
	Memo          string `json:"memo,omitempty" doc:"Free-form note"`
	CreatedAt     string `json:"createdAt" doc:"RFC3339 creation time"`
}

func fromService(t *service.Transaction) Transaction {
	return Transaction{
		ID:            t.ID.String(),
		Type:          string(t.Type),
		Amount:        t.Amount,
		AmountDisplay: t.AmountDisplay,
		Currency:      t.Currency,
		AccountID:     t.AccountID.String(),
		AccountName:   t.AccountName,
		ToAccountID:   optionalID(t.ToAccountID),
		ToAccountName: t.ToAccountName,
		CategoryID:    optionalID(t.CategoryID),
		Date:          t.Date.Format(handlers.DateLayout),
		Description:   t.Description,
		Memo:          t.Memo,
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
	}
}

func optionalID(id uuid.UUID) string {
	if id.IsNil() {
		return ""
	}
	return id.String()
}

// TransactionOutput is the Huma output for endpoints returning one transaction.
type TransactionOutput struct {
	Status int
	Body   Transaction
}

// TransactionBody holds every editable field of a transaction.
type TransactionBody struct {
	Type        string `json:"type" enum:"income,expense,transfer" doc:"Transaction type"`
	Amount      int64  `json:"amount" doc:"Amount in minor units of the account currency, must be positive"`
	Currency    string `json:"currency,omitempty" doc:"ISO 4217 currency code, defaults to the source account currency"`
	AccountID   string `json:"accountID" format:"uuid" doc:"Source account UUID"`
	ToAccountID string `json:"toAccountID,omitempty" format:"uuid" doc:"Destination account UUID, required for transfers"`
	CategoryID  string `json:"categoryID,omitempty" format:"uuid" doc:"Category UUID, not allowed for transfers"`
	Date        string `json:"date" format:"date" doc:"Transaction date, YYYY-MM-DD"`
	Description string `json:"description,omitempty" maxLength:"200" doc:"What the transaction was for"`
	Memo        string `json:"memo,omitempty" maxLength:"1000" doc:"Free-form note"`
}

// SnapshotBody is the caller's last seen view of a transaction's balance
// effect. When it no longer matches the stored record the write is refused.
type SnapshotBody struct {
	Type        string `json:"type" enum:"income,expense,transfer" doc:"Transaction type"`
	Amount      int64  `json:"amount" doc:"Amount in minor units"`
	AccountID   string `json:"accountID" format:"uuid" doc:"Source account UUID"`
	ToAccountID string `json:"toAccountID,omitempty" format:"uuid" doc:"Destination account UUID"`
}

func parseTransactionBody(body *TransactionBody) (service.TransactionInput, error) {
	accountID, err := uuid.FromString(body.AccountID)
	if err != nil {
		return service.TransactionInput{}, huma.NewError(http.StatusBadRequest, "invalid accountID", err)
	}
	toAccountID, err := parseOptionalID("toAccountID", body.ToAccountID)
	if err != nil {
		return service.TransactionInput{}, err
	}
	categoryID, err := parseOptionalID("categoryID", body.CategoryID)
	if err != nil {
		return service.TransactionInput{}, err
	}
	date, err := time.Parse(handlers.DateLayout, body.Date)
	if err != nil {
		return service.TransactionInput{}, huma.NewError(http.StatusBadRequest, "invalid date", err)
	}

	return service.TransactionInput{
		Type:        ledger.Type(body.Type),
		Amount:      body.Amount,
		Currency:    body.Currency,
		AccountID:   accountID,
		ToAccountID: toAccountID,
		CategoryID:  categoryID,
		Date:        date,
		Description: body.Description,
		Memo:        body.Memo,
	}, nil
}

func parseSnapshot(typ string, amount int64, accountID, toAccountID string) (*service.Snapshot, error) {
	if !ledger.Type(typ).Valid() {
		return nil, huma.NewError(http.StatusBadRequest, "invalid snapshot type")
	}
	from, err := uuid.FromString(accountID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid snapshot accountID", err)
	}
	to, err := parseOptionalID("snapshot toAccountID", toAccountID)
	if err != nil {
		return nil, err
	}
	return &service.Snapshot{
		Type:        ledger.Type(typ),
		Amount:      amount,
		AccountID:   from,
		ToAccountID: to,
	}, nil
}

func parseOptionalID(field, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.FromString(value)
	if err != nil {
		return uuid.Nil, huma.NewError(http.StatusBadRequest, "invalid "+field, err)
	}
	return id, nil
}
