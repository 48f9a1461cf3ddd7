package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
)

// CreateTransaction inserts a record and applies its balance effect.
type CreateTransaction struct {
	Create *transaction.TransactionCreate

	Result *transaction.Transaction
	// Accounts holds the referenced accounts as locked, before adjustment.
	Accounts map[uuid.UUID]*account.Account
}

func (t *CreateTransaction) Name() string { return "create_transaction" }

func (t *CreateTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	defer logging.GetLogData(ctx).AddTiming("createTransaction")()

	locked, err := lockAccounts(ctx, writer, t.Create.AccountID, t.Create.ToAccountID)
	if err != nil {
		return err
	}
	if err := checkAccounts(t.Create, locked); err != nil {
		return err
	}

	created, err := writer.Transaction.Insert(ctx, t.Create)
	if err != nil {
		return err
	}

	if err := ledger.Apply(ctx, writer.Account, created.Effect()); err != nil {
		return err
	}

	t.Result = created
	t.Accounts = locked
	return nil
}

// checkAccounts verifies that the accounts c references belong to its user
// and share one currency, and fills in c.Currency from the source account.
func checkAccounts(c *transaction.TransactionCreate, locked map[uuid.UUID]*account.Account) error {
	from := locked[c.AccountID]
	if from == nil || from.UserID != c.UserID {
		return ledger.ErrAccountNotFound
	}

	if c.Currency == "" {
		c.Currency = from.Currency
	} else if c.Currency != from.Currency {
		return &ledger.ValidationError{Field: "currency", Reason: "must match the account currency " + from.Currency}
	}

	if c.ToAccountID == uuid.Nil {
		return nil
	}
	to := locked[c.ToAccountID]
	if to == nil || to.UserID != c.UserID {
		return ledger.ErrAccountNotFound
	}
	if to.Currency != from.Currency {
		return &ledger.ValidationError{Field: "toAccountID", Reason: "cannot transfer between currencies"}
	}
	return nil
}
