package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
)

// DeleteTransaction reverts a record's balance effect and removes it.
type DeleteTransaction struct {
	UserID        uuid.UUID
	TransactionID uuid.UUID
	Snapshot      *transaction.Transaction

	Result *transaction.Transaction
}

func (d *DeleteTransaction) Name() string { return "delete_transaction" }

func (d *DeleteTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	defer logging.GetLogData(ctx).AddTiming("deleteTransaction")()

	stored, err := lockTransaction(ctx, writer, d.UserID, d.TransactionID, d.Snapshot)
	if err != nil {
		return err
	}

	if _, err := lockAccounts(ctx, writer, stored.AccountID, stored.ToAccountID.UUID); err != nil {
		return err
	}

	if err := ledger.Apply(ctx, writer.Account, stored.Effect().Invert()); err != nil {
		return err
	}

	if err := writer.Transaction.Delete(ctx, d.TransactionID); err != nil {
		return err
	}

	d.Result = stored
	return nil
}
