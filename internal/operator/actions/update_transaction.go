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

// UpdateTransaction replaces a record, reverting its old balance effect and
// applying the new one.
type UpdateTransaction struct {
	UserID        uuid.UUID
	TransactionID uuid.UUID
	Update        *transaction.TransactionCreate
	// Snapshot, when set, is the caller's view of the record. The update is
	// refused if the stored effect fields no longer match it.
	Snapshot *transaction.Transaction

	Result   *transaction.Transaction
	Accounts map[uuid.UUID]*account.Account
}

func (u *UpdateTransaction) Name() string { return "update_transaction" }

func (u *UpdateTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	defer logging.GetLogData(ctx).AddTiming("updateTransaction")()

	stored, err := lockTransaction(ctx, writer, u.UserID, u.TransactionID, u.Snapshot)
	if err != nil {
		return err
	}

	u.Update.UserID = stored.UserID
	locked, err := lockAccounts(ctx, writer,
		stored.AccountID, stored.ToAccountID.UUID, u.Update.AccountID, u.Update.ToAccountID)
	if err != nil {
		return err
	}
	if err := checkAccounts(u.Update, locked); err != nil {
		return err
	}

	if err := ledger.Apply(ctx, writer.Account, stored.Effect().Invert()); err != nil {
		return err
	}

	updated, err := writer.Transaction.Update(ctx, u.TransactionID, u.Update)
	if err != nil {
		return err
	}

	if err := ledger.Apply(ctx, writer.Account, updated.Effect()); err != nil {
		return err
	}

	u.Result = updated
	u.Accounts = locked
	return nil
}

// lockTransaction row-locks a record owned by userID and checks it against
// snapshot, if one is given.
func lockTransaction(
	ctx context.Context,
	writer *storage.Writer,
	userID, id uuid.UUID,
	snapshot *transaction.Transaction,
) (*transaction.Transaction, error) {
	stored, err := writer.Transaction.FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if stored.UserID != userID {
		return nil, ledger.ErrTransactionNotFound
	}
	if snapshot != nil && !stored.SameEffect(snapshot) {
		return nil, ledger.ErrStaleSnapshot
	}
	return stored, nil
}
