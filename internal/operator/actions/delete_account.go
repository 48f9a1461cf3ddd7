package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/storage"
)

type DeleteAccount struct {
	UserID    uuid.UUID
	AccountID uuid.UUID
}

func (d *DeleteAccount) Name() string { return "delete_account" }

// Perform refuses to delete an account any transaction still references.
func (d *DeleteAccount) Perform(ctx context.Context, writer *storage.Writer) error {
	defer logging.GetLogData(ctx).AddTiming("deleteAccount")()

	existing, err := writer.Account.FindByIDForUpdate(ctx, d.AccountID)
	if err != nil {
		return err
	}
	if existing.UserID != d.UserID {
		return ledger.ErrAccountNotFound
	}

	refs, err := writer.Transaction.CountByAccount(ctx, d.AccountID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ledger.ErrAccountInUse
	}

	return writer.Account.Delete(ctx, d.AccountID)
}
