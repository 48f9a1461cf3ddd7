package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/account"
)

type UpdateAccount struct {
	UserID    uuid.UUID
	AccountID uuid.UUID
	Update    *account.AccountUpdate

	Result *account.Account
}

func (u *UpdateAccount) Name() string { return "update_account" }

func (u *UpdateAccount) Perform(ctx context.Context, writer *storage.Writer) error {
	defer logging.GetLogData(ctx).AddTiming("updateAccount")()

	existing, err := writer.Account.FindByIDForUpdate(ctx, u.AccountID)
	if err != nil {
		return err
	}
	if existing.UserID != u.UserID {
		return ledger.ErrAccountNotFound
	}

	updated, err := writer.Account.Update(ctx, u.AccountID, u.Update)
	if err != nil {
		return err
	}

	u.Result = updated
	return nil
}
