package actions

import (
	"context"

	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/account"
)

type CreateAccount struct {
	Create *account.AccountCreate

	Result *account.Account
}

func (c *CreateAccount) Name() string { return "create_account" }

func (c *CreateAccount) Perform(ctx context.Context, writer *storage.Writer) error {
	defer logging.GetLogData(ctx).AddTiming("createAccount")()

	created, err := writer.Account.Create(ctx, c.Create)
	if err != nil {
		return err
	}

	c.Result = created
	return nil
}
