package transaction

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

type Writer struct {
	tx bob.Executor
	Reader
}

func NewWriter(tx bob.Executor) *Writer {
	return &Writer{
		tx: tx,
		Reader: Reader{
			exec: tx,
		},
	}
}

// FindByIDForUpdate reads a transaction and holds its row lock until the
// surrounding transaction ends.
func (w *Writer) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return w.findOne(ctx, id, true)
}

// Insert creates a new transaction and returns the stored record.
func (w *Writer) Insert(ctx context.Context, create *TransactionCreate) (*Transaction, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	q := psql.Insert(
		im.Into(tableName, "id", "user_id", "type", "amount", "currency", "account_id",
			"to_account_id", "category_id", "date", "description", "memo"),
		im.Values(psql.Arg(id, create.UserID, create.Type, create.Amount, create.Currency, create.AccountID,
			NullID(create.ToAccountID), NullID(create.CategoryID), DateOnly(create.Date),
			create.Description, create.Memo)),
		im.Returning(columns...),
	)
	return bob.One(ctx, w.tx, q, scan.StructMapper[*Transaction]())
}

// Update overwrites every mutable field of the transaction.
func (w *Writer) Update(ctx context.Context, id uuid.UUID, update *TransactionCreate) (*Transaction, error) {
	q := psql.Update(
		um.Table(tableName),
		um.SetCol("type").ToArg(update.Type),
		um.SetCol("amount").ToArg(update.Amount),
		um.SetCol("currency").ToArg(update.Currency),
		um.SetCol("account_id").ToArg(update.AccountID),
		um.SetCol("to_account_id").ToArg(NullID(update.ToAccountID)),
		um.SetCol("category_id").ToArg(NullID(update.CategoryID)),
		um.SetCol("date").ToArg(DateOnly(update.Date)),
		um.SetCol("description").ToArg(update.Description),
		um.SetCol("memo").ToArg(update.Memo),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
		um.Returning(columns...),
	)
	rows, err := bob.All(ctx, w.tx, q, scan.StructMapper[*Transaction]())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ledger.ErrTransactionNotFound
	}
	return rows[0], nil
}

// Delete removes the transaction.
func (w *Writer) Delete(ctx context.Context, id uuid.UUID) error {
	q := psql.Delete(
		dm.From(tableName),
		dm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	result, err := bob.Exec(ctx, w.tx, q)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ledger.ErrTransactionNotFound
	}
	return nil
}
