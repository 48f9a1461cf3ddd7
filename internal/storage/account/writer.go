package account

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

// foreignKeyViolation is the PostgreSQL SQLSTATE raised by ON DELETE RESTRICT.
const foreignKeyViolation = "23503"

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

// FindByIDForUpdate reads an account and holds its row lock until the
// surrounding transaction ends.
func (w *Writer) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Account, error) {
	return w.findOne(ctx, id, true)
}

func (w *Writer) Create(ctx context.Context, create *AccountCreate) (*Account, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}

	q := psql.Insert(
		im.Into(tableName, "id", "user_id", "name", "institution", "type", "currency", "balance",
			"account_number", "color", "icon", "memo", "sort_order"),
		im.Values(psql.Arg(id, create.UserID, create.Name, create.Institution, create.Type, create.Currency,
			create.Balance, create.AccountNumber, create.Color, create.Icon, create.Memo, create.SortOrder)),
		im.Returning(columns...),
	)
	return bob.One(ctx, w.tx, q, scan.StructMapper[*Account]())
}

func (w *Writer) Update(ctx context.Context, id uuid.UUID, update *AccountUpdate) (*Account, error) {
	var sets []bob.Mod[*dialect.UpdateQuery]
	if v, ok := update.Name.Get(); ok {
		sets = append(sets, um.SetCol("name").ToArg(v))
	}
	if v, ok := update.Institution.Get(); ok {
		sets = append(sets, um.SetCol("institution").ToArg(v))
	}
	if v, ok := update.Type.Get(); ok {
		sets = append(sets, um.SetCol("type").ToArg(v))
	}
	if v, ok := update.AccountNumber.Get(); ok {
		sets = append(sets, um.SetCol("account_number").ToArg(v))
	}
	if v, ok := update.Color.Get(); ok {
		sets = append(sets, um.SetCol("color").ToArg(v))
	}
	if v, ok := update.Icon.Get(); ok {
		sets = append(sets, um.SetCol("icon").ToArg(v))
	}
	if v, ok := update.Memo.Get(); ok {
		sets = append(sets, um.SetCol("memo").ToArg(v))
	}
	if v, ok := update.SortOrder.Get(); ok {
		sets = append(sets, um.SetCol("sort_order").ToArg(v))
	}
	if len(sets) == 0 {
		return w.FindByID(ctx, id)
	}

	queryMods := append([]bob.Mod[*dialect.UpdateQuery]{um.Table(tableName)}, sets...)
	queryMods = append(queryMods,
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
		um.Returning(columns...),
	)
	rows, err := bob.All(ctx, w.tx, psql.Update(queryMods...), scan.StructMapper[*Account]())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ledger.ErrAccountNotFound
	}
	return rows[0], nil
}

func (w *Writer) Delete(ctx context.Context, id uuid.UUID) error {
	q := psql.Delete(
		dm.From(tableName),
		dm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	result, err := bob.Exec(ctx, w.tx, q)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == foreignKeyViolation {
			return ledger.ErrAccountInUse
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ledger.ErrAccountNotFound
	}
	return nil
}

// AdjustBalance adds delta to the stored balance in a single statement so
// concurrent adjustments cannot overwrite each other.
func (w *Writer) AdjustBalance(ctx context.Context, id uuid.UUID, delta int64) error {
	q := psql.Update(
		um.Table(tableName),
		um.SetCol("balance").To(psql.Raw("balance + ?", delta)),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
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
		return ledger.ErrAccountNotFound
	}
	return nil
}
