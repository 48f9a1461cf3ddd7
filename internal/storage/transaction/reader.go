package transaction

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

const tableName = "transactions"

var columns = []any{
	"id", "user_id", "type", "amount", "currency", "account_id", "to_account_id",
	"category_id", "date", "description", "memo", "created_at",
}

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

// FindByID retrieves a transaction by primary key.
func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return r.findOne(ctx, id, false)
}

func (r *Reader) findOne(ctx context.Context, id uuid.UUID, forUpdate bool) (*Transaction, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(tableName),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	}
	if forUpdate {
		queryMods = append(queryMods, sm.ForUpdate())
	}

	row, err := bob.One(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[*Transaction]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// List returns transactions matching the filter, newest first. Nil filter returns all.
func (r *Reader) List(ctx context.Context, filter *TransactionFilter) (*TransactionListResult, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(tableName),
	}
	if filter != nil {
		if filter.UserID != uuid.Nil {
			queryMods = append(queryMods, sm.Where(psql.Quote("user_id").EQ(psql.Arg(filter.UserID))))
		}
		if filter.From != nil {
			queryMods = append(queryMods, sm.Where(psql.Quote("date").GTE(psql.Arg(DateOnly(*filter.From)))))
		}
		if filter.To != nil {
			queryMods = append(queryMods, sm.Where(psql.Quote("date").LTE(psql.Arg(DateOnly(*filter.To)))))
		}
		if filter.AccountID != nil {
			queryMods = append(queryMods, sm.Where(psql.Or(
				psql.Quote("account_id").EQ(psql.Arg(*filter.AccountID)),
				psql.Quote("to_account_id").EQ(psql.Arg(*filter.AccountID)),
			)))
		}
		if filter.CategoryID != nil {
			queryMods = append(queryMods, sm.Where(psql.Quote("category_id").EQ(psql.Arg(*filter.CategoryID))))
		}
		if filter.Type != "" {
			queryMods = append(queryMods, sm.Where(psql.Quote("type").EQ(psql.Arg(filter.Type))))
		}
		if filter.MaxCreationTime != nil {
			queryMods = append(queryMods, sm.Where(psql.Quote("created_at").LTE(psql.Arg(*filter.MaxCreationTime))))
		}
		if filter.Limit > 0 {
			queryMods = append(queryMods, sm.Limit(filter.Limit+1))
		}
		if filter.Offset > 0 {
			queryMods = append(queryMods, sm.Offset(filter.Offset))
		}
	}
	queryMods = append(queryMods,
		sm.OrderBy(psql.Quote("date")).Desc(),
		sm.OrderBy(psql.Quote("created_at")).Desc(),
		sm.OrderBy(psql.Quote("id")).Desc(),
	)

	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[*Transaction]())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &TransactionListResult{}, nil
	}

	page, next := Page(rows, filter)
	return &TransactionListResult{Transactions: page, NextCursor: next}, nil
}

// CountByAccount counts transactions that reference the account on either side.
func (r *Reader) CountByAccount(ctx context.Context, accountID uuid.UUID) (int, error) {
	q := psql.Select(
		sm.Columns("count(*)"),
		sm.From(tableName),
		sm.Where(psql.Or(
			psql.Quote("account_id").EQ(psql.Arg(accountID)),
			psql.Quote("to_account_id").EQ(psql.Arg(accountID)),
		)),
	)
	count, err := bob.One(ctx, r.exec, q, scan.SingleColumnMapper[int64])
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
