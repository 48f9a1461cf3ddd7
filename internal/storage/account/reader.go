package account

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

const tableName = "accounts"

var columns = []any{
	"id", "user_id", "name", "institution", "type", "currency", "balance",
	"account_number", "color", "icon", "memo", "sort_order", "created_at",
}

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) List(ctx context.Context, filter *AccountFilter) (*AccountListResult, error) {
	limit := 0
	offset := 0
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(tableName),
	}
	if filter != nil {
		limit = filter.Limit
		offset = filter.Offset
		if filter.UserID != uuid.Nil {
			queryMods = append(queryMods, sm.Where(psql.Quote("user_id").EQ(psql.Arg(filter.UserID))))
		}
	}
	if limit > 0 {
		queryMods = append(queryMods, sm.Limit(limit+1))
	}
	if offset > 0 {
		queryMods = append(queryMods, sm.Offset(offset))
	}
	queryMods = append(queryMods,
		sm.OrderBy(psql.Quote("sort_order")).Asc(),
		sm.OrderBy(psql.Quote("name")).Asc(),
		sm.OrderBy(psql.Quote("id")).Asc(),
	)

	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[*Account]())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &AccountListResult{}, nil
	}

	page, next := Page(rows, offset, limit)
	return &AccountListResult{Accounts: page, NextCursor: next}, nil
}

func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return r.findOne(ctx, id, false)
}

func (r *Reader) findOne(ctx context.Context, id uuid.UUID, forUpdate bool) (*Account, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(tableName),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	}
	if forUpdate {
		queryMods = append(queryMods, sm.ForUpdate())
	}

	row, err := bob.One(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[*Account]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ledger.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}
