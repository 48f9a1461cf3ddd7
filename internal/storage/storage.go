package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gofrs/uuid/v5"
	_ "github.com/lib/pq"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
)

// AccountReader is the read side of the accounts table.
type AccountReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
	List(ctx context.Context, filter *account.AccountFilter) (*account.AccountListResult, error)
}

// AccountWriter is the accounts table inside a write unit.
type AccountWriter interface {
	AccountReader
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error)
	Create(ctx context.Context, create *account.AccountCreate) (*account.Account, error)
	Update(ctx context.Context, id uuid.UUID, update *account.AccountUpdate) (*account.Account, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustBalance(ctx context.Context, id uuid.UUID, delta int64) error
}

// TransactionReader is the read side of the transactions table.
type TransactionReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
	List(ctx context.Context, filter *transaction.TransactionFilter) (*transaction.TransactionListResult, error)
	CountByAccount(ctx context.Context, accountID uuid.UUID) (int, error)
}

// TransactionWriter is the transactions table inside a write unit.
type TransactionWriter interface {
	TransactionReader
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
	Insert(ctx context.Context, create *transaction.TransactionCreate) (*transaction.Transaction, error)
	Update(ctx context.Context, id uuid.UUID, update *transaction.TransactionCreate) (*transaction.Transaction, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Store hands out readers over committed state and writers that commit or
// roll back as a unit.
type Store interface {
	Read() *Reader
	Write(ctx context.Context) (*Writer, error)
}

// Storage is the PostgreSQL-backed Store.
type Storage struct {
	DB   *sql.DB
	exec bob.DB
}

var _ Store = (*Storage)(nil)

func NewStorage(env *config.Config) (*Storage, error) {
	db, err := sql.Open("postgres", env.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	return &Storage{
		DB:   db,
		exec: bob.NewDB(db),
	}, nil
}

func (s *Storage) Read() *Reader {
	return NewReader(account.NewReader(s.exec), transaction.NewReader(s.exec))
}

func (s *Storage) Write(ctx context.Context) (*Writer, error) {
	tx, err := s.exec.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return NewWriter(account.NewWriter(tx), transaction.NewWriter(tx), txUnit{tx}), nil
}

// txUnit adapts bob.Tx, whose Commit/Rollback take no context, to Unit.
type txUnit struct{ bob.Tx }

func (t txUnit) Commit(context.Context) error   { return t.Tx.Commit() }
func (t txUnit) Rollback(context.Context) error { return t.Tx.Rollback() }

func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.DB.Close()
}
