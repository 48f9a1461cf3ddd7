//go:build integration

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("ledger"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("testpassword"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	s, err := NewStorage(&config.Config{
		PostgresAddress:  host,
		PostgresPort:     port.Port(),
		PostgresDB:       "ledger",
		PostgresUsername: "postgres",
		PostgresPassword: "testpassword",
		PostgresSSLMode:  "disable",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	result, err := RunMigrations(s.DB)
	require.NoError(t, err)
	assert.Equal(t, uint(0), result.PreMigrationVersion)
	assert.Equal(t, uint(2), result.PostMigrationVersion)
	return s
}

func createAccount(t *testing.T, s *Storage, userID uuid.UUID, name string, balance int64) *account.Account {
	t.Helper()
	ctx := context.Background()
	w, err := s.Write(ctx)
	require.NoError(t, err)
	created, err := w.Account.Create(ctx, &account.AccountCreate{
		UserID:   userID,
		Name:     name,
		Type:     account.TypeChecking,
		Currency: "USD",
		Balance:  balance,
	})
	require.NoError(t, err)
	require.NoError(t, w.Commit())
	return created
}

func TestStorage_Postgres(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV4())

	require.NoError(t, s.Ping(ctx))

	checking := createAccount(t, s, userID, "Checking", 10000)
	savings := createAccount(t, s, userID, "Savings", 0)

	t.Run("transfer commits atomically", func(t *testing.T) {
		w, err := s.Write(ctx)
		require.NoError(t, err)
		_, err = w.Transaction.Insert(ctx, &transaction.TransactionCreate{
			UserID:      userID,
			Type:        ledger.TypeTransfer,
			Amount:      2500,
			Currency:    "USD",
			AccountID:   checking.ID,
			ToAccountID: savings.ID,
			Date:        time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		require.NoError(t, w.Account.AdjustBalance(ctx, checking.ID, -2500))
		require.NoError(t, w.Account.AdjustBalance(ctx, savings.ID, 2500))
		require.NoError(t, w.Commit())

		from, err := s.Read().Accounts.FindByID(ctx, checking.ID)
		require.NoError(t, err)
		to, err := s.Read().Accounts.FindByID(ctx, savings.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(7500), from.Balance)
		assert.Equal(t, int64(2500), to.Balance)
	})

	t.Run("rollback discards balance changes", func(t *testing.T) {
		w, err := s.Write(ctx)
		require.NoError(t, err)
		require.NoError(t, w.Account.AdjustBalance(ctx, checking.ID, 999))
		require.NoError(t, w.Rollback())

		found, err := s.Read().Accounts.FindByID(ctx, checking.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(7500), found.Balance)
	})

	t.Run("adjusting a missing account fails", func(t *testing.T) {
		w, err := s.Write(ctx)
		require.NoError(t, err)
		defer w.Rollback()
		err = w.Account.AdjustBalance(ctx, uuid.Must(uuid.NewV4()), 1)
		assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
	})

	t.Run("referenced account cannot be deleted", func(t *testing.T) {
		count, err := s.Read().Transactions.CountByAccount(ctx, savings.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		w, err := s.Write(ctx)
		require.NoError(t, err)
		defer w.Rollback()
		assert.ErrorIs(t, w.Account.Delete(ctx, savings.ID), ledger.ErrAccountInUse)
	})

	t.Run("listing filters by account on either side", func(t *testing.T) {
		result, err := s.Read().Transactions.List(ctx, &transaction.TransactionFilter{
			UserID:    userID,
			AccountID: &savings.ID,
		})
		require.NoError(t, err)
		require.Len(t, result.Transactions, 1)
		assert.Equal(t, ledger.TypeTransfer, result.Transactions[0].Type)
		assert.True(t, result.Transactions[0].ToAccountID.Valid)
	})

	t.Run("accounts list in display order", func(t *testing.T) {
		result, err := s.Read().Accounts.List(ctx, &account.AccountFilter{UserID: userID, Limit: 1})
		require.NoError(t, err)
		require.Len(t, result.Accounts, 1)
		assert.Equal(t, "Checking", result.Accounts[0].Name)
		require.NotNil(t, result.NextCursor)
		assert.Equal(t, 1, result.NextCursor.Position)
	})
}
