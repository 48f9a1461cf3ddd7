package actions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/memory"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
)

var (
	userID  = uuid.Must(uuid.NewV4())
	otherID = uuid.Must(uuid.NewV4())
	today   = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
)

// run performs action in one write unit the way the operator does.
func run(t *testing.T, store *memory.Store, action IAction) error {
	t.Helper()
	writer, err := store.Write(context.Background())
	require.NoError(t, err)

	if err := action.Perform(context.Background(), writer); err != nil {
		require.NoError(t, writer.Rollback())
		return err
	}
	return writer.Commit()
}

func newAccount(t *testing.T, store *memory.Store, owner uuid.UUID, currency string, balance int64) uuid.UUID {
	t.Helper()
	action := &CreateAccount{Create: &account.AccountCreate{
		UserID:   owner,
		Name:     "acct-" + currency,
		Type:     account.TypeChecking,
		Currency: currency,
		Balance:  balance,
	}}
	require.NoError(t, run(t, store, action))
	return action.Result.ID
}

func balanceOf(t *testing.T, store *memory.Store, id uuid.UUID) int64 {
	t.Helper()
	a, err := store.Read().Accounts.FindByID(context.Background(), id)
	require.NoError(t, err)
	return a.Balance
}

func createTx(t *testing.T, store *memory.Store, c *transaction.TransactionCreate) *transaction.Transaction {
	t.Helper()
	action := &CreateTransaction{Create: c}
	require.NoError(t, run(t, store, action))
	return action.Result
}

func expense(accountID uuid.UUID, amount int64) *transaction.TransactionCreate {
	return &transaction.TransactionCreate{
		UserID:    userID,
		Type:      ledger.TypeExpense,
		Amount:    amount,
		AccountID: accountID,
		Date:      today,
	}
}

func TestCreateTransaction_Expense(t *testing.T) {
	store := memory.New()
	a := newAccount(t, store, userID, "USD", 1000)

	action := &CreateTransaction{Create: expense(a, 300)}
	require.NoError(t, run(t, store, action))

	assert.Equal(t, int64(700), balanceOf(t, store, a))
	assert.Equal(t, "USD", action.Result.Currency)
	assert.Equal(t, int64(1000), action.Accounts[a].Balance)

	from, to := today, today
	res, err := store.Read().Transactions.List(context.Background(), &transaction.TransactionFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, int64(300), res.Transactions[0].Amount)
	assert.Equal(t, ledger.TypeExpense, res.Transactions[0].Type)
}

func TestCreateTransaction_Transfer(t *testing.T) {
	store := memory.New()
	a := newAccount(t, store, userID, "USD", 1000)
	b := newAccount(t, store, userID, "USD", 500)

	createTx(t, store, &transaction.TransactionCreate{
		UserID:      userID,
		Type:        ledger.TypeTransfer,
		Amount:      400,
		AccountID:   a,
		ToAccountID: b,
		Date:        today,
	})

	assert.Equal(t, int64(600), balanceOf(t, store, a))
	assert.Equal(t, int64(900), balanceOf(t, store, b))
	assert.Equal(t, int64(1500), balanceOf(t, store, a)+balanceOf(t, store, b))
}

func TestCreateTransaction_CrossCurrencyTransferRejected(t *testing.T) {
	store := memory.New()
	a := newAccount(t, store, userID, "USD", 1000)
	b := newAccount(t, store, userID, "KRW", 0)

	err := run(t, store, &CreateTransaction{Create: &transaction.TransactionCreate{
		UserID:      userID,
		Type:        ledger.TypeTransfer,
		Amount:      100,
		AccountID:   a,
		ToAccountID: b,
		Date:        today,
	}})

	assert.True(t, ledger.IsValidation(err))
	assert.Equal(t, int64(1000), balanceOf(t, store, a))
}

func TestCreateTransaction_CurrencyMismatch(t *testing.T) {
	store := memory.New()
	a := newAccount(t, store, userID, "USD", 1000)

	c := expense(a, 10)
	c.Currency = "EUR"
	err := run(t, store, &CreateTransaction{Create: c})

	var v *ledger.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Equal(t, "currency", v.Field)
}

func TestCreateTransaction_ForeignAccount(t *testing.T) {
	store := memory.New()
	theirs := newAccount(t, store, otherID, "USD", 1000)

	err := run(t, store, &CreateTransaction{Create: expense(theirs, 10)})

	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
	assert.Equal(t, int64(1000), balanceOf(t, store, theirs))
}

func TestCreateTransaction_VanishedAccountRollsBackRecord(t *testing.T) {
	store := memory.New()
	a := newAccount(t, store, userID, "USD", 1000)
	store.FailOn(memory.OpAdjustBalance, ledger.ErrAccountNotFound)

	err := run(t, store, &CreateTransaction{Create: expense(a, 300)})
	store.ClearFaults()

	assert.True(t, ledger.IsConsistency(err))
	n, err := store.Read().Transactions.CountByAccount(context.Background(), a)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, int64(1000), balanceOf(t, store, a))
}

func TestUpdateTransaction_Amount(t *testing.T) {
	store := memory.New()
	a := newAccount(t, store, userID, "USD", 1000)
	tx := createTx(t, store, expense(a, 300))
	require.Equal(t, int64(700), balanceOf(t, store, a))

	action := &UpdateTransaction{
		UserID:        userID,
		TransactionID: tx.ID,
		Update:        expense(a, 500),
		Snapshot:      tx,
	}
	require.NoError(t, run(t, store, action))

	assert.Equal(t, int64(500), balanceOf(t, store, a))
	assert.Equal(t, int64(500), action.Result.Amount)
	assert.Equal(t, tx.CreatedAt, action.Result.CreatedAt)
}

func TestUpdateTransaction_MoveToOtherAccountAndType(t *testing.T) {
	store := memory.New()
	a := newAccount(t, store, userID, "USD", 1000)
	b := newAccount(t, store, userID, "USD", 1000)
	tx := createTx(t, store, expense(a, 300))

	require.NoError(t, run(t, store, &UpdateTransaction{
		UserID:        userID,
		TransactionID: tx.ID,
		Update: &transaction.TransactionCreate{
			Type:      ledger.TypeIncome,
			Amount:    200,
			AccountID: b,
			Date:      today,
		},
	}))

	assert.Equal(t, int64(1000), balanceOf(t, store, a))
	assert.Equal(t, int64(1200), balanceOf(t, store, b))
}

func TestUpdateTransaction_StaleSnapshot(t *testing.T) {
	store := memory.New()
	a := newAccount(t, store, userID, "USD", 1000)
	tx := createTx(t, store, expense(a, 300))

	stale := *tx
	stale.Amount = 999
	err := run(t, store, &UpdateTransaction{
		UserID:        userID,
		TransactionID: tx.ID,
		Update:        expense(a, 500),
		Snapshot:      &stale,
	})

	assert.ErrorIs(t, err, ledger.ErrStaleSnapshot)
	assert.Equal(t, int64(700), balanceOf(t, store, a))
}

func TestUpdateTransaction_FailureAfterRevertIsAtomic(t *testing.T) {
	store := memory.New()
	a := newAccount(t, store, userID, "USD", 1000)
	tx := createTx(t, store, expense(a, 300))
	boom := errors.New("connection reset")
	store.FailOn(memory.OpTransactionUpdate, boom)

	err := run(t, store, &UpdateTransaction{
		UserID:        userID,
		TransactionID: tx.ID,
		Update:        expense(a, 500),
	})
	store.ClearFaults()

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int64(700), balanceOf(t, store, a))
	stored, err := store.Read().Transactions.FindByID(context.Background(), tx.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(300), stored.Amount)
}

func TestUpdateTransaction_OtherUser(t *testing.T) {
	store := memory.New()
	a := newAccount(t, store, userID, "USD", 1000)
	tx := createTx(t, store, expense(a, 300))

	err := run(t, store, &UpdateTransaction{
		UserID:        otherID,
		TransactionID: tx.ID,
		Update:        expense(a, 1),
	})
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)
}

func TestDeleteTransaction_Income(t *testing.T) {
	store := memory.New()
	b := newAccount(t, store, userID, "USD", 1000)
	tx := createTx(t, store, &transaction.TransactionCreate{
		UserID:    userID,
		Type:      ledger.TypeIncome,
		Amount:    200,
		AccountID: b,
		Date:      today,
	})
	require.Equal(t, int64(1200), balanceOf(t, store, b))

	action := &DeleteTransaction{UserID: userID, TransactionID: tx.ID, Snapshot: tx}
	require.NoError(t, run(t, store, action))

	assert.Equal(t, int64(1000), balanceOf(t, store, b))
	assert.Equal(t, tx.ID, action.Result.ID)
	_, err := store.Read().Transactions.FindByID(context.Background(), tx.ID)
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)
}

func TestDeleteTransaction_TransferRestoresBoth(t *testing.T) {
	store := memory.New()
	a := newAccount(t, store, userID, "KRW", 50000)
	b := newAccount(t, store, userID, "KRW", 0)
	tx := createTx(t, store, &transaction.TransactionCreate{
		UserID:      userID,
		Type:        ledger.TypeTransfer,
		Amount:      20000,
		AccountID:   a,
		ToAccountID: b,
		Date:        today,
	})

	require.NoError(t, run(t, store, &DeleteTransaction{UserID: userID, TransactionID: tx.ID}))

	assert.Equal(t, int64(50000), balanceOf(t, store, a))
	assert.Zero(t, balanceOf(t, store, b))
}

func TestDeleteTransaction_FailureIsAtomic(t *testing.T) {
	store := memory.New()
	a := newAccount(t, store, userID, "USD", 1000)
	tx := createTx(t, store, expense(a, 300))
	store.FailOn(memory.OpTransactionDelete, errors.New("timeout"))

	err := run(t, store, &DeleteTransaction{UserID: userID, TransactionID: tx.ID})
	store.ClearFaults()

	assert.Error(t, err)
	assert.Equal(t, int64(700), balanceOf(t, store, a))
	_, err = store.Read().Transactions.FindByID(context.Background(), tx.ID)
	assert.NoError(t, err)
}

func TestDeleteTransaction_StaleSnapshot(t *testing.T) {
	store := memory.New()
	a := newAccount(t, store, userID, "USD", 1000)
	tx := createTx(t, store, expense(a, 300))

	stale := *tx
	stale.Type = ledger.TypeIncome
	err := run(t, store, &DeleteTransaction{UserID: userID, TransactionID: tx.ID, Snapshot: &stale})

	assert.ErrorIs(t, err, ledger.ErrStaleSnapshot)
	assert.Equal(t, int64(700), balanceOf(t, store, a))
}

func TestUpdateAccount(t *testing.T) {
	store := memory.New()
	a := newAccount(t, store, userID, "USD", 1000)

	update := &account.AccountUpdate{}
	update.Name.Set("Checking")
	action := &UpdateAccount{UserID: userID, AccountID: a, Update: update}
	require.NoError(t, run(t, store, action))
	assert.Equal(t, "Checking", action.Result.Name)

	err := run(t, store, &UpdateAccount{UserID: otherID, AccountID: a, Update: update})
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestDeleteAccount(t *testing.T) {
	store := memory.New()
	a := newAccount(t, store, userID, "USD", 1000)
	tx := createTx(t, store, expense(a, 300))

	err := run(t, store, &DeleteAccount{UserID: userID, AccountID: a})
	assert.ErrorIs(t, err, ledger.ErrAccountInUse)

	require.NoError(t, run(t, store, &DeleteTransaction{UserID: userID, TransactionID: tx.ID}))
	require.NoError(t, run(t, store, &DeleteAccount{UserID: userID, AccountID: a}))

	_, err = store.Read().Accounts.FindByID(context.Background(), a)
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestLockAccounts_DedupesAndSkipsNil(t *testing.T) {
	store := memory.New()
	a := newAccount(t, store, userID, "USD", 1)
	b := newAccount(t, store, userID, "USD", 2)

	writer, err := store.Write(context.Background())
	require.NoError(t, err)
	defer writer.Rollback()

	locked, err := lockAccounts(context.Background(), writer, b, uuid.Nil, a, b)
	require.NoError(t, err)
	assert.Len(t, locked, 2)
	assert.Equal(t, int64(1), locked[a].Balance)
	assert.Equal(t, int64(2), locked[b].Balance)

	_, err = lockAccounts(context.Background(), writer, uuid.Must(uuid.NewV4()))
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}
