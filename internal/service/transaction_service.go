package service

import (
	"context"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/stats"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
)

const defaultLimit = 20

// TransactionService handles transaction business logic.
type TransactionService struct {
	storage   storage.Store
	processor Processor
	bus       Publisher
}

func NewTransactionService(store storage.Store, processor Processor, bus Publisher) *TransactionService {
	return &TransactionService{storage: store, processor: processor, bus: bus}
}

// CreateTransaction records a transaction and applies its balance effect in
// one unit.
func (s *TransactionService) CreateTransaction(ctx context.Context, in TransactionInput) (*Transaction, error) {
	userID, err := sessionUser(ctx)
	if err != nil {
		return nil, err
	}

	create := in.toStorage(userID)
	if err := ledger.Validate(create.LedgerInput()); err != nil {
		return nil, err
	}

	action := &actions.CreateTransaction{Create: create}
	err = dispatch(ctx, s.processor, s.bus, action, userID, events.TopicTransactions, events.TopicAccounts)
	if err != nil {
		return nil, err
	}

	created := transactionFromStorage(action.Result, lockedNames(action.Accounts))
	return &created, nil
}

// UpdateTransaction replaces a transaction, moving its balance effect. With a
// snapshot, the update is refused if the stored effect fields changed since
// the caller read them.
func (s *TransactionService) UpdateTransaction(ctx context.Context, id uuid.UUID, in TransactionInput, snapshot *Snapshot) (*Transaction, error) {
	userID, err := sessionUser(ctx)
	if err != nil {
		return nil, err
	}

	update := in.toStorage(userID)
	if err := ledger.Validate(update.LedgerInput()); err != nil {
		return nil, err
	}

	action := &actions.UpdateTransaction{
		UserID:        userID,
		TransactionID: id,
		Update:        update,
		Snapshot:      snapshot.toStorage(),
	}
	err = dispatch(ctx, s.processor, s.bus, action, userID, events.TopicTransactions, events.TopicAccounts)
	if err != nil {
		return nil, err
	}

	updated := transactionFromStorage(action.Result, lockedNames(action.Accounts))
	return &updated, nil
}

// DeleteTransaction reverts a transaction's balance effect and removes it.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id uuid.UUID, snapshot *Snapshot) error {
	userID, err := sessionUser(ctx)
	if err != nil {
		return err
	}

	action := &actions.DeleteTransaction{
		UserID:        userID,
		TransactionID: id,
		Snapshot:      snapshot.toStorage(),
	}
	err = dispatch(ctx, s.processor, s.bus, action, userID, events.TopicTransactions, events.TopicAccounts)
	return err
}

// GetTransaction retrieves one of the session user's transactions.
func (s *TransactionService) GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	userID, err := sessionUser(ctx)
	if err != nil {
		return nil, err
	}

	reader := s.storage.Read()
	row, err := reader.Transactions.FindByID(ctx, id)
	if err != nil {
		return nil, ledger.WrapStore("find transaction", err)
	}
	if row.UserID != userID {
		return nil, ledger.ErrTransactionNotFound
	}

	names, err := accountNames(ctx, reader, userID)
	if err != nil {
		return nil, err
	}
	t := transactionFromStorage(row, names)
	return &t, nil
}

// ListTransactions returns a page of the session user's transactions, newest
// date first, then newest creation. A search term is matched in memory over
// the store-filtered rows.
func (s *TransactionService) ListTransactions(ctx context.Context, filter *TransactionFilter, cursor *TransactionCursor) ([]Transaction, *TransactionCursor, error) {
	userID, err := sessionUser(ctx)
	if err != nil {
		return nil, nil, err
	}
	if filter == nil {
		filter = &TransactionFilter{}
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, nil, &ledger.ValidationError{Field: "type", Reason: "unknown transaction type " + string(filter.Type)}
	}

	limit := defaultLimit
	offset := 0
	var maxCreationTime *time.Time
	if cursor != nil {
		limit = cursor.Limit
		offset = cursor.Position
		maxCreationTime = &cursor.MaxCreationTime
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	storageFilter := &transaction.TransactionFilter{
		UserID:          userID,
		From:            filter.From,
		To:              filter.To,
		Type:            filter.Type,
		MaxCreationTime: maxCreationTime,
	}
	if filter.AccountID != uuid.Nil {
		storageFilter.AccountID = &filter.AccountID
	}
	if filter.CategoryID != uuid.Nil {
		storageFilter.CategoryID = &filter.CategoryID
	}

	search := strings.TrimSpace(filter.Search)
	if search == "" {
		storageFilter.Limit = limit
		storageFilter.Offset = offset
	}

	reader := s.storage.Read()
	result, err := reader.Transactions.List(ctx, storageFilter)
	if err != nil {
		return nil, nil, ledger.WrapStore("list transactions", err)
	}
	names, err := accountNames(ctx, reader, userID)
	if err != nil {
		return nil, nil, err
	}

	rows := result.Transactions
	next := result.NextCursor
	if search != "" {
		rows = stats.Filter(rows, stats.Criteria{Search: search}, func(id uuid.UUID) string { return names[id] })
		rows, next = pageInMemory(rows, offset, limit, maxCreationTime)
	}

	if len(rows) == 0 {
		return nil, nil, nil
	}

	convertedTransactions := make([]Transaction, len(rows))
	for i, row := range rows {
		convertedTransactions[i] = transactionFromStorage(row, names)
	}

	var nextCursor *TransactionCursor
	if next != nil {
		nextCursor = &TransactionCursor{
			Position:        next.Position,
			Limit:           next.Limit,
			MaxCreationTime: next.MaxCreationTime,
		}
	}
	return convertedTransactions, nextCursor, nil
}

func pageInMemory(rows []*transaction.Transaction, offset, limit int, maxCreationTime *time.Time) ([]*transaction.Transaction, *transaction.TransactionCursor) {
	if offset >= len(rows) {
		return nil, nil
	}
	rows = rows[offset:]
	if len(rows) > limit+1 {
		rows = rows[:limit+1]
	}
	return transaction.Page(rows, &transaction.TransactionFilter{
		Limit:           limit,
		Offset:          offset,
		MaxCreationTime: maxCreationTime,
	})
}

func lockedNames(accounts map[uuid.UUID]*account.Account) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(accounts))
	for id, a := range accounts {
		names[id] = a.Name
	}
	return names
}
