// Package memory is an in-process Store. Write units are serialized and work
// on a private copy of the committed state, which Commit swaps in.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
)

// Operations that can be made to fail with FailOn.
const (
	OpAccountCreate     = "account.create"
	OpAccountUpdate     = "account.update"
	OpAccountDelete     = "account.delete"
	OpAdjustBalance     = "account.adjust_balance"
	OpTransactionInsert = "transaction.insert"
	OpTransactionUpdate = "transaction.update"
	OpTransactionDelete = "transaction.delete"
	OpCommit            = "commit"
)

type state struct {
	accounts     map[uuid.UUID]*account.Account
	transactions map[uuid.UUID]*transaction.Transaction
}

func newState() *state {
	return &state{
		accounts:     map[uuid.UUID]*account.Account{},
		transactions: map[uuid.UUID]*transaction.Transaction{},
	}
}

func (s *state) clone() *state {
	c := &state{
		accounts:     make(map[uuid.UUID]*account.Account, len(s.accounts)),
		transactions: make(map[uuid.UUID]*transaction.Transaction, len(s.transactions)),
	}
	for id, a := range s.accounts {
		cp := *a
		c.accounts[id] = &cp
	}
	for id, t := range s.transactions {
		cp := *t
		c.transactions[id] = &cp
	}
	return c
}

type Store struct {
	mu        sync.RWMutex
	committed *state
	lastStamp time.Time
	faults    map[string]error

	// one token; holding it means owning the open write unit
	writeSem chan struct{}
	now      func() time.Time
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		committed: newState(),
		faults:    map[string]error{},
		writeSem:  make(chan struct{}, 1),
		now:       time.Now,
	}
}

// FailOn makes every later call of op return err until ClearFaults.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

func (s *Store) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = map[string]error{}
}

func (s *Store) fault(op string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.faults[op]
}

func (s *Store) snapshot() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.committed
}

// stamp returns a strictly increasing creation time.
func (s *Store) stamp() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.now().UTC()
	if !t.After(s.lastStamp) {
		t = s.lastStamp.Add(time.Microsecond)
	}
	s.lastStamp = t
	return t
}

func (s *Store) Read() *storage.Reader {
	return storage.NewReader(
		&accountTable{store: s, load: s.snapshot},
		&transactionTable{store: s, load: s.snapshot},
	)
}

// Write blocks until no other write unit is open or ctx is done.
func (s *Store) Write(ctx context.Context) (*storage.Writer, error) {
	select {
	case s.writeSem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	u := &unit{store: s, work: s.snapshot().clone()}
	load := func() *state { return u.work }
	return storage.NewWriter(
		&accountTable{store: s, load: load},
		&transactionTable{store: s, load: load},
		u,
	), nil
}

type unit struct {
	store *Store
	work  *state
	done  bool
}

func (u *unit) Commit(_ context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	defer func() { <-u.store.writeSem }()

	if err := u.store.fault(OpCommit); err != nil {
		return err
	}
	u.store.mu.Lock()
	u.store.committed = u.work
	u.store.mu.Unlock()
	return nil
}

func (u *unit) Rollback(_ context.Context) error {
	if u.done {
		return nil
	}
	u.done = true
	u.work = nil
	<-u.store.writeSem
	return nil
}

type accountTable struct {
	store *Store
	load  func() *state
}

func (t *accountTable) FindByID(_ context.Context, id uuid.UUID) (*account.Account, error) {
	a, ok := t.load().accounts[id]
	if !ok {
		return nil, ledger.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

// FindByIDForUpdate needs no row lock; the write unit is already exclusive.
func (t *accountTable) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return t.FindByID(ctx, id)
}

func (t *accountTable) List(_ context.Context, filter *account.AccountFilter) (*account.AccountListResult, error) {
	if filter == nil {
		filter = &account.AccountFilter{}
	}
	var rows []*account.Account
	for _, a := range t.load().accounts {
		if filter.UserID != uuid.Nil && a.UserID != filter.UserID {
			continue
		}
		cp := *a
		rows = append(rows, &cp)
	}
	sort.Slice(rows, func(i, j int) bool { return account.Less(rows[i], rows[j]) })

	rows = window(rows, filter.Offset, filter.Limit)
	page, next := account.Page(rows, filter.Offset, filter.Limit)
	return &account.AccountListResult{Accounts: page, NextCursor: next}, nil
}

func (t *accountTable) Create(_ context.Context, create *account.AccountCreate) (*account.Account, error) {
	if err := t.store.fault(OpAccountCreate); err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	a := &account.Account{
		ID:            id,
		UserID:        create.UserID,
		Name:          create.Name,
		Institution:   create.Institution,
		Type:          create.Type,
		Currency:      create.Currency,
		Balance:       create.Balance,
		AccountNumber: create.AccountNumber,
		Color:         create.Color,
		Icon:          create.Icon,
		Memo:          create.Memo,
		SortOrder:     create.SortOrder,
		CreatedAt:     t.store.stamp(),
	}
	t.load().accounts[id] = a
	cp := *a
	return &cp, nil
}

func (t *accountTable) Update(_ context.Context, id uuid.UUID, update *account.AccountUpdate) (*account.Account, error) {
	if err := t.store.fault(OpAccountUpdate); err != nil {
		return nil, err
	}
	a, ok := t.load().accounts[id]
	if !ok {
		return nil, ledger.ErrAccountNotFound
	}
	update.Apply(a)
	cp := *a
	return &cp, nil
}

func (t *accountTable) Delete(_ context.Context, id uuid.UUID) error {
	if err := t.store.fault(OpAccountDelete); err != nil {
		return err
	}
	st := t.load()
	if _, ok := st.accounts[id]; !ok {
		return ledger.ErrAccountNotFound
	}
	for _, tx := range st.transactions {
		if tx.AccountID == id || tx.ToAccountID.UUID == id {
			return ledger.ErrAccountInUse
		}
	}
	delete(st.accounts, id)
	return nil
}

func (t *accountTable) AdjustBalance(_ context.Context, id uuid.UUID, delta int64) error {
	if err := t.store.fault(OpAdjustBalance); err != nil {
		return err
	}
	a, ok := t.load().accounts[id]
	if !ok {
		return ledger.ErrAccountNotFound
	}
	a.Balance += delta
	return nil
}

type transactionTable struct {
	store *Store
	load  func() *state
}

func (t *transactionTable) FindByID(_ context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	tx, ok := t.load().transactions[id]
	if !ok {
		return nil, ledger.ErrTransactionNotFound
	}
	cp := *tx
	return &cp, nil
}

func (t *transactionTable) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return t.FindByID(ctx, id)
}

func (t *transactionTable) List(_ context.Context, filter *transaction.TransactionFilter) (*transaction.TransactionListResult, error) {
	if filter == nil {
		filter = &transaction.TransactionFilter{}
	}
	var rows []*transaction.Transaction
	for _, tx := range t.load().transactions {
		if !filter.Matches(tx) {
			continue
		}
		cp := *tx
		rows = append(rows, &cp)
	}
	sort.Slice(rows, func(i, j int) bool { return transaction.Less(rows[i], rows[j]) })

	rows = window(rows, filter.Offset, filter.Limit)
	page, next := transaction.Page(rows, filter)
	return &transaction.TransactionListResult{Transactions: page, NextCursor: next}, nil
}

func (t *transactionTable) CountByAccount(_ context.Context, accountID uuid.UUID) (int, error) {
	n := 0
	for _, tx := range t.load().transactions {
		if tx.AccountID == accountID || tx.ToAccountID.UUID == accountID {
			n++
		}
	}
	return n, nil
}

func (t *transactionTable) Insert(_ context.Context, create *transaction.TransactionCreate) (*transaction.Transaction, error) {
	if err := t.store.fault(OpTransactionInsert); err != nil {
		return nil, err
	}
	if err := t.checkRefs(create); err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	tx := &transaction.Transaction{ID: id, UserID: create.UserID, CreatedAt: t.store.stamp()}
	assign(tx, create)
	t.load().transactions[id] = tx
	cp := *tx
	return &cp, nil
}

func (t *transactionTable) Update(_ context.Context, id uuid.UUID, update *transaction.TransactionCreate) (*transaction.Transaction, error) {
	if err := t.store.fault(OpTransactionUpdate); err != nil {
		return nil, err
	}
	tx, ok := t.load().transactions[id]
	if !ok {
		return nil, ledger.ErrTransactionNotFound
	}
	if err := t.checkRefs(update); err != nil {
		return nil, err
	}
	assign(tx, update)
	cp := *tx
	return &cp, nil
}

func (t *transactionTable) Delete(_ context.Context, id uuid.UUID) error {
	if err := t.store.fault(OpTransactionDelete); err != nil {
		return err
	}
	st := t.load()
	if _, ok := st.transactions[id]; !ok {
		return ledger.ErrTransactionNotFound
	}
	delete(st.transactions, id)
	return nil
}

// checkRefs mirrors the foreign keys on account_id and to_account_id.
func (t *transactionTable) checkRefs(c *transaction.TransactionCreate) error {
	st := t.load()
	if _, ok := st.accounts[c.AccountID]; !ok {
		return ledger.ErrAccountNotFound
	}
	if c.ToAccountID != uuid.Nil {
		if _, ok := st.accounts[c.ToAccountID]; !ok {
			return ledger.ErrAccountNotFound
		}
	}
	return nil
}

func assign(tx *transaction.Transaction, c *transaction.TransactionCreate) {
	tx.Type = c.Type
	tx.Amount = c.Amount
	tx.Currency = c.Currency
	tx.AccountID = c.AccountID
	tx.ToAccountID = transaction.NullID(c.ToAccountID)
	tx.CategoryID = transaction.NullID(c.CategoryID)
	tx.Date = transaction.DateOnly(c.Date)
	tx.Description = c.Description
	tx.Memo = c.Memo
}

// window applies offset and keeps limit+1 rows so Page can detect a next page.
func window[T any](rows []T, offset, limit int) []T {
	if offset > 0 {
		if offset >= len(rows) {
			return nil
		}
		rows = rows[offset:]
	}
	if limit > 0 && len(rows) > limit+1 {
		rows = rows[:limit+1]
	}
	return rows
}
