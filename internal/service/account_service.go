package service

import (
	"context"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/money"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/account"
)

const defaultAccountLimit = 20

// AccountService handles account business logic.
type AccountService struct {
	storage   storage.Store
	processor Processor
	bus       Publisher
}

func NewAccountService(store storage.Store, processor Processor, bus Publisher) *AccountService {
	return &AccountService{storage: store, processor: processor, bus: bus}
}

// CreateAccount creates an account with its opening balance.
func (s *AccountService) CreateAccount(ctx context.Context, in AccountCreate) (*Account, error) {
	userID, err := sessionUser(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, &ledger.ValidationError{Field: "name", Reason: "is required"}
	}
	if !in.Type.Valid() {
		return nil, &ledger.ValidationError{Field: "type", Reason: "unknown account type " + string(in.Type)}
	}
	currency, ok := money.Lookup(in.Currency)
	if !ok {
		return nil, &ledger.ValidationError{Field: "currency", Reason: "unsupported currency " + in.Currency}
	}
	var balance int64
	if strings.TrimSpace(in.InitialBalance) != "" {
		if _, err := decimal.NewFromString(strings.TrimSpace(in.InitialBalance)); err != nil {
			return nil, &ledger.ValidationError{Field: "initialBalance", Reason: "must be a decimal number"}
		}
		if balance, ok = money.ParseMinorUnit(in.InitialBalance, currency.DecimalPlaces); !ok {
			return nil, &ledger.ValidationError{Field: "initialBalance", Reason: "is out of range"}
		}
	}

	action := &actions.CreateAccount{Create: &account.AccountCreate{
		UserID:        userID,
		Name:          name,
		Institution:   in.Institution,
		Type:          in.Type,
		Currency:      currency.Code,
		Balance:       balance,
		AccountNumber: in.AccountNumber,
		Color:         in.Color,
		Icon:          in.Icon,
		Memo:          in.Memo,
		SortOrder:     in.SortOrder,
	}}
	err = dispatch(ctx, s.processor, s.bus, action, userID, events.TopicAccounts)
	if err != nil {
		return nil, err
	}

	created := accountFromStorage(action.Result)
	return &created, nil
}

// GetAccount retrieves one of the session user's accounts.
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	userID, err := sessionUser(ctx)
	if err != nil {
		return nil, err
	}

	row, err := s.storage.Read().Accounts.FindByID(ctx, id)
	if err != nil {
		return nil, ledger.WrapStore("find account", err)
	}
	if row.UserID != userID {
		return nil, ledger.ErrAccountNotFound
	}

	a := accountFromStorage(row)
	return &a, nil
}

// ListAccounts returns a page of the session user's accounts ordered by sort
// order, then name.
func (s *AccountService) ListAccounts(ctx context.Context, cursor *AccountCursor) ([]Account, *AccountCursor, error) {
	userID, err := sessionUser(ctx)
	if err != nil {
		return nil, nil, err
	}

	limit := defaultAccountLimit
	offset := 0
	if cursor != nil {
		limit = cursor.Limit
		offset = cursor.Position
	}
	if limit <= 0 {
		limit = defaultAccountLimit
	}

	result, err := s.storage.Read().Accounts.List(ctx, &account.AccountFilter{
		UserID: userID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, nil, ledger.WrapStore("list accounts", err)
	}

	if len(result.Accounts) == 0 {
		return nil, nil, nil
	}

	convertedAccounts := make([]Account, len(result.Accounts))
	for i, row := range result.Accounts {
		convertedAccounts[i] = accountFromStorage(row)
	}

	var nextCursor *AccountCursor
	if result.NextCursor != nil {
		nextCursor = &AccountCursor{
			Position: result.NextCursor.Position,
			Limit:    result.NextCursor.Limit,
		}
	}
	return convertedAccounts, nextCursor, nil
}

// UpdateAccount changes account metadata. Balance and currency only change
// through transactions.
func (s *AccountService) UpdateAccount(ctx context.Context, id uuid.UUID, in AccountUpdate) (*Account, error) {
	userID, err := sessionUser(ctx)
	if err != nil {
		return nil, err
	}

	if name, ok := in.Name.Get(); ok {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, &ledger.ValidationError{Field: "name", Reason: "is required"}
		}
		in.Name.Set(name)
	}
	if t, ok := in.Type.Get(); ok && !t.Valid() {
		return nil, &ledger.ValidationError{Field: "type", Reason: "unknown account type " + string(t)}
	}

	action := &actions.UpdateAccount{UserID: userID, AccountID: id, Update: in.toStorage()}
	err = dispatch(ctx, s.processor, s.bus, action, userID, events.TopicAccounts)
	if err != nil {
		return nil, err
	}

	updated := accountFromStorage(action.Result)
	return &updated, nil
}

// DeleteAccount removes an account no transaction references.
func (s *AccountService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	userID, err := sessionUser(ctx)
	if err != nil {
		return err
	}

	action := &actions.DeleteAccount{UserID: userID, AccountID: id}
	err = dispatch(ctx, s.processor, s.bus, action, userID, events.TopicAccounts)
	return err
}

// accountNames maps the session user's account ids to names.
func accountNames(ctx context.Context, reader *storage.Reader, userID uuid.UUID) (map[uuid.UUID]string, error) {
	result, err := reader.Accounts.List(ctx, &account.AccountFilter{UserID: userID})
	if err != nil {
		return nil, ledger.WrapStore("list accounts", err)
	}
	names := make(map[uuid.UUID]string, len(result.Accounts))
	for _, a := range result.Accounts {
		names[a.ID] = a.Name
	}
	return names, nil
}
