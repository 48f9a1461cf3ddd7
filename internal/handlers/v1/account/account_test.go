package account

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage/account"
)

type mockAccountService struct {
	mock.Mock
}

func (m *mockAccountService) CreateAccount(ctx context.Context, in service.AccountCreate) (*service.Account, error) {
	args := m.Called(ctx, in)
	a, _ := args.Get(0).(*service.Account)
	return a, args.Error(1)
}

func (m *mockAccountService) GetAccount(ctx context.Context, id uuid.UUID) (*service.Account, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*service.Account)
	return a, args.Error(1)
}

func (m *mockAccountService) ListAccounts(ctx context.Context, cursor *service.AccountCursor) ([]service.Account, *service.AccountCursor, error) {
	args := m.Called(ctx, cursor)
	accounts, _ := args.Get(0).([]service.Account)
	next, _ := args.Get(1).(*service.AccountCursor)
	return accounts, next, args.Error(2)
}

func (m *mockAccountService) UpdateAccount(ctx context.Context, id uuid.UUID, in service.AccountUpdate) (*service.Account, error) {
	args := m.Called(ctx, id, in)
	a, _ := args.Get(0).(*service.Account)
	return a, args.Error(1)
}

func (m *mockAccountService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func newTestAPI(t *testing.T, svc *mockAccountService) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewCreateAccountHandler(svc).Register(api)
	NewGetAccountHandler(svc).Register(api)
	NewListAccountsHandler(svc).Register(api)
	NewUpdateAccountHandler(svc).Register(api)
	NewDeleteAccountHandler(svc).Register(api)
	return api
}

func sampleAccount() *service.Account {
	return &service.Account{
		ID:             uuid.Must(uuid.NewV4()),
		Name:           "Checking",
		Type:           account.TypeChecking,
		Currency:       "USD",
		Balance:        150025,
		BalanceDisplay: "1500.25",
		BalanceText:    "$1,500.25",
		CreatedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestHTTP_CreateAccount_Success(t *testing.T) {
	created := sampleAccount()

	mockSvc := new(mockAccountService)
	mockSvc.On("CreateAccount", mock.Anything, mock.MatchedBy(func(in service.AccountCreate) bool {
		return in.Name == "Checking" &&
			in.Type == account.TypeChecking &&
			in.Currency == "USD" &&
			in.InitialBalance == "1500.25"
	})).Return(created, nil)

	resp := newTestAPI(t, mockSvc).Post("/v1/account", CreateAccountBody{
		Name:           "Checking",
		Type:           "checking",
		Currency:       "USD",
		InitialBalance: "1500.25",
	})

	assert.Equal(t, http.StatusCreated, resp.Code)
	var body Account
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, created.ID.String(), body.ID)
	assert.Equal(t, int64(150025), body.Balance)
	assert.Equal(t, "1500.25", body.BalanceDisplay)
	assert.Equal(t, "2025-06-01T12:00:00Z", body.CreatedAt)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_CreateAccount_UnknownType(t *testing.T) {
	mockSvc := new(mockAccountService)

	resp := newTestAPI(t, mockSvc).Post("/v1/account", CreateAccountBody{
		Name:     "Mattress",
		Type:     "vault",
		Currency: "USD",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	mockSvc.AssertNotCalled(t, "CreateAccount")
}

func TestHTTP_CreateAccount_ValidationError(t *testing.T) {
	mockSvc := new(mockAccountService)
	mockSvc.On("CreateAccount", mock.Anything, mock.Anything).
		Return(nil, &ledger.ValidationError{Field: "currency", Reason: "unknown currency"})

	resp := newTestAPI(t, mockSvc).Post("/v1/account", CreateAccountBody{
		Name:     "Checking",
		Type:     "checking",
		Currency: "XXX",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "invalid currency")
}

func TestHTTP_CreateAccount_NotAuthenticated(t *testing.T) {
	mockSvc := new(mockAccountService)
	mockSvc.On("CreateAccount", mock.Anything, mock.Anything).Return(nil, ledger.ErrNotAuthenticated)

	resp := newTestAPI(t, mockSvc).Post("/v1/account", CreateAccountBody{
		Name:     "Checking",
		Type:     "checking",
		Currency: "USD",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestHTTP_GetAccount(t *testing.T) {
	found := sampleAccount()

	mockSvc := new(mockAccountService)
	mockSvc.On("GetAccount", mock.Anything, found.ID).Return(found, nil)

	resp := newTestAPI(t, mockSvc).Get("/v1/account/" + found.ID.String())

	assert.Equal(t, http.StatusOK, resp.Code)
	var body Account
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Checking", body.Name)
	assert.Equal(t, "checking", body.Type)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_GetAccount_NotFound(t *testing.T) {
	mockSvc := new(mockAccountService)
	mockSvc.On("GetAccount", mock.Anything, mock.Anything).Return(nil, ledger.ErrAccountNotFound)

	resp := newTestAPI(t, mockSvc).Get("/v1/account/" + uuid.Must(uuid.NewV4()).String())

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHTTP_GetAccount_InvalidID(t *testing.T) {
	mockSvc := new(mockAccountService)

	resp := newTestAPI(t, mockSvc).Get("/v1/account/not-a-uuid")

	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	mockSvc.AssertNotCalled(t, "GetAccount")
}

func TestHTTP_ListAccounts_WithNextCursor(t *testing.T) {
	mockSvc := new(mockAccountService)
	mockSvc.On("ListAccounts", mock.Anything, &service.AccountCursor{Position: 0, Limit: 1}).
		Return([]service.Account{*sampleAccount()}, &service.AccountCursor{Position: 1, Limit: 1}, nil)

	resp := newTestAPI(t, mockSvc).Get("/v1/accounts?limit=1")

	assert.Equal(t, http.StatusOK, resp.Code)
	var body ListAccountsResponseBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Accounts, 1)
	require.NotNil(t, body.NextCursor)
	assert.Equal(t, 1, body.NextCursor.Position)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_ListAccounts_Empty(t *testing.T) {
	mockSvc := new(mockAccountService)
	mockSvc.On("ListAccounts", mock.Anything, mock.Anything).
		Return(([]service.Account)(nil), (*service.AccountCursor)(nil), nil)

	resp := newTestAPI(t, mockSvc).Get("/v1/accounts")

	assert.Equal(t, http.StatusOK, resp.Code)
	var body ListAccountsResponseBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotNil(t, body.Accounts)
	assert.Empty(t, body.Accounts)
	assert.Nil(t, body.NextCursor)
}

func TestHTTP_ListAccounts_ServiceError(t *testing.T) {
	mockSvc := new(mockAccountService)
	mockSvc.On("ListAccounts", mock.Anything, mock.Anything).
		Return(([]service.Account)(nil), (*service.AccountCursor)(nil), errors.New("database unavailable"))

	resp := newTestAPI(t, mockSvc).Get("/v1/accounts")

	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestHTTP_UpdateAccount_OnlySentFields(t *testing.T) {
	updated := sampleAccount()
	updated.Name = "Joint"

	mockSvc := new(mockAccountService)
	mockSvc.On("UpdateAccount", mock.Anything, updated.ID, mock.MatchedBy(func(in service.AccountUpdate) bool {
		name, nameSet := in.Name.Get()
		return nameSet && name == "Joint" &&
			in.Type.IsUnset() &&
			in.Memo.IsUnset() &&
			in.SortOrder.IsUnset()
	})).Return(updated, nil)

	resp := newTestAPI(t, mockSvc).Patch("/v1/account/"+updated.ID.String(), map[string]any{"name": "Joint"})

	assert.Equal(t, http.StatusOK, resp.Code)
	var body Account
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Joint", body.Name)
	mockSvc.AssertExpectations(t)
}

func TestUpdateAccountBody_ToService(t *testing.T) {
	typ := "savings"
	order := 3
	update := UpdateAccountBody{Type: &typ, SortOrder: &order}.toService()

	got, ok := update.Type.Get()
	assert.True(t, ok)
	assert.Equal(t, account.TypeSavings, got)
	assert.Equal(t, 3, update.SortOrder.GetOrZero())
	assert.True(t, update.Name.IsUnset())
}

func TestHTTP_DeleteAccount(t *testing.T) {
	id := uuid.Must(uuid.NewV4())

	mockSvc := new(mockAccountService)
	mockSvc.On("DeleteAccount", mock.Anything, id).Return(nil)

	resp := newTestAPI(t, mockSvc).Delete("/v1/account/" + id.String())

	assert.Equal(t, http.StatusNoContent, resp.Code)
	mockSvc.AssertExpectations(t)
}

func TestHTTP_DeleteAccount_InUse(t *testing.T) {
	mockSvc := new(mockAccountService)
	mockSvc.On("DeleteAccount", mock.Anything, mock.Anything).Return(ledger.ErrAccountInUse)

	resp := newTestAPI(t, mockSvc).Delete("/v1/account/" + uuid.Must(uuid.NewV4()).String())

	assert.Equal(t, http.StatusConflict, resp.Code)
}
