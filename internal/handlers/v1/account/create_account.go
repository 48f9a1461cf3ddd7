package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/handlers"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage/account"
)

// CreateAccountInput is the Huma input for creating an account.
type CreateAccountInput struct {
	Body CreateAccountBody
}

// CreateAccountBody is the request body fields for creating an account.
type CreateAccountBody struct {
	Name           string `json:"name" minLength:"1" maxLength:"100" doc:"Account name"`
	Institution    string `json:"institution,omitempty" maxLength:"100" doc:"Bank or card issuer"`
	Type           string `json:"type" enum:"checking,savings,investment,credit_card,cash" doc:"Account type"`
	Currency       string `json:"currency" minLength:"3" maxLength:"3" doc:"ISO 4217 currency code"`
	InitialBalance string `json:"initialBalance,omitempty" doc:"Opening balance as a decimal (e.g. '1234.56'), defaults to 0"`
	AccountNumber  string `json:"accountNumber,omitempty" doc:"Account number as printed by the institution"`
	Color          string `json:"color,omitempty" doc:"Display color"`
	Icon           string `json:"icon,omitempty" doc:"Display icon"`
	Memo           string `json:"memo,omitempty" doc:"Free-form note"`
	SortOrder      int    `json:"sortOrder,omitempty" minimum:"0" doc:"Position in account listings"`
}

type accountCreator interface {
	CreateAccount(ctx context.Context, in service.AccountCreate) (*service.Account, error)
}

// CreateAccountHandler handles POST /v1/account.
type CreateAccountHandler struct {
	AccountService accountCreator
}

func NewCreateAccountHandler(svc accountCreator) *CreateAccountHandler {
	return &CreateAccountHandler{AccountService: svc}
}

// Register registers the create account endpoint with the Huma API.
func (h *CreateAccountHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-account",
		Method:      http.MethodPost,
		Path:        "/v1/account",
		Summary:     "Create an account",
		Description: "Creates a new account owned by the caller with the given opening balance.",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func (h *CreateAccountHandler) handle(ctx context.Context, input *CreateAccountInput) (*AccountOutput, error) {
	logData := logging.GetLogData(ctx)

	stopTimer := logData.AddTiming("createAccountMs")
	created, err := h.AccountService.CreateAccount(ctx, service.AccountCreate{
		Name:           input.Body.Name,
		Institution:    input.Body.Institution,
		Type:           account.Type(input.Body.Type),
		Currency:       input.Body.Currency,
		InitialBalance: input.Body.InitialBalance,
		AccountNumber:  input.Body.AccountNumber,
		Color:          input.Body.Color,
		Icon:           input.Body.Icon,
		Memo:           input.Body.Memo,
		SortOrder:      input.Body.SortOrder,
	})
	stopTimer()
	if err != nil {
		return nil, handlers.ServiceError("failed to create account", err)
	}

	logData.AddData("accountID", created.ID.String())

	return &AccountOutput{Status: http.StatusCreated, Body: fromService(created)}, nil
}
