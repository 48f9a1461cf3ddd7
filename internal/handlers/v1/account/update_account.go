package account

import (
	"context"
	"net/http"

	"github.com/aarondl/opt/omit"
	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/handlers"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage/account"
)

// UpdateAccountInput is the Huma input for updating an account.
type UpdateAccountInput struct {
	ID   string `path:"id" format:"uuid" doc:"Account UUID"`
	Body UpdateAccountBody
}

// UpdateAccountBody lists the metadata that can change. Absent fields are
// left untouched; balance and currency are never editable here.
type UpdateAccountBody struct {
	Name          *string `json:"name,omitempty" minLength:"1" maxLength:"100" doc:"Account name"`
	Institution   *string `json:"institution,omitempty" maxLength:"100" doc:"Bank or card issuer"`
	Type          *string `json:"type,omitempty" enum:"checking,savings,investment,credit_card,cash" doc:"Account type"`
	AccountNumber *string `json:"accountNumber,omitempty" doc:"Account number"`
	Color         *string `json:"color,omitempty" doc:"Display color"`
	Icon          *string `json:"icon,omitempty" doc:"Display icon"`
	Memo          *string `json:"memo,omitempty" doc:"Free-form note"`
	SortOrder     *int    `json:"sortOrder,omitempty" minimum:"0" doc:"Position in account listings"`
}

func (b UpdateAccountBody) toService() service.AccountUpdate {
	update := service.AccountUpdate{
		Name:          omit.FromPtr(b.Name),
		Institution:   omit.FromPtr(b.Institution),
		AccountNumber: omit.FromPtr(b.AccountNumber),
		Color:         omit.FromPtr(b.Color),
		Icon:          omit.FromPtr(b.Icon),
		Memo:          omit.FromPtr(b.Memo),
		SortOrder:     omit.FromPtr(b.SortOrder),
	}
	if b.Type != nil {
		update.Type = omit.From(account.Type(*b.Type))
	}
	return update
}

type accountUpdater interface {
	UpdateAccount(ctx context.Context, id uuid.UUID, in service.AccountUpdate) (*service.Account, error)
}

// UpdateAccountHandler handles PATCH /v1/account/{id}.
type UpdateAccountHandler struct {
	AccountService accountUpdater
}

func NewUpdateAccountHandler(svc accountUpdater) *UpdateAccountHandler {
	return &UpdateAccountHandler{AccountService: svc}
}

// Register registers the update account endpoint with the Huma API.
func (h *UpdateAccountHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "update-account",
		Method:      http.MethodPatch,
		Path:        "/v1/account/{id}",
		Summary:     "Update an account",
		Description: "Changes account metadata. The balance only moves through transactions.",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func (h *UpdateAccountHandler) handle(ctx context.Context, input *UpdateAccountInput) (*AccountOutput, error) {
	id, err := uuid.FromString(input.ID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid id", err)
	}

	logData := logging.GetLogData(ctx)
	logData.AddData("accountID", id.String())

	stopTimer := logData.AddTiming("updateAccountMs")
	updated, err := h.AccountService.UpdateAccount(ctx, id, input.Body.toService())
	stopTimer()
	if err != nil {
		return nil, handlers.ServiceError("failed to update account", err)
	}

	return &AccountOutput{Status: http.StatusOK, Body: fromService(updated)}, nil
}
