package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/handlers"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
)

// UpdateTransactionBody replaces every editable field of a transaction.
type UpdateTransactionBody struct {
	TransactionBody
	Snapshot *SnapshotBody `json:"snapshot,omitempty" doc:"Last seen balance effect, checked before the update"`
}

// UpdateTransactionInput is the Huma input for updating a transaction.
type UpdateTransactionInput struct {
	ID   string `path:"id" format:"uuid" doc:"Transaction UUID"`
	Body UpdateTransactionBody
}

type transactionUpdater interface {
	UpdateTransaction(ctx context.Context, id uuid.UUID, in service.TransactionInput, snapshot *service.Snapshot) (*service.Transaction, error)
}

// UpdateTransactionHandler handles PUT /v1/transaction/{id}.
type UpdateTransactionHandler struct {
	TransactionService transactionUpdater
}

func NewUpdateTransactionHandler(svc transactionUpdater) *UpdateTransactionHandler {
	return &UpdateTransactionHandler{TransactionService: svc}
}

// Register registers the update transaction endpoint with the Huma API.
func (h *UpdateTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "update-transaction",
		Method:      http.MethodPut,
		Path:        "/v1/transaction/{id}",
		Summary:     "Update transaction",
		Description: "Replaces a transaction. The old balance effect is reversed and the new one applied in the same step.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func (h *UpdateTransactionHandler) handle(ctx context.Context, input *UpdateTransactionInput) (*TransactionOutput, error) {
	id, err := uuid.FromString(input.ID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid id", err)
	}
	in, err := parseTransactionBody(&input.Body.TransactionBody)
	if err != nil {
		return nil, err
	}
	var snapshot *service.Snapshot
	if s := input.Body.Snapshot; s != nil {
		snapshot, err = parseSnapshot(s.Type, s.Amount, s.AccountID, s.ToAccountID)
		if err != nil {
			return nil, err
		}
	}

	logData := logging.GetLogData(ctx)
	logData.AddData("transactionID", id.String())

	stopTimer := logData.AddTiming("updateTransactionMs")
	updated, err := h.TransactionService.UpdateTransaction(ctx, id, in, snapshot)
	stopTimer()
	if err != nil {
		return nil, handlers.ServiceError("failed to update transaction", err)
	}
	return &TransactionOutput{Status: http.StatusOK, Body: fromService(updated)}, nil
}
