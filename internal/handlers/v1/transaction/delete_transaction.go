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

// DeleteTransactionInput is the Huma input for deleting a transaction. The
// snapshot query parameters are optional and checked together.
type DeleteTransactionInput struct {
	ID                  string `path:"id" format:"uuid" doc:"Transaction UUID"`
	SnapshotType        string `query:"snapshotType" doc:"Last seen transaction type"`
	SnapshotAmount      int64  `query:"snapshotAmount" doc:"Last seen amount in minor units"`
	SnapshotAccountID   string `query:"snapshotAccountID" doc:"Last seen source account UUID"`
	SnapshotToAccountID string `query:"snapshotToAccountID" doc:"Last seen destination account UUID"`
}

func (in *DeleteTransactionInput) snapshot() (*service.Snapshot, error) {
	if in.SnapshotType == "" && in.SnapshotAccountID == "" {
		return nil, nil
	}
	return parseSnapshot(in.SnapshotType, in.SnapshotAmount, in.SnapshotAccountID, in.SnapshotToAccountID)
}

type transactionDeleter interface {
	DeleteTransaction(ctx context.Context, id uuid.UUID, snapshot *service.Snapshot) error
}

// DeleteTransactionHandler handles DELETE /v1/transaction/{id}.
type DeleteTransactionHandler struct {
	TransactionService transactionDeleter
}

func NewDeleteTransactionHandler(svc transactionDeleter) *DeleteTransactionHandler {
	return &DeleteTransactionHandler{TransactionService: svc}
}

// Register registers the delete transaction endpoint with the Huma API.
func (h *DeleteTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "delete-transaction",
		Method:        http.MethodDelete,
		Path:          "/v1/transaction/{id}",
		Summary:       "Delete transaction",
		Description:   "Deletes a transaction and reverses its effect on the account balances.",
		Tags:          []string{"Transactions"},
		DefaultStatus: http.StatusNoContent,
	}, h.handle)
}

func (h *DeleteTransactionHandler) handle(ctx context.Context, input *DeleteTransactionInput) (*struct{}, error) {
	id, err := uuid.FromString(input.ID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid id", err)
	}
	snapshot, err := input.snapshot()
	if err != nil {
		return nil, err
	}

	logData := logging.GetLogData(ctx)
	logData.AddData("transactionID", id.String())

	defer logData.AddTiming("deleteTransactionMs")()
	if err := h.TransactionService.DeleteTransaction(ctx, id, snapshot); err != nil {
		return nil, handlers.ServiceError("failed to delete transaction", err)
	}
	return &struct{}{}, nil
}
