package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/handlers"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
)

// CreateTransactionInput is the Huma input for creating a transaction.
type CreateTransactionInput struct {
	Body TransactionBody
}

type transactionCreator interface {
	CreateTransaction(ctx context.Context, in service.TransactionInput) (*service.Transaction, error)
}

// CreateTransactionHandler handles POST /v1/transaction.
type CreateTransactionHandler struct {
	TransactionService transactionCreator
}

// NewCreateTransactionHandler creates a new CreateTransactionHandler.
func NewCreateTransactionHandler(svc transactionCreator) *CreateTransactionHandler {
	return &CreateTransactionHandler{TransactionService: svc}
}

// Register registers the create transaction endpoint with the Huma API.
func (h *CreateTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-transaction",
		Method:      http.MethodPost,
		Path:        "/v1/transaction",
		Summary:     "Create transaction",
		Description: "Records a transaction and applies its effect to the account balances in one step.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func (h *CreateTransactionHandler) handle(ctx context.Context, input *CreateTransactionInput) (*TransactionOutput, error) {
	in, err := parseTransactionBody(&input.Body)
	if err != nil {
		return nil, err
	}

	logData := logging.GetLogData(ctx)
	stopTimer := logData.AddTiming("createTransactionMs")
	created, err := h.TransactionService.CreateTransaction(ctx, in)
	stopTimer()
	if err != nil {
		return nil, handlers.ServiceError("failed to create transaction", err)
	}

	logData.AddData("transactionID", created.ID.String())

	return &TransactionOutput{Status: http.StatusCreated, Body: fromService(created)}, nil
}
