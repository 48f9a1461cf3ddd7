package stats

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/handlers"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
)

// PeriodReportInput is the Huma input for a one-month report.
type PeriodReportInput struct {
	Year  int `query:"year" required:"true" minimum:"1" maximum:"9999" doc:"Calendar year"`
	Month int `query:"month" required:"true" minimum:"1" maximum:"12" doc:"Calendar month, 1-12"`
}

// CategoryTotal is the expense sum of one category.
type CategoryTotal struct {
	CategoryID string `json:"categoryID,omitempty" doc:"Category UUID, absent for uncategorized expenses"`
	Amount     int64  `json:"amount" doc:"Sum in minor units"`
	Count      int    `json:"count" doc:"Number of transactions"`
}

// TopExpense is one of the largest expenses of the month.
type TopExpense struct {
	ID          string `json:"id" doc:"Transaction UUID"`
	Amount      int64  `json:"amount" doc:"Amount in minor units"`
	Currency    string `json:"currency" doc:"ISO 4217 currency code"`
	AccountName string `json:"accountName" doc:"Source account name"`
	Date        string `json:"date" doc:"Transaction date, YYYY-MM-DD"`
	Description string `json:"description" doc:"What the transaction was for"`
}

// PeriodReportResponseBody is the response body for a one-month report.
type PeriodReportResponseBody struct {
	Month             string          `json:"month" doc:"Month as YYYY-MM"`
	Totals            Totals          `json:"totals" doc:"Income and expense totals"`
	ExpenseByCategory []CategoryTotal `json:"expenseByCategory" doc:"Expenses per category, largest first"`
	TopExpenses       []TopExpense    `json:"topExpenses" doc:"Largest expenses of the month"`
}

// PeriodReportOutput is the Huma output for a one-month report.
type PeriodReportOutput struct {
	Body PeriodReportResponseBody
}

type reporter interface {
	PeriodReport(ctx context.Context, year int, month time.Month) (*service.PeriodReport, error)
}

// PeriodReportHandler handles GET /v1/stats/period.
type PeriodReportHandler struct {
	StatsService reporter
}

func NewPeriodReportHandler(svc reporter) *PeriodReportHandler {
	return &PeriodReportHandler{StatsService: svc}
}

// Register registers the period report endpoint with the Huma API.
func (h *PeriodReportHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "period-report",
		Method:      http.MethodGet,
		Path:        "/v1/stats/period",
		Summary:     "Monthly report",
		Description: "Returns totals, the expense breakdown by category and the largest expenses of one month.",
		Tags:        []string{"Stats"},
	}, h.handle)
}

func (h *PeriodReportHandler) handle(ctx context.Context, input *PeriodReportInput) (*PeriodReportOutput, error) {
	defer logging.GetLogData(ctx).AddTiming("periodReportMs")()
	report, err := h.StatsService.PeriodReport(ctx, input.Year, time.Month(input.Month))
	if err != nil {
		return nil, handlers.ServiceError("failed to build report", err)
	}

	resp := PeriodReportResponseBody{
		Month: report.Month.String(),
		Totals: Totals{
			Income:  report.Totals.Income,
			Expense: report.Totals.Expense,
			Net:     report.Totals.Net,
			Count:   report.Totals.Count,
		},
		ExpenseByCategory: make([]CategoryTotal, len(report.ExpenseByCategory)),
		TopExpenses:       make([]TopExpense, len(report.TopExpenses)),
	}
	for i, c := range report.ExpenseByCategory {
		resp.ExpenseByCategory[i] = CategoryTotal{Amount: c.Amount, Count: c.Count}
		if !c.CategoryID.IsNil() {
			resp.ExpenseByCategory[i].CategoryID = c.CategoryID.String()
		}
	}
	for i, t := range report.TopExpenses {
		resp.TopExpenses[i] = TopExpense{
			ID:          t.ID.String(),
			Amount:      t.Amount,
			Currency:    t.Currency,
			AccountName: t.AccountName,
			Date:        t.Date.Format(handlers.DateLayout),
			Description: t.Description,
		}
	}
	return &PeriodReportOutput{Body: resp}, nil
}
