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

// MonthlySummaryInput is the Huma input for the monthly summary.
type MonthlySummaryInput struct {
	Count int `query:"count" minimum:"1" maximum:"24" default:"6" doc:"Number of months ending with the current one"`
}

// MonthlySummaryResponseBody is the response body for the monthly summary.
type MonthlySummaryResponseBody struct {
	Months []MonthTotals `json:"months" doc:"Totals per month, oldest first"`
}

// MonthlySummaryOutput is the Huma output for the monthly summary.
type MonthlySummaryOutput struct {
	Body MonthlySummaryResponseBody
}

type summarizer interface {
	MonthlySummary(ctx context.Context, now time.Time, count int) ([]service.MonthSummary, error)
}

// MonthlySummaryHandler handles GET /v1/stats/monthly.
type MonthlySummaryHandler struct {
	StatsService summarizer
	Now          func() time.Time
}

func NewMonthlySummaryHandler(svc summarizer) *MonthlySummaryHandler {
	return &MonthlySummaryHandler{StatsService: svc, Now: time.Now}
}

// Register registers the monthly summary endpoint with the Huma API.
func (h *MonthlySummaryHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "monthly-summary",
		Method:      http.MethodGet,
		Path:        "/v1/stats/monthly",
		Summary:     "Monthly income and expense",
		Description: "Returns income, expense and net totals for the most recent months. Transfers are not counted.",
		Tags:        []string{"Stats"},
	}, h.handle)
}

func (h *MonthlySummaryHandler) handle(ctx context.Context, input *MonthlySummaryInput) (*MonthlySummaryOutput, error) {
	logData := logging.GetLogData(ctx)
	logData.AddData("months", input.Count)

	stopTimer := logData.AddTiming("monthlySummaryMs")
	summaries, err := h.StatsService.MonthlySummary(ctx, h.Now().UTC(), input.Count)
	stopTimer()
	if err != nil {
		return nil, handlers.ServiceError("failed to summarize transactions", err)
	}

	resp := MonthlySummaryResponseBody{Months: make([]MonthTotals, len(summaries))}
	for i, s := range summaries {
		resp.Months[i] = MonthTotals{
			Month: s.Month.String(),
			Totals: Totals{
				Income:  s.Totals.Income,
				Expense: s.Totals.Expense,
				Net:     s.Totals.Net,
				Count:   s.Totals.Count,
			},
		}
	}
	return &MonthlySummaryOutput{Body: resp}, nil
}
