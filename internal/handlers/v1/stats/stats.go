package stats

// Totals is the API model for income and expense sums in minor units.
type Totals struct {
	Income  int64 `json:"income" doc:"Sum of income"`
	Expense int64 `json:"expense" doc:"Sum of expenses"`
	Net     int64 `json:"net" doc:"Income minus expenses"`
	Count   int   `json:"count" doc:"Number of income and expense transactions"`
}

// MonthTotals is the summary of one calendar month.
type MonthTotals struct {
	Month string `json:"month" doc:"Month as YYYY-MM"`
	Totals
}
