// Package stats derives read-only views from a set of transaction records.
package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
)

// Criteria narrows a transaction list. Zero fields do not filter.
type Criteria struct {
	Type       ledger.Type
	AccountID  uuid.UUID
	CategoryID uuid.UUID
	Search     string
}

// NameFunc resolves an account id to its display name.
type NameFunc func(accountID uuid.UUID) string

// Filter keeps the rows matching c. AccountID matches either side of a
// transfer. Search is case-insensitive over description, memo and the names
// of both accounts.
func Filter(rows []*transaction.Transaction, c Criteria, nameOf NameFunc) []*transaction.Transaction {
	needle := strings.ToLower(strings.TrimSpace(c.Search))
	var out []*transaction.Transaction
	for _, t := range rows {
		if c.Type != "" && t.Type != c.Type {
			continue
		}
		if c.AccountID != uuid.Nil && t.AccountID != c.AccountID && t.ToAccountID.UUID != c.AccountID {
			continue
		}
		if c.CategoryID != uuid.Nil && t.CategoryID.UUID != c.CategoryID {
			continue
		}
		if needle != "" && !matchesSearch(t, needle, nameOf) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesSearch(t *transaction.Transaction, needle string, nameOf NameFunc) bool {
	fields := []string{t.Description, t.Memo}
	if nameOf != nil {
		fields = append(fields, nameOf(t.AccountID))
		if t.ToAccountID.Valid {
			fields = append(fields, nameOf(t.ToAccountID.UUID))
		}
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// Totals are income and expense sums in minor units. Transfers are excluded.
type Totals struct {
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Net     int64 `json:"net"`
	Count   int   `json:"count"`
}

func Summarize(rows []*transaction.Transaction) Totals {
	var totals Totals
	for _, t := range rows {
		switch t.Type {
		case ledger.TypeIncome:
			totals.Income += t.Amount
		case ledger.TypeExpense:
			totals.Expense += t.Amount
		default:
			continue
		}
		totals.Count++
	}
	totals.Net = totals.Income - totals.Expense
	return totals
}

// Month is a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// Range returns the first and last calendar day of m.
func (m Month) Range() (time.Time, time.Time) {
	return MonthRange(m.Year, m.Month)
}

func (m Month) String() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// MonthRange returns the first and last calendar day of the month, in UTC.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}

// LastMonths lists the count months ending with the month of now, oldest
// first.
func LastMonths(now time.Time, count int) []Month {
	months := make([]Month, 0, count)
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := count - 1; i >= 0; i-- {
		d := anchor.AddDate(0, -i, 0)
		months = append(months, Month{Year: d.Year(), Month: d.Month()})
	}
	return months
}

// CategoryTotal is the sum for one category. uuid.Nil collects
// uncategorized records.
type CategoryTotal struct {
	CategoryID uuid.UUID `json:"categoryId"`
	Amount     int64     `json:"amount"`
	Count      int       `json:"count"`
}

// CategoryBreakdown sums rows of type typ per category, largest first.
func CategoryBreakdown(rows []*transaction.Transaction, typ ledger.Type) []CategoryTotal {
	byCategory := map[uuid.UUID]*CategoryTotal{}
	for _, t := range rows {
		if t.Type != typ {
			continue
		}
		id := t.CategoryID.UUID
		ct, ok := byCategory[id]
		if !ok {
			ct = &CategoryTotal{CategoryID: id}
			byCategory[id] = ct
		}
		ct.Amount += t.Amount
		ct.Count++
	}

	out := make([]CategoryTotal, 0, len(byCategory))
	for _, ct := range byCategory {
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].CategoryID.String() < out[j].CategoryID.String()
	})
	return out
}

// TopTransactions returns up to n rows of type typ with the largest amounts.
// Ties go to the later date.
func TopTransactions(rows []*transaction.Transaction, typ ledger.Type, n int) []*transaction.Transaction {
	var out []*transaction.Transaction
	for _, t := range rows {
		if t.Type == typ {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Date.After(out[j].Date)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
