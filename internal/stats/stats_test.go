package stats

import (
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
)

var (
	wallet = uuid.Must(uuid.NewV4())
	bank   = uuid.Must(uuid.NewV4())
	food   = uuid.Must(uuid.NewV4())
	salary = uuid.Must(uuid.NewV4())
	names  = map[uuid.UUID]string{wallet: "Wallet", bank: "Shinhan Bank"}
	nameOf = func(id uuid.UUID) string { return names[id] }
	march  = func(d int) time.Time { return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC) }
)

func tx(typ ledger.Type, amount int64, account, to, category uuid.UUID, date time.Time, desc string) *transaction.Transaction {
	return &transaction.Transaction{
		ID:          uuid.Must(uuid.NewV4()),
		Type:        typ,
		Amount:      amount,
		AccountID:   account,
		ToAccountID: transaction.NullID(to),
		CategoryID:  transaction.NullID(category),
		Date:        date,
		Description: desc,
	}
}

func sampleRows() []*transaction.Transaction {
	return []*transaction.Transaction{
		tx(ledger.TypeIncome, 3000000, bank, uuid.Nil, salary, march(1), "March salary"),
		tx(ledger.TypeExpense, 12000, wallet, uuid.Nil, food, march(3), "Lunch"),
		tx(ledger.TypeExpense, 45000, bank, uuid.Nil, food, march(9), "Groceries"),
		tx(ledger.TypeTransfer, 100000, bank, wallet, uuid.Nil, march(10), "ATM"),
		tx(ledger.TypeExpense, 45000, wallet, uuid.Nil, uuid.Nil, march(20), "Taxi"),
	}
}

func TestFilter(t *testing.T) {
	rows := sampleRows()

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"no criteria", Criteria{}, []string{"March salary", "Lunch", "Groceries", "ATM", "Taxi"}},
		{"type", Criteria{Type: ledger.TypeExpense}, []string{"Lunch", "Groceries", "Taxi"}},
		{"account either side", Criteria{AccountID: wallet}, []string{"Lunch", "ATM", "Taxi"}},
		{"category", Criteria{CategoryID: food}, []string{"Lunch", "Groceries"}},
		{"search description", Criteria{Search: "  lunch "}, []string{"Lunch"}},
		{"search account name", Criteria{Search: "shinhan"}, []string{"March salary", "Groceries", "ATM"}},
		{"search destination name", Criteria{Type: ledger.TypeTransfer, Search: "wallet"}, []string{"ATM"}},
		{"no match", Criteria{Search: "rent"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, r := range Filter(rows, tt.criteria, nameOf) {
				got = append(got, r.Description)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSummarize_ExcludesTransfers(t *testing.T) {
	totals := Summarize(sampleRows())

	assert.Equal(t, int64(3000000), totals.Income)
	assert.Equal(t, int64(102000), totals.Expense)
	assert.Equal(t, int64(2898000), totals.Net)
	assert.Equal(t, 4, totals.Count)
}

func TestMonthRange(t *testing.T) {
	tests := []struct {
		year     int
		month    time.Month
		wantLast int
	}{
		{2025, time.January, 31},
		{2024, time.February, 29},
		{2025, time.February, 28},
		{2025, time.April, 30},
		{2025, time.December, 31},
	}
	for _, tt := range tests {
		first, last := MonthRange(tt.year, tt.month)
		assert.Equal(t, 1, first.Day())
		assert.Equal(t, tt.month, first.Month())
		assert.Equal(t, tt.wantLast, last.Day())
		assert.Equal(t, tt.month, last.Month())
	}
}

func TestLastMonths(t *testing.T) {
	months := LastMonths(time.Date(2025, 2, 28, 15, 0, 0, 0, time.UTC), 4)

	require.Len(t, months, 4)
	assert.Equal(t, Month{2024, time.November}, months[0])
	assert.Equal(t, Month{2025, time.February}, months[3])
	assert.Equal(t, "2024-12", months[1].String())
}

func TestCategoryBreakdown(t *testing.T) {
	got := CategoryBreakdown(sampleRows(), ledger.TypeExpense)

	require.Len(t, got, 2)
	assert.Equal(t, CategoryTotal{CategoryID: food, Amount: 57000, Count: 2}, got[0])
	assert.Equal(t, CategoryTotal{CategoryID: uuid.Nil, Amount: 45000, Count: 1}, got[1])
}

func TestTopTransactions(t *testing.T) {
	top := TopTransactions(sampleRows(), ledger.TypeExpense, 2)

	require.Len(t, top, 2)
	// equal amounts: the later date wins
	assert.Equal(t, "Taxi", top[0].Description)
	assert.Equal(t, "Groceries", top[1].Description)

	assert.Empty(t, TopTransactions(sampleRows(), ledger.TypeExpense, 0))
	assert.Len(t, TopTransactions(sampleRows(), ledger.TypeIncome, 5), 1)
}
