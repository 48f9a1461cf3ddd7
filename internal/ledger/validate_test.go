package ledger

import (
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	a := uuid.Must(uuid.NewV4())
	b := uuid.Must(uuid.NewV4())
	category := uuid.Must(uuid.NewV4())
	date := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input Input
		field string
	}{
		{"valid expense", Input{Type: TypeExpense, Amount: 300, AccountID: a, CategoryID: category, Date: date}, ""},
		{"valid income without category", Input{Type: TypeIncome, Amount: 1, AccountID: a, Date: date}, ""},
		{"valid transfer", Input{Type: TypeTransfer, Amount: 400, AccountID: a, ToAccountID: b, Date: date}, ""},
		{"unknown type", Input{Type: "refund", Amount: 1, AccountID: a, Date: date}, "type"},
		{"zero amount", Input{Type: TypeExpense, Amount: 0, AccountID: a, Date: date}, "amount"},
		{"negative amount", Input{Type: TypeIncome, Amount: -5, AccountID: a, Date: date}, "amount"},
		{"missing account", Input{Type: TypeExpense, Amount: 5, Date: date}, "accountID"},
		{"missing date", Input{Type: TypeExpense, Amount: 5, AccountID: a}, "date"},
		{"transfer without destination", Input{Type: TypeTransfer, Amount: 5, AccountID: a, Date: date}, "toAccountID"},
		{"transfer to same account", Input{Type: TypeTransfer, Amount: 5, AccountID: a, ToAccountID: a, Date: date}, "toAccountID"},
		{"transfer with category", Input{Type: TypeTransfer, Amount: 5, AccountID: a, ToAccountID: b, CategoryID: category, Date: date}, "categoryID"},
		{"expense with destination", Input{Type: TypeExpense, Amount: 5, AccountID: a, ToAccountID: b, Date: date}, "toAccountID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.input)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
			assert.True(t, IsValidation(err))
		})
	}
}
