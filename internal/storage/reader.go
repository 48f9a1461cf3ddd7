package storage

type Reader struct {
	Accounts     AccountReader
	Transactions TransactionReader
}

func NewReader(accounts AccountReader, transactions TransactionReader) *Reader {
	return &Reader{
		Accounts:     accounts,
		Transactions: transactions,
	}
}
