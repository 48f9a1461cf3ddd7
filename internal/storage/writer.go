package storage

import (
	"context"
)

// Unit is the commit boundary behind a Writer.
type Unit interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Writer struct {
	unit        Unit
	Account     AccountWriter
	Transaction TransactionWriter
}

func NewWriter(accounts AccountWriter, transactions TransactionWriter, unit Unit) *Writer {
	return &Writer{
		unit:        unit,
		Account:     accounts,
		Transaction: transactions,
	}
}

func (w *Writer) Commit() error {
	return w.unit.Commit(context.Background())
}

func (w *Writer) Rollback() error {
	return w.unit.Rollback(context.Background())
}
