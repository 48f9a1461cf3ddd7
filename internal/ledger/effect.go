// Package ledger holds the balance adjustment engine: the mapping from a
// transaction to the signed balance deltas it implies, and the rules for
// applying and reverting those deltas against account balances.
package ledger

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
)

// Type is the kind of a transaction.
type Type string

const (
	TypeIncome   Type = "income"
	TypeExpense  Type = "expense"
	TypeTransfer Type = "transfer"
)

// Valid reports whether t is one of the known transaction types.
func (t Type) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeTransfer:
		return true
	}
	return false
}

// Delta is a signed change to one account balance, in minor units.
type Delta struct {
	AccountID uuid.UUID
	Amount    int64
}

// Effect is the set of deltas a transaction implies.
type Effect []Delta

// ComputeEffect returns the balance effect of a transaction. amount is the
// stored non-negative magnitude; toAccountID is only read for transfers.
func ComputeEffect(t Type, amount int64, accountID, toAccountID uuid.UUID) Effect {
	switch t {
	case TypeIncome:
		return Effect{{AccountID: accountID, Amount: amount}}
	case TypeExpense:
		return Effect{{AccountID: accountID, Amount: -amount}}
	case TypeTransfer:
		return Effect{
			{AccountID: accountID, Amount: -amount},
			{AccountID: toAccountID, Amount: amount},
		}
	}
	return nil
}

// Invert returns the effect that undoes e.
func (e Effect) Invert() Effect {
	inverted := make(Effect, len(e))
	for i, d := range e {
		inverted[i] = Delta{AccountID: d.AccountID, Amount: -d.Amount}
	}
	return inverted
}

// Net is the sum of all deltas. Transfers always net to zero.
func (e Effect) Net() int64 {
	var net int64
	for _, d := range e {
		net += d.Amount
	}
	return net
}

// Accounts lists the distinct non-nil accounts touched by e.
func (e Effect) Accounts() []uuid.UUID {
	var ids []uuid.UUID
	seen := make(map[uuid.UUID]struct{}, len(e))
	for _, d := range e {
		if d.AccountID == uuid.Nil {
			continue
		}
		if _, ok := seen[d.AccountID]; ok {
			continue
		}
		seen[d.AccountID] = struct{}{}
		ids = append(ids, d.AccountID)
	}
	return ids
}

// BalanceAdjuster adds delta to an account balance in a single atomic step.
// It returns ErrAccountNotFound when no such account exists.
type BalanceAdjuster interface {
	AdjustBalance(ctx context.Context, accountID uuid.UUID, delta int64) error
}

// ApplyDelta adds delta to the account's balance. A zero delta or a nil
// account is a no-op. A missing account is reported as a ConsistencyError so
// the enclosing mutation can be rolled back.
func ApplyDelta(ctx context.Context, adjuster BalanceAdjuster, accountID uuid.UUID, delta int64) error {
	if accountID == uuid.Nil || delta == 0 {
		return nil
	}

	err := adjuster.AdjustBalance(ctx, accountID, delta)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAccountNotFound) {
		return &ConsistencyError{AccountID: accountID, Delta: delta, Err: err}
	}
	return &StoreError{Op: "adjust balance", Err: err}
}

// Apply applies every delta of e in order and stops at the first failure.
func Apply(ctx context.Context, adjuster BalanceAdjuster, e Effect) error {
	for _, d := range e {
		if err := ApplyDelta(ctx, adjuster, d.AccountID, d.Amount); err != nil {
			return err
		}
	}
	return nil
}
