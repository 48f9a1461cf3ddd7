package operator

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// Operator is the worker that processes items from the queue.
type Operator struct {
	storage storage.Store
	queue   chan ActionItem
}

func NewOperator(s storage.Store, queue chan ActionItem) *Operator {
	return &Operator{
		storage: s,
		queue:   queue,
	}
}

// Run listens to the queue and processes items. Exits when the queue is closed.
func (o *Operator) Run() {
	for item := range o.queue {
		o.processItem(item)
	}
}

// processItem runs one action inside one write unit, hands the outcome to
// the item's settled callback and then replies.
func (o *Operator) processItem(item ActionItem) {
	err := o.runUnit(item)
	if item.settled != nil {
		item.settled(item.ctx, err)
	}
	item.response <- ActionItemResponse{err: err}
}

// runUnit performs the action. Any error or panic rolls back every write the
// action made.
func (o *Operator) runUnit(item ActionItem) (err error) {
	log := logrus.WithField("action", item.action.Name())

	writer, err := o.storage.Write(item.ctx)
	if err != nil {
		log.WithError(err).Error("Operator.Write.Error")
		return ledger.WrapStore("begin", err)
	}

	finished := false
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err = ledger.WrapStore(item.action.Name(), fmt.Errorf("panic: %v", r))
		log.WithError(err).Error("Operator.Perform.Panic")
		if !finished {
			if rbErr := writer.Rollback(); rbErr != nil {
				log.WithError(rbErr).Error("Operator.Rollback.Error")
			}
		}
	}()

	err = item.action.Perform(item.ctx, writer)
	if err != nil {
		finished = true
		if rbErr := writer.Rollback(); rbErr != nil {
			log.WithError(rbErr).Error("Operator.Rollback.Error")
		}
		log.WithError(err).Warn("Operator.Perform.RolledBack")
		return ledger.WrapStore(item.action.Name(), err)
	}

	finished = true
	if err = writer.Commit(); err != nil {
		log.WithError(err).Error("Operator.Commit.Error")
		return ledger.WrapStore("commit", err)
	}
	return nil
}

type ActionItem struct {
	ctx      context.Context
	action   actions.IAction
	settled  func(ctx context.Context, err error)
	response chan ActionItemResponse
}

type ActionItemResponse struct {
	err error
}

// ErrStopped is returned by Process once the delegator has been stopped.
var ErrStopped = errors.New("operator: stopped")

func wrapCanceled(err error) error {
	return fmt.Errorf("operator: waiting for result: %w", err)
}
