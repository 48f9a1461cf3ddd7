package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/cache"
	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/stats"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// Processor runs an action inside one storage write unit. settled runs once
// the unit has committed or rolled back, even if the caller stopped waiting.
type Processor interface {
	ProcessThen(ctx context.Context, action actions.IAction, settled func(ctx context.Context, err error)) error
}

// Publisher receives invalidation events.
type Publisher interface {
	Publish(ctx context.Context, event events.Event)
}

// Service holds all business logic services.
type Service struct {
	Transaction *TransactionService
	Account     *AccountService
	Stats       *StatsService
}

type Options struct {
	SummaryCacheSize int
	SummaryCacheTTL  time.Duration
}

// NewService wires the services together. The stats cache is subscribed to
// the bus so mutations purge it.
func NewService(store storage.Store, processor Processor, bus *events.Bus, opts Options) *Service {
	summaries := cache.NewLRU[stats.Totals](opts.SummaryCacheSize, opts.SummaryCacheTTL)
	statsService := NewStatsService(store, summaries)
	bus.Subscribe(statsService.Invalidate)

	return &Service{
		Transaction: NewTransactionService(store, processor, bus),
		Account:     NewAccountService(store, processor, bus),
		Stats:       statsService,
	}
}

func sessionUser(ctx context.Context) (uuid.UUID, error) {
	userID, ok := auth.UserFromContext(ctx)
	if !ok {
		return uuid.Nil, ledger.ErrNotAuthenticated
	}
	return userID, nil
}

// dispatch runs action and publishes its invalidation when the write unit
// settles. If the action never ran, or the caller stopped waiting first, an
// event goes out now as well.
func dispatch(ctx context.Context, processor Processor, bus Publisher, action actions.IAction, userID uuid.UUID, topics ...events.Topic) error {
	var published atomic.Bool
	err := processor.ProcessThen(ctx, action, func(ctx context.Context, err error) {
		notify(ctx, bus, action.Name(), userID, err, topics...)
		published.Store(true)
	})
	if !published.Load() {
		notify(ctx, bus, action.Name(), userID, err, topics...)
	}
	return err
}

// notify publishes an invalidation for an attempted mutation, whatever its
// outcome.
func notify(ctx context.Context, bus Publisher, cause string, userID uuid.UUID, err error, topics ...events.Topic) {
	if err != nil {
		logrus.WithError(err).WithField("cause", cause).Info("Service.Mutation.Failed")
	}
	bus.Publish(ctx, events.Event{
		Topics: topics,
		Cause:  cause,
		UserID: userID,
		Failed: err != nil,
	})
}
