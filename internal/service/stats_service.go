package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/ledger-server/internal/cache"
	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/stats"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/transaction"
)

const (
	maxSummaryMonths = 24
	topExpenseCount  = 5
)

// MonthSummary is the income and expense of one calendar month.
type MonthSummary struct {
	Month  stats.Month
	Totals stats.Totals
}

// PeriodReport describes one calendar month in detail.
type PeriodReport struct {
	Month             stats.Month
	Totals            stats.Totals
	ExpenseByCategory []stats.CategoryTotal
	TopExpenses       []Transaction
}

// StatsService computes derived views over the session user's transactions.
type StatsService struct {
	storage   storage.Store
	summaries cache.Cache[stats.Totals]

	// generation counts invalidations; a summary read before the latest
	// one is not cached.
	mu         sync.Mutex
	generation uint64
}

func NewStatsService(store storage.Store, summaries cache.Cache[stats.Totals]) *StatsService {
	return &StatsService{storage: store, summaries: summaries}
}

// MonthlySummary returns totals for the count months ending with the month of
// now, oldest first. Months are loaded in parallel and cached until the next
// transaction mutation.
func (s *StatsService) MonthlySummary(ctx context.Context, now time.Time, count int) ([]MonthSummary, error) {
	userID, err := sessionUser(ctx)
	if err != nil {
		return nil, err
	}
	if count < 1 || count > maxSummaryMonths {
		return nil, &ledger.ValidationError{Field: "count", Reason: fmt.Sprintf("must be between 1 and %d", maxSummaryMonths)}
	}

	months := stats.LastMonths(now, count)
	summaries := make([]MonthSummary, len(months))

	gen := s.currentGeneration()
	reader := s.storage.Read()
	g, gctx := errgroup.WithContext(ctx)
	for i, m := range months {
		i, m := i, m
		g.Go(func() error {
			key := summaryKey(userID, m)
			if totals, ok := s.summaries.Get(key); ok {
				summaries[i] = MonthSummary{Month: m, Totals: totals}
				return nil
			}

			rows, err := monthRows(gctx, reader, userID, m)
			if err != nil {
				return err
			}
			totals := stats.Summarize(rows)
			s.remember(gen, key, totals)
			summaries[i] = MonthSummary{Month: m, Totals: totals}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// PeriodReport returns totals, the expense breakdown by category and the
// largest expenses of one month.
func (s *StatsService) PeriodReport(ctx context.Context, year int, month time.Month) (*PeriodReport, error) {
	userID, err := sessionUser(ctx)
	if err != nil {
		return nil, err
	}
	if month < time.January || month > time.December {
		return nil, &ledger.ValidationError{Field: "month", Reason: "must be between 1 and 12"}
	}
	if year < 1 {
		return nil, &ledger.ValidationError{Field: "year", Reason: "must be positive"}
	}

	m := stats.Month{Year: year, Month: month}
	reader := s.storage.Read()
	rows, err := monthRows(ctx, reader, userID, m)
	if err != nil {
		return nil, err
	}
	names, err := accountNames(ctx, reader, userID)
	if err != nil {
		return nil, err
	}

	report := &PeriodReport{
		Month:             m,
		Totals:            stats.Summarize(rows),
		ExpenseByCategory: stats.CategoryBreakdown(rows, ledger.TypeExpense),
	}
	for _, row := range stats.TopTransactions(rows, ledger.TypeExpense, topExpenseCount) {
		report.TopExpenses = append(report.TopExpenses, transactionFromStorage(row, names))
	}
	return report, nil
}

// Invalidate drops cached summaries once transactions may have changed.
func (s *StatsService) Invalidate(_ context.Context, event events.Event) {
	if !event.Has(events.TopicTransactions) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	logrus.WithFields(logrus.Fields{
		"cause":   event.Cause,
		"entries": s.summaries.Size(),
	}).Debug("StatsService.Invalidate")
	s.summaries.Purge()
}

func (s *StatsService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// remember caches totals unless an invalidation happened since gen was read.
func (s *StatsService) remember(gen uint64, key string, totals stats.Totals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		s.summaries.Set(key, totals)
	}
}

func monthRows(ctx context.Context, reader *storage.Reader, userID uuid.UUID, m stats.Month) ([]*transaction.Transaction, error) {
	from, to := m.Range()
	result, err := reader.Transactions.List(ctx, &transaction.TransactionFilter{
		UserID: userID,
		From:   &from,
		To:     &to,
	})
	if err != nil {
		return nil, ledger.WrapStore("list transactions", err)
	}
	return result.Transactions, nil
}

func summaryKey(userID uuid.UUID, m stats.Month) string {
	return userID.String() + "/" + m.String()
}
