package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/auth"
	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage/memory"
)

type testEnv struct {
	store  *memory.Store
	bus    *events.Bus
	svc    *Service
	ctx    context.Context
	userID uuid.UUID

	mu       sync.Mutex
	received []events.Event
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.New()
	delegator := operator.NewOperatorDelegator(store, 2)
	delegator.Start()
	t.Cleanup(delegator.Stop)

	bus := events.NewBus()
	env := &testEnv{
		store:  store,
		bus:    bus,
		userID: uuid.Must(uuid.NewV4()),
	}
	bus.Subscribe(func(_ context.Context, e events.Event) {
		env.mu.Lock()
		defer env.mu.Unlock()
		env.received = append(env.received, e)
	})
	env.svc = NewService(store, delegator, bus, Options{SummaryCacheSize: 32, SummaryCacheTTL: time.Minute})
	env.ctx = auth.WithUser(context.Background(), env.userID)
	return env
}

func (e *testEnv) events() []events.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]events.Event, len(e.received))
	copy(out, e.received)
	return out
}

func (e *testEnv) lastEvent(t *testing.T) events.Event {
	t.Helper()
	received := e.events()
	require.NotEmpty(t, received)
	return received[len(received)-1]
}

func (e *testEnv) account(t *testing.T, currency, balance string) *Account {
	t.Helper()
	a, err := e.svc.Account.CreateAccount(e.ctx, AccountCreate{
		Name:           "Account " + currency,
		Type:           "checking",
		Currency:       currency,
		InitialBalance: balance,
	})
	require.NoError(t, err)
	return a
}

func (e *testEnv) balance(t *testing.T, id uuid.UUID) int64 {
	t.Helper()
	a, err := e.svc.Account.GetAccount(e.ctx, id)
	require.NoError(t, err)
	return a.Balance
}

type mockProcessor struct {
	mock.Mock
}

// ProcessThen settles synchronously, like a worker that finished before the
// caller's context ended.
func (m *mockProcessor) ProcessThen(ctx context.Context, action actions.IAction, settled func(context.Context, error)) error {
	err := m.MethodCalled("Process", ctx, action).Error(0)
	if settled != nil {
		settled(ctx, err)
	}
	return err
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}
