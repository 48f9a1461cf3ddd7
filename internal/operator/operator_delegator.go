package operator

import (
	"context"
	"sync"

	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// OperatorDelegator manages the queue, starts/stops Operators (workers), and enqueues items.
type OperatorDelegator struct {
	storage    storage.Store
	queue      chan ActionItem
	numWorkers int
	wg         sync.WaitGroup
	stopOnce   sync.Once

	// guards queue sends against a concurrent Stop
	mu      sync.RWMutex
	stopped bool
}

func NewOperatorDelegator(s storage.Store, numWorkers int) *OperatorDelegator {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &OperatorDelegator{
		storage:    s,
		queue:      make(chan ActionItem, 1000),
		numWorkers: numWorkers,
	}
}

func (d *OperatorDelegator) Start() {
	for i := 0; i < d.numWorkers; i++ {
		d.wg.Add(1)
		op := NewOperator(d.storage, d.queue)
		go func() {
			defer d.wg.Done()
			op.Run()
		}()
	}
}

// Stop closes the queue and waits for queued actions to finish.
func (d *OperatorDelegator) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.stopped = true
		close(d.queue)
		d.mu.Unlock()
		d.wg.Wait()
	})
}

// Process queues action and waits for its outcome. Cancelling ctx stops the
// wait; an action already picked up still runs to commit or rollback.
func (d *OperatorDelegator) Process(ctx context.Context, action actions.IAction) error {
	return d.ProcessThen(ctx, action, nil)
}

// ProcessThen is Process with a callback that the worker runs once the write
// unit has committed or rolled back, before the result is returned. It still
// runs when ctx is cancelled during the wait, and never runs for an action
// that was not queued.
func (d *OperatorDelegator) ProcessThen(ctx context.Context, action actions.IAction, settled func(ctx context.Context, err error)) error {
	respCh := make(chan ActionItemResponse, 1)
	item := ActionItem{
		ctx:      context.WithoutCancel(ctx),
		action:   action,
		settled:  settled,
		response: respCh,
	}

	d.mu.RLock()
	if d.stopped {
		d.mu.RUnlock()
		return ErrStopped
	}
	select {
	case d.queue <- item:
		d.mu.RUnlock()
	case <-ctx.Done():
		d.mu.RUnlock()
		return wrapCanceled(ctx.Err())
	}

	select {
	case resp := <-respCh:
		return resp.err
	case <-ctx.Done():
		return wrapCanceled(ctx.Err())
	}
}
