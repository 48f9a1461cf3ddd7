// Package events signals that derived views over accounts and transactions
// may be stale.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"
)

// Topic names a group of derived views.
type Topic string

const (
	TopicTransactions Topic = "transactions"
	TopicAccounts     Topic = "accounts"
)

// Event is published after every mutation attempt, including failed ones,
// since a failed attempt may still have raced with another writer.
type Event struct {
	Topics []Topic   `json:"topics"`
	Cause  string    `json:"cause"`
	UserID uuid.UUID `json:"userId"`
	Failed bool      `json:"failed"`
	At     time.Time `json:"at"`
}

// Has reports whether e concerns topic.
func (e Event) Has(topic Topic) bool {
	for _, t := range e.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

type Handler func(ctx context.Context, event Event)

// Bus delivers events synchronously to every subscriber, in subscription
// order.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	now      func() time.Time
}

func NewBus() *Bus {
	return &Bus{now: time.Now}
}

func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish stamps the event if At is unset and hands it to each subscriber.
func (b *Bus) Publish(ctx context.Context, event Event) {
	if event.At.IsZero() {
		event.At = b.now().UTC()
	}

	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	logrus.WithFields(logrus.Fields{
		"topics": event.Topics,
		"cause":  event.Cause,
		"failed": event.Failed,
	}).Debug("Events.Publish")

	for _, h := range handlers {
		h(ctx, event)
	}
}
