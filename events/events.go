package events

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"medals/models"
)

// EventType identifies a domain event
type EventType string

const (
	EventTypeDistributionCompleted     EventType = "distribution_completed"
	EventTypeRaffleDrawn               EventType = "raffle_drawn"
	EventTypeLedgerTransactionRecorded EventType = "ledger_transaction_recorded"
	EventTypeScoresCommitted           EventType = "scores_committed"
)

// AllEventTypes lists every event the system emits
func AllEventTypes() []EventType {
	return []EventType{
		EventTypeDistributionCompleted,
		EventTypeRaffleDrawn,
		EventTypeLedgerTransactionRecorded,
		EventTypeScoresCommitted,
	}
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// DistributionCompletedEvent is emitted after a weighted distribution commits
type DistributionCompletedEvent struct {
	EventID        int64           `json:"event_id"`
	MedalID        int64           `json:"medal_id"`
	Actor          string          `json:"actor"`
	Players        int             `json:"players"`
	CappedPlayers  int             `json:"capped_players"`
	DistributedNow decimal.Decimal `json:"distributed_now"`
	RemainingAfter decimal.Decimal `json:"remaining_after"`
}

func (e DistributionCompletedEvent) Type() EventType {
	return EventTypeDistributionCompleted
}

// RaffleDrawnEvent is emitted after a raffle draw commits
type RaffleDrawnEvent struct {
	DrawID    string          `json:"draw_id"`
	EventID   int64           `json:"event_id"`
	MedalID   int64           `json:"medal_id"`
	Actor     string          `json:"actor"`
	WinnerIDs []int64         `json:"winner_ids"`
	PaidOut   decimal.Decimal `json:"paid_out"`
}

func (e RaffleDrawnEvent) Type() EventType {
	return EventTypeRaffleDrawn
}

// LedgerTransactionRecordedEvent is emitted for every committed ledger row
type LedgerTransactionRecordedEvent struct {
	TransactionID   int64                  `json:"transaction_id"`
	PlayerID        int64                  `json:"player_id"`
	MedalID         int64                  `json:"medal_id"`
	EventID         *int64                 `json:"event_id,omitempty"`
	Amount          decimal.Decimal        `json:"amount"`
	TransactionType models.TransactionType `json:"transaction_type"`
	Actor           string                 `json:"actor"`
}

func (e LedgerTransactionRecordedEvent) Type() EventType {
	return EventTypeLedgerTransactionRecorded
}

// ScoresCommittedEvent is emitted after a score commit batch
type ScoresCommittedEvent struct {
	EventIDs  []int64 `json:"event_ids"`
	Committed int     `json:"committed"`
	Skipped   int     `json:"skipped"`
}

func (e ScoresCommittedEvent) Type() EventType {
	return EventTypeScoresCommitted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	wg       sync.WaitGroup
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// SubscribeAll adds a handler for every event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range AllEventTypes() {
		b.Subscribe(eventType, handler)
	}
}

// Emit dispatches an event to its handlers. Handlers run asynchronously and
// a panicking handler is logged, not propagated.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event")

	for i, handler := range handlers {
		b.wg.Add(1)
		go func(h Handler, handlerIndex int) {
			defer b.wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Wait blocks until every handler started so far has returned
func (b *Bus) Wait() {
	b.wg.Wait()
}

// TransactionalBus holds events raised inside a unit of work until the
// transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Pending returns the events waiting for commit
func (b *TransactionalBus) Pending() []Event {
	return b.pending
}

// Flush is called after a successful commit. Emission uses a background
// context so handlers outlive the request that committed.
func (b *TransactionalBus) Flush() {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing pending events")

	if b.real != nil {
		eventCtx := context.Background()
		for _, ev := range b.pending {
			b.real.Emit(eventCtx, ev)
		}
	}
	b.pending = nil
}

// Discard drops pending events after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
