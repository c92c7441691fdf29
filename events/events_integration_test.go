package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medals/models"
)

// TestLedgerEventDelivery follows a ledger event from a unit of work's
// transactional bus to a subscriber on the main bus
func TestLedgerEventDelivery(t *testing.T) {
	mainBus := NewBus()
	txBus := NewTransactionalBus(mainBus)

	received := make(chan LedgerTransactionRecordedEvent, 1)
	mainBus.Subscribe(EventTypeLedgerTransactionRecorded, func(ctx context.Context, event Event) {
		ledgerEvent, ok := event.(LedgerTransactionRecordedEvent)
		if !ok {
			t.Errorf("expected LedgerTransactionRecordedEvent, got %T", event)
			return
		}
		received <- ledgerEvent
	})

	eventID := int64(4)
	sent := LedgerTransactionRecordedEvent{
		TransactionID:   17,
		PlayerID:        3,
		MedalID:         1,
		EventID:         &eventID,
		Amount:          decimal.NewFromInt(100),
		TransactionType: models.TransactionTypeWeightedDistribution,
		Actor:           "officer-1",
	}
	txBus.Publish(sent)
	txBus.Flush()

	select {
	case got := <-received:
		assert.Equal(t, sent.TransactionID, got.TransactionID)
		assert.Equal(t, sent.PlayerID, got.PlayerID)
		assert.Equal(t, eventID, *got.EventID)
		assert.True(t, sent.Amount.Equal(got.Amount))
		assert.Equal(t, models.TransactionTypeWeightedDistribution, got.TransactionType)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not received within timeout")
	}
}

// TestSettlementEventsDelivery flushes the events one distribution run
// raises and checks each reaches its subscriber
func TestSettlementEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	txBus := NewTransactionalBus(mainBus)

	var mu sync.Mutex
	var payees []int64
	var completed []DistributionCompletedEvent

	mainBus.Subscribe(EventTypeLedgerTransactionRecorded, func(ctx context.Context, event Event) {
		mu.Lock()
		defer mu.Unlock()
		payees = append(payees, event.(LedgerTransactionRecordedEvent).PlayerID)
	})
	mainBus.Subscribe(EventTypeDistributionCompleted, func(ctx context.Context, event Event) {
		mu.Lock()
		defer mu.Unlock()
		completed = append(completed, event.(DistributionCompletedEvent))
	})

	for _, playerID := range []int64{1, 2, 3} {
		txBus.Publish(LedgerTransactionRecordedEvent{
			PlayerID:        playerID,
			Amount:          decimal.NewFromInt(70),
			TransactionType: models.TransactionTypeWeightedDistribution,
		})
	}
	txBus.Publish(DistributionCompletedEvent{
		EventID:        4,
		MedalID:        1,
		Players:        3,
		DistributedNow: decimal.NewFromInt(210),
		RemainingAfter: decimal.NewFromInt(490),
	})
	require.Len(t, txBus.Pending(), 4)

	txBus.Flush()
	mainBus.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []int64{1, 2, 3}, payees)
	require.Len(t, completed, 1)
	assert.True(t, completed[0].RemainingAfter.Equal(decimal.NewFromInt(490)))
}

// TestRolledBackEventsNeverReachSubscribers mirrors a unit of work that
// rolls back after raising events
func TestRolledBackEventsNeverReachSubscribers(t *testing.T) {
	mainBus := NewBus()
	txBus := NewTransactionalBus(mainBus)

	delivered := make(chan Event, 1)
	mainBus.SubscribeAll(func(ctx context.Context, event Event) {
		delivered <- event
	})

	txBus.Publish(RaffleDrawnEvent{DrawID: "draw-1", WinnerIDs: []int64{5}})
	txBus.Discard()
	txBus.Flush()
	mainBus.Wait()

	select {
	case ev := <-delivered:
		t.Fatalf("unexpected delivery of %T", ev)
	default:
	}
}
