package service

import (
	"context"
	"fmt"

	"medals/events"
	"medals/models"
)

// RecordLedgerTransaction appends a ledger row and queues its event for
// after commit. Every ledger write goes through here.
func RecordLedgerTransaction(ctx context.Context, uow UnitOfWork, tx *models.LedgerTransaction) error {
	if tx.Amount.IsZero() {
		return fmt.Errorf("%w: zero ledger amount for player %d", ErrInvalidInput, tx.PlayerID)
	}
	if !tx.Amount.IsInteger() {
		return fmt.Errorf("%w: fractional ledger amount %s", ErrInvalidInput, tx.Amount)
	}

	if err := uow.LedgerRepository().Record(ctx, tx); err != nil {
		return fmt.Errorf("failed to record ledger transaction: %w", err)
	}

	uow.EventBus().Publish(events.LedgerTransactionRecordedEvent{
		TransactionID:   tx.ID,
		PlayerID:        tx.PlayerID,
		MedalID:         tx.MedalID,
		EventID:         tx.EventID,
		Amount:          tx.Amount,
		TransactionType: tx.TransactionType,
		Actor:           tx.Actor,
	})

	return nil
}
