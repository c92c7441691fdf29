package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"medals/database"
	"medals/models"
)

const eventTotalsColumns = `event_id, medal_id, total_amount, raffle_amount_used, distributed_amount, min_score_for_raffle, updated_at`

// EventTotalsRepository implements the EventTotalsRepository interface
type EventTotalsRepository struct {
	q queryable
}

// NewEventTotalsRepository creates a new event totals repository
func NewEventTotalsRepository(db *database.DB) *EventTotalsRepository {
	return &EventTotalsRepository{q: db.Pool}
}

func newEventTotalsRepositoryWithTx(tx queryable) *EventTotalsRepository {
	return &EventTotalsRepository{q: tx}
}

// Get returns the totals row without locking it
func (r *EventTotalsRepository) Get(ctx context.Context, eventID, medalID int64) (*models.EventTotals, error) {
	return r.get(ctx, `SELECT `+eventTotalsColumns+` FROM event_totals WHERE event_id = $1 AND medal_id = $2`, eventID, medalID)
}

// GetForUpdate returns the totals row with a row lock held until the
// surrounding transaction ends
func (r *EventTotalsRepository) GetForUpdate(ctx context.Context, eventID, medalID int64) (*models.EventTotals, error) {
	return r.get(ctx, `SELECT `+eventTotalsColumns+` FROM event_totals WHERE event_id = $1 AND medal_id = $2 FOR UPDATE`, eventID, medalID)
}

func (r *EventTotalsRepository) get(ctx context.Context, query string, eventID, medalID int64) (*models.EventTotals, error) {
	var t models.EventTotals
	err := r.q.QueryRow(ctx, query, eventID, medalID).Scan(
		&t.EventID,
		&t.MedalID,
		&t.TotalAmount,
		&t.RaffleAmountUsed,
		&t.DistributedAmount,
		&t.MinScoreForRaffle,
		&t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get totals for event %d medal %d: %w", eventID, medalID, err)
	}
	return &t, nil
}

// Upsert sets the pot size and raffle threshold. Consumed amounts are only
// ever changed by AddDistributed and AddRaffleUsed.
func (r *EventTotalsRepository) Upsert(ctx context.Context, totals *models.EventTotals) error {
	query := `
		INSERT INTO event_totals (event_id, medal_id, total_amount, min_score_for_raffle)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id, medal_id) DO UPDATE SET
			total_amount = EXCLUDED.total_amount,
			min_score_for_raffle = EXCLUDED.min_score_for_raffle,
			updated_at = NOW()
		RETURNING raffle_amount_used, distributed_amount, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		totals.EventID,
		totals.MedalID,
		totals.TotalAmount,
		totals.MinScoreForRaffle,
	).Scan(&totals.RaffleAmountUsed, &totals.DistributedAmount, &totals.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert totals for event %d medal %d: %w", totals.EventID, totals.MedalID, err)
	}
	return nil
}

// AddDistributed increments distributed_amount
func (r *EventTotalsRepository) AddDistributed(ctx context.Context, eventID, medalID int64, amount decimal.Decimal) error {
	return r.add(ctx, "distributed_amount", eventID, medalID, amount)
}

// AddRaffleUsed increments raffle_amount_used
func (r *EventTotalsRepository) AddRaffleUsed(ctx context.Context, eventID, medalID int64, amount decimal.Decimal) error {
	return r.add(ctx, "raffle_amount_used", eventID, medalID, amount)
}

// add increments one of the two consumed columns. column is never user input.
func (r *EventTotalsRepository) add(ctx context.Context, column string, eventID, medalID int64, amount decimal.Decimal) error {
	query := fmt.Sprintf(`
		UPDATE event_totals
		SET %[1]s = %[1]s + $3, updated_at = NOW()
		WHERE event_id = $1 AND medal_id = $2
	`, column)
	result, err := r.q.Exec(ctx, query, eventID, medalID, amount)
	if err != nil {
		return fmt.Errorf("failed to add %s to %s for event %d medal %d: %w", amount, column, eventID, medalID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("totals for event %d medal %d not found", eventID, medalID)
	}
	return nil
}
