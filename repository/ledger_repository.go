package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"medals/database"
	"medals/models"
)

// LedgerRepository implements the LedgerRepository interface. Rows are
// append-only; the database rejects updates and deletes.
type LedgerRepository struct {
	q queryable
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

func newLedgerRepositoryWithTx(tx queryable) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

// Record appends a ledger transaction
func (r *LedgerRepository) Record(ctx context.Context, tx *models.LedgerTransaction) error {
	query := `
		INSERT INTO ledger_transactions
		(player_id, medal_id, event_id, amount, transaction_type, description, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()))
		RETURNING id, created_at
	`
	var createdAt any
	if !tx.CreatedAt.IsZero() {
		createdAt = tx.CreatedAt
	}
	err := r.q.QueryRow(ctx, query,
		tx.PlayerID,
		tx.MedalID,
		tx.EventID,
		tx.Amount,
		tx.TransactionType,
		tx.Description,
		tx.Actor,
		createdAt,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record ledger transaction for player %d: %w", tx.PlayerID, err)
	}
	return nil
}

// GetByPlayer returns the newest transactions of a player first
func (r *LedgerRepository) GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*models.LedgerTransaction, error) {
	query := `
		SELECT id, player_id, medal_id, event_id, amount, transaction_type, description, actor, created_at
		FROM ledger_transactions
		WHERE player_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.q.Query(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger for player %d: %w", playerID, err)
	}
	defer rows.Close()

	var history []*models.LedgerTransaction
	for rows.Next() {
		var tx models.LedgerTransaction
		if err := rows.Scan(
			&tx.ID,
			&tx.PlayerID,
			&tx.MedalID,
			&tx.EventID,
			&tx.Amount,
			&tx.TransactionType,
			&tx.Description,
			&tx.Actor,
			&tx.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger transaction: %w", err)
		}
		history = append(history, &tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger transactions: %w", err)
	}
	return history, nil
}

// Balance sums a player's transactions of one medal type
func (r *LedgerRepository) Balance(ctx context.Context, playerID, medalID int64) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_transactions
		WHERE player_id = $1 AND medal_id = $2
	`, playerID, medalID).Scan(&balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum balance of player %d medal %d: %w", playerID, medalID, err)
	}
	return balance, nil
}

// SumByEvent sums the transactions of one type paid out of an event's pot
func (r *LedgerRepository) SumByEvent(ctx context.Context, eventID, medalID int64, txType models.TransactionType) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM ledger_transactions
		WHERE event_id = $1 AND medal_id = $2 AND transaction_type = $3
	`, eventID, medalID, txType).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s for event %d medal %d: %w", txType, eventID, medalID, err)
	}
	return total, nil
}
