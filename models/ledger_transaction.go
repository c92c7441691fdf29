package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger movement
type TransactionType string

const (
	TransactionTypeWeightedDistribution TransactionType = "weighted_distribution"
	TransactionTypeRaffleWin            TransactionType = "raffle_win"
	TransactionTypeManualAdjustment     TransactionType = "manual_adjustment"
)

// LedgerTransaction is an immutable signed movement of one medal type.
// A player's balance is the sum of their transactions.
type LedgerTransaction struct {
	ID              int64           `db:"id" json:"id"`
	PlayerID        int64           `db:"player_id" json:"player_id"`
	MedalID         int64           `db:"medal_id" json:"medal_id"`
	EventID         *int64          `db:"event_id" json:"event_id,omitempty"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	TransactionType TransactionType `db:"transaction_type" json:"transaction_type"`
	Description     string          `db:"description" json:"description"`
	Actor           string          `db:"actor" json:"actor"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// Balance is the derived holding of one medal type for a player
type Balance struct {
	PlayerID int64           `json:"player_id"`
	MedalID  int64           `json:"medal_id"`
	Amount   decimal.Decimal `json:"amount"`
}
