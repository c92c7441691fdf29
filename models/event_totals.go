package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventTotals is the pot of one medal type for one event
type EventTotals struct {
	EventID           int64           `db:"event_id" json:"event_id"`
	MedalID           int64           `db:"medal_id" json:"medal_id"`
	TotalAmount       decimal.Decimal `db:"total_amount" json:"total_amount"`
	RaffleAmountUsed  decimal.Decimal `db:"raffle_amount_used" json:"raffle_amount_used"`
	DistributedAmount decimal.Decimal `db:"distributed_amount" json:"distributed_amount"`
	MinScoreForRaffle decimal.Decimal `db:"min_score_for_raffle" json:"min_score_for_raffle"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// Remaining is the part of the pot not yet consumed by the raffle or by
// earlier distribution runs. It can be negative only if the row is corrupt.
func (t *EventTotals) Remaining() decimal.Decimal {
	return t.TotalAmount.Sub(t.RaffleAmountUsed).Sub(t.DistributedAmount)
}

// Consumed is everything already paid out of the pot
func (t *EventTotals) Consumed() decimal.Decimal {
	return t.RaffleAmountUsed.Add(t.DistributedAmount)
}

// PotReconciliation compares a pot's consumed counters with the ledger rows
// written against it
type PotReconciliation struct {
	Totals            *EventTotals    `json:"totals"`
	LedgerDistributed decimal.Decimal `json:"ledger_distributed"`
	LedgerRaffle      decimal.Decimal `json:"ledger_raffle"`
	Balanced          bool            `json:"balanced"`
}
