package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// SettlementStatus is the outcome of a raffle or distribution run
type SettlementStatus string

const (
	SettlementStatusOK   SettlementStatus = "ok"
	SettlementStatusNoop SettlementStatus = "noop"
)

// NoopReason explains a run that changed nothing
type NoopReason string

const (
	NoopReasonNoRemaining NoopReason = "no_remaining"
	NoopReasonNoScores    NoopReason = "no_scores"
)

// Allocation is one player's share of a settlement
type Allocation struct {
	PlayerID int64           `json:"player_id"`
	Amount   decimal.Decimal `json:"amount"`
	Capped   bool            `json:"capped,omitempty"`
}

// DistributionResult is the structured outcome of a weighted distribution run
type DistributionResult struct {
	Status          SettlementStatus
	Reason          NoopReason
	Remaining       decimal.Decimal
	Players         int
	RemainingBefore decimal.Decimal
	DistributedNow  decimal.Decimal
	RemainingAfter  decimal.Decimal
	CappedPlayers   int
	Allocations     []Allocation
}

// IsNoop reports whether the run left the pot and ledger untouched
func (r *DistributionResult) IsNoop() bool {
	return r.Status == SettlementStatusNoop
}

// MarshalJSON emits the noop and ok result shapes separately
func (r DistributionResult) MarshalJSON() ([]byte, error) {
	if r.Status == SettlementStatusNoop {
		return json.Marshal(struct {
			Status    SettlementStatus `json:"status"`
			Reason    NoopReason       `json:"reason"`
			Remaining decimal.Decimal  `json:"remaining"`
		}{r.Status, r.Reason, r.Remaining})
	}
	return json.Marshal(struct {
		Status          SettlementStatus `json:"status"`
		Players         int              `json:"players"`
		RemainingBefore decimal.Decimal  `json:"remaining_before"`
		DistributedNow  decimal.Decimal  `json:"distributed_now"`
		RemainingAfter  decimal.Decimal  `json:"remaining_after"`
		CappedPlayers   int              `json:"capped_players"`
	}{r.Status, r.Players, r.RemainingBefore, r.DistributedNow, r.RemainingAfter, r.CappedPlayers})
}

// RaffleResult is the outcome of a raffle draw
type RaffleResult struct {
	Status          SettlementStatus `json:"status"`
	Reason          NoopReason       `json:"reason,omitempty"`
	DrawID          string           `json:"draw_id,omitempty"`
	Winners         []Allocation     `json:"winners,omitempty"`
	Entrants        int              `json:"entrants"`
	PaidOut         decimal.Decimal  `json:"paid_out"`
	RemainingBefore decimal.Decimal  `json:"remaining_before"`
	RemainingAfter  decimal.Decimal  `json:"remaining_after"`
}
