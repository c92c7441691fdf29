package handler

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"medals/service"
)

// SettlementHandler serves pots, distribution runs and raffles
type SettlementHandler struct {
	aggregation  service.AggregationService
	distribution service.DistributionService
	raffle       service.RaffleService
	totals       service.EventTotalsService
}

// NewSettlementHandler creates a new settlement handler
func NewSettlementHandler(aggregation service.AggregationService, distribution service.DistributionService, raffle service.RaffleService, totals service.EventTotalsService) *SettlementHandler {
	return &SettlementHandler{
		aggregation:  aggregation,
		distribution: distribution,
		raffle:       raffle,
		totals:       totals,
	}
}

func potParams(c *gin.Context) (int64, int64, bool) {
	eventID, ok := int64Param(c, "eventID")
	if !ok {
		return 0, 0, false
	}
	medalID, ok := int64Param(c, "medalID")
	if !ok {
		return 0, 0, false
	}
	return eventID, medalID, true
}

// Distribute runs a weighted distribution of the remaining pot
func (h *SettlementHandler) Distribute(c *gin.Context) {
	eventID, medalID, ok := potParams(c)
	if !ok {
		return
	}

	result, err := h.distribution.Distribute(c.Request.Context(), eventID, medalID, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RaffleRequest is the body of a raffle draw
type RaffleRequest struct {
	Winners int             `json:"winners" binding:"required"`
	Prize   decimal.Decimal `json:"prize"`
}

// Raffle draws weighted winners from the pot
func (h *SettlementHandler) Raffle(c *gin.Context) {
	eventID, medalID, ok := potParams(c)
	if !ok {
		return
	}

	var req RaffleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: %v", err)
		return
	}

	result, err := h.raffle.Draw(c.Request.Context(), service.RaffleRequest{
		EventID: eventID,
		MedalID: medalID,
		Winners: req.Winners,
		Prize:   req.Prize,
		ActorID: actorFrom(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// TotalsRequest is the body of a pot update
type TotalsRequest struct {
	TotalAmount       decimal.Decimal `json:"total_amount"`
	MinScoreForRaffle decimal.Decimal `json:"min_score_for_raffle"`
}

// SetTotals creates or resizes a pot
func (h *SettlementHandler) SetTotals(c *gin.Context) {
	eventID, medalID, ok := potParams(c)
	if !ok {
		return
	}

	var req TotalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: %v", err)
		return
	}

	totals, err := h.totals.SetTotals(c.Request.Context(), eventID, medalID, req.TotalAmount, req.MinScoreForRaffle)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// GetTotals returns a pot
func (h *SettlementHandler) GetTotals(c *gin.Context) {
	eventID, medalID, ok := potParams(c)
	if !ok {
		return
	}

	totals, err := h.totals.GetTotals(c.Request.Context(), eventID, medalID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, totals)
}

// Reconcile compares a pot's counters with its ledger rows
func (h *SettlementHandler) Reconcile(c *gin.Context) {
	eventID, medalID, ok := potParams(c)
	if !ok {
		return
	}

	rec, err := h.totals.Reconcile(c.Request.Context(), eventID, medalID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// AggregateEntry is one payout-eligible player's summed score
type AggregateEntry struct {
	PlayerID int64           `json:"player_id"`
	Score    decimal.Decimal `json:"score"`
}

// Aggregate lists aggregated scores for an event, highest first
func (h *SettlementHandler) Aggregate(c *gin.Context) {
	eventID, ok := int64Param(c, "eventID")
	if !ok {
		return
	}

	threshold := decimal.Zero
	if raw := c.Query("min_score"); raw != "" {
		v, err := service.ParseThreshold(raw)
		if err != nil {
			badRequest(c, "invalid min_score")
			return
		}
		threshold = v
	}

	scores, err := h.aggregation.Aggregate(c.Request.Context(), eventID, threshold)
	if err != nil {
		respondError(c, err)
		return
	}

	entries := make([]AggregateEntry, 0, len(scores))
	for playerID, score := range scores {
		entries = append(entries, AggregateEntry{PlayerID: playerID, Score: score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if cmp := entries[i].Score.Cmp(entries[j].Score); cmp != 0 {
			return cmp > 0
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})

	c.JSON(http.StatusOK, gin.H{
		"event_id":  eventID,
		"min_score": threshold,
		"players":   entries,
	})
}
