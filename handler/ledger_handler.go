package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"medals/service"
)

// LedgerHandler serves balances, history and manual adjustments
type LedgerHandler struct {
	ledger service.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledger service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledger: ledger}
}

// Balance returns the derived balance of one medal type
func (h *LedgerHandler) Balance(c *gin.Context) {
	playerID, ok := int64Param(c, "playerID")
	if !ok {
		return
	}
	medalID, ok := int64Query(c, "medal_id")
	if !ok {
		return
	}

	balance, err := h.ledger.Balance(c.Request.Context(), playerID, medalID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// History returns a player's newest transactions
func (h *LedgerHandler) History(c *gin.Context) {
	playerID, ok := int64Param(c, "playerID")
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(service.DefaultHistoryLimit)))
	if err != nil {
		badRequest(c, "invalid limit")
		return
	}

	txs, err := h.ledger.History(c.Request.Context(), playerID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// AdjustmentRequest is the body of a manual ledger correction
type AdjustmentRequest struct {
	PlayerID    int64           `json:"player_id" binding:"required"`
	MedalID     int64           `json:"medal_id" binding:"required"`
	EventID     *int64          `json:"event_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" binding:"required"`
}

// Adjust records a manual adjustment
func (h *LedgerHandler) Adjust(c *gin.Context) {
	var req AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: %v", err)
		return
	}

	tx, err := h.ledger.Adjust(c.Request.Context(), service.AdjustmentRequest{
		PlayerID:    req.PlayerID,
		MedalID:     req.MedalID,
		EventID:     req.EventID,
		Amount:      req.Amount,
		Description: req.Description,
		ActorID:     actorFrom(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tx)
}
