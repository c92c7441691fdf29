package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medals/models"
	"medals/service"
)

// ScoreHandler serves OCR review and the score commit gate
type ScoreHandler struct {
	review service.ReviewService
	commit service.ScoreCommitService
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(review service.ReviewService, commit service.ScoreCommitService) *ScoreHandler {
	return &ScoreHandler{review: review, commit: commit}
}

// ReviewRequest carries recognised leaderboard lines
type ReviewRequest struct {
	Rows []models.OCRRow `json:"rows" binding:"required"`
}

// Review matches OCR rows against the roster without writing anything
func (h *ScoreHandler) Review(c *gin.Context) {
	eventID, ok := int64Param(c, "eventID")
	if !ok {
		return
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: %v", err)
		return
	}

	rows, err := h.review.Review(c.Request.Context(), eventID, req.Rows)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// CommitRequest carries rows for the commit gate
type CommitRequest struct {
	Rows []models.ScoreCommitRow `json:"rows" binding:"required"`
}

// Commit upserts scores. Rows without an actor are attributed to the caller.
func (h *ScoreHandler) Commit(c *gin.Context) {
	var req CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: %v", err)
		return
	}

	actor := actorFrom(c)
	for i := range req.Rows {
		if req.Rows[i].ActorID == "" {
			req.Rows[i].ActorID = actor
		}
	}

	result, err := h.commit.Commit(c.Request.Context(), req.Rows)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
