package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medals/service"
)

// RosterHandler serves players, events and medal types
type RosterHandler struct {
	roster service.RosterService
}

// NewRosterHandler creates a new roster handler
func NewRosterHandler(roster service.RosterService) *RosterHandler {
	return &RosterHandler{roster: roster}
}

type createPlayerRequest struct {
	Name    string   `json:"name" binding:"required"`
	Aliases []string `json:"aliases"`
}

func (h *RosterHandler) CreatePlayer(c *gin.Context) {
	var req createPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: %v", err)
		return
	}

	player, err := h.roster.CreatePlayer(c.Request.Context(), req.Name, req.Aliases)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, player)
}

func (h *RosterHandler) ListPlayers(c *gin.Context) {
	players, err := h.roster.ListPlayers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"players": players})
}

// linkAltRequest sets or clears (null) the main of a player
type linkAltRequest struct {
	MainPlayerID *int64 `json:"main_player_id"`
}

func (h *RosterHandler) LinkAlt(c *gin.Context) {
	playerID, ok := int64Param(c, "playerID")
	if !ok {
		return
	}

	var req linkAltRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: %v", err)
		return
	}

	player, err := h.roster.LinkAlt(c.Request.Context(), playerID, req.MainPlayerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, player)
}

func (h *RosterHandler) DeletePlayer(c *gin.Context) {
	playerID, ok := int64Param(c, "playerID")
	if !ok {
		return
	}
	if err := h.roster.SoftDeletePlayer(c.Request.Context(), playerID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createEventRequest struct {
	Name string    `json:"name" binding:"required"`
	Date time.Time `json:"date"`
}

func (h *RosterHandler) CreateEvent(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: %v", err)
		return
	}

	event, err := h.roster.CreateEvent(c.Request.Context(), req.Name, req.Date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *RosterHandler) DeleteEvent(c *gin.Context) {
	eventID, ok := int64Param(c, "eventID")
	if !ok {
		return
	}
	if err := h.roster.SoftDeleteEvent(c.Request.Context(), eventID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createMedalRequest struct {
	Name  string `json:"name" binding:"required"`
	Value int64  `json:"value"`
}

func (h *RosterHandler) CreateMedal(c *gin.Context) {
	var req createMedalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request: %v", err)
		return
	}

	medal, err := h.roster.CreateMedal(c.Request.Context(), req.Name, req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, medal)
}
