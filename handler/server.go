package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"medals/observability"
	"medals/service"
)

const (
	// ActorHeader carries the id of the operator issuing a request
	ActorHeader = "X-Actor-ID"

	actorContextKey = "actorID"
)

// Services bundles what the HTTP API calls into
type Services struct {
	Aggregation  service.AggregationService
	Distribution service.DistributionService
	Raffle       service.RaffleService
	ScoreCommit  service.ScoreCommitService
	Review       service.ReviewService
	Ledger       service.LedgerService
	EventTotals  service.EventTotalsService
	Roster       service.RosterService
}

// NewRouter builds the gin engine. metrics may be nil.
func NewRouter(svc Services, metrics *observability.MetricsProvider) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(metrics))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	settlement := NewSettlementHandler(svc.Aggregation, svc.Distribution, svc.Raffle, svc.EventTotals)
	scores := NewScoreHandler(svc.Review, svc.ScoreCommit)
	ledger := NewLedgerHandler(svc.Ledger)
	roster := NewRosterHandler(svc.Roster)

	api := r.Group("/api/v1")
	{
		pot := api.Group("/events/:eventID/medals/:medalID")
		pot.POST("/distribute", RequireActor(), settlement.Distribute)
		pot.POST("/raffle", RequireActor(), settlement.Raffle)
		pot.PUT("/totals", RequireActor(), settlement.SetTotals)
		pot.GET("/totals", settlement.GetTotals)
		pot.GET("/reconcile", settlement.Reconcile)

		api.GET("/events/:eventID/aggregate", settlement.Aggregate)
		api.POST("/events/:eventID/review", scores.Review)
		api.POST("/scores/commit", RequireActor(), scores.Commit)

		api.GET("/players/:playerID/balance", ledger.Balance)
		api.GET("/players/:playerID/transactions", ledger.History)
		api.POST("/ledger/adjustments", RequireActor(), ledger.Adjust)

		api.POST("/players", RequireActor(), roster.CreatePlayer)
		api.GET("/players", roster.ListPlayers)
		api.PUT("/players/:playerID/main", RequireActor(), roster.LinkAlt)
		api.DELETE("/players/:playerID", RequireActor(), roster.DeletePlayer)
		api.POST("/events", RequireActor(), roster.CreateEvent)
		api.DELETE("/events/:eventID", RequireActor(), roster.DeleteEvent)
		api.POST("/medals", RequireActor(), roster.CreateMedal)
	}

	return r
}

// RequireActor rejects requests without an X-Actor-ID header and stores
// the trimmed value in the gin context. Role checks happen upstream.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(ActorHeader))
		if actor == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": ActorHeader + " header is required"})
			return
		}
		c.Set(actorContextKey, actor)
		c.Next()
	}
}

func actorFrom(c *gin.Context) string {
	return c.GetString(actorContextKey)
}

func requestLogger(metrics *observability.MetricsProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		if metrics != nil {
			metrics.RecordHTTPRequest(c.Request.Method, route, status, elapsed)
		}

		entry := log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"route":    route,
			"status":   status,
			"duration": elapsed.String(),
		})
		if status >= http.StatusInternalServerError {
			entry.Error("Request failed")
		} else {
			entry.Debug("Request served")
		}
	}
}
