package cmd

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"medals/config"
	"medals/database"
	"medals/events"
	"medals/handler"
	"medals/repository"
	"medals/service"
)

// app holds the wiring shared by the server and the one-shot commands
type app struct {
	cfg      *config.Config
	db       *database.DB
	eventBus *events.Bus
	services handler.Services
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	url, err := cfg.DatabaseConnectionURL()
	if err != nil {
		return nil, err
	}

	log.Info("Connecting to database...")
	db, err := database.NewConnectionWithOptions(ctx, url, database.PoolOptions{MaxConns: cfg.DBMaxConns})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	clock := clockwork.NewRealClock()

	return &app{
		cfg:      cfg,
		db:       db,
		eventBus: eventBus,
		services: handler.Services{
			Aggregation:  service.NewAggregationService(uowFactory),
			Distribution: service.NewDistributionService(uowFactory, clock),
			Raffle:       service.NewRaffleService(uowFactory, clock),
			ScoreCommit:  service.NewScoreCommitService(uowFactory),
			Review:       service.NewReviewService(uowFactory, cfg.OCRConfidenceThreshold),
			Ledger:       service.NewLedgerService(uowFactory, clock),
			EventTotals:  service.NewEventTotalsService(uowFactory),
			Roster:       service.NewRosterService(uowFactory, clock),
		},
	}, nil
}

// close waits for in-flight event handlers before releasing the pool
func (a *app) close() {
	a.eventBus.Wait()
	a.db.Close()
}
