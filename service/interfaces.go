package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"medals/events"
	"medals/models"
)

// PlayerRepository defines the interface for roster data access
type PlayerRepository interface {
	// Create inserts a new player, filling ID and timestamps
	Create(ctx context.Context, player *models.Player) error

	// GetByID returns a player including soft-deleted ones, or nil if absent
	GetByID(ctx context.Context, id int64) (*models.Player, error)

	// ListActive returns every player that has not been soft-deleted
	ListActive(ctx context.Context) ([]*models.Player, error)

	// ListAlts returns live players whose main is mainID
	ListAlts(ctx context.Context, mainID int64) ([]*models.Player, error)

	// SetMain links an alt to its main, or clears the link when mainID is nil
	SetMain(ctx context.Context, playerID int64, mainID *int64) error

	// SoftDelete stamps deleted_at
	SoftDelete(ctx context.Context, id int64, at time.Time) error
}

// EventRepository defines the interface for event data access
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	SoftDelete(ctx context.Context, id int64, at time.Time) error
}

// MedalRepository defines the interface for medal type data access
type MedalRepository interface {
	Create(ctx context.Context, medal *models.Medal) error
	GetByID(ctx context.Context, id int64) (*models.Medal, error)
}

// ScoreRepository defines the interface for score data access
type ScoreRepository interface {
	// Upsert writes a score keyed by (event, player), overwriting any previous value
	Upsert(ctx context.Context, score *models.Score) error

	// ListByEvent returns every score of an event
	ListByEvent(ctx context.Context, eventID int64) ([]*models.Score, error)

	// ListQualifying returns verified scores >= threshold of live players
	ListQualifying(ctx context.Context, eventID int64, threshold decimal.Decimal) ([]*models.QualifyingScore, error)
}

// EventTotalsRepository defines the interface for pot bookkeeping
type EventTotalsRepository interface {
	// Get returns the totals row or nil if absent
	Get(ctx context.Context, eventID, medalID int64) (*models.EventTotals, error)

	// GetForUpdate returns the totals row locked for the rest of the transaction, or nil if absent
	GetForUpdate(ctx context.Context, eventID, medalID int64) (*models.EventTotals, error)

	// Upsert sets total_amount and min_score_for_raffle, creating the row if needed
	Upsert(ctx context.Context, totals *models.EventTotals) error

	// AddDistributed increments distributed_amount
	AddDistributed(ctx context.Context, eventID, medalID int64, amount decimal.Decimal) error

	// AddRaffleUsed increments raffle_amount_used
	AddRaffleUsed(ctx context.Context, eventID, medalID int64, amount decimal.Decimal) error
}

// LedgerRepository defines the interface for the append-only ledger
type LedgerRepository interface {
	// Record appends a transaction, filling its ID
	Record(ctx context.Context, tx *models.LedgerTransaction) error

	// GetByPlayer returns the newest transactions of a player first
	GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*models.LedgerTransaction, error)

	// Balance sums a player's transactions of one medal type
	Balance(ctx context.Context, playerID, medalID int64) (decimal.Decimal, error)

	// SumByEvent sums the transactions of one type recorded against an event's pot
	SumByEvent(ctx context.Context, eventID, medalID int64, txType models.TransactionType) (decimal.Decimal, error)
}

// EventPublisher accepts domain events raised inside a unit of work
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork scopes repositories to one database transaction
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and releases pending events
	Commit() error

	// Rollback rolls back the transaction. Safe to call after Commit.
	Rollback() error

	PlayerRepository() PlayerRepository
	EventRepository() EventRepository
	MedalRepository() MedalRepository
	ScoreRepository() ScoreRepository
	EventTotalsRepository() EventTotalsRepository
	LedgerRepository() LedgerRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// AggregationService exposes score aggregation outside a settlement
type AggregationService interface {
	// Aggregate maps payout-eligible player ids to their summed qualifying score
	Aggregate(ctx context.Context, eventID int64, threshold decimal.Decimal) (map[int64]decimal.Decimal, error)
}

// DistributionService runs the capped proportional distribution of a pot
type DistributionService interface {
	Distribute(ctx context.Context, eventID, medalID int64, actorID string) (*models.DistributionResult, error)
}

// RaffleService draws weighted winners out of a pot
type RaffleService interface {
	Draw(ctx context.Context, req RaffleRequest) (*models.RaffleResult, error)
}

// ScoreCommitService is the ingestion boundary for reviewed scores
type ScoreCommitService interface {
	Commit(ctx context.Context, rows []models.ScoreCommitRow) (*models.CommitResult, error)
}

// ReviewService matches OCR output against the roster
type ReviewService interface {
	Review(ctx context.Context, eventID int64, rows []models.OCRRow) ([]models.ReviewedRow, error)
}

// LedgerService reads balances and records manual corrections
type LedgerService interface {
	Balance(ctx context.Context, playerID, medalID int64) (*models.Balance, error)
	History(ctx context.Context, playerID int64, limit int) ([]*models.LedgerTransaction, error)
	Adjust(ctx context.Context, req AdjustmentRequest) (*models.LedgerTransaction, error)
}

// EventTotalsService manages pots
type EventTotalsService interface {
	SetTotals(ctx context.Context, eventID, medalID int64, total, minScore decimal.Decimal) (*models.EventTotals, error)
	GetTotals(ctx context.Context, eventID, medalID int64) (*models.EventTotals, error)

	// Reconcile checks the pot counters against the ledger
	Reconcile(ctx context.Context, eventID, medalID int64) (*models.PotReconciliation, error)
}

// RosterService manages players, events and medal types
type RosterService interface {
	CreatePlayer(ctx context.Context, name string, aliases []string) (*models.Player, error)
	ListPlayers(ctx context.Context) ([]*models.Player, error)
	LinkAlt(ctx context.Context, altID int64, mainID *int64) (*models.Player, error)
	SoftDeletePlayer(ctx context.Context, playerID int64) error
	CreateEvent(ctx context.Context, name string, date time.Time) (*models.Event, error)
	SoftDeleteEvent(ctx context.Context, eventID int64) error
	CreateMedal(ctx context.Context, name string, value int64) (*models.Medal, error)
}
