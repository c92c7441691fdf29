package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"medals/models"
)

type eventTotalsService struct {
	uowFactory UnitOfWorkFactory
}

// NewEventTotalsService creates a service managing (event, medal) pots
func NewEventTotalsService(uowFactory UnitOfWorkFactory) EventTotalsService {
	return &eventTotalsService{uowFactory: uowFactory}
}

// SetTotals creates or resizes a pot. A pot can never shrink below what has
// already been paid out of it.
func (s *eventTotalsService) SetTotals(ctx context.Context, eventID, medalID int64, total, minScore decimal.Decimal) (*models.EventTotals, error) {
	total, ok := wholeAmount(total)
	if !ok || total.IsNegative() {
		return nil, fmt.Errorf("%w: total must be a non-negative whole amount", ErrInvalidInput)
	}
	minScore, ok = wholeAmount(minScore)
	if !ok || minScore.IsNegative() {
		return nil, fmt.Errorf("%w: min score must be a non-negative whole number", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	event, err := uow.EventRepository().GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if event == nil || event.IsDeleted() {
		return nil, fmt.Errorf("event %d: %w", eventID, ErrNotFound)
	}
	medal, err := uow.MedalRepository().GetByID(ctx, medalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get medal: %w", err)
	}
	if medal == nil {
		return nil, fmt.Errorf("medal %d: %w", medalID, ErrNotFound)
	}

	existing, err := uow.EventTotalsRepository().GetForUpdate(ctx, eventID, medalID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock event totals: %w", err)
	}
	totals := &models.EventTotals{
		EventID:           eventID,
		MedalID:           medalID,
		TotalAmount:       total,
		MinScoreForRaffle: minScore,
	}
	if existing != nil {
		if total.LessThan(existing.Consumed()) {
			return nil, fmt.Errorf("%w: total %s is below the %s already paid out", ErrInvalidInput, total, existing.Consumed())
		}
		totals.RaffleAmountUsed = existing.RaffleAmountUsed
		totals.DistributedAmount = existing.DistributedAmount
	}

	if err := uow.EventTotalsRepository().Upsert(ctx, totals); err != nil {
		return nil, fmt.Errorf("failed to save event totals: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit event totals: %w", err)
	}

	log.WithFields(log.Fields{
		"eventID":  eventID,
		"medalID":  medalID,
		"total":    total.String(),
		"minScore": minScore.String(),
	}).Info("Event totals set")

	return totals, nil
}

func (s *eventTotalsService) GetTotals(ctx context.Context, eventID, medalID int64) (*models.EventTotals, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	totals, err := uow.EventTotalsRepository().Get(ctx, eventID, medalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event totals: %w", err)
	}
	if totals == nil {
		return nil, fmt.Errorf("event totals for event %d medal %d: %w", eventID, medalID, ErrNotFound)
	}
	return totals, nil
}

func (s *eventTotalsService) Reconcile(ctx context.Context, eventID, medalID int64) (*models.PotReconciliation, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	totals, err := uow.EventTotalsRepository().Get(ctx, eventID, medalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event totals: %w", err)
	}
	if totals == nil {
		return nil, fmt.Errorf("event totals for event %d medal %d: %w", eventID, medalID, ErrNotFound)
	}

	ledger := uow.LedgerRepository()
	distributed, err := ledger.SumByEvent(ctx, eventID, medalID, models.TransactionTypeWeightedDistribution)
	if err != nil {
		return nil, err
	}
	raffle, err := ledger.SumByEvent(ctx, eventID, medalID, models.TransactionTypeRaffleWin)
	if err != nil {
		return nil, err
	}

	rec := &models.PotReconciliation{
		Totals:            totals,
		LedgerDistributed: distributed,
		LedgerRaffle:      raffle,
		Balanced:          distributed.Equal(totals.DistributedAmount) && raffle.Equal(totals.RaffleAmountUsed),
	}
	if !rec.Balanced {
		log.WithFields(log.Fields{
			"eventID":           eventID,
			"medalID":           medalID,
			"distributedAmount": totals.DistributedAmount.String(),
			"ledgerDistributed": distributed.String(),
			"raffleAmountUsed":  totals.RaffleAmountUsed.String(),
			"ledgerRaffle":      raffle.String(),
		}).Warn("Pot counters disagree with ledger")
	}
	return rec, nil
}
