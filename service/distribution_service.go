package service

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"medals/events"
	"medals/models"
)

type distributionService struct {
	uowFactory UnitOfWorkFactory
	clock      clockwork.Clock
}

// NewDistributionService creates the weighted distribution engine
func NewDistributionService(uowFactory UnitOfWorkFactory, clock clockwork.Clock) DistributionService {
	return &distributionService{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Distribute pays out what is left of an (event, medal) pot in proportion to
// aggregated scores. The totals row stays locked until commit, so concurrent
// runs on the same pot serialize and each sees the previous run's result.
func (s *distributionService) Distribute(ctx context.Context, eventID, medalID int64, actorID string) (*models.DistributionResult, error) {
	if actorID == "" {
		return nil, fmt.Errorf("%w: actor is required", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	totals, err := uow.EventTotalsRepository().GetForUpdate(ctx, eventID, medalID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock event totals: %w", err)
	}
	if totals == nil {
		return nil, fmt.Errorf("event totals for event %d medal %d: %w", eventID, medalID, ErrNotFound)
	}

	remaining := totals.Remaining()
	if !remaining.IsPositive() {
		log.WithFields(log.Fields{
			"eventID":   eventID,
			"medalID":   medalID,
			"remaining": remaining.String(),
		}).Info("Distribution skipped: nothing remaining")
		return noopDistribution(models.NoopReasonNoRemaining, remaining), nil
	}

	scores, err := AggregateScores(ctx, uow, eventID, totals.MinScoreForRaffle)
	if err != nil {
		return nil, err
	}

	plan, err := Allocate(scores, remaining)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate event %d medal %d: %w", eventID, medalID, err)
	}
	if len(plan.Allocations) == 0 {
		log.WithFields(log.Fields{
			"eventID":   eventID,
			"medalID":   medalID,
			"threshold": totals.MinScoreForRaffle.String(),
		}).Info("Distribution skipped: no qualifying scores")
		return noopDistribution(models.NoopReasonNoScores, remaining), nil
	}

	if totals.Consumed().Add(plan.Total).GreaterThan(totals.TotalAmount) {
		return nil, fmt.Errorf("%w: distributing %s would exceed pot %s (consumed %s)",
			ErrInvariantViolation, plan.Total, totals.TotalAmount, totals.Consumed())
	}

	now := s.clock.Now()
	eventRef := eventID
	for _, alloc := range plan.Allocations {
		if !alloc.Amount.IsPositive() {
			continue
		}
		tx := &models.LedgerTransaction{
			PlayerID:        alloc.PlayerID,
			MedalID:         medalID,
			EventID:         &eventRef,
			Amount:          alloc.Amount,
			TransactionType: models.TransactionTypeWeightedDistribution,
			Description:     fmt.Sprintf("Weighted distribution for event %d", eventID),
			Actor:           actorID,
			CreatedAt:       now,
		}
		if err := RecordLedgerTransaction(ctx, uow, tx); err != nil {
			return nil, fmt.Errorf("failed to pay player %d: %w", alloc.PlayerID, err)
		}
	}

	if plan.Total.IsPositive() {
		if err := uow.EventTotalsRepository().AddDistributed(ctx, eventID, medalID, plan.Total); err != nil {
			return nil, fmt.Errorf("failed to update distributed amount: %w", err)
		}
	}

	result := &models.DistributionResult{
		Status:          models.SettlementStatusOK,
		Players:         plan.Recipients(),
		RemainingBefore: remaining,
		DistributedNow:  plan.Total,
		RemainingAfter:  remaining.Sub(plan.Total),
		CappedPlayers:   plan.CappedPlayers,
		Allocations:     plan.Allocations,
	}

	uow.EventBus().Publish(events.DistributionCompletedEvent{
		EventID:        eventID,
		MedalID:        medalID,
		Actor:          actorID,
		Players:        result.Players,
		CappedPlayers:  result.CappedPlayers,
		DistributedNow: result.DistributedNow,
		RemainingAfter: result.RemainingAfter,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit distribution: %w", err)
	}

	log.WithFields(log.Fields{
		"eventID":         eventID,
		"medalID":         medalID,
		"actor":           actorID,
		"players":         result.Players,
		"cap":             plan.Cap.String(),
		"cappedPlayers":   result.CappedPlayers,
		"remainingBefore": remaining.String(),
		"distributedNow":  plan.Total.String(),
	}).Info("Weighted distribution completed")

	return result, nil
}

func noopDistribution(reason models.NoopReason, remaining decimal.Decimal) *models.DistributionResult {
	return &models.DistributionResult{
		Status:    models.SettlementStatusNoop,
		Reason:    reason,
		Remaining: remaining,
	}
}
