package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// AggregateScores maps each payout-eligible player to the sum of its own
// qualifying score and those of its alts. An empty map means nobody
// qualified.
func AggregateScores(ctx context.Context, uow UnitOfWork, eventID int64, threshold decimal.Decimal) (map[int64]decimal.Decimal, error) {
	rows, err := uow.ScoreRepository().ListQualifying(ctx, eventID, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to list qualifying scores for event %d: %w", eventID, err)
	}

	totals := make(map[int64]decimal.Decimal, len(rows))
	for _, row := range rows {
		payoutID := row.PlayerID
		if row.IsAlt && row.MainPlayerID != nil {
			payoutID = *row.MainPlayerID
		}
		totals[payoutID] = totals[payoutID].Add(row.Score)
	}

	log.WithFields(log.Fields{
		"eventID":   eventID,
		"threshold": threshold.String(),
		"rows":      len(rows),
		"players":   len(totals),
	}).Debug("Aggregated event scores")

	return totals, nil
}

type aggregationService struct {
	uowFactory UnitOfWorkFactory
}

// NewAggregationService creates a read-only aggregation service
func NewAggregationService(uowFactory UnitOfWorkFactory) AggregationService {
	return &aggregationService{uowFactory: uowFactory}
}

func (s *aggregationService) Aggregate(ctx context.Context, eventID int64, threshold decimal.Decimal) (map[int64]decimal.Decimal, error) {
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

	return AggregateScores(ctx, uow, eventID, threshold)
}
