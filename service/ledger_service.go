package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"medals/models"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// AdjustmentRequest is a manual correction to a player's balance
type AdjustmentRequest struct {
	PlayerID    int64
	MedalID     int64
	EventID     *int64
	Amount      decimal.Decimal
	Description string
	ActorID     string
}

type ledgerService struct {
	uowFactory UnitOfWorkFactory
	clock      clockwork.Clock
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory, clock clockwork.Clock) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

func (s *ledgerService) Balance(ctx context.Context, playerID, medalID int64) (*models.Balance, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, fmt.Errorf("player %d: %w", playerID, ErrNotFound)
	}

	amount, err := uow.LedgerRepository().Balance(ctx, playerID, medalID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum balance: %w", err)
	}

	return &models.Balance{PlayerID: playerID, MedalID: medalID, Amount: amount}, nil
}

func (s *ledgerService) History(ctx context.Context, playerID int64, limit int) ([]*models.LedgerTransaction, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil {
		return nil, fmt.Errorf("player %d: %w", playerID, ErrNotFound)
	}

	history, err := uow.LedgerRepository().GetByPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger history: %w", err)
	}
	return history, nil
}

// Adjust records an offsetting or corrective manual transaction. Only live
// main players can hold balances, and a deduction may not take a balance
// below zero.
func (s *ledgerService) Adjust(ctx context.Context, req AdjustmentRequest) (*models.LedgerTransaction, error) {
	amount, ok := wholeAmount(req.Amount)
	if !ok || amount.IsZero() {
		return nil, fmt.Errorf("%w: amount must be a non-zero whole number", ErrInvalidInput)
	}
	req.Amount = amount
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if req.ActorID == "" {
		return nil, fmt.Errorf("%w: actor is required", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	player, err := uow.PlayerRepository().GetByID(ctx, req.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	if player == nil || player.IsDeleted() {
		return nil, fmt.Errorf("player %d: %w", req.PlayerID, ErrNotFound)
	}
	if player.IsAlt {
		return nil, fmt.Errorf("%w: player %d is an alt; adjust its main instead", ErrInvalidInput, req.PlayerID)
	}

	medal, err := uow.MedalRepository().GetByID(ctx, req.MedalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get medal: %w", err)
	}
	if medal == nil {
		return nil, fmt.Errorf("medal %d: %w", req.MedalID, ErrNotFound)
	}

	if req.Amount.IsNegative() {
		balance, err := uow.LedgerRepository().Balance(ctx, req.PlayerID, req.MedalID)
		if err != nil {
			return nil, fmt.Errorf("failed to sum balance: %w", err)
		}
		if balance.Add(req.Amount).IsNegative() {
			return nil, fmt.Errorf("%w: balance %s cannot cover %s", ErrInvalidInput, balance, req.Amount)
		}
	}

	tx := &models.LedgerTransaction{
		PlayerID:        req.PlayerID,
		MedalID:         req.MedalID,
		EventID:         req.EventID,
		Amount:          req.Amount,
		TransactionType: models.TransactionTypeManualAdjustment,
		Description:     description,
		Actor:           req.ActorID,
		CreatedAt:       s.clock.Now(),
	}
	if err := RecordLedgerTransaction(ctx, uow, tx); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit adjustment: %w", err)
	}

	log.WithFields(log.Fields{
		"playerID": req.PlayerID,
		"medalID":  req.MedalID,
		"amount":   req.Amount.String(),
		"actor":    req.ActorID,
	}).Info("Manual ledger adjustment recorded")

	return tx, nil
}
