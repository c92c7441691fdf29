package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"medals/events"
	"medals/models"
)

// RaffleRequest describes one raffle draw against a pot
type RaffleRequest struct {
	EventID int64
	MedalID int64
	Winners int
	Prize   decimal.Decimal
	ActorID string
}

func (r RaffleRequest) validate() error {
	if r.Winners <= 0 {
		return fmt.Errorf("%w: winners must be positive", ErrInvalidInput)
	}
	if prize, ok := wholeAmount(r.Prize); !ok || !prize.IsPositive() {
		return fmt.Errorf("%w: prize must be a positive whole amount", ErrInvalidInput)
	}
	if r.ActorID == "" {
		return fmt.Errorf("%w: actor is required", ErrInvalidInput)
	}
	return nil
}

// randIntFunc returns a uniform value in [0, max)
type randIntFunc func(max *big.Int) (*big.Int, error)

func cryptoRandInt(max *big.Int) (*big.Int, error) {
	return rand.Int(rand.Reader, max)
}

type raffleService struct {
	uowFactory UnitOfWorkFactory
	clock      clockwork.Clock
	randInt    randIntFunc
}

// NewRaffleService creates a raffle engine drawing with crypto/rand
func NewRaffleService(uowFactory UnitOfWorkFactory, clock clockwork.Clock) RaffleService {
	return &raffleService{
		uowFactory: uowFactory,
		clock:      clock,
		randInt:    cryptoRandInt,
	}
}

type raffleEntrant struct {
	playerID int64
	weight   *big.Int
}

// Draw picks distinct winners weighted by aggregated score and pays each
// the same prize. It takes the same row lock as a distribution run.
func (s *raffleService) Draw(ctx context.Context, req RaffleRequest) (*models.RaffleResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	req.Prize, _ = wholeAmount(req.Prize)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	totals, err := uow.EventTotalsRepository().GetForUpdate(ctx, req.EventID, req.MedalID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock event totals: %w", err)
	}
	if totals == nil {
		return nil, fmt.Errorf("event totals for event %d medal %d: %w", req.EventID, req.MedalID, ErrNotFound)
	}

	remaining := totals.Remaining()
	if !remaining.IsPositive() {
		return &models.RaffleResult{
			Status:          models.SettlementStatusNoop,
			Reason:          models.NoopReasonNoRemaining,
			RemainingBefore: remaining,
			RemainingAfter:  remaining,
		}, nil
	}

	scores, err := AggregateScores(ctx, uow, req.EventID, totals.MinScoreForRaffle)
	if err != nil {
		return nil, err
	}
	entrants := raffleEntrants(scores)
	if len(entrants) == 0 {
		return &models.RaffleResult{
			Status:          models.SettlementStatusNoop,
			Reason:          models.NoopReasonNoScores,
			RemainingBefore: remaining,
			RemainingAfter:  remaining,
		}, nil
	}

	count := req.Winners
	if count > len(entrants) {
		count = len(entrants)
	}
	payout := req.Prize.Mul(decimal.NewFromInt(int64(count)))
	if payout.GreaterThan(remaining) {
		return nil, fmt.Errorf("%w: %d winners at %s need %s, %s remaining",
			ErrInsufficientPot, count, req.Prize, payout, remaining)
	}

	winners, err := s.drawWinners(entrants, count)
	if err != nil {
		return nil, err
	}

	drawID := uuid.New().String()
	now := s.clock.Now()
	eventRef := req.EventID
	result := &models.RaffleResult{
		Status:          models.SettlementStatusOK,
		DrawID:          drawID,
		Entrants:        len(entrants),
		PaidOut:         payout,
		RemainingBefore: remaining,
		RemainingAfter:  remaining.Sub(payout),
	}
	winnerIDs := make([]int64, 0, len(winners))
	for _, playerID := range winners {
		tx := &models.LedgerTransaction{
			PlayerID:        playerID,
			MedalID:         req.MedalID,
			EventID:         &eventRef,
			Amount:          req.Prize,
			TransactionType: models.TransactionTypeRaffleWin,
			Description:     fmt.Sprintf("Raffle %s for event %d", drawID, req.EventID),
			Actor:           req.ActorID,
			CreatedAt:       now,
		}
		if err := RecordLedgerTransaction(ctx, uow, tx); err != nil {
			return nil, fmt.Errorf("failed to pay raffle winner %d: %w", playerID, err)
		}
		result.Winners = append(result.Winners, models.Allocation{PlayerID: playerID, Amount: req.Prize})
		winnerIDs = append(winnerIDs, playerID)
	}

	if totals.Consumed().Add(payout).GreaterThan(totals.TotalAmount) {
		return nil, fmt.Errorf("%w: raffle payout %s would exceed pot %s", ErrInvariantViolation, payout, totals.TotalAmount)
	}
	if err := uow.EventTotalsRepository().AddRaffleUsed(ctx, req.EventID, req.MedalID, payout); err != nil {
		return nil, fmt.Errorf("failed to update raffle amount: %w", err)
	}

	uow.EventBus().Publish(events.RaffleDrawnEvent{
		DrawID:    drawID,
		EventID:   req.EventID,
		MedalID:   req.MedalID,
		Actor:     req.ActorID,
		WinnerIDs: winnerIDs,
		PaidOut:   payout,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit raffle: %w", err)
	}

	log.WithFields(log.Fields{
		"drawID":   drawID,
		"eventID":  req.EventID,
		"medalID":  req.MedalID,
		"winners":  winnerIDs,
		"entrants": len(entrants),
		"paidOut":  payout.String(),
	}).Info("Raffle drawn")

	return result, nil
}

// raffleEntrants orders entrants by player id so a given random sequence
// always selects the same winners
func raffleEntrants(scores map[int64]decimal.Decimal) []raffleEntrant {
	entrants := make([]raffleEntrant, 0, len(scores))
	for playerID, score := range scores {
		if !score.IsPositive() {
			continue
		}
		entrants = append(entrants, raffleEntrant{playerID: playerID, weight: score.Floor().BigInt()})
	}
	sort.Slice(entrants, func(i, j int) bool {
		return entrants[i].playerID < entrants[j].playerID
	})
	return entrants
}

// drawWinners samples count distinct entrants without replacement,
// each pick weighted by score
func (s *raffleService) drawWinners(entrants []raffleEntrant, count int) ([]int64, error) {
	pool := make([]raffleEntrant, len(entrants))
	copy(pool, entrants)

	total := new(big.Int)
	for _, e := range pool {
		total.Add(total, e.weight)
	}

	winners := make([]int64, 0, count)
	for len(winners) < count {
		if total.Sign() <= 0 {
			break
		}
		n, err := s.randInt(total)
		if err != nil {
			return nil, fmt.Errorf("failed to draw random number: %w", err)
		}

		idx := 0
		cursor := new(big.Int).Set(n)
		for i, e := range pool {
			if cursor.Cmp(e.weight) < 0 {
				idx = i
				break
			}
			cursor.Sub(cursor, e.weight)
		}

		winners = append(winners, pool[idx].playerID)
		total.Sub(total, pool[idx].weight)
		pool = append(pool[:idx], pool[idx+1:]...)
	}
	return winners, nil
}
