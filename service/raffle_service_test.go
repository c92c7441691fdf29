package service

import (
	"context"
	"math/big"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medals/events"
	"medals/models"
)

// sequenceRand replays fixed draws, clamped into range
func sequenceRand(values ...int64) randIntFunc {
	i := 0
	return func(max *big.Int) (*big.Int, error) {
		v := big.NewInt(values[i%len(values)])
		i++
		if v.Cmp(max) >= 0 {
			v.Sub(max, big.NewInt(1))
		}
		return v, nil
	}
}

func newTestRaffleService(factory UnitOfWorkFactory, randInt randIntFunc) *raffleService {
	return &raffleService{
		uowFactory: factory,
		clock:      clockwork.NewFakeClock(),
		randInt:    randInt,
	}
}

func TestRaffleRequest_Validate(t *testing.T) {
	tests := []struct {
		name string
		req  RaffleRequest
	}{
		{"no winners", RaffleRequest{Winners: 0, Prize: d(10), ActorID: "a"}},
		{"zero prize", RaffleRequest{Winners: 1, Prize: d(0), ActorID: "a"}},
		{"fractional prize", RaffleRequest{Winners: 1, Prize: d(10).Div(d(4)), ActorID: "a"}},
		{"no actor", RaffleRequest{Winners: 1, Prize: d(10)}},
		{"oversized prize", RaffleRequest{Winners: 1, Prize: decimal.RequireFromString("1e99999999"), ActorID: "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.req.validate(), ErrInvalidInput)
		})
	}
}

func TestRaffleService_DrawWinners(t *testing.T) {
	entrants := []raffleEntrant{
		{playerID: 1, weight: big.NewInt(10)},
		{playerID: 2, weight: big.NewInt(20)},
		{playerID: 3, weight: big.NewInt(30)},
	}

	t.Run("draw lands in the second weight band", func(t *testing.T) {
		svc := newTestRaffleService(nil, sequenceRand(15))
		winners, err := svc.drawWinners(entrants, 1)
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, winners)
	})

	t.Run("winners are distinct", func(t *testing.T) {
		svc := newTestRaffleService(nil, sequenceRand(0, 0, 0))
		winners, err := svc.drawWinners(entrants, 3)
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 3}, winners)
	})

	t.Run("removed weight shifts later draws", func(t *testing.T) {
		// 59 hits player 3, then the pool is 1..30 and 29 hits player 2
		svc := newTestRaffleService(nil, sequenceRand(59, 29))
		winners, err := svc.drawWinners(entrants, 2)
		require.NoError(t, err)
		assert.Equal(t, []int64{3, 2}, winners)
	})

	t.Run("input is not mutated", func(t *testing.T) {
		svc := newTestRaffleService(nil, sequenceRand(0))
		_, err := svc.drawWinners(entrants, 2)
		require.NoError(t, err)
		assert.Len(t, entrants, 3)
		assert.Equal(t, int64(1), entrants[0].playerID)
	})
}

func TestRaffleService_Draw(t *testing.T) {
	ctx := context.Background()
	factory, uow := NewMockUnitOfWorkFactory()
	uow.ExpectTransaction(ctx, true)

	uow.EventTotals.On("GetForUpdate", ctx, int64(1), int64(2)).Return(&models.EventTotals{
		EventID:           1,
		MedalID:           2,
		TotalAmount:       d(100),
		MinScoreForRaffle: d(5),
	}, nil)
	uow.Scores.On("ListQualifying", ctx, int64(1), decEq(5)).Return([]*models.QualifyingScore{
		mainScore(3, 30),
		mainScore(1, 10),
		altScore(4, 1, 10),
		mainScore(2, 20),
	}, nil)
	uow.Ledger.On("Record", ctx, mock.MatchedBy(func(tx *models.LedgerTransaction) bool {
		return tx.TransactionType == models.TransactionTypeRaffleWin && tx.Amount.Equal(d(25))
	})).Return(nil).Twice()
	uow.EventTotals.On("AddRaffleUsed", ctx, int64(1), int64(2), decEq(50)).Return(nil)
	uow.Bus.On("Publish", mock.AnythingOfType("events.LedgerTransactionRecordedEvent")).Return()
	uow.Bus.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		drawn, ok := e.(events.RaffleDrawnEvent)
		return ok && drawn.DrawID != "" && len(drawn.WinnerIDs) == 2
	})).Return().Once()

	svc := newTestRaffleService(factory, sequenceRand(0))
	result, err := svc.Draw(ctx, RaffleRequest{EventID: 1, MedalID: 2, Winners: 2, Prize: d(25), ActorID: "admin"})

	require.NoError(t, err)
	assert.Equal(t, models.SettlementStatusOK, result.Status)
	assert.Equal(t, 3, result.Entrants)
	require.Len(t, result.Winners, 2)
	// player 1 carries its alt's score and sorts first
	assert.Equal(t, int64(1), result.Winners[0].PlayerID)
	assert.Equal(t, int64(2), result.Winners[1].PlayerID)
	assert.True(t, result.PaidOut.Equal(d(50)))
	assert.True(t, result.RemainingAfter.Equal(d(50)))
	uow.AssertAll(t)
}

func TestRaffleService_MoreWinnersThanEntrants(t *testing.T) {
	ctx := context.Background()
	factory, uow := NewMockUnitOfWorkFactory()
	uow.ExpectTransaction(ctx, true)

	uow.EventTotals.On("GetForUpdate", ctx, int64(1), int64(2)).Return(&models.EventTotals{
		EventID:     1,
		MedalID:     2,
		TotalAmount: d(100),
	}, nil)
	uow.Scores.On("ListQualifying", ctx, int64(1), decEq(0)).Return([]*models.QualifyingScore{
		mainScore(7, 1),
	}, nil)
	uow.Ledger.On("Record", ctx, mock.Anything).Return(nil).Once()
	uow.EventTotals.On("AddRaffleUsed", ctx, int64(1), int64(2), decEq(10)).Return(nil)
	uow.Bus.On("Publish", mock.Anything).Return()

	svc := newTestRaffleService(factory, sequenceRand(0))
	result, err := svc.Draw(ctx, RaffleRequest{EventID: 1, MedalID: 2, Winners: 5, Prize: d(10), ActorID: "admin"})

	require.NoError(t, err)
	require.Len(t, result.Winners, 1)
	assert.Equal(t, int64(7), result.Winners[0].PlayerID)
	uow.AssertAll(t)
}

func TestRaffleService_InsufficientPot(t *testing.T) {
	ctx := context.Background()
	factory, uow := NewMockUnitOfWorkFactory()
	uow.ExpectTransaction(ctx, false)

	uow.EventTotals.On("GetForUpdate", ctx, int64(1), int64(2)).Return(&models.EventTotals{
		EventID:           1,
		MedalID:           2,
		TotalAmount:       d(100),
		DistributedAmount: d(60),
	}, nil)
	uow.Scores.On("ListQualifying", ctx, int64(1), decEq(0)).Return([]*models.QualifyingScore{
		mainScore(1, 10),
		mainScore(2, 10),
	}, nil)

	svc := newTestRaffleService(factory, sequenceRand(0))
	_, err := svc.Draw(ctx, RaffleRequest{EventID: 1, MedalID: 2, Winners: 2, Prize: d(25), ActorID: "admin"})

	assert.ErrorIs(t, err, ErrInsufficientPot)
	uow.Ledger.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit")
}

func TestRaffleService_EmptyPot(t *testing.T) {
	ctx := context.Background()
	factory, uow := NewMockUnitOfWorkFactory()
	uow.ExpectTransaction(ctx, false)

	uow.EventTotals.On("GetForUpdate", ctx, int64(1), int64(2)).Return(&models.EventTotals{
		EventID:          1,
		MedalID:          2,
		TotalAmount:      d(50),
		RaffleAmountUsed: d(50),
	}, nil)

	svc := newTestRaffleService(factory, sequenceRand(0))
	result, err := svc.Draw(ctx, RaffleRequest{EventID: 1, MedalID: 2, Winners: 1, Prize: d(5), ActorID: "admin"})

	require.NoError(t, err)
	assert.Equal(t, models.SettlementStatusNoop, result.Status)
	assert.Equal(t, models.NoopReasonNoRemaining, result.Reason)
}
