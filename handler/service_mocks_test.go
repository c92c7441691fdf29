package handler

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"medals/models"
	"medals/service"
)

type mockAggregationService struct{ mock.Mock }

func (m *mockAggregationService) Aggregate(ctx context.Context, eventID int64, threshold decimal.Decimal) (map[int64]decimal.Decimal, error) {
	args := m.Called(ctx, eventID, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]decimal.Decimal), args.Error(1)
}

type mockDistributionService struct{ mock.Mock }

func (m *mockDistributionService) Distribute(ctx context.Context, eventID, medalID int64, actorID string) (*models.DistributionResult, error) {
	args := m.Called(ctx, eventID, medalID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DistributionResult), args.Error(1)
}

type mockRaffleService struct{ mock.Mock }

func (m *mockRaffleService) Draw(ctx context.Context, req service.RaffleRequest) (*models.RaffleResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RaffleResult), args.Error(1)
}

type mockScoreCommitService struct{ mock.Mock }

func (m *mockScoreCommitService) Commit(ctx context.Context, rows []models.ScoreCommitRow) (*models.CommitResult, error) {
	args := m.Called(ctx, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CommitResult), args.Error(1)
}

type mockReviewService struct{ mock.Mock }

func (m *mockReviewService) Review(ctx context.Context, eventID int64, rows []models.OCRRow) ([]models.ReviewedRow, error) {
	args := m.Called(ctx, eventID, rows)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewedRow), args.Error(1)
}

type mockLedgerService struct{ mock.Mock }

func (m *mockLedgerService) Balance(ctx context.Context, playerID, medalID int64) (*models.Balance, error) {
	args := m.Called(ctx, playerID, medalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}

func (m *mockLedgerService) History(ctx context.Context, playerID int64, limit int) ([]*models.LedgerTransaction, error) {
	args := m.Called(ctx, playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerTransaction), args.Error(1)
}

func (m *mockLedgerService) Adjust(ctx context.Context, req service.AdjustmentRequest) (*models.LedgerTransaction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerTransaction), args.Error(1)
}

type mockEventTotalsService struct{ mock.Mock }

func (m *mockEventTotalsService) SetTotals(ctx context.Context, eventID, medalID int64, total, minScore decimal.Decimal) (*models.EventTotals, error) {
	args := m.Called(ctx, eventID, medalID, total, minScore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventTotals), args.Error(1)
}

func (m *mockEventTotalsService) GetTotals(ctx context.Context, eventID, medalID int64) (*models.EventTotals, error) {
	args := m.Called(ctx, eventID, medalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventTotals), args.Error(1)
}

func (m *mockEventTotalsService) Reconcile(ctx context.Context, eventID, medalID int64) (*models.PotReconciliation, error) {
	args := m.Called(ctx, eventID, medalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PotReconciliation), args.Error(1)
}

type mockRosterService struct{ mock.Mock }

func (m *mockRosterService) CreatePlayer(ctx context.Context, name string, aliases []string) (*models.Player, error) {
	args := m.Called(ctx, name, aliases)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *mockRosterService) ListPlayers(ctx context.Context) ([]*models.Player, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Player), args.Error(1)
}

func (m *mockRosterService) LinkAlt(ctx context.Context, altID int64, mainID *int64) (*models.Player, error) {
	args := m.Called(ctx, altID, mainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *mockRosterService) SoftDeletePlayer(ctx context.Context, playerID int64) error {
	args := m.Called(ctx, playerID)
	return args.Error(0)
}

func (m *mockRosterService) CreateEvent(ctx context.Context, name string, date time.Time) (*models.Event, error) {
	args := m.Called(ctx, name, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *mockRosterService) SoftDeleteEvent(ctx context.Context, eventID int64) error {
	args := m.Called(ctx, eventID)
	return args.Error(0)
}

func (m *mockRosterService) CreateMedal(ctx context.Context, name string, value int64) (*models.Medal, error) {
	args := m.Called(ctx, name, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Medal), args.Error(1)
}

type testServices struct {
	aggregation  *mockAggregationService
	distribution *mockDistributionService
	raffle       *mockRaffleService
	commit       *mockScoreCommitService
	review       *mockReviewService
	ledger       *mockLedgerService
	totals       *mockEventTotalsService
	roster       *mockRosterService
}

func newTestServices() *testServices {
	return &testServices{
		aggregation:  new(mockAggregationService),
		distribution: new(mockDistributionService),
		raffle:       new(mockRaffleService),
		commit:       new(mockScoreCommitService),
		review:       new(mockReviewService),
		ledger:       new(mockLedgerService),
		totals:       new(mockEventTotalsService),
		roster:       new(mockRosterService),
	}
}

func (s *testServices) services() Services {
	return Services{
		Aggregation:  s.aggregation,
		Distribution: s.distribution,
		Raffle:       s.raffle,
		ScoreCommit:  s.commit,
		Review:       s.review,
		Ledger:       s.ledger,
		EventTotals:  s.totals,
		Roster:       s.roster,
	}
}
