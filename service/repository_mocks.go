package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"medals/events"
	"medals/models"
)

// MockPlayerRepository is a mock implementation of PlayerRepository
type MockPlayerRepository struct {
	mock.Mock
}

func (m *MockPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	args := m.Called(ctx, player)
	return args.Error(0)
}

func (m *MockPlayerRepository) GetByID(ctx context.Context, id int64) (*models.Player, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) ListActive(ctx context.Context) ([]*models.Player, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) ListAlts(ctx context.Context, mainID int64) ([]*models.Player, error) {
	args := m.Called(ctx, mainID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Player), args.Error(1)
}

func (m *MockPlayerRepository) SetMain(ctx context.Context, playerID int64, mainID *int64) error {
	args := m.Called(ctx, playerID, mainID)
	return args.Error(0)
}

func (m *MockPlayerRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockEventRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockMedalRepository is a mock implementation of MedalRepository
type MockMedalRepository struct {
	mock.Mock
}

func (m *MockMedalRepository) Create(ctx context.Context, medal *models.Medal) error {
	args := m.Called(ctx, medal)
	return args.Error(0)
}

func (m *MockMedalRepository) GetByID(ctx context.Context, id int64) (*models.Medal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Medal), args.Error(1)
}

// MockScoreRepository is a mock implementation of ScoreRepository
type MockScoreRepository struct {
	mock.Mock
}

func (m *MockScoreRepository) Upsert(ctx context.Context, score *models.Score) error {
	args := m.Called(ctx, score)
	return args.Error(0)
}

func (m *MockScoreRepository) ListByEvent(ctx context.Context, eventID int64) ([]*models.Score, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Score), args.Error(1)
}

func (m *MockScoreRepository) ListQualifying(ctx context.Context, eventID int64, threshold decimal.Decimal) ([]*models.QualifyingScore, error) {
	args := m.Called(ctx, eventID, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QualifyingScore), args.Error(1)
}

// MockEventTotalsRepository is a mock implementation of EventTotalsRepository
type MockEventTotalsRepository struct {
	mock.Mock
}

func (m *MockEventTotalsRepository) Get(ctx context.Context, eventID, medalID int64) (*models.EventTotals, error) {
	args := m.Called(ctx, eventID, medalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventTotals), args.Error(1)
}

func (m *MockEventTotalsRepository) GetForUpdate(ctx context.Context, eventID, medalID int64) (*models.EventTotals, error) {
	args := m.Called(ctx, eventID, medalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventTotals), args.Error(1)
}

func (m *MockEventTotalsRepository) Upsert(ctx context.Context, totals *models.EventTotals) error {
	args := m.Called(ctx, totals)
	return args.Error(0)
}

func (m *MockEventTotalsRepository) AddDistributed(ctx context.Context, eventID, medalID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, eventID, medalID, amount)
	return args.Error(0)
}

func (m *MockEventTotalsRepository) AddRaffleUsed(ctx context.Context, eventID, medalID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, eventID, medalID, amount)
	return args.Error(0)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Record(ctx context.Context, tx *models.LedgerTransaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByPlayer(ctx context.Context, playerID int64, limit int) ([]*models.LedgerTransaction, error) {
	args := m.Called(ctx, playerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerTransaction), args.Error(1)
}

func (m *MockLedgerRepository) Balance(ctx context.Context, playerID, medalID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, playerID, medalID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerRepository) SumByEvent(ctx context.Context, eventID, medalID int64, txType models.TransactionType) (decimal.Decimal, error) {
	args := m.Called(ctx, eventID, medalID, txType)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repository
// getters return the mocks held in its fields.
type MockUnitOfWork struct {
	mock.Mock

	Players     *MockPlayerRepository
	Events      *MockEventRepository
	Medals      *MockMedalRepository
	Scores      *MockScoreRepository
	EventTotals *MockEventTotalsRepository
	Ledger      *MockLedgerRepository
	Bus         *MockEventPublisher
}

// NewMockUnitOfWork returns a unit of work wired to fresh repository mocks
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		Players:     new(MockPlayerRepository),
		Events:      new(MockEventRepository),
		Medals:      new(MockMedalRepository),
		Scores:      new(MockScoreRepository),
		EventTotals: new(MockEventTotalsRepository),
		Ledger:      new(MockLedgerRepository),
		Bus:         new(MockEventPublisher),
	}
}

// ExpectTransaction registers Begin and a deferred Rollback, plus Commit
// when the operation is expected to succeed
func (m *MockUnitOfWork) ExpectTransaction(ctx context.Context, commit bool) {
	m.On("Begin", ctx).Return(nil)
	m.On("Rollback").Return(nil).Maybe()
	if commit {
		m.On("Commit").Return(nil)
	}
}

// AssertAll asserts the expectations of the unit of work and all its repositories
func (m *MockUnitOfWork) AssertAll(t mock.TestingT) {
	m.AssertExpectations(t)
	m.Players.AssertExpectations(t)
	m.Events.AssertExpectations(t)
	m.Medals.AssertExpectations(t)
	m.Scores.AssertExpectations(t)
	m.EventTotals.AssertExpectations(t)
	m.Ledger.AssertExpectations(t)
	m.Bus.AssertExpectations(t)
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) PlayerRepository() PlayerRepository           { return m.Players }
func (m *MockUnitOfWork) EventRepository() EventRepository             { return m.Events }
func (m *MockUnitOfWork) MedalRepository() MedalRepository             { return m.Medals }
func (m *MockUnitOfWork) ScoreRepository() ScoreRepository             { return m.Scores }
func (m *MockUnitOfWork) EventTotalsRepository() EventTotalsRepository { return m.EventTotals }
func (m *MockUnitOfWork) LedgerRepository() LedgerRepository           { return m.Ledger }
func (m *MockUnitOfWork) EventBus() EventPublisher                     { return m.Bus }

// MockUnitOfWorkFactory hands out a single prepared unit of work
type MockUnitOfWorkFactory struct {
	UnitOfWork *MockUnitOfWork
}

// NewMockUnitOfWorkFactory returns a factory and the unit of work it creates
func NewMockUnitOfWorkFactory() (*MockUnitOfWorkFactory, *MockUnitOfWork) {
	uow := NewMockUnitOfWork()
	return &MockUnitOfWorkFactory{UnitOfWork: uow}, uow
}

func (f *MockUnitOfWorkFactory) Create() UnitOfWork {
	return f.UnitOfWork
}
