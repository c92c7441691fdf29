package service

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"medals/models"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func TestRosterService_LinkAlt(t *testing.T) {
	ctx := context.Background()

	t.Run("links an alt to a main", func(t *testing.T) {
		factory, uow := NewMockUnitOfWorkFactory()
		uow.ExpectTransaction(ctx, true)
		uow.Players.On("GetByID", ctx, int64(2)).Return(&models.Player{ID: 2, Name: "alt"}, nil)
		uow.Players.On("GetByID", ctx, int64(1)).Return(&models.Player{ID: 1, Name: "main"}, nil)
		uow.Players.On("ListAlts", ctx, int64(2)).Return([]*models.Player{}, nil)
		uow.Players.On("SetMain", ctx, int64(2), int64Ptr(1)).Return(nil)

		svc := NewRosterService(factory, clockwork.NewFakeClock())
		player, err := svc.LinkAlt(ctx, 2, int64Ptr(1))

		require.NoError(t, err)
		assert.True(t, player.IsAlt)
		assert.Equal(t, int64(1), player.PayoutID())
		uow.AssertAll(t)
	})

	t.Run("unlinks when main is nil", func(t *testing.T) {
		factory, uow := NewMockUnitOfWorkFactory()
		uow.ExpectTransaction(ctx, true)
		uow.Players.On("GetByID", ctx, int64(2)).Return(&models.Player{ID: 2, IsAlt: true, MainPlayerID: int64Ptr(1)}, nil)
		uow.Players.On("SetMain", ctx, int64(2), (*int64)(nil)).Return(nil)

		svc := NewRosterService(factory, clockwork.NewFakeClock())
		player, err := svc.LinkAlt(ctx, 2, nil)

		require.NoError(t, err)
		assert.False(t, player.IsAlt)
		assert.Equal(t, int64(2), player.PayoutID())
	})

	t.Run("self link", func(t *testing.T) {
		factory, _ := NewMockUnitOfWorkFactory()
		svc := NewRosterService(factory, clockwork.NewFakeClock())

		_, err := svc.LinkAlt(ctx, 2, int64Ptr(2))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("main is itself an alt", func(t *testing.T) {
		factory, uow := NewMockUnitOfWorkFactory()
		uow.ExpectTransaction(ctx, false)
		uow.Players.On("GetByID", ctx, int64(2)).Return(&models.Player{ID: 2}, nil)
		uow.Players.On("GetByID", ctx, int64(1)).Return(&models.Player{ID: 1, IsAlt: true, MainPlayerID: int64Ptr(7)}, nil)

		svc := NewRosterService(factory, clockwork.NewFakeClock())
		_, err := svc.LinkAlt(ctx, 2, int64Ptr(1))

		assert.ErrorIs(t, err, ErrInvalidInput)
		uow.Players.AssertNotCalled(t, "SetMain", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("alt already has alts", func(t *testing.T) {
		factory, uow := NewMockUnitOfWorkFactory()
		uow.ExpectTransaction(ctx, false)
		uow.Players.On("GetByID", ctx, int64(2)).Return(&models.Player{ID: 2}, nil)
		uow.Players.On("GetByID", ctx, int64(1)).Return(&models.Player{ID: 1}, nil)
		uow.Players.On("ListAlts", ctx, int64(2)).Return([]*models.Player{{ID: 3}}, nil)

		svc := NewRosterService(factory, clockwork.NewFakeClock())
		_, err := svc.LinkAlt(ctx, 2, int64Ptr(1))

		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("deleted main", func(t *testing.T) {
		factory, uow := NewMockUnitOfWorkFactory()
		uow.ExpectTransaction(ctx, false)
		deletedAt := time.Now()
		uow.Players.On("GetByID", ctx, int64(2)).Return(&models.Player{ID: 2}, nil)
		uow.Players.On("GetByID", ctx, int64(1)).Return(&models.Player{ID: 1, DeletedAt: &deletedAt}, nil)

		svc := NewRosterService(factory, clockwork.NewFakeClock())
		_, err := svc.LinkAlt(ctx, 2, int64Ptr(1))

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestRosterService_SoftDeletePlayer(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	factory, uow := NewMockUnitOfWorkFactory()
	uow.ExpectTransaction(ctx, true)
	uow.Players.On("GetByID", ctx, int64(4)).Return(&models.Player{ID: 4}, nil)
	uow.Players.On("SoftDelete", ctx, int64(4), clock.Now()).Return(nil)

	svc := NewRosterService(factory, clock)
	require.NoError(t, svc.SoftDeletePlayer(ctx, 4))
	uow.AssertAll(t)
}

func TestRosterService_CreatePlayer(t *testing.T) {
	ctx := context.Background()
	factory, uow := NewMockUnitOfWorkFactory()
	uow.ExpectTransaction(ctx, true)
	uow.Players.On("Create", ctx, mock.MatchedBy(func(p *models.Player) bool {
		return p.Name == "Frodo" &&
			assert.ObjectsAreEqual([]string{"Ringbearer"}, p.Aliases) &&
			p.Status == models.PlayerStatusActive
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Player).ID = 12
	}).Return(nil)

	svc := NewRosterService(factory, clockwork.NewFakeClock())
	player, err := svc.CreatePlayer(ctx, " Frodo ", []string{"Ringbearer", " "})

	require.NoError(t, err)
	assert.Equal(t, int64(12), player.ID)
	uow.AssertAll(t)

	_, err = svc.CreatePlayer(ctx, "   ", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRosterService_CreateEventTruncatesDate(t *testing.T) {
	ctx := context.Background()
	factory, uow := NewMockUnitOfWorkFactory()
	uow.ExpectTransaction(ctx, true)
	uow.Events.On("Create", ctx, mock.MatchedBy(func(e *models.Event) bool {
		return e.Name == "Siege" && e.EventDate.Equal(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC))
	})).Return(nil)

	svc := NewRosterService(factory, clockwork.NewFakeClock())
	_, err := svc.CreateEvent(ctx, "Siege", time.Date(2026, 3, 4, 18, 30, 0, 0, time.UTC))

	require.NoError(t, err)
	uow.AssertAll(t)
}
