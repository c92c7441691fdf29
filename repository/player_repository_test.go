package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medals/models"
	"medals/repository/testutil"
)

func TestPlayerRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewPlayerRepository(testDB.DB)
	ctx := context.Background()

	t.Run("player not found", func(t *testing.T) {
		player, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, player)
	})

	t.Run("create and get", func(t *testing.T) {
		player := testutil.CreateTestPlayer("Aragorn", "Strider", "Elessar")
		require.NoError(t, repo.Create(ctx, player))
		assert.NotZero(t, player.ID)
		assert.False(t, player.CreatedAt.IsZero())

		got, err := repo.GetByID(ctx, player.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Aragorn", got.Name)
		assert.Equal(t, []string{"Strider", "Elessar"}, got.Aliases)
		assert.False(t, got.IsAlt)
		assert.Nil(t, got.MainPlayerID)
		assert.False(t, got.IsDeleted())
	})

	t.Run("names are unique among live players", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, testutil.CreateTestPlayer("Boromir")))
		assert.Error(t, repo.Create(ctx, testutil.CreateTestPlayer("boromir")))
	})

	t.Run("link, list and unlink alts", func(t *testing.T) {
		main := testutil.CreateTestPlayer("Frodo")
		require.NoError(t, repo.Create(ctx, main))
		alt := testutil.CreateTestPlayer("Mr Underhill")
		require.NoError(t, repo.Create(ctx, alt))

		require.NoError(t, repo.SetMain(ctx, alt.ID, &main.ID))

		got, err := repo.GetByID(ctx, alt.ID)
		require.NoError(t, err)
		assert.True(t, got.IsAlt)
		require.NotNil(t, got.MainPlayerID)
		assert.Equal(t, main.ID, *got.MainPlayerID)
		assert.Equal(t, main.ID, got.PayoutID())

		alts, err := repo.ListAlts(ctx, main.ID)
		require.NoError(t, err)
		require.Len(t, alts, 1)
		assert.Equal(t, alt.ID, alts[0].ID)

		require.NoError(t, repo.SetMain(ctx, alt.ID, nil))
		got, err = repo.GetByID(ctx, alt.ID)
		require.NoError(t, err)
		assert.False(t, got.IsAlt)
		assert.Nil(t, got.MainPlayerID)
	})

	t.Run("a player cannot be its own main", func(t *testing.T) {
		player := testutil.CreateTestPlayer("Gollum")
		require.NoError(t, repo.Create(ctx, player))
		assert.Error(t, repo.SetMain(ctx, player.ID, &player.ID))
	})

	t.Run("soft delete hides from active list", func(t *testing.T) {
		player := testutil.CreateTestPlayer("Saruman")
		require.NoError(t, repo.Create(ctx, player))

		at := time.Now().UTC().Truncate(time.Second)
		require.NoError(t, repo.SoftDelete(ctx, player.ID, at))
		assert.Error(t, repo.SoftDelete(ctx, player.ID, at), "second delete finds no live row")

		got, err := repo.GetByID(ctx, player.ID)
		require.NoError(t, err)
		require.True(t, got.IsDeleted())
		assert.True(t, got.DeletedAt.Equal(at))

		active, err := repo.ListActive(ctx)
		require.NoError(t, err)
		for _, p := range active {
			assert.NotEqual(t, player.ID, p.ID)
		}

		// the name is free again once the holder is deleted
		assert.NoError(t, repo.Create(ctx, testutil.CreateTestPlayer("Saruman")))
	})
}

func TestEventAndMedalRepositories(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	eventRepo := NewEventRepository(testDB.DB)
	medalRepo := NewMedalRepository(testDB.DB)
	ctx := context.Background()

	event := testutil.CreateTestEvent("Guild Siege")
	require.NoError(t, eventRepo.Create(ctx, event))

	got, err := eventRepo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Guild Siege", got.Name)
	assert.True(t, got.EventDate.Equal(event.EventDate))

	require.NoError(t, eventRepo.SoftDelete(ctx, event.ID, time.Now()))
	got, err = eventRepo.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted())

	missing, err := eventRepo.GetByID(ctx, 424242)
	require.NoError(t, err)
	assert.Nil(t, missing)

	medal := &models.Medal{Name: "Gold", Value: 5}
	require.NoError(t, medalRepo.Create(ctx, medal))

	gotMedal, err := medalRepo.GetByID(ctx, medal.ID)
	require.NoError(t, err)
	require.NotNil(t, gotMedal)
	assert.Equal(t, int64(5), gotMedal.Value)

	assert.Error(t, medalRepo.Create(ctx, &models.Medal{Name: "Gold"}), "medal names are unique")
}
