package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medals/repository/testutil"
)

func TestScoreRepository_Upsert(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewScoreRepository(testDB.DB)
	eventID := testutil.SeedEvent(t, testDB.DB, "Raid")
	playerID := testutil.SeedPlayer(t, testDB.DB, "Legolas", nil)

	first := testutil.CreateTestScore(eventID, playerID, 100)
	first.Verified = false
	require.NoError(t, repo.Upsert(ctx, first))

	second := testutil.CreateTestScore(eventID, playerID, 250)
	second.RawScore = decimal.NewFromInt(260)
	second.UpdatedBy = "reviewer"
	require.NoError(t, repo.Upsert(ctx, second))
	assert.Equal(t, first.ID, second.ID, "same (event, player) row is overwritten")

	scores, err := repo.ListByEvent(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.True(t, scores[0].Score.Equal(decimal.NewFromInt(250)))
	assert.True(t, scores[0].RawScore.Equal(decimal.NewFromInt(260)))
	assert.True(t, scores[0].Verified)
	assert.Equal(t, "reviewer", scores[0].UpdatedBy)
}

func TestScoreRepository_Upsert_WideScores(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewScoreRepository(testDB.DB)
	eventID := testutil.SeedEvent(t, testDB.DB, "Raid")
	playerID := testutil.SeedPlayer(t, testDB.DB, "Gimli", nil)

	wide, err := decimal.NewFromString("12345678901234567890123456789012345678")
	require.NoError(t, err)
	score := testutil.CreateTestScore(eventID, playerID, 0)
	score.Score = wide
	score.RawScore = wide
	require.NoError(t, repo.Upsert(ctx, score))

	scores, err := repo.ListByEvent(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, wide.String(), scores[0].Score.String())
}

func TestScoreRepository_ListQualifying(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()
	db := testDB.DB

	repo := NewScoreRepository(db)
	players := NewPlayerRepository(db)
	eventID := testutil.SeedEvent(t, db, "Siege")
	otherEventID := testutil.SeedEvent(t, db, "Other")

	main := testutil.SeedPlayer(t, db, "Main", nil)
	alt := testutil.SeedPlayer(t, db, "Alt", &main)
	low := testutil.SeedPlayer(t, db, "Low", nil)
	unverified := testutil.SeedPlayer(t, db, "Unverified", nil)
	deleted := testutil.SeedPlayer(t, db, "Deleted", nil)
	orphanMain := testutil.SeedPlayer(t, db, "OrphanMain", nil)
	orphan := testutil.SeedPlayer(t, db, "Orphan", &orphanMain)

	testutil.SeedScore(t, db, eventID, main, 100)
	testutil.SeedScore(t, db, eventID, alt, 60)
	testutil.SeedScore(t, db, eventID, low, 49)
	testutil.SeedScore(t, db, eventID, deleted, 500)
	testutil.SeedScore(t, db, eventID, orphan, 70)
	testutil.SeedScore(t, db, otherEventID, main, 900)

	s := testutil.CreateTestScore(eventID, unverified, 300)
	s.Verified = false
	require.NoError(t, repo.Upsert(ctx, s))

	require.NoError(t, players.SoftDelete(ctx, deleted, time.Now()))
	require.NoError(t, players.SoftDelete(ctx, orphanMain, time.Now()))

	rows, err := repo.ListQualifying(ctx, eventID, decimal.NewFromInt(50))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, main, rows[0].PlayerID)
	assert.False(t, rows[0].IsAlt)
	assert.True(t, rows[0].Score.Equal(decimal.NewFromInt(100)))

	assert.Equal(t, alt, rows[1].PlayerID)
	assert.True(t, rows[1].IsAlt)
	require.NotNil(t, rows[1].MainPlayerID)
	assert.Equal(t, main, *rows[1].MainPlayerID)

	// the threshold is inclusive
	rows, err = repo.ListQualifying(ctx, eventID, decimal.NewFromInt(49))
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
