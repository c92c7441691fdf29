package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"medals/database"
	"medals/models"
)

// CreateTestPlayer returns an unsaved main player
func CreateTestPlayer(name string, aliases ...string) *models.Player {
	if aliases == nil {
		aliases = []string{}
	}
	return &models.Player{
		Name:    name,
		Aliases: aliases,
		Status:  models.PlayerStatusActive,
	}
}

// CreateTestAlt returns an unsaved alt of mainID
func CreateTestAlt(name string, mainID int64) *models.Player {
	player := CreateTestPlayer(name)
	player.IsAlt = true
	player.MainPlayerID = &mainID
	return player
}

// CreateTestEvent returns an unsaved event dated today
func CreateTestEvent(name string) *models.Event {
	return &models.Event{
		Name:      name,
		EventDate: time.Now().UTC().Truncate(24 * time.Hour),
	}
}

// CreateTestScore returns an unsaved verified score
func CreateTestScore(eventID, playerID, score int64) *models.Score {
	return &models.Score{
		EventID:   eventID,
		PlayerID:  playerID,
		Score:     decimal.NewFromInt(score),
		RawScore:  decimal.NewFromInt(score),
		Verified:  true,
		UpdatedBy: "test",
	}
}

// SeedPlayer inserts a player directly and returns its id
func SeedPlayer(t *testing.T, db *database.DB, name string, mainID *int64) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(context.Background(),
		`INSERT INTO players (name, is_alt, main_player_id) VALUES ($1, $2, $3) RETURNING id`,
		name, mainID != nil, mainID,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// SeedEvent inserts an event directly and returns its id
func SeedEvent(t *testing.T, db *database.DB, name string) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(context.Background(),
		`INSERT INTO events (name, event_date) VALUES ($1, CURRENT_DATE) RETURNING id`, name,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// SeedMedal inserts a medal type directly and returns its id
func SeedMedal(t *testing.T, db *database.DB, name string) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(context.Background(),
		`INSERT INTO medals (name) VALUES ($1) RETURNING id`, name,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// SeedScore inserts a verified score directly
func SeedScore(t *testing.T, db *database.DB, eventID, playerID, score int64) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`INSERT INTO scores (event_id, player_id, score, raw_score, verified, updated_by)
		 VALUES ($1, $2, $3, $3, TRUE, 'seed')`,
		eventID, playerID, score,
	)
	require.NoError(t, err)
}

// SeedPot inserts an event_totals row directly
func SeedPot(t *testing.T, db *database.DB, eventID, medalID, total, minScore int64) {
	t.Helper()
	_, err := db.Exec(context.Background(),
		`INSERT INTO event_totals (event_id, medal_id, total_amount, min_score_for_raffle) VALUES ($1, $2, $3, $4)`,
		eventID, medalID, total, minScore,
	)
	require.NoError(t, err)
}
