package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"medals/database"
	"medals/models"
)

const playerColumns = `id, name, aliases, is_alt, main_player_id, status, deleted_at, created_at, updated_at`

// PlayerRepository implements the PlayerRepository interface
type PlayerRepository struct {
	q queryable
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *database.DB) *PlayerRepository {
	return &PlayerRepository{q: db.Pool}
}

// newPlayerRepositoryWithTx creates a new player repository with a transaction
func newPlayerRepositoryWithTx(tx queryable) *PlayerRepository {
	return &PlayerRepository{q: tx}
}

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var p models.Player
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Aliases,
		&p.IsAlt,
		&p.MainPlayerID,
		&p.Status,
		&p.DeletedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new player
func (r *PlayerRepository) Create(ctx context.Context, player *models.Player) error {
	aliases := player.Aliases
	if aliases == nil {
		aliases = []string{}
	}
	status := player.Status
	if status == "" {
		status = models.PlayerStatusActive
	}

	query := `
		INSERT INTO players (name, aliases, is_alt, main_player_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query, player.Name, aliases, player.IsAlt, player.MainPlayerID, status).Scan(
		&player.ID,
		&player.CreatedAt,
		&player.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create player %q: %w", player.Name, err)
	}
	player.Aliases = aliases
	player.Status = status
	return nil
}

// GetByID retrieves a player, soft-deleted or not
func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`

	player, err := scanPlayer(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	return player, nil
}

// ListActive returns all players that have not been soft-deleted
func (r *PlayerRepository) ListActive(ctx context.Context) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE deleted_at IS NULL ORDER BY id`
	return r.list(ctx, query)
}

// ListAlts returns the live alts of a main
func (r *PlayerRepository) ListAlts(ctx context.Context, mainID int64) ([]*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players
		WHERE main_player_id = $1 AND is_alt AND deleted_at IS NULL
		ORDER BY id`
	return r.list(ctx, query, mainID)
}

func (r *PlayerRepository) list(ctx context.Context, query string, args ...any) ([]*models.Player, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		player, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}
	return players, nil
}

// SetMain links or unlinks an alt
func (r *PlayerRepository) SetMain(ctx context.Context, playerID int64, mainID *int64) error {
	query := `
		UPDATE players
		SET is_alt = $2, main_player_id = $3, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.q.Exec(ctx, query, playerID, mainID != nil, mainID)
	if err != nil {
		return fmt.Errorf("failed to set main of player %d: %w", playerID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("player %d not found", playerID)
	}
	return nil
}

// SoftDelete stamps deleted_at on a live player
func (r *PlayerRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	query := `
		UPDATE players
		SET deleted_at = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.q.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("failed to delete player %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("player %d not found or already deleted", id)
	}
	return nil
}
