package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"medals/database"
	"medals/models"
)

// ScoreRepository implements the ScoreRepository interface
type ScoreRepository struct {
	q queryable
}

// NewScoreRepository creates a new score repository
func NewScoreRepository(db *database.DB) *ScoreRepository {
	return &ScoreRepository{q: db.Pool}
}

func newScoreRepositoryWithTx(tx queryable) *ScoreRepository {
	return &ScoreRepository{q: tx}
}

// Upsert writes a score keyed by (event, player). The last write wins.
func (r *ScoreRepository) Upsert(ctx context.Context, score *models.Score) error {
	query := `
		INSERT INTO scores (event_id, player_id, score, raw_score, verified, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id, player_id) DO UPDATE SET
			score = EXCLUDED.score,
			raw_score = EXCLUDED.raw_score,
			verified = EXCLUDED.verified,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		score.EventID,
		score.PlayerID,
		score.Score,
		score.RawScore,
		score.Verified,
		score.UpdatedBy,
	).Scan(&score.ID, &score.CreatedAt, &score.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert score for event %d player %d: %w", score.EventID, score.PlayerID, err)
	}
	return nil
}

// ListByEvent returns every score of an event ordered by player
func (r *ScoreRepository) ListByEvent(ctx context.Context, eventID int64) ([]*models.Score, error) {
	query := `
		SELECT id, event_id, player_id, score, raw_score, verified, updated_by, created_at, updated_at
		FROM scores
		WHERE event_id = $1
		ORDER BY player_id
	`
	rows, err := r.q.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores for event %d: %w", eventID, err)
	}
	defer rows.Close()

	var scores []*models.Score
	for rows.Next() {
		var s models.Score
		if err := rows.Scan(
			&s.ID,
			&s.EventID,
			&s.PlayerID,
			&s.Score,
			&s.RawScore,
			&s.Verified,
			&s.UpdatedBy,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		scores = append(scores, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scores: %w", err)
	}
	return scores, nil
}

// ListQualifying returns verified scores at or above threshold whose player
// is live. An alt whose main has been soft-deleted does not qualify since
// there is nobody left to pay.
func (r *ScoreRepository) ListQualifying(ctx context.Context, eventID int64, threshold decimal.Decimal) ([]*models.QualifyingScore, error) {
	query := `
		SELECT s.player_id, p.is_alt, p.main_player_id, s.score
		FROM scores s
		JOIN players p ON p.id = s.player_id AND p.deleted_at IS NULL
		LEFT JOIN players m ON m.id = p.main_player_id
		WHERE s.event_id = $1
		  AND s.verified
		  AND s.score >= $2
		  AND (NOT p.is_alt OR (m.id IS NOT NULL AND m.deleted_at IS NULL))
		ORDER BY s.player_id
	`
	rows, err := r.q.Query(ctx, query, eventID, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to query qualifying scores for event %d: %w", eventID, err)
	}
	defer rows.Close()

	var scores []*models.QualifyingScore
	for rows.Next() {
		var qs models.QualifyingScore
		if err := rows.Scan(&qs.PlayerID, &qs.IsAlt, &qs.MainPlayerID, &qs.Score); err != nil {
			return nil, fmt.Errorf("failed to scan qualifying score: %w", err)
		}
		scores = append(scores, &qs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating qualifying scores: %w", err)
	}
	return scores, nil
}
