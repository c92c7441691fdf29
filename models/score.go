package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Score is a player's result in one event. One row per (event, player).
type Score struct {
	ID        int64           `db:"id" json:"id"`
	EventID   int64           `db:"event_id" json:"event_id"`
	PlayerID  int64           `db:"player_id" json:"player_id"`
	Score     decimal.Decimal `db:"score" json:"score"`
	RawScore  decimal.Decimal `db:"raw_score" json:"raw_score"`
	Verified  bool            `db:"verified" json:"verified"`
	UpdatedBy string          `db:"updated_by" json:"updated_by"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// ScoreCommitRow is one unparsed row handed over by the review step
type ScoreCommitRow struct {
	EventID  string `json:"event_id"`
	PlayerID string `json:"player_id"`
	Score    string `json:"score"`
	RawScore string `json:"raw_score"`
	Verified bool   `json:"verified"`
	ActorID  string `json:"actor_id"`
}

// CommitResult counts the outcome of a score commit batch
type CommitResult struct {
	Committed int `json:"committed"`
	Skipped   int `json:"skipped"`
}

// OCRRow is one recognised leaderboard line
type OCRRow struct {
	Name       string  `json:"name"`
	Digits     string  `json:"digits"`
	Confidence float64 `json:"confidence"`
}

// ReviewedRow is an OCR row matched against the roster. PlayerID is zero
// when no player matched, with Reason explaining why.
type ReviewedRow struct {
	OCRRow
	EventID  int64           `json:"event_id"`
	PlayerID int64           `json:"player_id"`
	Score    decimal.Decimal `json:"score"`
	RawScore decimal.Decimal `json:"raw_score"`
	Verified bool            `json:"verified"`
	Reason   string          `json:"reason,omitempty"`
}

// CommitRow converts a matched review row into the commit gate's input
func (r *ReviewedRow) CommitRow(actorID string) ScoreCommitRow {
	return ScoreCommitRow{
		EventID:  strconv.FormatInt(r.EventID, 10),
		PlayerID: strconv.FormatInt(r.PlayerID, 10),
		Score:    r.Score.String(),
		RawScore: r.RawScore.String(),
		Verified: r.Verified,
		ActorID:  actorID,
	}
}

// QualifyingScore is a verified score at or above an event's threshold,
// joined with the owning player's alt linkage
type QualifyingScore struct {
	PlayerID     int64
	IsAlt        bool
	MainPlayerID *int64
	Score        decimal.Decimal
}
