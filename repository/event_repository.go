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

// EventRepository implements the EventRepository interface
type EventRepository struct {
	q queryable
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{q: db.Pool}
}

func newEventRepositoryWithTx(tx queryable) *EventRepository {
	return &EventRepository{q: tx}
}

// Create inserts a new event
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (name, event_date)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query, event.Name, event.EventDate).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event %q: %w", event.Name, err)
	}
	return nil
}

// GetByID retrieves an event, soft-deleted or not
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	query := `
		SELECT id, name, event_date, deleted_at, created_at
		FROM events
		WHERE id = $1
	`
	var event models.Event
	err := r.q.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.EventDate,
		&event.DeletedAt,
		&event.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}
	return &event, nil
}

// SoftDelete stamps deleted_at on a live event
func (r *EventRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	result, err := r.q.Exec(ctx, `UPDATE events SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, at)
	if err != nil {
		return fmt.Errorf("failed to delete event %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("event %d not found or already deleted", id)
	}
	return nil
}

// MedalRepository implements the MedalRepository interface
type MedalRepository struct {
	q queryable
}

// NewMedalRepository creates a new medal repository
func NewMedalRepository(db *database.DB) *MedalRepository {
	return &MedalRepository{q: db.Pool}
}

func newMedalRepositoryWithTx(tx queryable) *MedalRepository {
	return &MedalRepository{q: tx}
}

// Create inserts a new medal type
func (r *MedalRepository) Create(ctx context.Context, medal *models.Medal) error {
	query := `
		INSERT INTO medals (name, value)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	if err := r.q.QueryRow(ctx, query, medal.Name, medal.Value).Scan(&medal.ID, &medal.CreatedAt); err != nil {
		return fmt.Errorf("failed to create medal %q: %w", medal.Name, err)
	}
	return nil
}

// GetByID retrieves a medal type
func (r *MedalRepository) GetByID(ctx context.Context, id int64) (*models.Medal, error) {
	var medal models.Medal
	err := r.q.QueryRow(ctx, `SELECT id, name, value, created_at FROM medals WHERE id = $1`, id).Scan(
		&medal.ID,
		&medal.Name,
		&medal.Value,
		&medal.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medal %d: %w", id, err)
	}
	return &medal, nil
}
