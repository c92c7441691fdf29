package models

import (
	"time"
)

// Event is a named competition instance scores are recorded against
type Event struct {
	ID        int64      `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	EventDate time.Time  `db:"event_date" json:"event_date"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// IsDeleted reports whether the event has been soft-deleted
func (e *Event) IsDeleted() bool {
	return e.DeletedAt != nil
}

// Medal is a currency type. Value is only used for display.
type Medal struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Value     int64     `db:"value" json:"value"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
