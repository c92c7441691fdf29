package models

import (
	"time"
)

// PlayerStatus is the lifecycle state of a roster entry
type PlayerStatus string

const (
	PlayerStatusActive   PlayerStatus = "active"
	PlayerStatusInactive PlayerStatus = "inactive"
)

// Player is a guild member identity. An alt points at its main through
// MainPlayerID; payouts are only ever made to mains.
type Player struct {
	ID           int64        `db:"id" json:"id"`
	Name         string       `db:"name" json:"name"`
	Aliases      []string     `db:"aliases" json:"aliases"`
	IsAlt        bool         `db:"is_alt" json:"is_alt"`
	MainPlayerID *int64       `db:"main_player_id" json:"main_player_id,omitempty"`
	Status       PlayerStatus `db:"status" json:"status"`
	DeletedAt    *time.Time   `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// IsDeleted reports whether the player has been soft-deleted
func (p *Player) IsDeleted() bool {
	return p.DeletedAt != nil
}

// PayoutID is the id that receives this player's payouts: the main for an
// alt, the player itself otherwise. Only one level of indirection is read.
func (p *Player) PayoutID() int64 {
	if p.IsAlt && p.MainPlayerID != nil {
		return *p.MainPlayerID
	}
	return p.ID
}
