// Package audit keeps an append-only trail of mutating operations.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded operation. ActorID zero means the actor could not
// be resolved (system or anonymous).
type Entry struct {
	ID       uuid.UUID `json:"id" db:"id"`
	ActorID  int64     `json:"actor_id" db:"actor_id"`
	Action   string    `json:"action" db:"action"`
	Entity   string    `json:"entity" db:"entity"`
	EntityID int64     `json:"entity_id" db:"entity_id"`
	At       time.Time `json:"at" db:"at"`
}

// ListFilters narrows the audit listing.
type ListFilters struct {
	Actor    *int64
	Entity   string
	Action   string
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}
