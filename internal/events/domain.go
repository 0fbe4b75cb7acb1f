package events

import "time"

// Status tracks an event through its production lifecycle.
type Status string

const (
	StatusPlanned    Status = "PLANNED"
	StatusConfirmed  Status = "CONFIRMED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Event is a client engagement the agency produces.
type Event struct {
	ID          int64     `json:"id" db:"id"`
	ClientID    int64     `json:"client_id" db:"client_id"`
	Name        string    `json:"name" db:"name"`
	Kind        *string   `json:"kind,omitempty" db:"kind"`
	Date        time.Time `json:"date" db:"date"`
	Location    *string   `json:"location,omitempty" db:"location"`
	GuestCount  int       `json:"guest_count" db:"guest_count"`
	Status      Status    `json:"status" db:"status"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type CreateEventRequest struct {
	ClientID    int64     `json:"client_id" validate:"required,gt=0"`
	Name        string    `json:"name" validate:"required,max=200"`
	Kind        *string   `json:"kind,omitempty" validate:"omitempty,max=100"`
	Date        time.Time `json:"date" validate:"required"`
	Location    *string   `json:"location,omitempty" validate:"omitempty,max=300"`
	GuestCount  int       `json:"guest_count" validate:"gte=0"`
	Description *string   `json:"description,omitempty"`
}

type UpdateEventRequest struct {
	Name        *string    `json:"name,omitempty" validate:"omitempty,max=200"`
	Kind        *string    `json:"kind,omitempty" validate:"omitempty,max=100"`
	Date        *time.Time `json:"date,omitempty"`
	Location    *string    `json:"location,omitempty" validate:"omitempty,max=300"`
	GuestCount  *int       `json:"guest_count,omitempty" validate:"omitempty,gte=0"`
	Description *string    `json:"description,omitempty"`
	Status      *Status    `json:"status,omitempty"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

type ListEventsRequest struct {
	ClientID *int64  `json:"client_id,omitempty"`
	Status   *Status `json:"status,omitempty"`
	Limit    int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset   int     `json:"offset" validate:"gte=0"`
}
