package contact

import "time"

// Message is an inbound inquiry from the public contact form.
type Message struct {
	ID        int64      `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Email     string     `json:"email" db:"email"`
	Subject   *string    `json:"subject,omitempty" db:"subject"`
	Body      string     `json:"body" db:"body"`
	HandledAt *time.Time `json:"handled_at,omitempty" db:"handled_at"`
	HandledBy *int64     `json:"handled_by,omitempty" db:"handled_by"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

type SubmitRequest struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   string  `json:"email" validate:"required,email"`
	Subject *string `json:"subject,omitempty" validate:"omitempty,max=200"`
	Body    string  `json:"body" validate:"required,max=5000"`
}

type ListMessagesRequest struct {
	Unhandled bool `json:"unhandled"`
	Limit     int  `json:"limit" validate:"gte=0,lte=1000"`
	Offset    int  `json:"offset" validate:"gte=0"`
}
