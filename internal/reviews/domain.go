package reviews

import "time"

// Review is a client's rating of a completed event.
type Review struct {
	ID        int64     `json:"id" db:"id"`
	ClientID  int64     `json:"client_id" db:"client_id"`
	EventID   int64     `json:"event_id" db:"event_id"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   *string   `json:"comment,omitempty" db:"comment"`
	Published bool      `json:"published" db:"published"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CreateReviewRequest struct {
	EventID int64   `json:"event_id" validate:"required,gt=0"`
	Rating  int     `json:"rating" validate:"required,gte=1,lte=5"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=2000"`
}

type ModerateReviewRequest struct {
	Published bool `json:"published"`
}

type ListReviewsRequest struct {
	EventID       *int64 `json:"event_id,omitempty"`
	ClientID      *int64 `json:"client_id,omitempty"`
	PublishedOnly bool   `json:"published_only"`
	Limit         int    `json:"limit" validate:"gte=0,lte=1000"`
	Offset        int    `json:"offset" validate:"gte=0"`
}
