package prospects

import "time"

// Status is the position of a prospect in the sales funnel.
type Status string

const (
	StatusNew       Status = "NEW"
	StatusContacted Status = "CONTACTED"
	StatusQualified Status = "QUALIFIED"
	StatusConverted Status = "CONVERTED"
	StatusLost      Status = "LOST"
)

// Valid reports whether s is a known funnel status.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusLost:
		return true
	}
	return false
}

// Prospect is a sales lead that may later be converted to a client.
type Prospect struct {
	ID        int64     `json:"id" db:"id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Company   *string   `json:"company,omitempty" db:"company"`
	Email     string    `json:"email" db:"email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Source    *string   `json:"source,omitempty" db:"source"`
	Status    Status    `json:"status" db:"status"`
	ClientID  *int64    `json:"client_id,omitempty" db:"client_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Note is a free-text remark attached to a prospect.
type Note struct {
	ID         int64     `json:"id" db:"id"`
	ProspectID int64     `json:"prospect_id" db:"prospect_id"`
	AuthorID   int64     `json:"author_id" db:"author_id"`
	Body       string    `json:"body" db:"body"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type CreateProspectRequest struct {
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	Company   *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Source    *string `json:"source,omitempty" validate:"omitempty,max=100"`
}

type UpdateProspectRequest struct {
	FirstName *string `json:"first_name,omitempty" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name,omitempty" validate:"omitempty,max=100"`
	Company   *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Source    *string `json:"source,omitempty" validate:"omitempty,max=100"`
	Status    *Status `json:"status,omitempty"`
}

type AddNoteRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

// ConvertRequest carries the credentials for the client's new user account.
type ConvertRequest struct {
	Password string  `json:"password" validate:"required,min=8,max=72"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=300"`
}

// ConvertResult reports the records created by a conversion.
type ConvertResult struct {
	Prospect *Prospect `json:"prospect"`
	ClientID int64     `json:"client_id"`
	UserID   int64     `json:"user_id"`
}

type ListProspectsRequest struct {
	Search *string `json:"search,omitempty"`
	Status *Status `json:"status,omitempty"`
	Limit  int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset int     `json:"offset" validate:"gte=0"`
}
