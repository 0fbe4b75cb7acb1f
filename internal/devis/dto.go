package devis

// LineItemRequest carries one prestation in create/update payloads.
type LineItemRequest struct {
	Label  string  `json:"label" validate:"required,max=200"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

// CreateDevisRequest is the POST /devis body.
type CreateDevisRequest struct {
	EventID   int64             `json:"event_id" validate:"required,gt=0"`
	TaxRate   *float64          `json:"tax_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	LineItems []LineItemRequest `json:"line_items" validate:"dive"`
}

// UpdateDevisRequest is the PUT /devis/{id} body. LineItems, when present,
// replaces the full set.
type UpdateDevisRequest struct {
	TaxRate   *float64           `json:"tax_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	LineItems *[]LineItemRequest `json:"line_items,omitempty" validate:"omitempty,dive"`
}

// ModifyDevisRequest is the POST /devis/{id}/modify body.
type ModifyDevisRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// ListDevisRequest filters GET /devis.
type ListDevisRequest struct {
	EventID *int64  `json:"event_id,omitempty"`
	Status  *Status `json:"status,omitempty"`
	Limit   int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset  int     `json:"offset" validate:"gte=0"`
}
