// Package devis implements the quote lifecycle: numbering, monetary totals,
// status transitions and the transactional replacement of line items.
package devis

import (
	"fmt"
	"math"
	"time"
)

// DefaultTaxRate applies when a quote is created without an explicit rate.
const DefaultTaxRate = 20.0

// Status is the lifecycle state of a devis.
type Status string

const (
	StatusDraft                 Status = "DRAFT"
	StatusUnderClientReview     Status = "UNDER_CLIENT_REVIEW"
	// StatusSent is a legacy alias still present in older rows. It counts as
	// pending client decision everywhere UNDER_CLIENT_REVIEW does.
	StatusSent                  Status = "SENT"
	StatusAccepted              Status = "ACCEPTED"
	StatusRefused               Status = "REFUSED"
	StatusModificationRequested Status = "MODIFICATION_REQUESTED"
	StatusCancelled             Status = "CANCELLED"
)

// PendingClientDecision reports whether the quote awaits the client's
// accept/refuse/modify answer.
func (s Status) PendingClientDecision() bool {
	return s == StatusUnderClientReview || s == StatusSent
}

// Active reports whether the quote blocks creation of a new quote for the
// same event. Refused and cancelled quotes are inert.
func (s Status) Active() bool {
	return s != StatusRefused && s != StatusCancelled
}

// Transition names a lifecycle move a caller can request.
type Transition string

const (
	TransitionSend                Transition = "send"
	TransitionAccept              Transition = "accept"
	TransitionRefuse              Transition = "refuse"
	TransitionRequestModification Transition = "request_modification"
	// TransitionRework is triggered implicitly when staff edits a quote whose
	// client requested changes: the edit acknowledges the request and returns
	// the quote to draft.
	TransitionRework Transition = "rework"
)

// CanTransition reports whether a quote in status s may undergo t.
func (s Status) CanTransition(t Transition) bool {
	switch t {
	case TransitionSend:
		return s == StatusDraft
	case TransitionAccept, TransitionRefuse, TransitionRequestModification:
		return s.PendingClientDecision()
	case TransitionRework:
		return s == StatusModificationRequested
	}
	return false
}

// Devis is a priced proposal tied to one event.
type Devis struct {
	ID                 int64      `json:"id" db:"id"`
	Number             string     `json:"number" db:"number"`
	EventID            int64      `json:"event_id" db:"event_id"`
	TaxRate            float64    `json:"tax_rate" db:"tax_rate"`
	Status             Status     `json:"status" db:"status"`
	ModificationReason *string    `json:"modification_reason,omitempty" db:"modification_reason"`
	DocumentPath       *string    `json:"document_path,omitempty" db:"document_path"`
	SentAt             *time.Time `json:"sent_at,omitempty" db:"sent_at"`
	RespondedAt        *time.Time `json:"responded_at,omitempty" db:"responded_at"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
	Lines              []Prestation `json:"line_items" db:"-"`

	// EventClientID is the owning client of the parent event, joined on
	// read so ownership checks need no second query.
	EventClientID int64 `json:"-" db:"event_client_id"`
}

// Prestation is one billable component of a devis.
type Prestation struct {
	ID        int64     `json:"id" db:"id"`
	DevisID   int64     `json:"devis_id" db:"devis_id"`
	Label     string    `json:"label" db:"label"`
	Amount    float64   `json:"amount" db:"amount"`
	LineOrder int       `json:"line_order" db:"line_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Totals are always derived from the current line items and tax rate,
// never read back from a stored column.
type Totals struct {
	TaxRate      float64 `json:"tax_rate"`
	PreTaxTotal  float64 `json:"pre_tax_total"`
	TaxAmount    float64 `json:"tax_amount"`
	TotalWithTax float64 `json:"total_with_tax"`
}

// ComputeTotals sums the line items and applies the tax rate, rounding each
// figure to cents.
func ComputeTotals(taxRate float64, lines []Prestation) Totals {
	var preTax float64
	for _, line := range lines {
		preTax += line.Amount
	}
	preTax = round2(preTax)
	tax := round2(preTax * taxRate / 100)
	return Totals{
		TaxRate:      taxRate,
		PreTaxTotal:  preTax,
		TaxAmount:    tax,
		TotalWithTax: round2(preTax + tax),
	}
}

// Totals computes the quote's current monetary totals.
func (d *Devis) Totals() Totals {
	return ComputeTotals(d.TaxRate, d.Lines)
}

// WithTotals pairs a devis with its freshly derived totals for responses.
type WithTotals struct {
	Devis
	Computed Totals `json:"totals"`
}

func withTotals(d *Devis) *WithTotals {
	return &WithTotals{Devis: *d, Computed: d.Totals()}
}

// FormatNumber renders the human-readable quote number for a year and
// sequence value, e.g. DEV-2025-0001.
func FormatNumber(year int, seq int64) string {
	return fmt.Sprintf("DEV-%d-%04d", year, seq)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
