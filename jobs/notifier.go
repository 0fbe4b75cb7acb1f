package jobs

import (
	"context"
	"fmt"

	"github.com/eventide-agency/eventide/internal/clients"
	"github.com/eventide-agency/eventide/internal/devis"
)

// ClientLookup resolves a client record for notification addressing.
type ClientLookup interface {
	Get(ctx context.Context, id int64) (*clients.Client, error)
}

// Notifier enqueues quote lifecycle and contact emails. It satisfies the
// notification contracts of the devis and contact services.
type Notifier struct {
	client  *Client
	clients ClientLookup
	staff   string
}

// NewNotifier constructs a Notifier. staff is the inbox for quote
// decision notifications.
func NewNotifier(client *Client, lookup ClientLookup, staff string) *Notifier {
	return &Notifier{client: client, clients: lookup, staff: staff}
}

// DevisSent enqueues the review invitation for the quote's client.
func (n *Notifier) DevisSent(ctx context.Context, d devis.WithTotals, document []byte) error {
	c, err := n.clients.Get(ctx, d.EventClientID)
	if err != nil {
		return fmt.Errorf("resolve quote recipient: %w", err)
	}
	return n.client.EnqueueDevisSent(ctx, DevisSentPayload{
		To:       c.Email,
		Number:   d.Number,
		Total:    d.Computed.TotalWithTax,
		Document: document,
	})
}

// DevisResponse enqueues the staff notification of a client decision.
func (n *Notifier) DevisResponse(ctx context.Context, d devis.WithTotals, action string, reason *string) error {
	return n.client.EnqueueDevisResponse(ctx, DevisResponsePayload{
		To:     n.staff,
		Number: d.Number,
		Action: action,
		Reason: reason,
	})
}

// ContactAck enqueues the contact form acknowledgment.
func (n *Notifier) ContactAck(ctx context.Context, email, name string) error {
	return n.client.EnqueueContactAck(ctx, ContactAckPayload{To: email, Name: name})
}
