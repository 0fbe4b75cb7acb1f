// Package jobs defines the background task types exchanged between the API
// and the worker over Redis.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/eventide-agency/eventide/internal/notify"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeDevisSent notifies a client that a quote awaits their review.
	TaskTypeDevisSent = "mail:devis_sent"
	// TaskTypeDevisResponse notifies staff of a client's decision.
	TaskTypeDevisResponse = "mail:devis_response"
	// TaskTypeContactAck acknowledges a contact form submission.
	TaskTypeContactAck = "mail:contact_ack"
)

// DevisSentPayload carries everything the worker needs to mail a quote.
type DevisSentPayload struct {
	To       string  `json:"to"`
	Number   string  `json:"number"`
	Total    float64 `json:"total"`
	Document []byte  `json:"document,omitempty"`
}

// DevisResponsePayload describes a client's decision on a quote.
type DevisResponsePayload struct {
	To     string  `json:"to"`
	Number string  `json:"number"`
	Action string  `json:"action"`
	Reason *string `json:"reason,omitempty"`
}

// ContactAckPayload acknowledges an inbound contact message.
type ContactAckPayload struct {
	To   string `json:"to"`
	Name string `json:"name"`
}

// NewDevisSentTask constructs an Asynq task.
func NewDevisSentTask(payload DevisSentPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeDevisSent, data), nil
}

// NewDevisResponseTask constructs an Asynq task.
func NewDevisResponseTask(payload DevisResponsePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeDevisResponse, data), nil
}

// NewContactAckTask constructs an Asynq task.
func NewContactAckTask(payload ContactAckPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeContactAck, data), nil
}

// MailHandlers processes the mail task types with an SMTP mailer.
type MailHandlers struct {
	mailer *notify.Mailer
	staff  string
	logger *slog.Logger
}

// NewMailHandlers constructs the worker-side handlers. staff is the inbox
// receiving quote decision notifications.
func NewMailHandlers(mailer *notify.Mailer, staff string, logger *slog.Logger) *MailHandlers {
	return &MailHandlers{mailer: mailer, staff: staff, logger: logger}
}

// HandleDevisSent processes TaskTypeDevisSent tasks.
func (h *MailHandlers) HandleDevisSent(ctx context.Context, t *asynq.Task) error {
	var payload DevisSentPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	body := fmt.Sprintf(
		"Bonjour,\n\nYour quote %s (total %.2f EUR) is ready for review.\nLog in to accept, refuse or request changes.\n",
		payload.Number, payload.Total)
	if err := h.mailer.Send(ctx, payload.To, "Quote "+payload.Number+" awaiting your review", body); err != nil {
		return err
	}
	h.logger.Info("devis sent email delivered", slog.String("number", payload.Number))
	return nil
}

// HandleDevisResponse processes TaskTypeDevisResponse tasks.
func (h *MailHandlers) HandleDevisResponse(ctx context.Context, t *asynq.Task) error {
	var payload DevisResponsePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	body := fmt.Sprintf("Quote %s: client decision %q.\n", payload.Number, payload.Action)
	if payload.Reason != nil {
		body += "Requested changes: " + *payload.Reason + "\n"
	}
	to := payload.To
	if to == "" {
		to = h.staff
	}
	if err := h.mailer.Send(ctx, to, "Quote "+payload.Number+": "+payload.Action, body); err != nil {
		return err
	}
	h.logger.Info("devis response email delivered", slog.String("number", payload.Number))
	return nil
}

// HandleContactAck processes TaskTypeContactAck tasks.
func (h *MailHandlers) HandleContactAck(ctx context.Context, t *asynq.Task) error {
	var payload ContactAckPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	body := fmt.Sprintf("Bonjour %s,\n\nWe received your message and will get back to you shortly.\n", payload.Name)
	return h.mailer.Send(ctx, payload.To, "We received your message", body)
}
