// Package jobs defines the background tasks processed by the worker.
package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/gatekeep-io/gatekeep/internal/jobs"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// Mailer delivers a composed message. Satisfied by mail.Client.
type Mailer interface {
	Send(to, subject, body string) error
}

// NewSendEmailHandler builds the handler for TaskTypeSendEmail. A payload
// that cannot be decoded is dropped rather than retried; delivery errors are
// returned so asynq retries them.
func NewSendEmailHandler(mailer Mailer, metrics *jobmetrics.Metrics, logger *slog.Logger) asynq.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			logger.Error("decode mail task payload", slog.Any("error", err))
			return asynq.SkipRetry
		}
		tracker := metrics.Track(TaskTypeSendEmail)
		err := mailer.Send(payload.To, payload.Subject, payload.Body)
		if err != nil {
			logger.Error("send mail", slog.String("to", payload.To), slog.Any("error", err))
		} else {
			logger.Info("mail sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
		}
		return tracker.End(err)
	}
}
