package jobs

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/gatekeep-io/gatekeep/internal/mail"
)

// MailEnqueuer queues verification emails onto the asynq broker. It
// implements accounts.Enqueuer.
type MailEnqueuer struct {
	client      *asynq.Client
	frontendURL string
}

// NewMailEnqueuer constructs a MailEnqueuer.
func NewMailEnqueuer(client *asynq.Client, frontendURL string) *MailEnqueuer {
	return &MailEnqueuer{client: client, frontendURL: frontendURL}
}

// EnqueueVerificationMail composes the verification message and hands it to
// the queue. The account row is already committed when this runs.
func (e *MailEnqueuer) EnqueueVerificationMail(ctx context.Context, to, name, token string) error {
	task, err := NewSendEmailTask(SendEmailPayload{
		To:      to,
		Subject: mail.VerificationSubject,
		Body:    mail.VerificationBody(name, e.frontendURL, token),
	})
	if err != nil {
		return fmt.Errorf("jobs: build mail task: %w", err)
	}
	_, err = e.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(5),
		asynq.TaskID(uuid.NewString()),
	)
	if err != nil {
		return fmt.Errorf("jobs: enqueue mail task: %w", err)
	}
	return nil
}
