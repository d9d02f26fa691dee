package jobs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/gatekeep-io/gatekeep/internal/jobs"
	"github.com/gatekeep-io/gatekeep/jobs"
	_ "github.com/gatekeep-io/gatekeep/testing"
)

type stubMailer struct {
	sent []string
	err  error
}

func (s *stubMailer) Send(to, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to+"|"+subject)
	return nil
}

func newHandler(mailer *stubMailer) asynq.HandlerFunc {
	metrics := jobmetrics.NewMetrics(prometheus.NewRegistry())
	return jobs.NewSendEmailHandler(mailer, metrics, nil)
}

func TestSendEmailHandlerDelivers(t *testing.T) {
	mailer := &stubMailer{}
	handler := newHandler(mailer)

	task, err := jobs.NewSendEmailTask(jobs.SendEmailPayload{
		To:      "ana@x.com",
		Subject: "Verify your email address",
		Body:    "hello",
	})
	require.NoError(t, err)

	require.NoError(t, handler(context.Background(), task))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ana@x.com|Verify your email address", mailer.sent[0])
}

func TestSendEmailHandlerSkipsMalformedPayload(t *testing.T) {
	mailer := &stubMailer{}
	handler := newHandler(mailer)

	task := asynq.NewTask(jobs.TaskTypeSendEmail, []byte("not json"))
	err := handler(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, mailer.sent)
}

func TestSendEmailHandlerPropagatesDeliveryError(t *testing.T) {
	sendErr := errors.New("smtp refused")
	mailer := &stubMailer{err: sendErr}
	handler := newHandler(mailer)

	task, err := jobs.NewSendEmailTask(jobs.SendEmailPayload{To: "ana@x.com", Subject: "s", Body: "b"})
	require.NoError(t, err)

	err = handler(context.Background(), task)
	require.ErrorIs(t, err, sendErr)
}
