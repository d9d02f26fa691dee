package jobs_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatekeep-io/gatekeep/jobs"
)

func TestMailEnqueuerQueuesTask(t *testing.T) {
	mr := miniredis.RunT(t)
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer func() {
		_ = client.Close()
	}()

	enqueuer := jobs.NewMailEnqueuer(client, "https://app.test.local")
	err := enqueuer.EnqueueVerificationMail(context.Background(), "ana@x.com", "Ana", "sometoken")
	require.NoError(t, err)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer func() {
		_ = inspector.Close()
	}()
	pending, err := inspector.ListPendingTasks(jobs.QueueDefault)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, jobs.TaskTypeSendEmail, pending[0].Type)
	assert.Contains(t, string(pending[0].Payload), "sometoken")
}

func TestMailEnqueuerReportsBrokerFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := asynq.NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer func() {
		_ = client.Close()
	}()
	mr.Close()

	enqueuer := jobs.NewMailEnqueuer(client, "https://app.test.local")
	err := enqueuer.EnqueueVerificationMail(context.Background(), "ana@x.com", "Ana", "sometoken")
	assert.Error(t, err)
}
