package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/gatekeep-io/gatekeep/internal/jobs"
)

// QueueInfoFetcher is the slice of asynq.Inspector the sampler needs.
type QueueInfoFetcher interface {
	GetQueueInfo(queue string) (*asynq.QueueInfo, error)
}

// QueueSampler periodically reads broker queue state and publishes it as
// Prometheus gauges.
type QueueSampler struct {
	inspector QueueInfoFetcher
	metrics   *jobmetrics.Metrics
	logger    *slog.Logger
	interval  time.Duration
}

// NewQueueSampler builds a sampler polling the broker every interval.
func NewQueueSampler(inspector QueueInfoFetcher, metrics *jobmetrics.Metrics, logger *slog.Logger, interval time.Duration) *QueueSampler {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &QueueSampler{inspector: inspector, metrics: metrics, logger: logger, interval: interval}
}

// Sample reads queue state once and updates the gauges. A queue the broker
// has not seen yet reads as empty.
func (s *QueueSampler) Sample() error {
	info, err := s.inspector.GetQueueInfo(QueueDefault)
	if err != nil {
		if errors.Is(err, asynq.ErrQueueNotFound) {
			info = &asynq.QueueInfo{Queue: QueueDefault}
		} else {
			return err
		}
	}
	s.metrics.SetQueueDepth(QueueDefault, "pending", info.Pending)
	s.metrics.SetQueueDepth(QueueDefault, "active", info.Active)
	s.metrics.SetQueueDepth(QueueDefault, "scheduled", info.Scheduled)
	s.metrics.SetQueueDepth(QueueDefault, "retry", info.Retry)
	s.metrics.SetQueueDepth(QueueDefault, "archived", info.Archived)
	return nil
}

// Run samples until the context is cancelled.
func (s *QueueSampler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		if err := s.Sample(); err != nil {
			s.logger.Warn("sample queue depth", slog.Any("error", err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
