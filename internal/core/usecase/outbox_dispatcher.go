package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
	"github.com/atvirokodosprendimai/newsroom/internal/core/ports"
	"github.com/atvirokodosprendimai/newsroom/internal/observability/metrics"
)

const (
	defaultOutboxInterval  = 2 * time.Second
	defaultOutboxBatchSize = 50
	outboxMaxAttempts      = 5
	outboxMaxBackoff       = 5 * time.Minute
)

// OutboxDispatcher delivers article notifications written by the article
// repository. A row is dead-lettered on its outboxMaxAttempts-th failure.
type OutboxDispatcher struct {
	repo      ports.OutboxRepository
	publisher ports.EventPublisher
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	now       func() time.Time

	mu      sync.Mutex
	stop    context.CancelFunc
	running sync.WaitGroup

	delivered atomic.Int64
	failed    atomic.Int64
	dead      atomic.Int64
}

type OutboxDispatcherMetrics struct {
	DispatchSuccessTotal int64
	DispatchFailureTotal int64
	DispatchDeadTotal    int64
}

func NewOutboxDispatcher(repo ports.OutboxRepository, publisher ports.EventPublisher, logger *slog.Logger, interval time.Duration, batchSize int) *OutboxDispatcher {
	if interval <= 0 {
		interval = defaultOutboxInterval
	}
	if batchSize <= 0 {
		batchSize = defaultOutboxBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OutboxDispatcher{
		repo:      repo,
		publisher: publisher,
		logger:    logger.With("component", "outbox"),
		interval:  interval,
		batchSize: batchSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start is a no-op while the dispatcher is already running.
func (d *OutboxDispatcher) Start(parent context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stop != nil {
		return
	}
	ctx, stop := context.WithCancel(parent)
	d.stop = stop
	d.running.Add(1)
	go func() {
		defer d.running.Done()
		d.poll(ctx)
	}()
}

// Close stops polling and waits for an in-flight batch to finish.
func (d *OutboxDispatcher) Close() error {
	d.mu.Lock()
	stop := d.stop
	d.stop = nil
	d.mu.Unlock()
	if stop != nil {
		stop()
	}
	d.running.Wait()
	return nil
}

func (d *OutboxDispatcher) poll(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if err := d.dispatchBatch(ctx); err != nil && ctx.Err() == nil {
			d.logger.ErrorContext(ctx, "outbox dispatch batch failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// dispatchBatch returns only bookkeeping errors; delivery failures are
// recorded on the row and the batch moves on.
func (d *OutboxDispatcher) dispatchBatch(ctx context.Context) error {
	pending, err := d.repo.FetchPending(ctx, d.batchSize)
	if err != nil {
		return fmt.Errorf("fetch pending: %w", err)
	}
	for _, event := range pending {
		if err := d.deliver(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

func (d *OutboxDispatcher) deliver(ctx context.Context, event domain.OutboxEvent) error {
	var envelope domain.EventEnvelope
	if err := json.Unmarshal(event.PayloadJSON, &envelope); err != nil {
		return d.retryLater(ctx, event, fmt.Sprintf("decode payload: %v", err))
	}

	if err := d.publisher.Publish(ctx, event.Topic, envelope); err != nil {
		d.logger.WarnContext(ctx, "outbox publish failed",
			"event_id", event.EventID,
			"aggregate", envelope.AggregateType+"/"+envelope.AggregateID,
			"attempt", event.Attempts+1,
			"error", err,
		)
		return d.retryLater(ctx, event, err.Error())
	}

	if err := d.repo.MarkDispatched(ctx, event.ID); err != nil {
		return fmt.Errorf("mark %s dispatched: %w", event.EventID, err)
	}
	d.count(metrics.ResultSuccess)
	return nil
}

func (d *OutboxDispatcher) retryLater(ctx context.Context, event domain.OutboxEvent, reason string) error {
	d.count(metrics.ResultFailure)

	attempts := event.Attempts + 1
	if attempts >= outboxMaxAttempts {
		if err := d.repo.MarkDead(ctx, event.ID, attempts, reason); err != nil {
			return fmt.Errorf("mark %s dead: %w", event.EventID, err)
		}
		d.count(metrics.ResultDead)
		d.logger.ErrorContext(ctx, "outbox event dead-lettered", "event_id", event.EventID, "attempts", attempts, "error", reason)
		return nil
	}

	next := d.now().Add(backoffDuration(attempts)).Format(time.RFC3339Nano)
	if err := d.repo.MarkFailed(ctx, event.ID, attempts, next, reason); err != nil {
		return fmt.Errorf("mark %s failed: %w", event.EventID, err)
	}
	return nil
}

func (d *OutboxDispatcher) count(result string) {
	switch result {
	case metrics.ResultSuccess:
		d.delivered.Add(1)
	case metrics.ResultFailure:
		d.failed.Add(1)
	case metrics.ResultDead:
		d.dead.Add(1)
	}
	metrics.OutboxDispatchTotal.WithLabelValues(result).Inc()
}

func (d *OutboxDispatcher) Metrics() OutboxDispatcherMetrics {
	return OutboxDispatcherMetrics{
		DispatchSuccessTotal: d.delivered.Load(),
		DispatchFailureTotal: d.failed.Load(),
		DispatchDeadTotal:    d.dead.Load(),
	}
}

// backoffDuration is attempt² seconds, at least one second and at most outboxMaxBackoff.
func backoffDuration(attempt int) time.Duration {
	if attempt <= 1 {
		return time.Second
	}
	if attempt > 17 {
		return outboxMaxBackoff
	}
	return min(time.Duration(attempt*attempt)*time.Second, outboxMaxBackoff)
}
