// Package outbox relays committed ledger events from the outbox table to a
// message broker.
package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/metrics"
	"github.com/SscSPs/ledger_engine/internal/platform/config"
)

// Publisher delivers one outbox message to the broker.
type Publisher interface {
	Publish(ctx context.Context, msg domain.OutboxMessage) error
	Close() error
}

// Relay polls pending outbox messages and hands them to a Publisher.
// Orgs are published in parallel; an org's messages go out one at a time in
// insertion order.
type Relay struct {
	repo         portsrepo.OutboxRepository
	publisher    Publisher
	pool         *ants.Pool
	logger       *slog.Logger
	pollInterval time.Duration
	batchSize    int
	maxAttempts  int
	now          func() time.Time
}

// NewRelay creates a relay with a worker pool of cfg.Workers goroutines.
func NewRelay(cfg config.OutboxConfig, repo portsrepo.OutboxRepository, publisher Publisher, logger *slog.Logger) (*Relay, error) {
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("outbox poll interval must be positive, got %s", cfg.PollInterval)
	}
	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create outbox worker pool: %w", err)
	}
	return &Relay{
		repo:         repo,
		publisher:    publisher,
		pool:         pool,
		logger:       logger,
		pollInterval: cfg.PollInterval,
		batchSize:    cfg.BatchSize,
		maxAttempts:  cfg.MaxAttempts,
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

// Start polls until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) {
	r.logger.Info("Starting outbox relay",
		"poll_interval", r.pollInterval.String(),
		"batch_size", r.batchSize,
		"max_attempts", r.maxAttempts,
		"workers", r.pool.Cap(),
	)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Outbox relay stopping due to context cancellation.")
			return
		case <-ticker.C:
			if _, err := r.processPending(ctx); err != nil {
				r.logger.Error("Error during outbox batch", "error", err)
			}
		}
	}
}

// Close releases the worker pool, waiting for in-flight publishes.
func (r *Relay) Close() error {
	r.logger.Info("Shutting down outbox relay", "running_workers", r.pool.Running())
	if err := r.pool.ReleaseTimeout(10 * time.Second); err != nil {
		r.logger.Warn("Outbox relay workers did not stop in time", "error", err)
	}
	return r.publisher.Close()
}

// groupByOrg splits a batch into per-org runs, keeping each run in batch order.
func groupByOrg(messages []domain.OutboxMessage) [][]domain.OutboxMessage {
	index := make(map[string]int)
	var groups [][]domain.OutboxMessage
	for _, m := range messages {
		i, ok := index[m.OrgID]
		if !ok {
			i = len(groups)
			index[m.OrgID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], m)
	}
	return groups
}

// processPending relays one batch and returns how many messages were published.
func (r *Relay) processPending(ctx context.Context) (int, error) {
	messages, err := r.repo.GetPending(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending outbox messages: %w", err)
	}
	if len(messages) == 0 {
		r.logger.Debug("No pending outbox messages found.")
		return 0, nil
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		published int
	)
	for _, group := range groupByOrg(messages) {
		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			n := r.publishGroup(ctx, group)
			mu.Lock()
			published += n
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			r.logger.Error("Failed to submit outbox group to worker pool", "org_id", group[0].OrgID, "error", err)
		}
	}
	wg.Wait()

	r.logger.Debug("Outbox batch relayed", "fetched", len(messages), "published", published)
	return published, nil
}

// publishGroup publishes one org's messages in order. A message that will be
// retried stops the group so later events never overtake it.
func (r *Relay) publishGroup(ctx context.Context, group []domain.OutboxMessage) int {
	published := 0
	for _, msg := range group {
		logger := r.logger.With("outbox_id", msg.ID, "org_id", msg.OrgID, "event_type", string(msg.EventType))

		if err := r.publisher.Publish(ctx, msg); err != nil {
			if !r.recordFailure(ctx, logger, msg, err) {
				return published
			}
			continue
		}

		if err := r.repo.MarkPublished(ctx, msg.ID, r.now()); err != nil {
			// The broker has it; a duplicate on the next poll is acceptable.
			logger.Error("Published outbox message but failed to mark it", "error", err)
			return published
		}
		metrics.OutboxPublished.Inc()
		published++
	}
	return published
}

// recordFailure counts the attempt and reports whether the message is now dead.
func (r *Relay) recordFailure(ctx context.Context, logger *slog.Logger, msg domain.OutboxMessage, cause error) bool {
	attempts := msg.Attempts + 1
	if err := r.repo.IncrementAttempts(ctx, msg.ID, r.now()); err != nil {
		logger.Error("Failed to increment attempts for outbox message", "error", err)
		return false
	}
	if attempts < r.maxAttempts {
		metrics.OutboxFailures.WithLabelValues("retry").Inc()
		logger.Warn("Failed to publish outbox message, will retry", "attempts", attempts, "error", cause)
		return false
	}

	metrics.OutboxFailures.WithLabelValues("dead").Inc()
	logger.Error("Max attempts reached for outbox message, marking as FAILED", "attempts", attempts, "error", cause)
	if err := r.repo.MarkFailed(ctx, msg.ID, r.now()); err != nil {
		logger.Error("Failed to mark outbox message as FAILED", "error", err)
		return false
	}
	return true
}
