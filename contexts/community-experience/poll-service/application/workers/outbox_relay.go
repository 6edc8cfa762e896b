package workers

import (
	"context"
	"log/slog"
	"time"

	"agora/contexts/community-experience/poll-service/application"
	"agora/contexts/community-experience/poll-service/ports"
)

// OutboxRelay hands persisted poll events to the delivery bus once storage
// has committed them.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.Publisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes a bounded batch of pending outbox rows and marks each row
// published only after the bus accepts it. It stops on the first failure so
// the retry loop can reprocess remaining rows safely.
func (r OutboxRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("poll outbox list failed",
			"event", "poll_outbox_list_failed",
			"module", "community-experience/poll-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, envelope := range pending {
		if err := r.Publisher.Publish(ctx, envelope.EventType, envelope); err != nil {
			logger.Error("poll outbox publish failed",
				"event", "poll_outbox_publish_failed",
				"module", "community-experience/poll-service",
				"layer", "worker",
				"event_id", envelope.EventID,
				"event_type", envelope.EventType,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, envelope.EventID, now); err != nil {
			logger.Error("poll outbox mark published failed",
				"event", "poll_outbox_mark_published_failed",
				"module", "community-experience/poll-service",
				"layer", "worker",
				"event_id", envelope.EventID,
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("poll outbox relay cycle completed",
		"event", "poll_outbox_relay_completed",
		"module", "community-experience/poll-service",
		"layer", "worker",
		"published_count", len(pending),
	)
	return nil
}
