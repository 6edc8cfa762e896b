package workers

import (
	"context"
	"log/slog"
	"time"

	"agora/contexts/community-experience/direct-message-service/application"
	"agora/contexts/community-experience/direct-message-service/ports"
)

// OutboxRelay hands persisted message events to the delivery bus. Message
// delivery (push, websocket fan-out) stays outside the core; the relay only
// guarantees the event leaves the outbox once storage has committed it.
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
		logger.Error("dm outbox list failed",
			"event", "dm_outbox_list_failed",
			"module", "community-experience/direct-message-service",
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
			logger.Error("dm outbox publish failed",
				"event", "dm_outbox_publish_failed",
				"module", "community-experience/direct-message-service",
				"layer", "worker",
				"event_id", envelope.EventID,
				"event_type", envelope.EventType,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, envelope.EventID, now); err != nil {
			logger.Error("dm outbox mark published failed",
				"event", "dm_outbox_mark_published_failed",
				"module", "community-experience/direct-message-service",
				"layer", "worker",
				"event_id", envelope.EventID,
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("dm outbox relay cycle completed",
		"event", "dm_outbox_relay_completed",
		"module", "community-experience/direct-message-service",
		"layer", "worker",
		"published_count", len(pending),
	)
	return nil
}
