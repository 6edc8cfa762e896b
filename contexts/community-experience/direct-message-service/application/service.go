package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/community-experience/direct-message-service/domain/entities"
	domainerrors "agora/contexts/community-experience/direct-message-service/domain/errors"
	"agora/contexts/community-experience/direct-message-service/ports"
	"agora/internal/shared/events"
)

// Service orchestrates conversation resolution and message append.
// The participant-pair uniqueness invariant is owned by the repository; the
// service only retries a create conflict as a lookup.
type Service struct {
	Repo   ports.Repository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// Resolve returns the unique conversation for the unordered pair
// {ParticipantA, ParticipantB}, creating it on first contact. Two concurrent
// first-contact calls converge on one row: the loser of the create race gets
// ErrConversationExists from the repository and re-fetches the winner's row.
func (s Service) Resolve(ctx context.Context, input ports.ResolveConversationInput) (entities.Conversation, error) {
	logger := ResolveLogger(s.Logger)
	a := strings.TrimSpace(input.ParticipantA)
	b := strings.TrimSpace(input.ParticipantB)
	if a == "" || b == "" || a == b {
		logger.Warn("conversation resolve validation failed",
			"event", "dm_resolve_validation_failed",
			"module", "community-experience/direct-message-service",
			"layer", "application",
			"participant_a", a,
			"participant_b", b,
		)
		return entities.Conversation{}, domainerrors.ErrInvalidParticipants
	}

	lowID, highID := entities.NormalizePair(a, b)
	if existing, found, err := s.Repo.FindConversationByPair(ctx, lowID, highID); err != nil {
		return entities.Conversation{}, err
	} else if found {
		return existing, nil
	}

	conversationID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Conversation{}, err
	}
	conversation := entities.Conversation{
		ConversationID:    conversationID,
		ParticipantLowID:  lowID,
		ParticipantHighID: highID,
		CreatedAt:         s.now(),
	}
	if err := s.Repo.CreateConversation(ctx, conversation); err != nil {
		if errors.Is(err, domainerrors.ErrConversationExists) {
			existing, found, findErr := s.Repo.FindConversationByPair(ctx, lowID, highID)
			if findErr != nil {
				return entities.Conversation{}, findErr
			}
			if found {
				logger.Info("conversation create race resolved to existing row",
					"event", "dm_resolve_race_resolved",
					"module", "community-experience/direct-message-service",
					"layer", "application",
					"conversation_id", existing.ConversationID,
				)
				return existing, nil
			}
		}
		return entities.Conversation{}, err
	}

	logger.Info("conversation created",
		"event", "dm_conversation_created",
		"module", "community-experience/direct-message-service",
		"layer", "application",
		"conversation_id", conversation.ConversationID,
	)
	return conversation, nil
}

// Append persists a message in an existing conversation. The receiver is
// derived as the other participant; delivery to push/notification
// collaborators happens through the outbox, not here.
func (s Service) Append(ctx context.Context, input ports.AppendMessageInput) (entities.Message, error) {
	logger := ResolveLogger(s.Logger)
	conversationID := strings.TrimSpace(input.ConversationID)
	senderID := strings.TrimSpace(input.SenderID)
	if conversationID == "" || senderID == "" {
		return entities.Message{}, domainerrors.ErrInvalidRequest
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return entities.Message{}, domainerrors.ErrEmptyContent
	}

	conversation, err := s.Repo.GetConversation(ctx, conversationID)
	if err != nil {
		return entities.Message{}, err
	}
	if !conversation.HasParticipant(senderID) {
		logger.Warn("message append rejected for non-participant",
			"event", "dm_append_not_a_participant",
			"module", "community-experience/direct-message-service",
			"layer", "application",
			"conversation_id", conversationID,
			"sender_id", senderID,
		)
		return entities.Message{}, domainerrors.ErrNotAParticipant
	}

	messageID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Message{}, err
	}
	message := entities.Message{
		MessageID:      messageID,
		ConversationID: conversation.ConversationID,
		SenderID:       senderID,
		ReceiverID:     conversation.OtherParticipant(senderID),
		Content:        content,
		CreatedAt:      s.now(),
	}
	if err := s.Repo.CreateMessage(ctx, message); err != nil {
		return entities.Message{}, err
	}
	if err := s.appendMessageEvent(ctx, message); err != nil {
		return entities.Message{}, err
	}

	logger.Info("message appended",
		"event", "dm_message_appended",
		"module", "community-experience/direct-message-service",
		"layer", "application",
		"message_id", message.MessageID,
		"conversation_id", message.ConversationID,
		"sender_id", message.SenderID,
		"receiver_id", message.ReceiverID,
	)
	return message, nil
}

func (s Service) ListConversations(ctx context.Context, userID string) ([]entities.ConversationSummary, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	return s.Repo.ListConversationsByUser(ctx, strings.TrimSpace(userID))
}

func (s Service) ListMessages(ctx context.Context, input ports.ListMessagesInput) ([]entities.Message, error) {
	if strings.TrimSpace(input.ConversationID) == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	if input.Limit <= 0 {
		input.Limit = 50
	}
	if input.Limit > 200 {
		input.Limit = 200
	}
	if _, err := s.Repo.GetConversation(ctx, strings.TrimSpace(input.ConversationID)); err != nil {
		return nil, err
	}
	return s.Repo.ListMessages(ctx, input)
}

func (s Service) appendMessageEvent(ctx context.Context, message entities.Message) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if s.Outbox == nil {
		return nil
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	return s.Outbox.AppendOutbox(ctx, events.Envelope{
		EventID:        eventID,
		EventType:      "message.created",
		SourceService:  "direct-message-service",
		OccurredAtUTC:  message.CreatedAt.UTC(),
		EntityType:     "message",
		EntityID:       message.MessageID,
		PayloadVersion: 1,
		Payload: map[string]any{
			"message_id":      message.MessageID,
			"conversation_id": message.ConversationID,
			"sender_id":       message.SenderID,
			"receiver_id":     message.ReceiverID,
			"created_at":      message.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
