package ports

import (
	"context"
	"time"

	"agora/contexts/community-experience/direct-message-service/domain/entities"
	"agora/internal/shared/events"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// ResolveConversationInput carries the unordered participant pair of a
// resolve-conversation request.
type ResolveConversationInput struct {
	ParticipantA string
	ParticipantB string
}

// AppendMessageInput carries an append-message request. The receiver is never
// part of the input; it is derived from the conversation's participant pair.
type AppendMessageInput struct {
	ConversationID string
	SenderID       string
	Content        string
}

type ListMessagesInput struct {
	ConversationID string
	Limit          int
}

// Repository is the persistence port for conversations and messages.
//
// CreateConversation must fail with domain ErrConversationExists when another
// row already holds the same normalized pair; callers resolve that conflict by
// re-fetching instead of surfacing an error.
type Repository interface {
	FindConversationByPair(ctx context.Context, lowID string, highID string) (entities.Conversation, bool, error)
	CreateConversation(ctx context.Context, conversation entities.Conversation) error
	GetConversation(ctx context.Context, conversationID string) (entities.Conversation, error)
	ListConversationsByUser(ctx context.Context, userID string) ([]entities.ConversationSummary, error)
	CreateMessage(ctx context.Context, message entities.Message) error
	ListMessages(ctx context.Context, input ListMessagesInput) ([]entities.Message, error)
}

// OutboxWriter persists events in the same storage as state changes so the
// worker relay can hand them to external delivery collaborators.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope events.Envelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]events.Envelope, error)
	MarkOutboxPublished(ctx context.Context, eventID string, publishedAt time.Time) error
}

type Publisher interface {
	Publish(ctx context.Context, topic string, envelope events.Envelope) error
}
