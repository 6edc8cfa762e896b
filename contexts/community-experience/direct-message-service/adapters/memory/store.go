package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"agora/contexts/community-experience/direct-message-service/domain/entities"
	domainerrors "agora/contexts/community-experience/direct-message-service/domain/errors"
	"agora/contexts/community-experience/direct-message-service/ports"
	"agora/internal/shared/events"

	"github.com/google/uuid"
)

type outboxRecord struct {
	envelope  events.Envelope
	published bool
}

// Store is the in-memory repository used by tests and local runs. It enforces
// the same pair uniqueness as the postgres unique index so concurrency tests
// exercise the real conflict path.
type Store struct {
	mu sync.RWMutex

	conversations map[string]entities.Conversation
	pairIndex     map[string]string // "low|high" -> conversation id
	messages      map[string][]entities.Message
	outbox        map[string]outboxRecord
}

func NewStore(seed []entities.Conversation) *Store {
	conversations := make(map[string]entities.Conversation, len(seed))
	pairIndex := make(map[string]string, len(seed))
	for _, conversation := range seed {
		conversations[conversation.ConversationID] = conversation
		pairIndex[pairKey(conversation.ParticipantLowID, conversation.ParticipantHighID)] = conversation.ConversationID
	}
	return &Store{
		conversations: conversations,
		pairIndex:     pairIndex,
		messages:      make(map[string][]entities.Message),
		outbox:        make(map[string]outboxRecord),
	}
}

func (s *Store) FindConversationByPair(_ context.Context, lowID string, highID string) (entities.Conversation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conversationID, ok := s.pairIndex[pairKey(lowID, highID)]
	if !ok {
		return entities.Conversation{}, false, nil
	}
	return s.conversations[conversationID], true, nil
}

func (s *Store) CreateConversation(_ context.Context, conversation entities.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey(conversation.ParticipantLowID, conversation.ParticipantHighID)
	if _, exists := s.pairIndex[key]; exists {
		return domainerrors.ErrConversationExists
	}
	s.conversations[conversation.ConversationID] = conversation
	s.pairIndex[key] = conversation.ConversationID
	return nil
}

func (s *Store) GetConversation(_ context.Context, conversationID string) (entities.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conversation, ok := s.conversations[strings.TrimSpace(conversationID)]
	if !ok {
		return entities.Conversation{}, domainerrors.ErrConversationNotFound
	}
	return conversation, nil
}

func (s *Store) ListConversationsByUser(_ context.Context, userID string) ([]entities.ConversationSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID = strings.TrimSpace(userID)
	items := make([]entities.ConversationSummary, 0)
	for _, conversation := range s.conversations {
		if !conversation.HasParticipant(userID) {
			continue
		}
		summary := entities.ConversationSummary{
			Conversation:  conversation,
			LastMessageAt: conversation.CreatedAt,
		}
		if history := s.messages[conversation.ConversationID]; len(history) > 0 {
			last := history[len(history)-1]
			summary.LastMessageAt = last.CreatedAt
			summary.LastContent = last.Content
		}
		items = append(items, summary)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].LastMessageAt.After(items[j].LastMessageAt)
	})
	return items, nil
}

func (s *Store) CreateMessage(_ context.Context, message entities.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conversations[message.ConversationID]; !ok {
		return domainerrors.ErrConversationNotFound
	}
	s.messages[message.ConversationID] = append(s.messages[message.ConversationID], message)
	return nil
}

func (s *Store) ListMessages(_ context.Context, input ports.ListMessagesInput) ([]entities.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.messages[strings.TrimSpace(input.ConversationID)]
	items := make([]entities.Message, len(history))
	copy(items, history)
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if input.Limit > 0 && len(items) > input.Limit {
		items = items[len(items)-input.Limit:]
	}
	return items, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope events.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox[envelope.EventID] = outboxRecord{envelope: envelope}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]events.Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]events.Envelope, 0)
	for _, record := range s.outbox {
		if record.published {
			continue
		}
		items = append(items, record.envelope)
		if limit > 0 && len(items) >= limit {
			break
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].OccurredAtUTC.Before(items[j].OccurredAtUTC)
	})
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, eventID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.outbox[eventID]
	if !ok {
		return nil
	}
	record.published = true
	s.outbox[eventID] = record
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func pairKey(lowID string, highID string) string {
	return lowID + "|" + highID
}

var _ ports.Repository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
