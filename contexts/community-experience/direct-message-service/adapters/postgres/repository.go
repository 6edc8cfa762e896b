package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"agora/contexts/community-experience/direct-message-service/domain/entities"
	domainerrors "agora/contexts/community-experience/direct-message-service/domain/errors"
	"agora/contexts/community-experience/direct-message-service/ports"
	"agora/internal/shared/events"
	"agora/internal/shared/outbox"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) FindConversationByPair(ctx context.Context, lowID string, highID string) (entities.Conversation, bool, error) {
	var row conversationModel
	err := r.db.WithContext(ctx).
		Where("participant_low_id = ?", strings.TrimSpace(lowID)).
		Where("participant_high_id = ?", strings.TrimSpace(highID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Conversation{}, false, nil
		}
		return entities.Conversation{}, false, r.logError("dm_repo_find_conversation_by_pair_failed", err,
			"participant_low_id", strings.TrimSpace(lowID),
			"participant_high_id", strings.TrimSpace(highID),
		)
	}
	return row.toEntity(), true, nil
}

// CreateConversation relies on the unique index over the normalized pair.
// A 23505 from a concurrent first contact maps to ErrConversationExists so
// the application layer can re-fetch the winning row.
func (r *Repository) CreateConversation(ctx context.Context, conversation entities.Conversation) error {
	row := conversationModelFromEntity(conversation)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConversationExists
		}
		return r.logError("dm_repo_create_conversation_failed", err,
			"conversation_id", conversation.ConversationID,
		)
	}
	return nil
}

func (r *Repository) GetConversation(ctx context.Context, conversationID string) (entities.Conversation, error) {
	var row conversationModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(conversationID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Conversation{}, domainerrors.ErrConversationNotFound
		}
		return entities.Conversation{}, r.logError("dm_repo_get_conversation_failed", err,
			"conversation_id", strings.TrimSpace(conversationID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListConversationsByUser(ctx context.Context, userID string) ([]entities.ConversationSummary, error) {
	userID = strings.TrimSpace(userID)
	var rows []conversationModel
	if err := r.db.WithContext(ctx).
		Where("participant_low_id = ? OR participant_high_id = ?", userID, userID).
		Find(&rows).Error; err != nil {
		return nil, r.logError("dm_repo_list_conversations_failed", err, "user_id", userID)
	}

	items := make([]entities.ConversationSummary, 0, len(rows))
	for _, row := range rows {
		summary := entities.ConversationSummary{
			Conversation:  row.toEntity(),
			LastMessageAt: row.CreatedAt,
		}
		var last messageModel
		err := r.db.WithContext(ctx).
			Where("conversation_id = ?", row.ID).
			Order("created_at DESC").
			First(&last).
			Error
		if err == nil {
			summary.LastMessageAt = last.CreatedAt
			summary.LastContent = last.Content
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, r.logError("dm_repo_list_conversations_last_message_failed", err,
				"conversation_id", row.ID,
			)
		}
		items = append(items, summary)
	}
	sortSummariesByActivity(items)
	return items, nil
}

func (r *Repository) CreateMessage(ctx context.Context, message entities.Message) error {
	row := messageModelFromEntity(message)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("dm_repo_create_message_failed", err,
			"message_id", message.MessageID,
			"conversation_id", message.ConversationID,
		)
	}
	return nil
}

func (r *Repository) ListMessages(ctx context.Context, input ports.ListMessagesInput) ([]entities.Message, error) {
	tx := r.db.WithContext(ctx).
		Where("conversation_id = ?", strings.TrimSpace(input.ConversationID)).
		Order("created_at ASC")
	if input.Limit > 0 {
		tx = tx.Limit(input.Limit)
	}
	var rows []messageModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, r.logError("dm_repo_list_messages_failed", err,
			"conversation_id", strings.TrimSpace(input.ConversationID),
		)
	}
	items := make([]entities.Message, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope events.Envelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		ID:         envelope.EventID,
		EventType:  envelope.EventType,
		Payload:    payload,
		Status:     outbox.StatusPending,
		OccurredAt: envelope.OccurredAtUTC,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("dm_repo_append_outbox_failed", err, "event_id", envelope.EventID)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]events.Envelope, error) {
	tx := r.db.WithContext(ctx).
		Where("status = ?", outbox.StatusPending).
		Where("event_type LIKE ?", "message.%").
		Order("occurred_at ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var rows []outboxModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, r.logError("dm_repo_list_pending_outbox_failed", err)
	}
	items := make([]events.Envelope, 0, len(rows))
	for _, row := range rows {
		var envelope events.Envelope
		if err := json.Unmarshal(row.Payload, &envelope); err != nil {
			return nil, err
		}
		items = append(items, envelope)
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, eventID string, publishedAt time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("id = ?", eventID).
		Updates(map[string]any{
			"status":       outbox.StatusPublished,
			"published_at": publishedAt.UTC(),
		}).Error
	if err != nil {
		return r.logError("dm_repo_mark_outbox_published_failed", err, "event_id", eventID)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+7)
	fields = append(fields,
		"event", event,
		"module", "community-experience/direct-message-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("direct message repository operation failed", fields...)
	return err
}

func sortSummariesByActivity(items []entities.ConversationSummary) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].LastMessageAt.After(items[j].LastMessageAt)
	})
}

type conversationModel struct {
	ID                string    `gorm:"column:id;primaryKey"`
	ParticipantLowID  string    `gorm:"column:participant_low_id;uniqueIndex:idx_conversations_pair"`
	ParticipantHighID string    `gorm:"column:participant_high_id;uniqueIndex:idx_conversations_pair"`
	CreatedAt         time.Time `gorm:"column:created_at"`
}

func (conversationModel) TableName() string {
	return "conversations"
}

func conversationModelFromEntity(conversation entities.Conversation) conversationModel {
	return conversationModel{
		ID:                strings.TrimSpace(conversation.ConversationID),
		ParticipantLowID:  strings.TrimSpace(conversation.ParticipantLowID),
		ParticipantHighID: strings.TrimSpace(conversation.ParticipantHighID),
		CreatedAt:         conversation.CreatedAt.UTC(),
	}
}

func (m conversationModel) toEntity() entities.Conversation {
	return entities.Conversation{
		ConversationID:    m.ID,
		ParticipantLowID:  m.ParticipantLowID,
		ParticipantHighID: m.ParticipantHighID,
		CreatedAt:         m.CreatedAt,
	}
}

type messageModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	ConversationID string    `gorm:"column:conversation_id;index"`
	SenderID       string    `gorm:"column:sender_id"`
	ReceiverID     string    `gorm:"column:receiver_id"`
	Content        string    `gorm:"column:content"`
	CreatedAt      time.Time `gorm:"column:created_at;index"`
}

func (messageModel) TableName() string {
	return "messages"
}

func messageModelFromEntity(message entities.Message) messageModel {
	return messageModel{
		ID:             strings.TrimSpace(message.MessageID),
		ConversationID: strings.TrimSpace(message.ConversationID),
		SenderID:       strings.TrimSpace(message.SenderID),
		ReceiverID:     strings.TrimSpace(message.ReceiverID),
		Content:        message.Content,
		CreatedAt:      message.CreatedAt.UTC(),
	}
}

func (m messageModel) toEntity() entities.Message {
	return entities.Message{
		MessageID:      m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		ReceiverID:     m.ReceiverID,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}

type outboxModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	EventType   string     `gorm:"column:event_type;index"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status;index"`
	OccurredAt  time.Time  `gorm:"column:occurred_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "outbox_events"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.Repository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
