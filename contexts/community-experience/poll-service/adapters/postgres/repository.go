package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/community-experience/poll-service/domain/entities"
	domainerrors "agora/contexts/community-experience/poll-service/domain/errors"
	"agora/contexts/community-experience/poll-service/ports"
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

func (r *Repository) CreatePoll(ctx context.Context, poll entities.Poll) error {
	row, err := pollModelFromEntity(poll)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("poll_repo_create_poll_failed", err, "poll_id", poll.PollID)
	}
	return nil
}

func (r *Repository) GetPoll(ctx context.Context, pollID string) (entities.Poll, error) {
	var row pollModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(pollID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Poll{}, domainerrors.ErrPollNotFound
		}
		return entities.Poll{}, r.logError("poll_repo_get_poll_failed", err,
			"poll_id", strings.TrimSpace(pollID),
		)
	}
	return row.toEntity()
}

func (r *Repository) ListPolls(ctx context.Context, input ports.ListPollsInput) ([]entities.Poll, error) {
	tx := r.db.WithContext(ctx).Order("created_at DESC")
	if branch := strings.TrimSpace(input.Branch); branch != "" {
		tx = tx.Where("branch = ?", branch)
	}
	if year := strings.TrimSpace(input.Year); year != "" {
		tx = tx.Where("year = ?", year)
	}
	if input.Limit > 0 {
		tx = tx.Limit(input.Limit)
	}
	var rows []pollModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, r.logError("poll_repo_list_polls_failed", err)
	}
	items := make([]entities.Poll, 0, len(rows))
	for _, row := range rows {
		poll, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, poll)
	}
	return items, nil
}

func (r *Repository) FindVote(ctx context.Context, pollID string, userID string) (entities.Vote, bool, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("poll_id = ?", strings.TrimSpace(pollID)).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, false, nil
		}
		return entities.Vote{}, false, r.logError("poll_repo_find_vote_failed", err,
			"poll_id", strings.TrimSpace(pollID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toEntity(), true, nil
}

// CreateVote relies on the unique index over (poll_id, user_id). A 23505 from
// a concurrent duplicate maps to ErrDuplicateVote so the application layer
// reports the same outcome as the sequential already-voted check.
func (r *Repository) CreateVote(ctx context.Context, vote entities.Vote) error {
	row := voteModelFromEntity(vote)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateVote
		}
		return r.logError("poll_repo_create_vote_failed", err,
			"vote_id", vote.VoteID,
			"poll_id", vote.PollID,
		)
	}
	return nil
}

func (r *Repository) CountVotesByOption(ctx context.Context, pollID string) (map[string]int, error) {
	type optionCount struct {
		Option string
		Count  int
	}
	var rows []optionCount
	err := r.db.WithContext(ctx).
		Model(&voteModel{}).
		Select("option, COUNT(*) AS count").
		Where("poll_id = ?", strings.TrimSpace(pollID)).
		Group("option").
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("poll_repo_count_votes_failed", err,
			"poll_id", strings.TrimSpace(pollID),
		)
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Option] = row.Count
	}
	return counts, nil
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
		return r.logError("poll_repo_append_outbox_failed", err, "event_id", envelope.EventID)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]events.Envelope, error) {
	tx := r.db.WithContext(ctx).
		Where("status = ?", outbox.StatusPending).
		Where("event_type LIKE ? OR event_type LIKE ?", "vote.%", "poll.%").
		Order("occurred_at ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	var rows []outboxModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, r.logError("poll_repo_list_pending_outbox_failed", err)
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
		return r.logError("poll_repo_mark_outbox_published_failed", err, "event_id", eventID)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+7)
	fields = append(fields,
		"event", event,
		"module", "community-experience/poll-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("poll repository operation failed", fields...)
	return err
}

type pollModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Title     string    `gorm:"column:title"`
	Options   []byte    `gorm:"column:options"`
	Branch    string    `gorm:"column:branch;index"`
	Year      string    `gorm:"column:year;index"`
	ClosesAt  time.Time `gorm:"column:closes_at;index"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

func (pollModel) TableName() string {
	return "polls"
}

func pollModelFromEntity(poll entities.Poll) (pollModel, error) {
	options, err := json.Marshal(poll.Options)
	if err != nil {
		return pollModel{}, err
	}
	return pollModel{
		ID:        strings.TrimSpace(poll.PollID),
		Title:     poll.Title,
		Options:   options,
		Branch:    strings.TrimSpace(poll.Branch),
		Year:      strings.TrimSpace(poll.Year),
		ClosesAt:  poll.ClosesAt.UTC(),
		CreatedAt: poll.CreatedAt.UTC(),
	}, nil
}

func (m pollModel) toEntity() (entities.Poll, error) {
	var options []string
	if len(m.Options) > 0 {
		if err := json.Unmarshal(m.Options, &options); err != nil {
			return entities.Poll{}, err
		}
	}
	return entities.Poll{
		PollID:    m.ID,
		Title:     m.Title,
		Options:   options,
		Branch:    m.Branch,
		Year:      m.Year,
		ClosesAt:  m.ClosesAt,
		CreatedAt: m.CreatedAt,
	}, nil
}

type voteModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	PollID    string    `gorm:"column:poll_id;uniqueIndex:idx_votes_poll_user"`
	UserID    string    `gorm:"column:user_id;uniqueIndex:idx_votes_poll_user"`
	Option    string    `gorm:"column:option"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	return voteModel{
		ID:        strings.TrimSpace(vote.VoteID),
		PollID:    strings.TrimSpace(vote.PollID),
		UserID:    strings.TrimSpace(vote.UserID),
		Option:    strings.TrimSpace(vote.Option),
		CreatedAt: vote.CreatedAt.UTC(),
	}
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:    m.ID,
		PollID:    m.PollID,
		UserID:    m.UserID,
		Option:    m.Option,
		CreatedAt: m.CreatedAt,
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

var _ ports.PollRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
