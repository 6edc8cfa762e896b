package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/community-experience/feed-service/domain/entities"
	domainerrors "agora/contexts/community-experience/feed-service/domain/errors"
	"agora/contexts/community-experience/feed-service/ports"

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

func (r *Repository) CreateConfession(ctx context.Context, confession entities.Confession) error {
	row := confessionModelFromEntity(confession)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("feed_repo_create_confession_failed", err,
			"confession_id", confession.ConfessionID,
		)
	}
	return nil
}

func (r *Repository) ListConfessions(ctx context.Context, input ports.ListConfessionsInput) ([]entities.Confession, error) {
	tx := r.db.WithContext(ctx).Order("created_at DESC")
	if input.Limit > 0 {
		tx = tx.Limit(input.Limit)
	}
	var rows []confessionModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, r.logError("feed_repo_list_confessions_failed", err)
	}
	items := make([]entities.Confession, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CreateNote(ctx context.Context, note entities.Note) error {
	row := noteModelFromEntity(note)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("feed_repo_create_note_failed", err, "note_id", note.NoteID)
	}
	return nil
}

func (r *Repository) GetNote(ctx context.Context, noteID string) (entities.Note, error) {
	var row noteModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(noteID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Note{}, domainerrors.ErrNoteNotFound
		}
		return entities.Note{}, r.logError("feed_repo_get_note_failed", err,
			"note_id", strings.TrimSpace(noteID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListNotes(ctx context.Context, input ports.ListNotesInput) ([]entities.Note, error) {
	tx := r.db.WithContext(ctx).Order("created_at DESC")
	if branch := strings.TrimSpace(input.Branch); branch != "" {
		tx = tx.Where("branch = ?", branch)
	}
	if year := strings.TrimSpace(input.Year); year != "" {
		tx = tx.Where("year = ?", year)
	}
	if subject := strings.TrimSpace(input.Subject); subject != "" {
		tx = tx.Where("subject = ?", subject)
	}
	if query := strings.TrimSpace(input.TitleQuery); query != "" {
		tx = tx.Where("title ILIKE ?", "%"+query+"%")
	}
	if input.Limit > 0 {
		tx = tx.Limit(input.Limit)
	}
	var rows []noteModel
	if err := tx.Find(&rows).Error; err != nil {
		return nil, r.logError("feed_repo_list_notes_failed", err)
	}
	items := make([]entities.Note, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// AddNoteVote increments the counter in a single UPDATE so concurrent ratings
// never lose increments.
func (r *Repository) AddNoteVote(ctx context.Context, noteID string, upvote bool, at time.Time) (entities.Note, error) {
	noteID = strings.TrimSpace(noteID)
	column := "downvotes"
	if upvote {
		column = "upvotes"
	}
	result := r.db.WithContext(ctx).
		Model(&noteModel{}).
		Where("id = ?", noteID).
		Updates(map[string]any{
			column:       gorm.Expr(column+" + ?", 1),
			"updated_at": at.UTC(),
		})
	if result.Error != nil {
		return entities.Note{}, r.logError("feed_repo_add_note_vote_failed", result.Error,
			"note_id", noteID,
		)
	}
	if result.RowsAffected == 0 {
		return entities.Note{}, domainerrors.ErrNoteNotFound
	}
	return r.GetNote(ctx, noteID)
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+7)
	fields = append(fields,
		"event", event,
		"module", "community-experience/feed-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("feed repository operation failed", fields...)
	return err
}

type confessionModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	AuthorID  string    `gorm:"column:author_id;index"`
	Content   string    `gorm:"column:content"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

func (confessionModel) TableName() string {
	return "confessions"
}

func confessionModelFromEntity(confession entities.Confession) confessionModel {
	return confessionModel{
		ID:        strings.TrimSpace(confession.ConfessionID),
		AuthorID:  strings.TrimSpace(confession.AuthorID),
		Content:   confession.Content,
		CreatedAt: confession.CreatedAt.UTC(),
	}
}

func (m confessionModel) toEntity() entities.Confession {
	return entities.Confession{
		ConfessionID: m.ID,
		AuthorID:     m.AuthorID,
		Content:      m.Content,
		CreatedAt:    m.CreatedAt,
	}
}

type noteModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	OwnerID   string    `gorm:"column:owner_id;index"`
	Title     string    `gorm:"column:title"`
	Subject   string    `gorm:"column:subject;index"`
	Branch    string    `gorm:"column:branch;index"`
	Year      string    `gorm:"column:year;index"`
	FileURL   string    `gorm:"column:file_url"`
	Upvotes   int       `gorm:"column:upvotes"`
	Downvotes int       `gorm:"column:downvotes"`
	Reported  bool      `gorm:"column:reported"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (noteModel) TableName() string {
	return "notes"
}

func noteModelFromEntity(note entities.Note) noteModel {
	return noteModel{
		ID:        strings.TrimSpace(note.NoteID),
		OwnerID:   strings.TrimSpace(note.OwnerID),
		Title:     note.Title,
		Subject:   note.Subject,
		Branch:    note.Branch,
		Year:      note.Year,
		FileURL:   note.FileURL,
		Upvotes:   note.Upvotes,
		Downvotes: note.Downvotes,
		Reported:  note.Reported,
		CreatedAt: note.CreatedAt.UTC(),
		UpdatedAt: note.UpdatedAt.UTC(),
	}
}

func (m noteModel) toEntity() entities.Note {
	return entities.Note{
		NoteID:    m.ID,
		OwnerID:   m.OwnerID,
		Title:     m.Title,
		Subject:   m.Subject,
		Branch:    m.Branch,
		Year:      m.Year,
		FileURL:   m.FileURL,
		Upvotes:   m.Upvotes,
		Downvotes: m.Downvotes,
		Reported:  m.Reported,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

var _ ports.Repository = (*Repository)(nil)
