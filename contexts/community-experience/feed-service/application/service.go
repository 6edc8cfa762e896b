package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/community-experience/feed-service/domain/entities"
	domainerrors "agora/contexts/community-experience/feed-service/domain/errors"
	"agora/contexts/community-experience/feed-service/ports"
)

// Service orchestrates the confessions feed and the shared notes catalog.
// Neither surface carries cross-row invariants, so the service only validates
// inputs and delegates to the repository.
type Service struct {
	Repo   ports.Repository
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (s Service) PostConfession(ctx context.Context, input ports.PostConfessionInput) (entities.Confession, error) {
	logger := ResolveLogger(s.Logger)
	authorID := strings.TrimSpace(input.AuthorID)
	if authorID == "" {
		return entities.Confession{}, domainerrors.ErrInvalidRequest
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return entities.Confession{}, domainerrors.ErrEmptyContent
	}

	confessionID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Confession{}, err
	}
	confession := entities.Confession{
		ConfessionID: confessionID,
		AuthorID:     authorID,
		Content:      content,
		CreatedAt:    s.now(),
	}
	if err := s.Repo.CreateConfession(ctx, confession); err != nil {
		return entities.Confession{}, err
	}

	logger.Info("confession posted",
		"event", "feed_confession_posted",
		"module", "community-experience/feed-service",
		"layer", "application",
		"confession_id", confession.ConfessionID,
	)
	return confession, nil
}

// ListConfessions returns the latest confessions, newest first.
func (s Service) ListConfessions(ctx context.Context, input ports.ListConfessionsInput) ([]entities.Confession, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}
	if input.Limit > 100 {
		input.Limit = 100
	}
	return s.Repo.ListConfessions(ctx, input)
}

func (s Service) CreateNote(ctx context.Context, input ports.CreateNoteInput) (entities.Note, error) {
	logger := ResolveLogger(s.Logger)
	ownerID := strings.TrimSpace(input.OwnerID)
	title := strings.TrimSpace(input.Title)
	subject := strings.TrimSpace(input.Subject)
	if ownerID == "" {
		return entities.Note{}, domainerrors.ErrInvalidRequest
	}
	if title == "" || subject == "" {
		return entities.Note{}, domainerrors.ErrInvalidNoteInput
	}

	noteID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Note{}, err
	}
	now := s.now()
	note := entities.Note{
		NoteID:    noteID,
		OwnerID:   ownerID,
		Title:     title,
		Subject:   subject,
		Branch:    strings.TrimSpace(input.Branch),
		Year:      strings.TrimSpace(input.Year),
		FileURL:   strings.TrimSpace(input.FileURL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.CreateNote(ctx, note); err != nil {
		return entities.Note{}, err
	}

	logger.Info("note created",
		"event", "feed_note_created",
		"module", "community-experience/feed-service",
		"layer", "application",
		"note_id", note.NoteID,
		"subject", note.Subject,
	)
	return note, nil
}

func (s Service) ListNotes(ctx context.Context, input ports.ListNotesInput) ([]entities.Note, error) {
	if input.Limit <= 0 {
		input.Limit = 50
	}
	if input.Limit > 200 {
		input.Limit = 200
	}
	return s.Repo.ListNotes(ctx, input)
}

// RateNote bumps the upvote or downvote counter and returns the updated note.
func (s Service) RateNote(ctx context.Context, input ports.RateNoteInput) (entities.Note, error) {
	noteID := strings.TrimSpace(input.NoteID)
	if noteID == "" {
		return entities.Note{}, domainerrors.ErrInvalidRequest
	}
	return s.Repo.AddNoteVote(ctx, noteID, input.Upvote, s.now())
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}
