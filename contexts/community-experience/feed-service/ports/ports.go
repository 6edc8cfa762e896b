package ports

import (
	"context"
	"time"

	"agora/contexts/community-experience/feed-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type PostConfessionInput struct {
	AuthorID string
	Content  string
}

type ListConfessionsInput struct {
	Limit int
}

type CreateNoteInput struct {
	OwnerID string
	Title   string
	Subject string
	Branch  string
	Year    string
	FileURL string
}

// ListNotesInput filters server-side; empty fields match everything.
// TitleQuery is a case-insensitive substring match.
type ListNotesInput struct {
	Branch     string
	Year       string
	Subject    string
	TitleQuery string
	Limit      int
}

type RateNoteInput struct {
	NoteID string
	Upvote bool
}

type Repository interface {
	CreateConfession(ctx context.Context, confession entities.Confession) error
	ListConfessions(ctx context.Context, input ListConfessionsInput) ([]entities.Confession, error)
	CreateNote(ctx context.Context, note entities.Note) error
	GetNote(ctx context.Context, noteID string) (entities.Note, error)
	ListNotes(ctx context.Context, input ListNotesInput) ([]entities.Note, error)
	AddNoteVote(ctx context.Context, noteID string, upvote bool, at time.Time) (entities.Note, error)
}
