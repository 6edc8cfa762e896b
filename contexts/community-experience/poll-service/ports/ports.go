package ports

import (
	"context"
	"time"

	"agora/contexts/community-experience/poll-service/domain/entities"
	"agora/internal/shared/events"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type CreatePollInput struct {
	Title    string
	Options  []string
	Branch   string
	Year     string
	ClosesAt time.Time
}

// RecordVoteInput carries a cast-vote request. PollID always travels as an
// explicit parameter; URL-versus-body extraction is the HTTP layer's concern.
type RecordVoteInput struct {
	PollID string
	UserID string
	Option string
}

type ListPollsInput struct {
	Branch string
	Year   string
	Limit  int
}

// PollRepository is the persistence port for polls and votes.
//
// CreateVote must fail with domain ErrDuplicateVote when a vote for the same
// (poll, user) pair already exists, backed by a storage-level uniqueness
// constraint so the guarantee holds across concurrent server instances.
type PollRepository interface {
	CreatePoll(ctx context.Context, poll entities.Poll) error
	GetPoll(ctx context.Context, pollID string) (entities.Poll, error)
	ListPolls(ctx context.Context, input ListPollsInput) ([]entities.Poll, error)
	FindVote(ctx context.Context, pollID string, userID string) (entities.Vote, bool, error)
	CreateVote(ctx context.Context, vote entities.Vote) error
	CountVotesByOption(ctx context.Context, pollID string) (map[string]int, error)
}

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
