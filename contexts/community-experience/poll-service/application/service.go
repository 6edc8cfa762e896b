package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"agora/contexts/community-experience/poll-service/domain/entities"
	domainerrors "agora/contexts/community-experience/poll-service/domain/errors"
	"agora/contexts/community-experience/poll-service/ports"
	"agora/internal/shared/events"
)

// RecordVoteResult returns the final vote state and the tally recomputed from
// committed votes at read time.
type RecordVoteResult struct {
	Accepted bool
	Vote     entities.Vote
	Tally    entities.Tally
}

// PollStatus is the time-derived open/closed read shape.
type PollStatus struct {
	PollID   string
	Open     bool
	ClosesAt time.Time
}

// PollWithTally is the listing read shape consumed by the poll feed.
type PollWithTally struct {
	Poll  entities.Poll
	Tally entities.Tally
	Open  bool
}

// Service orchestrates poll lifecycle and vote recording. The
// one-vote-per-user invariant is owned by the repository constraint; the
// service only translates the conflict into ErrAlreadyVoted.
type Service struct {
	Repo   ports.PollRepository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

// CreatePoll persists a new poll. Options must contain at least two distinct
// labels and the closing time must lie in the future; polls are immutable
// afterwards.
func (s Service) CreatePoll(ctx context.Context, input ports.CreatePollInput) (entities.Poll, error) {
	logger := ResolveLogger(s.Logger)
	title := strings.TrimSpace(input.Title)
	options := normalizeOptions(input.Options)
	now := s.now()
	if title == "" || len(options) < 2 || !input.ClosesAt.After(now) {
		logger.Warn("poll create validation failed",
			"event", "poll_create_validation_failed",
			"module", "community-experience/poll-service",
			"layer", "application",
			"title", title,
			"option_count", len(options),
		)
		return entities.Poll{}, domainerrors.ErrInvalidPollInput
	}

	pollID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Poll{}, err
	}
	poll := entities.Poll{
		PollID:    pollID,
		Title:     title,
		Options:   options,
		Branch:    strings.TrimSpace(input.Branch),
		Year:      strings.TrimSpace(input.Year),
		ClosesAt:  input.ClosesAt.UTC(),
		CreatedAt: now,
	}
	if err := s.Repo.CreatePoll(ctx, poll); err != nil {
		return entities.Poll{}, err
	}

	logger.Info("poll created",
		"event", "poll_created",
		"module", "community-experience/poll-service",
		"layer", "application",
		"poll_id", poll.PollID,
		"closes_at", poll.ClosesAt.Format(time.RFC3339),
	)
	return poll, nil
}

// PollState reports the time-derived open/closed state. No side effects.
func (s Service) PollState(ctx context.Context, pollID string) (PollStatus, error) {
	poll, err := s.getPoll(ctx, pollID)
	if err != nil {
		return PollStatus{}, err
	}
	return PollStatus{
		PollID:   poll.PollID,
		Open:     poll.IsOpen(s.now()),
		ClosesAt: poll.ClosesAt,
	}, nil
}

// RecordVote records at most one vote per (poll, user). Preconditions run in
// order: poll exists, option belongs to the option set, poll is open at the
// instant of recording, user has not voted. A concurrent duplicate loses the
// insert race inside the repository and surfaces as ErrAlreadyVoted, never as
// a second accepted vote.
func (s Service) RecordVote(ctx context.Context, input ports.RecordVoteInput) (RecordVoteResult, error) {
	logger := ResolveLogger(s.Logger)
	pollID := strings.TrimSpace(input.PollID)
	userID := strings.TrimSpace(input.UserID)
	option := strings.TrimSpace(input.Option)
	if pollID == "" || userID == "" || option == "" {
		return RecordVoteResult{}, domainerrors.ErrInvalidVoteInput
	}

	poll, err := s.getPoll(ctx, pollID)
	if err != nil {
		return RecordVoteResult{}, err
	}
	if !poll.HasOption(option) {
		return RecordVoteResult{}, domainerrors.ErrInvalidOption
	}
	now := s.now()
	if !poll.IsOpen(now) {
		logger.Warn("vote rejected for closed poll",
			"event", "poll_vote_rejected_closed",
			"module", "community-experience/poll-service",
			"layer", "application",
			"poll_id", pollID,
			"user_id", userID,
		)
		return RecordVoteResult{}, domainerrors.ErrPollClosed
	}
	if _, found, err := s.Repo.FindVote(ctx, pollID, userID); err != nil {
		return RecordVoteResult{}, err
	} else if found {
		return RecordVoteResult{}, domainerrors.ErrAlreadyVoted
	}

	voteID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return RecordVoteResult{}, err
	}
	vote := entities.Vote{
		VoteID:    voteID,
		PollID:    pollID,
		UserID:    userID,
		Option:    option,
		CreatedAt: now,
	}
	if err := s.Repo.CreateVote(ctx, vote); err != nil {
		if errors.Is(err, domainerrors.ErrDuplicateVote) {
			logger.Info("vote insert race resolved to already voted",
				"event", "poll_vote_race_resolved",
				"module", "community-experience/poll-service",
				"layer", "application",
				"poll_id", pollID,
				"user_id", userID,
			)
			return RecordVoteResult{}, domainerrors.ErrAlreadyVoted
		}
		return RecordVoteResult{}, err
	}

	tally, err := s.tally(ctx, poll)
	if err != nil {
		return RecordVoteResult{}, err
	}
	if err := s.appendVoteEvent(ctx, vote); err != nil {
		return RecordVoteResult{}, err
	}

	logger.Info("vote recorded",
		"event", "poll_vote_recorded",
		"module", "community-experience/poll-service",
		"layer", "application",
		"vote_id", vote.VoteID,
		"poll_id", vote.PollID,
		"user_id", vote.UserID,
		"option", vote.Option,
	)
	return RecordVoteResult{Accepted: true, Vote: vote, Tally: tally}, nil
}

// Results recomputes the tally for a poll from committed votes.
func (s Service) Results(ctx context.Context, pollID string) (PollWithTally, error) {
	poll, err := s.getPoll(ctx, pollID)
	if err != nil {
		return PollWithTally{}, err
	}
	tally, err := s.tally(ctx, poll)
	if err != nil {
		return PollWithTally{}, err
	}
	return PollWithTally{
		Poll:  poll,
		Tally: tally,
		Open:  poll.IsOpen(s.now()),
	}, nil
}

// ListPolls returns polls scoped by branch/year with their current tallies.
func (s Service) ListPolls(ctx context.Context, input ports.ListPollsInput) ([]PollWithTally, error) {
	if input.Limit <= 0 {
		input.Limit = 50
	}
	if input.Limit > 200 {
		input.Limit = 200
	}
	polls, err := s.Repo.ListPolls(ctx, input)
	if err != nil {
		return nil, err
	}
	now := s.now()
	items := make([]PollWithTally, 0, len(polls))
	for _, poll := range polls {
		tally, err := s.tally(ctx, poll)
		if err != nil {
			return nil, err
		}
		items = append(items, PollWithTally{
			Poll:  poll,
			Tally: tally,
			Open:  poll.IsOpen(now),
		})
	}
	return items, nil
}

func (s Service) getPoll(ctx context.Context, pollID string) (entities.Poll, error) {
	pollID = strings.TrimSpace(pollID)
	if pollID == "" {
		return entities.Poll{}, domainerrors.ErrInvalidPollInput
	}
	return s.Repo.GetPoll(ctx, pollID)
}

func (s Service) tally(ctx context.Context, poll entities.Poll) (entities.Tally, error) {
	counts, err := s.Repo.CountVotesByOption(ctx, poll.PollID)
	if err != nil {
		return nil, err
	}
	return entities.NewTally(poll.Options, counts), nil
}

func (s Service) appendVoteEvent(ctx context.Context, vote entities.Vote) error {
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
		EventType:      "vote.recorded",
		SourceService:  "poll-service",
		OccurredAtUTC:  vote.CreatedAt.UTC(),
		EntityType:     "vote",
		EntityID:       vote.VoteID,
		PayloadVersion: 1,
		Payload: map[string]any{
			"vote_id":    vote.VoteID,
			"poll_id":    vote.PollID,
			"user_id":    vote.UserID,
			"option":     vote.Option,
			"created_at": vote.CreatedAt.UTC().Format(time.RFC3339),
		},
	})
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func normalizeOptions(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	options := make([]string, 0, len(raw))
	for _, option := range raw {
		option = strings.TrimSpace(option)
		if option == "" {
			continue
		}
		if _, dup := seen[option]; dup {
			continue
		}
		seen[option] = struct{}{}
		options = append(options, option)
	}
	return options
}
