package errors

import "errors"

var (
	ErrInvalidPollInput = errors.New("invalid poll input")
	ErrInvalidVoteInput = errors.New("invalid vote input")
	ErrPollNotFound     = errors.New("poll not found")
	ErrInvalidOption    = errors.New("option is not part of the poll")
	ErrPollClosed       = errors.New("poll is closed")
	ErrAlreadyVoted     = errors.New("user has already voted on this poll")

	// ErrDuplicateVote is the adapter-level translation of a (poll_id, user_id)
	// uniqueness violation; the application layer maps it to ErrAlreadyVoted.
	ErrDuplicateVote = errors.New("duplicate vote for poll and user")
)
