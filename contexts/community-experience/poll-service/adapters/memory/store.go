package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"agora/contexts/community-experience/poll-service/domain/entities"
	domainerrors "agora/contexts/community-experience/poll-service/domain/errors"
	"agora/contexts/community-experience/poll-service/ports"
	"agora/internal/shared/events"

	"github.com/google/uuid"
)

type outboxRecord struct {
	envelope  events.Envelope
	published bool
}

// Store is the in-memory repository used by tests and local runs. Vote
// uniqueness per (poll, user) is enforced under the mutex, mirroring the
// postgres unique constraint so concurrency tests exercise the real
// conflict path.
type Store struct {
	mu sync.RWMutex

	polls  map[string]entities.Poll
	votes  map[string]entities.Vote // "pollID|userID" -> vote
	outbox map[string]outboxRecord
}

func NewStore(seed []entities.Poll) *Store {
	polls := make(map[string]entities.Poll, len(seed))
	for _, poll := range seed {
		polls[poll.PollID] = poll
	}
	return &Store{
		polls:  polls,
		votes:  make(map[string]entities.Vote),
		outbox: make(map[string]outboxRecord),
	}
}

func (s *Store) CreatePoll(_ context.Context, poll entities.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls[poll.PollID] = poll
	return nil
}

func (s *Store) GetPoll(_ context.Context, pollID string) (entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	poll, ok := s.polls[strings.TrimSpace(pollID)]
	if !ok {
		return entities.Poll{}, domainerrors.ErrPollNotFound
	}
	return poll, nil
}

func (s *Store) ListPolls(_ context.Context, input ports.ListPollsInput) ([]entities.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Poll, 0)
	for _, poll := range s.polls {
		if input.Branch != "" && poll.Branch != input.Branch {
			continue
		}
		if input.Year != "" && poll.Year != input.Year {
			continue
		}
		items = append(items, poll)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if input.Limit > 0 && len(items) > input.Limit {
		items = items[:input.Limit]
	}
	return items, nil
}

func (s *Store) FindVote(_ context.Context, pollID string, userID string) (entities.Vote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vote, ok := s.votes[voteKey(pollID, userID)]
	if !ok {
		return entities.Vote{}, false, nil
	}
	return vote, true, nil
}

func (s *Store) CreateVote(_ context.Context, vote entities.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := voteKey(vote.PollID, vote.UserID)
	if _, exists := s.votes[key]; exists {
		return domainerrors.ErrDuplicateVote
	}
	s.votes[key] = vote
	return nil
}

func (s *Store) CountVotesByOption(_ context.Context, pollID string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pollID = strings.TrimSpace(pollID)
	counts := make(map[string]int)
	for _, vote := range s.votes {
		if vote.PollID == pollID {
			counts[vote.Option]++
		}
	}
	return counts, nil
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

func voteKey(pollID string, userID string) string {
	return strings.TrimSpace(pollID) + "|" + strings.TrimSpace(userID)
}

var _ ports.PollRepository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
