package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"agora/contexts/community-experience/feed-service/domain/entities"
	domainerrors "agora/contexts/community-experience/feed-service/domain/errors"
	"agora/contexts/community-experience/feed-service/ports"

	"github.com/google/uuid"
)

// Store is the in-memory repository used by tests and local runs.
type Store struct {
	mu sync.RWMutex

	confessions map[string]entities.Confession
	notes       map[string]entities.Note
}

func NewStore(seedNotes []entities.Note) *Store {
	notes := make(map[string]entities.Note, len(seedNotes))
	for _, note := range seedNotes {
		notes[note.NoteID] = note
	}
	return &Store{
		confessions: make(map[string]entities.Confession),
		notes:       notes,
	}
}

func (s *Store) CreateConfession(_ context.Context, confession entities.Confession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confessions[confession.ConfessionID] = confession
	return nil
}

func (s *Store) ListConfessions(_ context.Context, input ports.ListConfessionsInput) ([]entities.Confession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Confession, 0, len(s.confessions))
	for _, confession := range s.confessions {
		items = append(items, confession)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if input.Limit > 0 && len(items) > input.Limit {
		items = items[:input.Limit]
	}
	return items, nil
}

func (s *Store) CreateNote(_ context.Context, note entities.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[note.NoteID] = note
	return nil
}

func (s *Store) GetNote(_ context.Context, noteID string) (entities.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	note, ok := s.notes[strings.TrimSpace(noteID)]
	if !ok {
		return entities.Note{}, domainerrors.ErrNoteNotFound
	}
	return note, nil
}

func (s *Store) ListNotes(_ context.Context, input ports.ListNotesInput) ([]entities.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	query := strings.ToLower(strings.TrimSpace(input.TitleQuery))
	items := make([]entities.Note, 0)
	for _, note := range s.notes {
		if input.Branch != "" && note.Branch != input.Branch {
			continue
		}
		if input.Year != "" && note.Year != input.Year {
			continue
		}
		if input.Subject != "" && note.Subject != input.Subject {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(note.Title), query) {
			continue
		}
		items = append(items, note)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if input.Limit > 0 && len(items) > input.Limit {
		items = items[:input.Limit]
	}
	return items, nil
}

func (s *Store) AddNoteVote(_ context.Context, noteID string, upvote bool, at time.Time) (entities.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	note, ok := s.notes[strings.TrimSpace(noteID)]
	if !ok {
		return entities.Note{}, domainerrors.ErrNoteNotFound
	}
	if upvote {
		note.Upvotes++
	} else {
		note.Downvotes++
	}
	note.UpdatedAt = at.UTC()
	s.notes[note.NoteID] = note
	return note, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.Repository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
