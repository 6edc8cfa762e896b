package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"agora/contexts/community-experience/feed-service/adapters/memory"
	"agora/contexts/community-experience/feed-service/application"
	"agora/contexts/community-experience/feed-service/domain/entities"
	domainerrors "agora/contexts/community-experience/feed-service/domain/errors"
	"agora/contexts/community-experience/feed-service/ports"
)

func newService(seedNotes []entities.Note) application.Service {
	store := memory.NewStore(seedNotes)
	return application.Service{
		Repo:  store,
		Clock: store,
		IDGen: store,
	}
}

func TestPostConfessionValidation(t *testing.T) {
	service := newService(nil)
	ctx := context.Background()

	_, err := service.PostConfession(ctx, ports.PostConfessionInput{AuthorID: "", Content: "hi"})
	if !errors.Is(err, domainerrors.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}

	_, err = service.PostConfession(ctx, ports.PostConfessionInput{AuthorID: "user_1", Content: "   "})
	if !errors.Is(err, domainerrors.ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}

	confession, err := service.PostConfession(ctx, ports.PostConfessionInput{
		AuthorID: "user_1",
		Content:  "  the mess food was actually good today  ",
	})
	if err != nil {
		t.Fatalf("post confession failed: %v", err)
	}
	if confession.Content != "the mess food was actually good today" {
		t.Fatalf("expected trimmed content, got %q", confession.Content)
	}
}

func TestListConfessionsNewestFirstWithLimit(t *testing.T) {
	service := newService(nil)
	ctx := context.Background()

	for _, content := range []string{"first", "second", "third"} {
		if _, err := service.PostConfession(ctx, ports.PostConfessionInput{
			AuthorID: "user_1",
			Content:  content,
		}); err != nil {
			t.Fatalf("post %q failed: %v", content, err)
		}
		time.Sleep(time.Millisecond)
	}

	items, err := service.ListConfessions(ctx, ports.ListConfessionsInput{Limit: 2})
	if err != nil {
		t.Fatalf("list confessions failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 confessions, got %d", len(items))
	}
	if items[0].Content != "third" {
		t.Fatalf("expected newest first, got %q", items[0].Content)
	}
}

func TestListNotesFiltersAndTitleSearch(t *testing.T) {
	now := time.Now().UTC()
	seed := []entities.Note{
		{NoteID: "note_1", OwnerID: "u1", Title: "DBMS Unit 3", Subject: "DBMS", Branch: "CSE", Year: "2", CreatedAt: now},
		{NoteID: "note_2", OwnerID: "u2", Title: "Signals cheat sheet", Subject: "Signals", Branch: "ECE", Year: "3", CreatedAt: now},
		{NoteID: "note_3", OwnerID: "u1", Title: "DBMS indexing", Subject: "DBMS", Branch: "CSE", Year: "3", CreatedAt: now},
	}
	service := newService(seed)
	ctx := context.Background()

	items, err := service.ListNotes(ctx, ports.ListNotesInput{Branch: "CSE", Year: "3"})
	if err != nil {
		t.Fatalf("list notes failed: %v", err)
	}
	if len(items) != 1 || items[0].NoteID != "note_3" {
		t.Fatalf("expected only note_3, got %+v", items)
	}

	items, err = service.ListNotes(ctx, ports.ListNotesInput{TitleQuery: "dbms"})
	if err != nil {
		t.Fatalf("title search failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 notes matching title query, got %d", len(items))
	}
}

func TestRateNoteBumpsCounters(t *testing.T) {
	seed := []entities.Note{{NoteID: "note_1", OwnerID: "u1", Title: "DBMS Unit 3", Subject: "DBMS"}}
	service := newService(seed)
	ctx := context.Background()

	note, err := service.RateNote(ctx, ports.RateNoteInput{NoteID: "note_1", Upvote: true})
	if err != nil {
		t.Fatalf("upvote failed: %v", err)
	}
	if note.Upvotes != 1 || note.Downvotes != 0 {
		t.Fatalf("expected 1/0 counters, got %d/%d", note.Upvotes, note.Downvotes)
	}

	note, err = service.RateNote(ctx, ports.RateNoteInput{NoteID: "note_1", Upvote: false})
	if err != nil {
		t.Fatalf("downvote failed: %v", err)
	}
	if note.Upvotes != 1 || note.Downvotes != 1 {
		t.Fatalf("expected 1/1 counters, got %d/%d", note.Upvotes, note.Downvotes)
	}

	if _, err := service.RateNote(ctx, ports.RateNoteInput{NoteID: "note_missing", Upvote: true}); !errors.Is(err, domainerrors.ErrNoteNotFound) {
		t.Fatalf("expected ErrNoteNotFound, got %v", err)
	}
}

func TestCreateNoteValidation(t *testing.T) {
	service := newService(nil)
	ctx := context.Background()

	_, err := service.CreateNote(ctx, ports.CreateNoteInput{OwnerID: "u1", Title: "", Subject: "DBMS"})
	if !errors.Is(err, domainerrors.ErrInvalidNoteInput) {
		t.Fatalf("expected ErrInvalidNoteInput, got %v", err)
	}

	note, err := service.CreateNote(ctx, ports.CreateNoteInput{
		OwnerID: "u1",
		Title:   " DBMS Unit 3 ",
		Subject: "DBMS",
		Branch:  "CSE",
		Year:    "2",
	})
	if err != nil {
		t.Fatalf("create note failed: %v", err)
	}
	if note.Title != "DBMS Unit 3" {
		t.Fatalf("expected trimmed title, got %q", note.Title)
	}
	if note.NoteID == "" {
		t.Fatal("expected generated note id")
	}
}
