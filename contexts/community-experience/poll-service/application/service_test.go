package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"agora/contexts/community-experience/poll-service/adapters/memory"
	"agora/contexts/community-experience/poll-service/application"
	"agora/contexts/community-experience/poll-service/domain/entities"
	domainerrors "agora/contexts/community-experience/poll-service/domain/errors"
	"agora/contexts/community-experience/poll-service/ports"
)

func newService(seed []entities.Poll) (application.Service, *memory.Store) {
	store := memory.NewStore(seed)
	return application.Service{
		Repo:   store,
		Outbox: store,
		Clock:  store,
		IDGen:  store,
	}, store
}

func openPoll(id string) entities.Poll {
	now := time.Now().UTC()
	return entities.Poll{
		PollID:    id,
		Title:     "Best spot on campus",
		Options:   []string{"library", "canteen"},
		ClosesAt:  now.Add(time.Hour),
		CreatedAt: now,
	}
}

func closedPoll(id string) entities.Poll {
	now := time.Now().UTC()
	return entities.Poll{
		PollID:    id,
		Title:     "Closed poll",
		Options:   []string{"library", "canteen"},
		ClosesAt:  now.Add(-time.Minute),
		CreatedAt: now.Add(-time.Hour),
	}
}

func TestCreatePollValidation(t *testing.T) {
	service, _ := newService(nil)
	ctx := context.Background()

	cases := []ports.CreatePollInput{
		{Title: "", Options: []string{"a", "b"}, ClosesAt: time.Now().Add(time.Hour)},
		{Title: "one option", Options: []string{"a"}, ClosesAt: time.Now().Add(time.Hour)},
		{Title: "dup options", Options: []string{"a", " a "}, ClosesAt: time.Now().Add(time.Hour)},
		{Title: "past close", Options: []string{"a", "b"}, ClosesAt: time.Now().Add(-time.Hour)},
	}
	for _, input := range cases {
		if _, err := service.CreatePoll(ctx, input); !errors.Is(err, domainerrors.ErrInvalidPollInput) {
			t.Fatalf("expected ErrInvalidPollInput for %+v, got %v", input, err)
		}
	}

	poll, err := service.CreatePoll(ctx, ports.CreatePollInput{
		Title:    "Best spot on campus",
		Options:  []string{" library ", "canteen"},
		ClosesAt: time.Now().Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("create poll failed: %v", err)
	}
	if len(poll.Options) != 2 || poll.Options[0] != "library" {
		t.Fatalf("expected trimmed options, got %v", poll.Options)
	}
}

func TestRecordVotePreconditionOrder(t *testing.T) {
	service, _ := newService([]entities.Poll{closedPoll("poll_closed")})
	ctx := context.Background()

	// Missing poll wins over everything else.
	_, err := service.RecordVote(ctx, ports.RecordVoteInput{
		PollID: "poll_missing",
		UserID: "user_1",
		Option: "nope",
	})
	if !errors.Is(err, domainerrors.ErrPollNotFound) {
		t.Fatalf("expected ErrPollNotFound, got %v", err)
	}

	// Invalid option is reported before the closed check.
	_, err = service.RecordVote(ctx, ports.RecordVoteInput{
		PollID: "poll_closed",
		UserID: "user_1",
		Option: "nope",
	})
	if !errors.Is(err, domainerrors.ErrInvalidOption) {
		t.Fatalf("expected ErrInvalidOption, got %v", err)
	}

	// A valid option on a closed poll is rejected regardless of history.
	_, err = service.RecordVote(ctx, ports.RecordVoteInput{
		PollID: "poll_closed",
		UserID: "user_1",
		Option: "library",
	})
	if !errors.Is(err, domainerrors.ErrPollClosed) {
		t.Fatalf("expected ErrPollClosed, got %v", err)
	}
}

func TestRecordVoteRejectsSecondVote(t *testing.T) {
	service, _ := newService([]entities.Poll{openPoll("poll_1")})
	ctx := context.Background()

	first, err := service.RecordVote(ctx, ports.RecordVoteInput{
		PollID: "poll_1",
		UserID: "user_1",
		Option: "library",
	})
	if err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	if !first.Accepted {
		t.Fatal("expected first vote accepted")
	}

	// Second attempt fails even with a different option.
	_, err = service.RecordVote(ctx, ports.RecordVoteInput{
		PollID: "poll_1",
		UserID: "user_1",
		Option: "canteen",
	})
	if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}

	results, err := service.Results(ctx, "poll_1")
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if results.Tally.Total() != 1 {
		t.Fatalf("expected one committed vote, got %d", results.Tally.Total())
	}
}

func TestConcurrentVotesBySameUserAcceptExactlyOne(t *testing.T) {
	service, _ := newService([]entities.Poll{openPoll("poll_1")})
	ctx := context.Background()

	const workers = 16
	accepted := make([]bool, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(slot int) {
			defer wg.Done()
			result, err := service.RecordVote(ctx, ports.RecordVoteInput{
				PollID: "poll_1",
				UserID: "user_1",
				Option: "library",
			})
			if err == nil {
				accepted[slot] = result.Accepted
				return
			}
			if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
				t.Errorf("expected ErrAlreadyVoted, got %v", err)
			}
		}(i)
	}
	wg.Wait()

	count := 0
	for _, ok := range accepted {
		if ok {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one accepted vote, got %d", count)
	}

	results, err := service.Results(ctx, "poll_1")
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if results.Tally.Total() != 1 {
		t.Fatalf("expected tally total 1, got %d", results.Tally.Total())
	}
}

func TestTallyCoversAllOptions(t *testing.T) {
	service, _ := newService([]entities.Poll{openPoll("poll_1")})
	ctx := context.Background()

	for _, userID := range []string{"user_1", "user_2"} {
		result, err := service.RecordVote(ctx, ports.RecordVoteInput{
			PollID: "poll_1",
			UserID: userID,
			Option: "library",
		})
		if err != nil {
			t.Fatalf("vote by %s failed: %v", userID, err)
		}
		if !result.Accepted {
			t.Fatalf("expected vote by %s accepted", userID)
		}
	}

	results, err := service.Results(ctx, "poll_1")
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if results.Tally["library"] != 2 || results.Tally["canteen"] != 0 {
		t.Fatalf("expected {library:2 canteen:0}, got %v", results.Tally)
	}
	if results.Tally.Percentage("library") != 100 || results.Tally.Percentage("canteen") != 0 {
		t.Fatalf("expected 100/0 percentages, got %d/%d",
			results.Tally.Percentage("library"), results.Tally.Percentage("canteen"))
	}
}

func TestPollStateDerivedFromClock(t *testing.T) {
	service, _ := newService([]entities.Poll{openPoll("poll_open"), closedPoll("poll_closed")})
	ctx := context.Background()

	open, err := service.PollState(ctx, "poll_open")
	if err != nil {
		t.Fatalf("poll state failed: %v", err)
	}
	if !open.Open {
		t.Fatal("expected open poll")
	}

	closed, err := service.PollState(ctx, "poll_closed")
	if err != nil {
		t.Fatalf("poll state failed: %v", err)
	}
	if closed.Open {
		t.Fatal("expected closed poll")
	}
}

func TestListPollsFiltersByBranchAndYear(t *testing.T) {
	cse := openPoll("poll_cse")
	cse.Branch = "CSE"
	cse.Year = "2"
	ece := openPoll("poll_ece")
	ece.Branch = "ECE"
	ece.Year = "3"

	service, _ := newService([]entities.Poll{cse, ece})
	ctx := context.Background()

	items, err := service.ListPolls(ctx, ports.ListPollsInput{Branch: "CSE"})
	if err != nil {
		t.Fatalf("list polls failed: %v", err)
	}
	if len(items) != 1 || items[0].Poll.PollID != "poll_cse" {
		t.Fatalf("expected only poll_cse, got %+v", items)
	}
}

func TestRecordVoteEmitsOutboxEvent(t *testing.T) {
	service, store := newService([]entities.Poll{openPoll("poll_1")})
	ctx := context.Background()

	if _, err := service.RecordVote(ctx, ports.RecordVoteInput{
		PollID: "poll_1",
		UserID: "user_1",
		Option: "library",
	}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending outbox failed: %v", err)
	}
	if len(pending) != 1 || pending[0].EventType != "vote.recorded" {
		t.Fatalf("expected one vote.recorded event, got %+v", pending)
	}
}
