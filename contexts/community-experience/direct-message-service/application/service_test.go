package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"agora/contexts/community-experience/direct-message-service/adapters/memory"
	"agora/contexts/community-experience/direct-message-service/application"
	domainerrors "agora/contexts/community-experience/direct-message-service/domain/errors"
	"agora/contexts/community-experience/direct-message-service/ports"
)

func newService() (application.Service, *memory.Store) {
	store := memory.NewStore(nil)
	return application.Service{
		Repo:   store,
		Outbox: store,
		Clock:  store,
		IDGen:  store,
	}, store
}

func TestResolveIsIdempotentAcrossOrderings(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	first, err := service.Resolve(ctx, ports.ResolveConversationInput{
		ParticipantA: "user_b",
		ParticipantB: "user_a",
	})
	if err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	if first.ParticipantLowID != "user_a" || first.ParticipantHighID != "user_b" {
		t.Fatalf("expected normalized pair user_a/user_b, got %s/%s",
			first.ParticipantLowID, first.ParticipantHighID)
	}

	second, err := service.Resolve(ctx, ports.ResolveConversationInput{
		ParticipantA: "user_a",
		ParticipantB: "user_b",
	})
	if err != nil {
		t.Fatalf("reversed resolve failed: %v", err)
	}
	if second.ConversationID != first.ConversationID {
		t.Fatalf("expected same conversation for reversed pair, got %s and %s",
			first.ConversationID, second.ConversationID)
	}
}

func TestResolveRejectsInvalidParticipants(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	cases := []ports.ResolveConversationInput{
		{ParticipantA: "", ParticipantB: "user_b"},
		{ParticipantA: "user_a", ParticipantB: "   "},
		{ParticipantA: "user_a", ParticipantB: "user_a"},
		{ParticipantA: " user_a ", ParticipantB: "user_a"},
	}
	for _, input := range cases {
		if _, err := service.Resolve(ctx, input); !errors.Is(err, domainerrors.ErrInvalidParticipants) {
			t.Fatalf("expected ErrInvalidParticipants for %+v, got %v", input, err)
		}
	}
}

func TestConcurrentResolveCreatesExactlyOneConversation(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	const workers = 16
	ids := make([]string, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(slot int) {
			defer wg.Done()
			conversation, err := service.Resolve(ctx, ports.ResolveConversationInput{
				ParticipantA: "user_a",
				ParticipantB: "user_b",
			})
			if err != nil {
				t.Errorf("concurrent resolve failed: %v", err)
				return
			}
			ids[slot] = conversation.ConversationID
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		if id != ids[0] {
			t.Fatalf("expected all resolvers to converge on one conversation, got %v", ids)
		}
	}

	summaries, err := service.ListConversations(ctx, "user_a")
	if err != nil {
		t.Fatalf("list conversations failed: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected exactly one conversation, got %d", len(summaries))
	}
}

func TestAppendDerivesReceiverFromPair(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	conversation, err := service.Resolve(ctx, ports.ResolveConversationInput{
		ParticipantA: "user_a",
		ParticipantB: "user_b",
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	message, err := service.Append(ctx, ports.AppendMessageInput{
		ConversationID: conversation.ConversationID,
		SenderID:       "user_b",
		Content:        "  hey  ",
	})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if message.ReceiverID != "user_a" {
		t.Fatalf("expected receiver user_a, got %s", message.ReceiverID)
	}
	if message.Content != "hey" {
		t.Fatalf("expected trimmed content, got %q", message.Content)
	}
	if message.MessageID == "" {
		t.Fatal("expected generated message id")
	}
}

func TestAppendValidations(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	conversation, err := service.Resolve(ctx, ports.ResolveConversationInput{
		ParticipantA: "user_a",
		ParticipantB: "user_b",
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	_, err = service.Append(ctx, ports.AppendMessageInput{
		ConversationID: conversation.ConversationID,
		SenderID:       "user_a",
		Content:        "   ",
	})
	if !errors.Is(err, domainerrors.ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}

	_, err = service.Append(ctx, ports.AppendMessageInput{
		ConversationID: conversation.ConversationID,
		SenderID:       "user_c",
		Content:        "hello",
	})
	if !errors.Is(err, domainerrors.ErrNotAParticipant) {
		t.Fatalf("expected ErrNotAParticipant, got %v", err)
	}

	_, err = service.Append(ctx, ports.AppendMessageInput{
		ConversationID: "conv_missing",
		SenderID:       "user_a",
		Content:        "hello",
	})
	if !errors.Is(err, domainerrors.ErrConversationNotFound) {
		t.Fatalf("expected ErrConversationNotFound, got %v", err)
	}
}

func TestListMessagesReturnsSendOrder(t *testing.T) {
	service, _ := newService()
	ctx := context.Background()

	conversation, err := service.Resolve(ctx, ports.ResolveConversationInput{
		ParticipantA: "user_a",
		ParticipantB: "user_b",
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	contents := []string{"first", "second", "third"}
	for _, content := range contents {
		if _, err := service.Append(ctx, ports.AppendMessageInput{
			ConversationID: conversation.ConversationID,
			SenderID:       "user_a",
			Content:        content,
		}); err != nil {
			t.Fatalf("append %q failed: %v", content, err)
		}
	}

	messages, err := service.ListMessages(ctx, ports.ListMessagesInput{
		ConversationID: conversation.ConversationID,
	})
	if err != nil {
		t.Fatalf("list messages failed: %v", err)
	}
	if len(messages) != len(contents) {
		t.Fatalf("expected %d messages, got %d", len(contents), len(messages))
	}
	for i, content := range contents {
		if messages[i].Content != content {
			t.Fatalf("expected message %d to be %q, got %q", i, content, messages[i].Content)
		}
	}
}

func TestAppendEmitsOutboxEvent(t *testing.T) {
	service, store := newService()
	ctx := context.Background()

	conversation, err := service.Resolve(ctx, ports.ResolveConversationInput{
		ParticipantA: "user_a",
		ParticipantB: "user_b",
	})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if _, err := service.Append(ctx, ports.AppendMessageInput{
		ConversationID: conversation.ConversationID,
		SenderID:       "user_a",
		Content:        "hello",
	}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list pending outbox failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one pending event, got %d", len(pending))
	}
	if pending[0].EventType != "message.created" {
		t.Fatalf("expected message.created event, got %s", pending[0].EventType)
	}
}
