package entities

import "testing"

func TestNormalizePairOrdersLexicographically(t *testing.T) {
	low, high := NormalizePair("user_b", "user_a")
	if low != "user_a" || high != "user_b" {
		t.Fatalf("expected user_a/user_b, got %s/%s", low, high)
	}

	low2, high2 := NormalizePair(" user_a ", "user_b")
	if low2 != low || high2 != high {
		t.Fatalf("expected order-insensitive normalization, got %s/%s", low2, high2)
	}
}

func TestOtherParticipant(t *testing.T) {
	conversation := Conversation{
		ParticipantLowID:  "user_a",
		ParticipantHighID: "user_b",
	}
	if got := conversation.OtherParticipant("user_a"); got != "user_b" {
		t.Fatalf("expected user_b, got %s", got)
	}
	if got := conversation.OtherParticipant("user_b"); got != "user_a" {
		t.Fatalf("expected user_a, got %s", got)
	}
	if got := conversation.OtherParticipant("user_c"); got != "" {
		t.Fatalf("expected empty for non-participant, got %s", got)
	}
}

func TestHasParticipant(t *testing.T) {
	conversation := Conversation{
		ParticipantLowID:  "user_a",
		ParticipantHighID: "user_b",
	}
	if !conversation.HasParticipant(" user_a ") {
		t.Fatal("expected trimmed participant match")
	}
	if conversation.HasParticipant("user_c") {
		t.Fatal("expected non-participant to be rejected")
	}
}
