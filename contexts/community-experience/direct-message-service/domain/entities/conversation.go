package entities

import (
	"strings"
	"time"
)

// Conversation is the unique thread for an unordered pair of participants.
// Participant ids are stored normalized (low/high by lexicographic order) so
// {A,B} and {B,A} resolve to the same row and a single unique index on the
// pair can back the at-most-one invariant.
type Conversation struct {
	ConversationID    string
	ParticipantLowID  string
	ParticipantHighID string
	CreatedAt         time.Time
}

// NormalizePair orders two participant ids into the stored (low, high) form.
func NormalizePair(a string, b string) (string, string) {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a > b {
		return b, a
	}
	return a, b
}

func (c Conversation) HasParticipant(userID string) bool {
	userID = strings.TrimSpace(userID)
	return userID == c.ParticipantLowID || userID == c.ParticipantHighID
}

// OtherParticipant returns the counterpart of userID in the pair. The empty
// string means userID is not a participant.
func (c Conversation) OtherParticipant(userID string) string {
	switch strings.TrimSpace(userID) {
	case c.ParticipantLowID:
		return c.ParticipantHighID
	case c.ParticipantHighID:
		return c.ParticipantLowID
	default:
		return ""
	}
}

// Message is an immutable entry in a conversation. Sender and receiver are
// always the two participants of the owning conversation.
type Message struct {
	MessageID      string
	ConversationID string
	SenderID       string
	ReceiverID     string
	Content        string
	CreatedAt      time.Time
}

// ConversationSummary is the read shape for a user's conversation list,
// ordered by most recent activity.
type ConversationSummary struct {
	Conversation  Conversation
	LastMessageAt time.Time
	LastContent   string
}
