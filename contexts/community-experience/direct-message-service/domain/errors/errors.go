package errors

import "errors"

var (
	ErrInvalidRequest       = errors.New("invalid request")
	ErrInvalidParticipants  = errors.New("participants must be two distinct users")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrConversationExists   = errors.New("conversation already exists for pair")
	ErrNotAParticipant      = errors.New("sender is not a participant of the conversation")
	ErrEmptyContent         = errors.New("message content is empty")
	ErrMessageNotFound      = errors.New("message not found")
)
