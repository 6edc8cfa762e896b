package errors

import "errors"

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrEmptyContent     = errors.New("confession content must not be empty")
	ErrInvalidNoteInput = errors.New("invalid note input")
	ErrNoteNotFound     = errors.New("note not found")
)
