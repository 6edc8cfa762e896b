package entities

import "time"

// Confession is an anonymous post on the campus feed. The author id is kept
// for moderation but never exposed through read DTOs.
type Confession struct {
	ConfessionID string
	AuthorID     string
	Content      string
	CreatedAt    time.Time
}

// Note is a shared study resource scoped by branch, year and subject.
// Upvotes and Downvotes are plain counters maintained by the rating
// operation.
type Note struct {
	NoteID    string
	OwnerID   string
	Title     string
	Subject   string
	Branch    string
	Year      string
	FileURL   string
	Upvotes   int
	Downvotes int
	Reported  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
