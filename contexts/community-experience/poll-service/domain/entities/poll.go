package entities

import (
	"math"
	"strings"
	"time"
)

// Poll is immutable after creation. Branch and Year only scope listing;
// they carry no voting invariants.
type Poll struct {
	PollID    string
	Title     string
	Options   []string
	Branch    string
	Year      string
	ClosesAt  time.Time
	CreatedAt time.Time
}

// IsOpen derives poll state from wall-clock time. There is no stored
// transition: a poll is closed exactly when now >= ClosesAt, and closed is
// terminal.
func (p Poll) IsOpen(now time.Time) bool {
	return now.Before(p.ClosesAt)
}

func (p Poll) HasOption(option string) bool {
	option = strings.TrimSpace(option)
	for _, candidate := range p.Options {
		if candidate == option {
			return true
		}
	}
	return false
}

// Vote is immutable once recorded. At most one vote exists per
// (PollID, UserID) pair.
type Vote struct {
	VoteID    string
	PollID    string
	UserID    string
	Option    string
	CreatedAt time.Time
}

// Tally maps every poll option to its committed vote count. It is derived
// state: sum of counts always equals the number of votes for the poll.
type Tally map[string]int

// NewTally zero-fills all options so absent counts render as 0, then overlays
// the counted votes.
func NewTally(options []string, counts map[string]int) Tally {
	tally := make(Tally, len(options))
	for _, option := range options {
		tally[option] = 0
	}
	for option, count := range counts {
		tally[option] = count
	}
	return tally
}

func (t Tally) Total() int {
	total := 0
	for _, count := range t {
		total += count
	}
	return total
}

// Percentage is a display derivation: round-half-up of 100*count/total,
// defined as 0 when the poll has no votes.
func (t Tally) Percentage(option string) int {
	total := t.Total()
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(t[option])*100/float64(total) + 0.5))
}
