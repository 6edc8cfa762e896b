package entities

import (
	"testing"
	"time"
)

func TestIsOpenBoundary(t *testing.T) {
	closesAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	poll := Poll{ClosesAt: closesAt}

	if !poll.IsOpen(closesAt.Add(-time.Second)) {
		t.Fatal("expected poll open before closesAt")
	}
	if poll.IsOpen(closesAt) {
		t.Fatal("expected poll closed exactly at closesAt")
	}
	if poll.IsOpen(closesAt.Add(time.Second)) {
		t.Fatal("expected poll closed after closesAt")
	}
}

func TestTallyZeroFillsOptions(t *testing.T) {
	tally := NewTally([]string{"mess", "canteen", "hostel"}, map[string]int{"mess": 2})
	if tally["canteen"] != 0 || tally["hostel"] != 0 {
		t.Fatalf("expected zero counts for unvoted options, got %v", tally)
	}
	if tally.Total() != 2 {
		t.Fatalf("expected total 2, got %d", tally.Total())
	}
}

func TestPercentageRoundsHalfUp(t *testing.T) {
	tally := NewTally([]string{"a", "b"}, map[string]int{"a": 1, "b": 2})
	if got := tally.Percentage("a"); got != 33 {
		t.Fatalf("expected 1/3 to round to 33, got %d", got)
	}
	if got := tally.Percentage("b"); got != 67 {
		t.Fatalf("expected 2/3 to round to 67, got %d", got)
	}

	even := NewTally([]string{"a", "b"}, map[string]int{"a": 1, "b": 1})
	if got := even.Percentage("a"); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}

	empty := NewTally([]string{"a", "b"}, nil)
	if got := empty.Percentage("a"); got != 0 {
		t.Fatalf("expected 0 percent with no votes, got %d", got)
	}

	single := NewTally([]string{"a", "b"}, map[string]int{"a": 2})
	if single.Percentage("a") != 100 || single.Percentage("b") != 0 {
		t.Fatalf("expected 100/0 split, got %d/%d", single.Percentage("a"), single.Percentage("b"))
	}
}
