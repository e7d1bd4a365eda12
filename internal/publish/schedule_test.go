package publish

import (
	"testing"
	"time"
)

func TestDecide(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	future := Decide(now.Add(time.Second), now)
	if !future.Deferred {
		t.Fatal("one second in the future must defer")
	}
	if !future.ScheduledAt.Equal(now.Add(time.Second)) {
		t.Fatalf("unexpected scheduled time: %v", future.ScheduledAt)
	}

	if Decide(now, now).Deferred {
		t.Fatal("exact tie must publish immediately")
	}
	if Decide(now.Add(-time.Second), now).Deferred {
		t.Fatal("past timestamps must publish immediately")
	}
}

func TestParseSchedule(t *testing.T) {
	loc := time.UTC

	at, err := ParseSchedule("2026-09-01", "14:30", loc)
	if err != nil {
		t.Fatalf("ParseSchedule: %v", err)
	}
	want := time.Date(2026, 9, 1, 14, 30, 0, 0, loc)
	if !at.Equal(want) {
		t.Fatalf("got %v, want %v", at, want)
	}

	at, err = ParseSchedule("2026-09-01", "", loc)
	if err != nil {
		t.Fatalf("ParseSchedule with empty clock: %v", err)
	}
	if at.Hour() != 0 || at.Minute() != 0 {
		t.Fatalf("empty clock must default to midnight, got %v", at)
	}

	if _, err := ParseSchedule("not-a-date", "14:30", loc); err == nil {
		t.Fatal("expected error for malformed date")
	}

	at, err = ParseSchedule("2026-09-01", "14:30:15", loc)
	if err != nil {
		t.Fatalf("ParseSchedule with seconds: %v", err)
	}
	if at.Second() != 15 {
		t.Fatalf("expected seconds to be parsed, got %v", at)
	}
}

func TestNewScheduledPost(t *testing.T) {
	at := time.Date(2026, 9, 1, 14, 30, 0, 0, time.UTC)
	post := NewScheduledPost(Request{Title: "Launch"}, at)
	if post.Status != ScheduledStatus {
		t.Fatalf("expected status %q, got %q", ScheduledStatus, post.Status)
	}
	if !post.ScheduledAt.Equal(at) || post.Title != "Launch" {
		t.Fatalf("unexpected scheduled post: %+v", post)
	}
}
