package publish

import (
	"context"
	"fmt"
	"time"
)

// Decision is the outcome of the scheduling decider: publish now, or hand
// off to the scheduling queue for later.
type Decision struct {
	Deferred    bool
	ScheduledAt time.Time
}

// Decide compares the requested publish time against now. Strictly future
// timestamps defer; the present and the past publish immediately, so a
// tie goes to publish-now.
func Decide(scheduledAt, now time.Time) Decision {
	if scheduledAt.After(now) {
		return Decision{Deferred: true, ScheduledAt: scheduledAt}
	}
	return Decision{}
}

// ParseSchedule combines the request's date and time-of-day fields into
// one timestamp in the given location. The time part defaults to midnight
// when absent.
func ParseSchedule(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if clock == "" {
		clock = "00:00"
	}
	layout := "2006-01-02 15:04"
	if len(clock) == len("15:04:05") {
		layout = "2006-01-02 15:04:05"
	}
	at, err := time.ParseInLocation(layout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid schedule %q %q: %w", date, clock, err)
	}
	return at, nil
}

// ScheduledPost is the payload handed to the scheduling queue for a
// deferred request. This service does not persist it.
type ScheduledPost struct {
	Request
	ScheduledAt time.Time `json:"scheduled_at"`
	Status      string    `json:"status"`
}

const ScheduledStatus = "scheduled"

// NewScheduledPost wraps a request with its decided publish time.
func NewScheduledPost(req Request, at time.Time) ScheduledPost {
	return ScheduledPost{Request: req, ScheduledAt: at, Status: ScheduledStatus}
}

// Scheduler enqueues deferred posts for later publication.
type Scheduler interface {
	Enqueue(ctx context.Context, post ScheduledPost) error
}
