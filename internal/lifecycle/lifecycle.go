// Package lifecycle holds the application status state machine and its append-only history log.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"jobportal-backend/internal/apperror"
)

// Status is the state of a job application.
type Status string

// Application states.
const (
	Applied            Status = "APPLIED"
	Viewed             Status = "VIEWED"
	Shortlisted        Status = "SHORTLISTED"
	InterviewScheduled Status = "INTERVIEW_SCHEDULED"
	Offered            Status = "OFFERED"
	Hired              Status = "HIRED"
	Rejected           Status = "REJECTED"
)

// All lists every status in workflow order.
var All = []Status{Applied, Viewed, Shortlisted, InterviewScheduled, Offered, Hired, Rejected}

var transitions = map[Status][]Status{
	Applied:            {Viewed, Rejected},
	Viewed:             {Shortlisted, Rejected},
	Shortlisted:        {InterviewScheduled, Rejected},
	InterviewScheduled: {Offered, Rejected},
	Offered:            {Hired, Rejected},
	Hired:              {},
	Rejected:           {},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Next returns the statuses reachable from s in one step.
func (s Status) Next() []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// Terminal reports whether s has no outgoing transitions.
func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// CanTransitionTo reports whether to is in the allowed-next set of s.
func (s Status) CanTransitionTo(to Status) bool {
	for _, n := range transitions[s] {
		if n == to {
			return true
		}
	}
	return false
}

// TransitionError names a rejected from -> to pair.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

// Validate returns nil when from -> to is allowed, otherwise an InvalidTransition error wrapping a *TransitionError.
func Validate(from, to Status) error {
	if !to.Valid() {
		return apperror.Validation("unknown status %q", to)
	}
	if !from.CanTransitionTo(to) {
		te := &TransitionError{From: from, To: to}
		return apperror.Wrap(apperror.KindInvalidTransition, te, "%s", te.Error())
	}
	return nil
}

// Entry is one immutable record of the status log.
type Entry struct {
	Status   Status    `json:"status"`
	ByUserID uuid.UUID `json:"by_user_id"`
	At       time.Time `json:"at"`
	Note     string    `json:"note,omitempty"`
}

// History is an append-only, ordered status log. The zero value is an empty log.
// Append never mutates the receiver.
type History struct {
	entries []Entry
}

// NewHistory builds a log from already-persisted entries, oldest first.
func NewHistory(entries ...Entry) History {
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return History{entries: cp}
}

// Append returns a new log with e at the end.
func (h History) Append(e Entry) History {
	next := make([]Entry, len(h.entries), len(h.entries)+1)
	copy(next, h.entries)
	return History{entries: append(next, e)}
}

// Len returns the number of entries.
func (h History) Len() int { return len(h.entries) }

// Last returns the most recent entry.
func (h History) Last() (Entry, bool) {
	if len(h.entries) == 0 {
		return Entry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Entries returns a copy of the log, oldest first.
func (h History) Entries() []Entry {
	out := make([]Entry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Consistent reports whether the log's tail matches current.
func (h History) Consistent(current Status) bool {
	last, ok := h.Last()
	return ok && last.Status == current
}
