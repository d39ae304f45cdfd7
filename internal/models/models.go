// Package models defines the task variants tracked by erii and their
// rendering rules.
package models

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

// Priority is a task urgency level. Lower values are more urgent.
type Priority int

const (
	PrioritySS Priority = iota
	PriorityS
	PriorityA
	PriorityB
	PriorityC
	PriorityD
)

var priorityNames = [...]string{"SS", "S", "A", "B", "C", "D"}

// Priorities returns all priority levels from most to least urgent.
func Priorities() []Priority {
	return []Priority{PrioritySS, PriorityS, PriorityA, PriorityB, PriorityC, PriorityD}
}

// IsValid returns true if the priority is a known level.
func (p Priority) IsValid() bool {
	return p >= PrioritySS && p <= PriorityD
}

// Rank returns the sort position of the priority (SS is 0).
func (p Priority) Rank() int {
	return int(p)
}

func (p Priority) String() string {
	if !p.IsValid() {
		return "?"
	}
	return priorityNames[p]
}

// Raise returns the next more urgent level, saturating at SS.
func (p Priority) Raise() Priority {
	if p <= PrioritySS {
		return PrioritySS
	}
	return p - 1
}

// Lower returns the next less urgent level, saturating at D.
func (p Priority) Lower() Priority {
	if p >= PriorityD {
		return PriorityD
	}
	return p + 1
}

// ParsePriority converts a priority name such as "ss" or " A " to a Priority.
func ParsePriority(s string) (Priority, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range priorityNames {
		if n == name {
			return Priority(i), nil
		}
	}
	return 0, invalidPriority(s)
}

// Kind is the internal type tag of a task. It is used as the key of
// sort-by-type and is never shown to the user.
type Kind string

const (
	KindTodo     Kind = "Todo"
	KindDeadline Kind = "Deadline"
	KindEvent    Kind = "Event"
)

// Span is an inclusive range of calendar dates.
type Span struct {
	Start civil.Date
	End   civil.Date
}

// Contains reports whether d falls within the span, bounds included.
func (s Span) Contains(d civil.Date) bool {
	return !d.Before(s.Start) && !d.After(s.End)
}

// Task is a single tracked item. The common fields apply to every kind;
// By is only meaningful for deadlines and Span only for events.
type Task struct {
	Kind        Kind
	Description string
	Priority    Priority
	Done        bool

	By   civil.DateTime
	Span Span
}

// SetPriority changes the task's priority.
func (t *Task) SetPriority(p Priority) error {
	if !p.IsValid() {
		return invalidPriority(fmt.Sprint(int(p)))
	}
	t.Priority = p
	return nil
}

// SetDone sets the completion flag.
func (t *Task) SetDone(done bool) {
	t.Done = done
}

// SetBy moves a deadline's due date-time.
func (t *Task) SetBy(by civil.DateTime) error {
	if t.Kind != KindDeadline {
		return ErrNotDeadline
	}
	if !by.IsValid() {
		return ErrInvalidDate
	}
	t.By = by
	return nil
}

// Completable reports whether the task's kind has a completion state.
func (t Task) Completable() bool {
	spec, ok := kinds[t.Kind]
	return ok && spec.completable
}

// StatusIcon returns "[X]" for a done task and "[ ]" otherwise.
func (t Task) StatusIcon() string {
	if t.Done {
		return "[X]"
	}
	return "[ ]"
}
