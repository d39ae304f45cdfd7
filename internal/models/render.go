package models

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// ErrUnknownKind is returned for a task kind with no registered behavior.
var ErrUnknownKind = errors.New("unknown task kind")

const (
	displayDateLayout     = "Jan 02 2006"
	displayDateTimeLayout = "Jan 02 2006 15:04"
)

type kindSpec struct {
	tag         string
	completable bool
	detail      func(Task) string
}

var kinds = map[Kind]kindSpec{
	KindTodo: {
		tag:         "T",
		completable: true,
	},
	KindDeadline: {
		tag:         "D",
		completable: true,
		detail: func(t Task) string {
			// List rendering shows the date only.
			return fmt.Sprintf("(by: %s)", FormatDate(t.By.Date))
		},
	},
	KindEvent: {
		tag:         "E",
		completable: true,
		detail: func(t Task) string {
			return fmt.Sprintf("(from: %s to: %s)", FormatDate(t.Span.Start), FormatDate(t.Span.End))
		},
	},
}

// Kinds returns the registered task kinds in type-sort order.
func Kinds() []Kind {
	return []Kind{KindDeadline, KindEvent, KindTodo}
}

// Tag returns the one-letter type tag of the task's kind, or "?" if unknown.
func (k Kind) Tag() string {
	if spec, ok := kinds[k]; ok {
		return spec.tag
	}
	return "?"
}

// String renders the task for display, e.g. "[T][ ] read book <A>".
func (t Task) String() string {
	s := fmt.Sprintf("[%s]%s %s <%s>", t.Kind.Tag(), t.StatusIcon(), t.Description, t.Priority)
	if spec, ok := kinds[t.Kind]; ok && spec.detail != nil {
		s += " " + spec.detail(t)
	}
	return s
}

// DueString renders a deadline's due date-time including the time of day.
// It returns "" for other kinds.
func (t Task) DueString() string {
	if t.Kind != KindDeadline {
		return ""
	}
	return t.By.In(time.UTC).Format(displayDateTimeLayout)
}

// FormatDate renders a calendar date as "Jan 02 2006".
func FormatDate(d civil.Date) string {
	return d.In(time.UTC).Format(displayDateLayout)
}
