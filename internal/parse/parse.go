// Package parse turns the free-text task syntax typed at the console into
// validated tasks.
//
//	slain a dragon /S
//	submit report /by 2021-09-30 18:30 /SS
//	project meeting /from 2021-09-30 /to 2021-10-01 /A
package parse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/tgienger/erii/internal/models"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"

	TodoFormat     = "description /priority (e.g. slain a dragon /S)"
	DeadlineFormat = "description /by yyyy-MM-dd HH:mm /priority (e.g. submit report /by 2021-09-30 18:30 /SS)"
	EventFormat    = "description /from yyyy-MM-dd /to yyyy-MM-dd /priority (e.g. project meeting /from 2021-09-30 /to 2021-10-01 /S)"
)

var (
	// ErrFormat is returned when input does not follow the expected syntax.
	ErrFormat = errors.New("incorrect format")

	// ErrInvalidDate is returned when a date or date-time cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrNotInFuture is returned when a new deadline or event starts in the past.
	ErrNotInFuture = errors.New("must be after the current date and time")

	// ErrInvalidNumber is returned when a task number is not a positive integer.
	ErrInvalidNumber = errors.New("please enter a valid task number")
)

var (
	todoSep     = regexp.MustCompile(` ?/ ?`)
	deadlineSep = regexp.MustCompile(` ?/by | ?/ ?`)
	eventSep    = regexp.MustCompile(` ?/from | ?/to | ?/`)
)

// Parser builds tasks from console input. Now supplies the current local
// time and defaults to time.Now.
type Parser struct {
	Now func() time.Time
}

func (p Parser) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// Todo parses "description /priority".
func (p Parser) Todo(input string) (models.Task, error) {
	parts := todoSep.Split(strings.TrimSpace(input), -1)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return models.Task{}, formatError(TodoFormat)
	}
	priority, err := models.ParsePriority(parts[1])
	if err != nil {
		return models.Task{}, err
	}
	return models.NewTodo(parts[0], priority)
}

// Deadline parses "description /by yyyy-MM-dd HH:mm /priority". The due
// date-time must be after now.
func (p Parser) Deadline(input string) (models.Task, error) {
	parts := deadlineSep.Split(strings.TrimSpace(input), -1)
	if len(parts) < 3 {
		return models.Task{}, formatError(DeadlineFormat)
	}
	by, err := ParseDateTime(parts[1])
	if err != nil {
		return models.Task{}, err
	}
	if !by.After(civil.DateTimeOf(p.now())) {
		return models.Task{}, fmt.Errorf("deadline %w", ErrNotInFuture)
	}
	priority, err := models.ParsePriority(parts[2])
	if err != nil {
		return models.Task{}, err
	}
	return models.NewDeadline(parts[0], by, priority)
}

// Event parses "description /from yyyy-MM-dd /to yyyy-MM-dd /priority". The
// start date must be after today and the end date after the start.
func (p Parser) Event(input string) (models.Task, error) {
	parts := eventSep.Split(strings.TrimSpace(input), -1)
	if len(parts) < 4 {
		return models.Task{}, formatError(EventFormat)
	}
	start, err := ParseDate(parts[1])
	if err != nil {
		return models.Task{}, err
	}
	end, err := ParseDate(parts[2])
	if err != nil {
		return models.Task{}, err
	}
	if !start.After(civil.DateOf(p.now())) {
		return models.Task{}, fmt.Errorf("start date %w", ErrNotInFuture)
	}
	priority, err := models.ParsePriority(parts[3])
	if err != nil {
		return models.Task{}, err
	}
	return models.NewEvent(parts[0], start, end, priority)
}

// Task dispatches to the parser for kind.
func (p Parser) Task(kind models.Kind, input string) (models.Task, error) {
	switch kind {
	case models.KindTodo:
		return p.Todo(input)
	case models.KindDeadline:
		return p.Deadline(input)
	case models.KindEvent:
		return p.Event(input)
	}
	return models.Task{}, fmt.Errorf("%w: %q", models.ErrUnknownKind, kind)
}

// ParseKind maps user words such as "todo" or "deadline" to a Kind.
func ParseKind(s string) (models.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo", "t":
		return models.KindTodo, nil
	case "deadline", "d":
		return models.KindDeadline, nil
	case "event", "e":
		return models.KindEvent, nil
	}
	return "", fmt.Errorf("%w: %q (valid: todo, deadline, event)", models.ErrUnknownKind, s)
}

// ParseDate parses a "yyyy-MM-dd" date.
func ParseDate(s string) (civil.Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: %q, use yyyy-MM-dd", ErrInvalidDate, s)
	}
	return civil.DateOf(t), nil
}

// ParseDateTime parses a "yyyy-MM-dd HH:mm" date-time.
func ParseDateTime(s string) (civil.DateTime, error) {
	t, err := time.Parse(DateTimeLayout, strings.TrimSpace(s))
	if err != nil {
		return civil.DateTime{}, fmt.Errorf("%w: %q, use yyyy-MM-dd HH:mm", ErrInvalidDate, s)
	}
	return civil.DateTimeOf(t), nil
}

// TaskNumber converts a 1-based task number typed by the user into a
// 0-based index. Range checking is left to the task manager.
func TaskNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}
	return n - 1, nil
}

func formatError(format string) error {
	return fmt.Errorf("%w, expected %s", ErrFormat, format)
}
