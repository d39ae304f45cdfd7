package models

import (
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

var (
	// ErrEmptyDescription is returned when a task description is blank.
	ErrEmptyDescription = errors.New("description cannot be empty")

	// ErrMultilineDescription is returned when a description contains a line break.
	ErrMultilineDescription = errors.New("description cannot contain line breaks")

	// ErrInvalidPriority is returned when a priority is not one of SS, S, A, B, C, D.
	ErrInvalidPriority = errors.New("invalid priority (valid: SS, S, A, B, C, D)")

	// ErrInvalidDate is returned when a date or date-time is not a real calendar value.
	ErrInvalidDate = errors.New("invalid date")

	// ErrEndNotAfterStart is returned when an event ends on or before its start date.
	ErrEndNotAfterStart = errors.New("end date must be after start date")

	// ErrNotDeadline is returned when a due date is set on a task that is not a deadline.
	ErrNotDeadline = errors.New("task is not a deadline")
)

func invalidPriority(s string) error {
	return fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}

// ValidateDescription checks that a description is usable.
func ValidateDescription(desc string) error {
	if strings.TrimSpace(desc) == "" {
		return ErrEmptyDescription
	}
	if strings.ContainsAny(desc, "\r\n") {
		return ErrMultilineDescription
	}
	return nil
}

// NewTodo creates a plain to-do.
func NewTodo(desc string, p Priority) (Task, error) {
	if err := validateCommon(desc, p); err != nil {
		return Task{}, err
	}
	return Task{Kind: KindTodo, Description: strings.TrimSpace(desc), Priority: p}, nil
}

// NewDeadline creates a task due at by.
func NewDeadline(desc string, by civil.DateTime, p Priority) (Task, error) {
	if err := validateCommon(desc, p); err != nil {
		return Task{}, err
	}
	if !by.IsValid() {
		return Task{}, fmt.Errorf("%w: %s", ErrInvalidDate, by)
	}
	return Task{Kind: KindDeadline, Description: strings.TrimSpace(desc), Priority: p, By: by}, nil
}

// NewEvent creates an event spanning start through end.
func NewEvent(desc string, start, end civil.Date, p Priority) (Task, error) {
	if err := validateCommon(desc, p); err != nil {
		return Task{}, err
	}
	if !start.IsValid() {
		return Task{}, fmt.Errorf("%w: %s", ErrInvalidDate, start)
	}
	if !end.IsValid() {
		return Task{}, fmt.Errorf("%w: %s", ErrInvalidDate, end)
	}
	if !end.After(start) {
		return Task{}, fmt.Errorf("%w: %s is not after %s", ErrEndNotAfterStart, end, start)
	}
	return Task{
		Kind:        KindEvent,
		Description: strings.TrimSpace(desc),
		Priority:    p,
		Span:        Span{Start: start, End: end},
	}, nil
}

// Validate checks an already-built task, e.g. one read back from storage.
func Validate(t Task) error {
	var err error
	switch t.Kind {
	case KindTodo:
		_, err = NewTodo(t.Description, t.Priority)
	case KindDeadline:
		_, err = NewDeadline(t.Description, t.By, t.Priority)
	case KindEvent:
		_, err = NewEvent(t.Description, t.Span.Start, t.Span.End, t.Priority)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownKind, t.Kind)
	}
	return err
}

func validateCommon(desc string, p Priority) error {
	if err := ValidateDescription(desc); err != nil {
		return err
	}
	if !p.IsValid() {
		return invalidPriority(fmt.Sprint(int(p)))
	}
	return nil
}
