package models

import (
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

// ErrMalformedRecord is returned when a stored line cannot be decoded.
var ErrMalformedRecord = errors.New("malformed task record")

const fieldSep = "|"

// EncodeLine serializes a task into a single storage line. The description is
// the last field so it may itself contain the separator.
//
//	T|0|S|buy groceries
//	D|1|SS|2021-09-30T18:30:00|submit report
//	E|0|A|2021-09-30|2021-10-02|project meeting
func EncodeLine(t Task) (string, error) {
	if err := Validate(t); err != nil {
		return "", err
	}

	fields := []string{t.Kind.Tag(), encodeBool(t.Done), t.Priority.String()}
	switch t.Kind {
	case KindDeadline:
		fields = append(fields, t.By.String())
	case KindEvent:
		fields = append(fields, t.Span.Start.String(), t.Span.End.String())
	}
	fields = append(fields, t.Description)
	return strings.Join(fields, fieldSep), nil
}

// DecodeLine is the inverse of EncodeLine.
func DecodeLine(line string) (Task, error) {
	line = strings.TrimRight(line, "\r\n")
	tag, rest, ok := strings.Cut(line, fieldSep)
	if !ok {
		return Task{}, malformed(line, "missing fields")
	}

	var n int
	switch tag {
	case "T":
		n = 3
	case "D":
		n = 4
	case "E":
		n = 5
	default:
		return Task{}, malformed(line, fmt.Sprintf("unknown type tag %q", tag))
	}

	fields := strings.SplitN(rest, fieldSep, n)
	if len(fields) != n {
		return Task{}, malformed(line, fmt.Sprintf("want %d fields, got %d", n+1, len(fields)+1))
	}

	done, err := decodeBool(fields[0])
	if err != nil {
		return Task{}, malformed(line, err.Error())
	}
	priority, err := ParsePriority(fields[1])
	if err != nil {
		return Task{}, malformed(line, err.Error())
	}
	desc := fields[n-1]

	var t Task
	switch tag {
	case "T":
		t, err = NewTodo(desc, priority)
	case "D":
		var by civil.DateTime
		by, err = civil.ParseDateTime(fields[2])
		if err == nil {
			t, err = NewDeadline(desc, by, priority)
		}
	case "E":
		var start, end civil.Date
		start, err = civil.ParseDate(fields[2])
		if err == nil {
			end, err = civil.ParseDate(fields[3])
		}
		if err == nil {
			t, err = NewEvent(desc, start, end, priority)
		}
	}
	if err != nil {
		return Task{}, malformed(line, err.Error())
	}
	t.Done = done
	return t, nil
}

func encodeBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func decodeBool(s string) (bool, error) {
	switch s {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid done flag %q", s)
}

func malformed(line, reason string) error {
	return fmt.Errorf("%w: %s: %q", ErrMalformedRecord, reason, line)
}
