package models

import (
	"errors"
	"testing"
)

func TestEncodeLine(t *testing.T) {
	todo, _ := NewTodo("buy groceries", PriorityS)
	deadline, _ := NewDeadline("submit report", dateTime(2021, 9, 30, 18, 30), PrioritySS)
	deadline.SetDone(true)
	event, _ := NewEvent("a|b meeting", date(2021, 9, 30), date(2021, 10, 2), PriorityA)

	tests := []struct {
		name string
		task Task
		want string
	}{
		{"todo", todo, "T|0|S|buy groceries"},
		{"deadline", deadline, "D|1|SS|2021-09-30T18:30:00|submit report"},
		{"event with separator", event, "E|0|A|2021-09-30|2021-10-02|a|b meeting"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeLine(tt.task)
			if err != nil {
				t.Fatalf("EncodeLine: %v", err)
			}
			if got != tt.want {
				t.Errorf("EncodeLine() = %q, want %q", got, tt.want)
			}

			back, err := DecodeLine(got)
			if err != nil {
				t.Fatalf("DecodeLine(%q): %v", got, err)
			}
			if back != tt.task {
				t.Errorf("DecodeLine() = %+v, want %+v", back, tt.task)
			}
		})
	}
}

func TestDecodeLine_Malformed(t *testing.T) {
	lines := []string{
		"",
		"X|0|S|what",
		"T|0|S",
		"T|2|S|bad flag",
		"T|0|Z|bad priority",
		"T|0|S|   ",
		"D|0|S|2021-09-30|date only",
		"E|0|S|2021-10-02|2021-09-30|reversed",
		"E|0|S|2021-09-30|missing end",
	}

	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			if _, err := DecodeLine(line); !errors.Is(err, ErrMalformedRecord) {
				t.Errorf("DecodeLine(%q) error = %v, want ErrMalformedRecord", line, err)
			}
		})
	}
}

func TestEncodeLine_RejectsUnknownKind(t *testing.T) {
	if _, err := EncodeLine(Task{Kind: "Note", Description: "x"}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("EncodeLine error = %v, want ErrUnknownKind", err)
	}
}
