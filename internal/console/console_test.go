package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tgienger/erii/internal/app"
	"github.com/tgienger/erii/internal/console"
	"github.com/tgienger/erii/internal/storage"
)

var fixedNow = time.Date(2021, 9, 1, 12, 0, 0, 0, time.Local)

func newService(t *testing.T, dir string) *app.Service {
	t.Helper()
	store, err := storage.Open(storage.BackendText, dir)
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	svc, err := app.New(context.Background(), store, app.Options{Now: func() time.Time { return fixedNow }})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	t.Cleanup(func() { svc.Close() })
	return svc
}

func withProfile(t *testing.T, svc *app.Service) {
	t.Helper()
	err := svc.SaveProfile(context.Background(), storage.Profile{Name: "Erii Uesugi", Birthday: "01/02/2000", Gender: "Female"})
	if err != nil {
		t.Fatal(err)
	}
}

// run feeds lines to a console and returns everything it printed.
func run(t *testing.T, svc *app.Service, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	if err := console.New(svc, in, &out, nil).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v\noutput:\n%s", err, out.String())
	}
	return out.String()
}

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\noutput:\n%s", want, out)
		}
	}
}

func TestConsole_Onboarding(t *testing.T) {
	svc := newService(t, t.TempDir())

	out := run(t, svc,
		"Erii",
		"Erii  Uesugi",
		"2000-02-01",
		"01/02/2000",
		"4",
		"2",
		"X",
	)

	assertContains(t, out,
		"Invalid name. Please enter both your first name and last name.",
		"Invalid format. Please enter your birthday in DD/MM/YYYY format.",
		"Invalid option selected. Please enter 1, 2, or 3.",
		"Nice to meet you, Erii!",
		"Thank you for using Erii. さよなら!",
	)

	p, err := svc.Profile(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := storage.Profile{Name: "Erii Uesugi", Birthday: "01/02/2000", Gender: "Female"}
	if p != want {
		t.Errorf("profile = %+v, want %+v", p, want)
	}
}

func TestConsole_OnboardingAborted(t *testing.T) {
	svc := newService(t, t.TempDir())
	var out bytes.Buffer
	err := console.New(svc, strings.NewReader("Erii Uesugi\n"), &out, nil).Run(context.Background())
	if !errors.Is(err, console.ErrAborted) {
		t.Errorf("Run error = %v, want ErrAborted", err)
	}
}

func TestConsole_AddListAndQuery(t *testing.T) {
	svc := newService(t, t.TempDir())
	withProfile(t, svc)

	out := run(t, svc,
		"2", "slain a dragon /S",
		"3", "submit report /by 2021-09-30 18:30 /SS",
		"4", "project meeting /from 2021-09-30 /to 2021-10-02 /A",
		"1",
		"7", "1", "2021-09-30 18:30",
		"7", "2", "2021-10-02",
		"7", "2", "2021-10-03",
		"8", "DRAGON",
		"8", "unicorn",
		"x",
	)

	assertContains(t, out,
		"Welcome back, Erii!",
		"Got it. I've added this task:",
		"  [T][ ] slain a dragon <S>",
		"Now you have 3 tasks in the list.",
		"1.[T][ ] slain a dragon <S>",
		"2.[D][ ] submit report <SS> (by: Sep 30 2021)",
		"3.[E][ ] project meeting <A> (from: Sep 30 2021 to: Oct 02 2021)",
		"Deadline Tasks on 30 Sep 2021 18:30:",
		"Event Tasks on 02 Oct 2021:",
		"No event tasks found for this date.",
		"Here are the matching tasks in your list:",
		"No matching tasks found.",
	)
}

func TestConsole_MarkDeleteAndErrors(t *testing.T) {
	dir := t.TempDir()
	svc := newService(t, dir)
	withProfile(t, svc)

	out := run(t, svc,
		"2", "read book /B",
		"2", "slain a dragon",
		"2", "buy milk /E",
		"3", "old report /by 2021-08-01 10:00 /A",
		"5", "1",
		"5", "9",
		"6", "abc",
		"6", "1",
		"?",
		"X",
	)

	assertContains(t, out,
		"Incorrect format, expected description /priority",
		"Invalid priority (valid: SS, S, A, B, C, D)",
		"Deadline must be after the current date and time.",
		"Task completed",
		"[T][X] read book <B>",
		"Task number is out of range. Please enter a valid task number.",
		"Current number of tasks: 1",
		"Please enter a valid task number.",
		"Noted. I've removed this task:",
		"Now you have 0 tasks in the list.",
		"Unknown command. Please try again.",
	)

	if reloaded := newService(t, dir); reloaded.Len() != 0 {
		t.Errorf("reloaded list has %d tasks, want 0", reloaded.Len())
	}
}

func TestConsole_SortAndPriority(t *testing.T) {
	svc := newService(t, t.TempDir())
	withProfile(t, svc)

	out := run(t, svc,
		"2", "low /D",
		"2", "high /SS",
		"9", "1",
		"P", "2 S",
		"P", "1 Z",
		"9", "3",
		"X",
	)

	assertContains(t, out,
		"Tasks sorted by priority.",
		"1.[T][ ] high <SS>",
		"2.[T][ ] low <D>",
		"Priority updated:",
		"  [T][ ] low <S>",
		"Invalid priority",
		"Invalid choice. Please enter 1 or 2.",
	)
	if mode, _ := svc.SortMode(context.Background()); mode != app.SortPriority {
		t.Errorf("SortMode = %q", mode)
	}
}
