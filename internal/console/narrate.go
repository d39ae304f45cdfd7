package console

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/erii/internal/app"
	"github.com/tgienger/erii/internal/models"
	"github.com/tgienger/erii/internal/parse"
	"github.com/tgienger/erii/internal/tasks"
	"github.com/tgienger/erii/internal/ui/styles"
)

const rule = "____________________________________________________________"

// Narrator turns service results into the sentences erii prints.
type Narrator struct {
	w      io.Writer
	styles *styles.Styles
}

// NewNarrator writes to w. Colors are used only when w is a color terminal.
func NewNarrator(w io.Writer) *Narrator {
	return &Narrator{w: w, styles: styles.NewStyles(lipgloss.NewRenderer(w))}
}

func (n *Narrator) println(a ...any) {
	fmt.Fprintln(n.w, a...)
}

func (n *Narrator) rule() {
	n.println(n.styles.Rule.Render(rule))
}

// Outcome describes a successful change.
func (n *Narrator) Outcome(out tasks.Outcome) {
	switch out.Action {
	case tasks.ActionAdded:
		n.println()
		n.println(n.styles.Success.Render("Got it. I've added this task:"))
		n.println("  " + n.task(out.Task))
		n.count(out.Count)
	case tasks.ActionCompleted:
		n.println("----------------------------------")
		n.println()
		n.println(n.styles.Success.Render("Task completed"))
		n.println(n.task(out.Task))
		n.println("--------------------------------------")
	case tasks.ActionDeleted:
		n.println()
		n.println(n.styles.Success.Render("Noted. I've removed this task:"))
		n.println("  " + n.task(out.Task))
		n.count(out.Count)
	case tasks.ActionReprioritized:
		n.println()
		n.println(n.styles.Success.Render("Priority updated:"))
		n.println("  " + n.task(out.Task))
	case tasks.ActionSortedPriority:
		n.println()
		n.println("Tasks sorted by priority.")
	case tasks.ActionSortedType:
		n.println()
		n.println("Tasks sorted by type.")
	}
}

func (n *Narrator) count(size int) {
	n.println()
	n.println(fmt.Sprintf("Now you have %d tasks in the list.", size))
	n.rule()
}

// Imported reports how many tasks an import added.
func (n *Narrator) Imported(count, size int) {
	n.println()
	n.println(n.styles.Success.Render(fmt.Sprintf("Imported %d tasks.", count)))
	n.count(size)
}

// List prints the whole list, numbered from 1.
func (n *Narrator) List(all []models.Task) {
	n.println()
	n.println(n.styles.Title.Render("Here are the tasks in your list:"))
	if len(all) == 0 {
		n.println(n.styles.TitleMuted.Render("Your list is empty."))
	}
	for i, t := range all {
		n.println(fmt.Sprintf("%d.%s", i+1, n.task(t)))
	}
	n.rule()
}

// Matches prints the result of a keyword search.
func (n *Narrator) Matches(matches []tasks.Match) {
	n.rule()
	n.println()
	n.println(n.styles.Title.Render("Here are the matching tasks in your list:"))
	for _, m := range matches {
		n.println(fmt.Sprintf("%d.%s", m.Index+1, n.task(m.Task)))
	}
	if len(matches) == 0 {
		n.println()
		n.println("No matching tasks found.")
	}
	n.rule()
}

// Deadlines prints the deadlines due at dt.
func (n *Narrator) Deadlines(dt civil.DateTime, matches []tasks.Match) {
	n.println()
	n.println(n.styles.Title.Render("Deadline Tasks on " + dt.In(time.UTC).Format("02 Jan 2006 15:04") + ":"))
	for _, m := range matches {
		n.println(n.task(m.Task))
	}
	if len(matches) == 0 {
		n.println("No deadline tasks found for this date and time.")
	}
}

// Events prints the events running on d.
func (n *Narrator) Events(d civil.Date, matches []tasks.Match) {
	n.println()
	n.println(n.styles.Title.Render("Event Tasks on " + d.In(time.UTC).Format("02 Jan 2006") + ":"))
	for _, m := range matches {
		n.println(n.task(m.Task))
	}
	if len(matches) == 0 {
		n.println("No event tasks found for this date.")
	}
}

// Error explains a failed command. Size is the current list length, used
// when the task number was out of range.
func (n *Narrator) Error(err error, size int) {
	n.println()
	var idx *tasks.IndexError
	switch {
	case errors.As(err, &idx):
		n.println(n.styles.Error.Render("Task number is out of range. Please enter a valid task number."))
		n.println()
		n.println(fmt.Sprintf("Current number of tasks: %d", size))
	case errors.Is(err, parse.ErrInvalidNumber):
		n.println(n.styles.Error.Render("Please enter a valid task number."))
	case errors.Is(err, tasks.ErrUnsupportedOperation):
		n.println(n.styles.Error.Render("This task type cannot be marked as done."))
	case errors.Is(err, app.ErrNotSaved):
		n.println(n.styles.Warning.Render("Warning: " + err.Error() + ". They will be saved with your next change."))
	default:
		n.println(n.styles.Error.Render(sentence(err.Error())))
	}
}

// Report prints the outcome and, if the save failed, a warning after it.
func (n *Narrator) Report(out tasks.Outcome, err error, size int) {
	if err != nil && !errors.Is(err, app.ErrNotSaved) {
		n.Error(err, size)
		return
	}
	n.Outcome(out)
	if err != nil {
		n.Error(err, size)
	}
}

func (n *Narrator) task(t models.Task) string {
	if t.Done {
		return t.String()
	}
	// The badge is the last "<...>" in the rendering; the description may
	// contain the same text.
	s := t.String()
	badge := "<" + t.Priority.String() + ">"
	i := strings.LastIndex(s, badge)
	if i < 0 {
		return s
	}
	return s[:i] + n.styles.Priority(t.Priority).Render(badge) + s[i+len(badge):]
}

func sentence(msg string) string {
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	msg = string(unicode.ToUpper(r)) + msg[size:]
	if !strings.HasSuffix(msg, ".") && !strings.HasSuffix(msg, ")") {
		msg += "."
	}
	return msg
}
