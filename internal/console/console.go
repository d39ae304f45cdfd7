// Package console runs erii's numbered menu over plain line input. It is the
// front end used when stdin is not a terminal or the TUI is disabled.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/tgienger/erii/internal/app"
	"github.com/tgienger/erii/internal/logging"
	"github.com/tgienger/erii/internal/models"
	"github.com/tgienger/erii/internal/parse"
	"github.com/tgienger/erii/internal/storage"
)

// ErrAborted is returned when input ends before first-run setup finishes.
var ErrAborted = errors.New("input ended during setup")

var birthdayPattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

var genders = map[string]string{"1": "Male", "2": "Female", "3": "Other"}

const menu = `
How may I assist you today?
1. List tasks
2. Add a task
3. Add a deadline task
4. Add an event task
5. Mark a task as done
6. Delete a task
7. List tasks on a specific date
8. Search for a task by keyword
9. Sort tasks
P. Set a task's priority
X. Exit
Enter the symbol corresponding to your choice:`

// Console reads menu choices from in and narrates results to out.
type Console struct {
	svc *app.Service
	in  *bufio.Scanner
	out io.Writer
	say *Narrator
	log *log.Logger
}

// New creates a console. A nil logger discards log output.
func New(svc *app.Service, in io.Reader, out io.Writer, logger *log.Logger) *Console {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Console{
		svc: svc,
		in:  bufio.NewScanner(in),
		out: out,
		say: NewNarrator(out),
		log: logger,
	}
}

// Run shows the banner, asks for the profile on first use and then serves
// the menu until X is chosen or input ends.
func (c *Console) Run(ctx context.Context) error {
	for _, line := range strings.Split(strings.Trim(banner, "\n"), "\n") {
		fmt.Fprintln(c.out, c.say.styles.Banner.Render(line))
	}

	profile, err := c.svc.Profile(ctx)
	if err != nil {
		return err
	}
	if profile.IsZero() {
		if profile, err = c.onboard(ctx); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "\nNice to meet you, %s!\n", firstName(profile.Name))
	} else {
		fmt.Fprintf(c.out, "\nWelcome back, %s!\n", firstName(profile.Name))
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintln(c.out, menu)
		choice, ok := c.readLine()
		if !ok {
			return nil
		}
		c.log.Debug("menu choice", "choice", choice)
		if strings.EqualFold(choice, "x") {
			c.exit()
			return nil
		}
		if !c.dispatch(ctx, choice) {
			return nil
		}
	}
}

// dispatch runs one menu command. It reports false if input ended midway.
func (c *Console) dispatch(ctx context.Context, choice string) bool {
	switch strings.ToUpper(choice) {
	case "1":
		c.say.List(c.svc.List())
	case "2":
		return c.add(ctx, models.KindTodo, "Please enter the task description and priority (e.g., slain a dragon /S):")
	case "3":
		return c.add(ctx, models.KindDeadline, "Please enter the deadline task description, deadline date and priority (e.g., submit report /by 2021-09-30 18:30 /SS):")
	case "4":
		return c.add(ctx, models.KindEvent, "Please enter the event description, start date, end date and priority (e.g., project meeting /from 2021-09-30 /to 2021-10-01 /S):")
	case "5":
		return c.withTaskNumber("Please enter the task number to mark as done:", func(index int) {
			out, err := c.svc.MarkDone(ctx, index)
			c.say.Report(out, err, c.svc.Len())
		})
	case "6":
		return c.withTaskNumber("Choose the task you want to delete: ", func(index int) {
			out, err := c.svc.Delete(ctx, index)
			c.say.Report(out, err, c.svc.Len())
		})
	case "7":
		return c.searchByDate()
	case "8":
		keyword, ok := c.prompt("Enter a keyword to search for tasks:")
		if !ok {
			return false
		}
		c.say.Matches(c.svc.Find(keyword))
	case "9":
		return c.sort(ctx)
	case "P":
		return c.setPriority(ctx)
	default:
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "Unknown command. Please try again.")
	}
	return true
}

func (c *Console) add(ctx context.Context, kind models.Kind, question string) bool {
	input, ok := c.prompt(question)
	if !ok {
		return false
	}
	out, err := c.svc.AddText(ctx, kind, input)
	c.say.Report(out, err, c.svc.Len())
	return true
}

func (c *Console) withTaskNumber(question string, do func(index int)) bool {
	input, ok := c.prompt(question)
	if !ok {
		return false
	}
	index, err := parse.TaskNumber(input)
	if err != nil {
		c.say.Error(err, c.svc.Len())
		return true
	}
	do(index)
	return true
}

func (c *Console) searchByDate() bool {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Please select the type of task to search:")
	fmt.Fprintln(c.out, "1. Deadline Task")
	fmt.Fprintln(c.out, "2. Event Task")
	fmt.Fprint(c.out, "Your choice (1/2): ")
	choice, ok := c.readLine()
	if !ok {
		return false
	}

	switch choice {
	case "1":
		input, ok := c.prompt("Please enter the date and time in yyyy-MM-dd HH:mm format to list deadline tasks.\nFor example, 2021-09-30 18:30.")
		if !ok {
			return false
		}
		dt, err := parse.ParseDateTime(input)
		if err != nil {
			c.say.Error(err, c.svc.Len())
			return true
		}
		c.say.Deadlines(dt, c.svc.DeadlinesAt(dt))
	case "2":
		input, ok := c.prompt("Please enter the date in yyyy-MM-dd format to list event tasks.\nFor example, 2021-09-30.")
		if !ok {
			return false
		}
		d, err := parse.ParseDate(input)
		if err != nil {
			c.say.Error(err, c.svc.Len())
			return true
		}
		c.say.Events(d, c.svc.EventsOn(d))
	default:
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "Invalid choice. Please enter 1 or 2.")
	}
	return true
}

func (c *Console) sort(ctx context.Context) bool {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Sort tasks by:")
	fmt.Fprintln(c.out, "1. Priority")
	fmt.Fprintln(c.out, "2. Type")
	fmt.Fprint(c.out, "Your choice (1/2): ")
	choice, ok := c.readLine()
	if !ok {
		return false
	}

	var mode string
	switch choice {
	case "1":
		mode = app.SortPriority
	case "2":
		mode = app.SortType
	default:
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "Invalid choice. Please enter 1 or 2.")
		return true
	}
	out, err := c.svc.Sort(ctx, mode)
	c.say.Report(out, err, c.svc.Len())
	if err == nil || errors.Is(err, app.ErrNotSaved) {
		c.say.List(c.svc.List())
	}
	return true
}

func (c *Console) setPriority(ctx context.Context) bool {
	input, ok := c.prompt("Please enter the task number and the new priority (e.g., 2 A):")
	if !ok {
		return false
	}
	fields := strings.Fields(input)
	if len(fields) != 2 {
		c.say.Error(fmt.Errorf("%w, expected task number followed by priority (e.g. 2 A)", parse.ErrFormat), c.svc.Len())
		return true
	}
	index, err := parse.TaskNumber(fields[0])
	if err != nil {
		c.say.Error(err, c.svc.Len())
		return true
	}
	priority, err := models.ParsePriority(fields[1])
	if err != nil {
		c.say.Error(err, c.svc.Len())
		return true
	}
	out, err := c.svc.SetPriority(ctx, index, priority)
	c.say.Report(out, err, c.svc.Len())
	return true
}

func (c *Console) exit() {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Saving changes...")
	fmt.Fprintln(c.out, "----------------------------------")
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Changes saved. Exiting.")
	fmt.Fprintln(c.out, "----------------------------------")
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Thank you for using Erii. さよなら!")
}

// onboard collects the profile on first run.
func (c *Console) onboard(ctx context.Context) (storage.Profile, error) {
	var p storage.Profile

	fmt.Fprintln(c.out, "Please enter your full name (First Name Last Name): ")
	for {
		name, ok := c.readLine()
		if !ok {
			return storage.Profile{}, ErrAborted
		}
		if len(strings.Fields(name)) >= 2 {
			p.Name = strings.Join(strings.Fields(name), " ")
			break
		}
		fmt.Fprintln(c.out, "Invalid name. Please enter both your first name and last name.")
	}

	fmt.Fprintln(c.out, "Please enter your birthday (DD/MM/YYYY): ")
	for {
		birthday, ok := c.readLine()
		if !ok {
			return storage.Profile{}, ErrAborted
		}
		if birthdayPattern.MatchString(birthday) {
			p.Birthday = birthday
			break
		}
		fmt.Fprintln(c.out, "Invalid format. Please enter your birthday in DD/MM/YYYY format.")
	}

	fmt.Fprintln(c.out, "Please enter your gender: ")
	fmt.Fprintln(c.out, "1. Male")
	fmt.Fprintln(c.out, "2. Female")
	fmt.Fprintln(c.out, "3. Other")
	for {
		choice, ok := c.readLine()
		if !ok {
			return storage.Profile{}, ErrAborted
		}
		if gender, found := genders[choice]; found {
			p.Gender = gender
			break
		}
		fmt.Fprintln(c.out, "Invalid option selected. Please enter 1, 2, or 3.")
	}

	if err := c.svc.SaveProfile(ctx, p); err != nil {
		return storage.Profile{}, err
	}
	return p, nil
}

func (c *Console) prompt(question string) (string, bool) {
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, question)
	return c.readLine()
}

func (c *Console) readLine() (string, bool) {
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			c.log.Error("read input", "err", err)
		}
		return "", false
	}
	return strings.TrimSpace(c.in.Text()), true
}

func firstName(full string) string {
	if fields := strings.Fields(full); len(fields) > 0 {
		return fields[0]
	}
	return full
}
