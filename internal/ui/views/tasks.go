package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/tgienger/erii/internal/app"
	"github.com/tgienger/erii/internal/models"
	"github.com/tgienger/erii/internal/parse"
	"github.com/tgienger/erii/internal/tasks"
	"github.com/tgienger/erii/internal/ui/keys"
	"github.com/tgienger/erii/internal/ui/styles"
)

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

var formatHints = map[models.Kind]string{
	models.KindTodo:     "slain a dragon /S",
	models.KindDeadline: "submit report /by 2021-09-30 18:30 /SS",
	models.KindEvent:    "project meeting /from 2021-09-30 /to 2021-10-01 /A",
}

// TaskListView shows the task list and the dialogs that change it
type TaskListView struct {
	ctx    context.Context
	svc    *app.Service
	rows   []tasks.Match
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	cursor   int
	scrollY  int
	sortMode string

	// Search mode; rows hold only matches while query is non-empty
	searching   bool
	searchInput textinput.Model

	// New task dialog
	creating  bool
	newKind   int // index into models.Kinds()
	taskInput textinput.Model

	confirmingDelete bool
	showHelpPopup    bool

	status    string
	statusErr bool
}

// NewTaskListView creates a new task list view
func NewTaskListView(ctx context.Context, svc *app.Service) *TaskListView {
	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.CharLimit = 100

	input := textinput.New()
	input.CharLimit = 300

	return &TaskListView{
		ctx:         ctx,
		svc:         svc,
		styles:      styles.NewStyles(nil),
		keys:        keys.DefaultKeyMap(),
		searchInput: search,
		taskInput:   input,
	}
}

type tasksLoadedMsg struct {
	rows     []tasks.Match
	sortMode string
}

// resultMsg carries the result of a change made in the background.
type resultMsg struct {
	out tasks.Outcome
	err error
}

// Init loads the list in its stored order
func (v *TaskListView) Init() tea.Cmd {
	return func() tea.Msg { return v.load("") }
}

// reload reads the list again, keeping the current search.
func (v *TaskListView) reload() tea.Cmd {
	query := strings.TrimSpace(v.searchInput.Value())
	return func() tea.Msg { return v.load(query) }
}

func (v *TaskListView) load(query string) tea.Msg {
	mode, _ := v.svc.SortMode(v.ctx)
	if query != "" {
		return tasksLoadedMsg{rows: v.svc.Find(query), sortMode: mode}
	}
	all := v.svc.List()
	rows := make([]tasks.Match, len(all))
	for i, t := range all {
		rows[i] = tasks.Match{Index: i, Task: t}
	}
	return tasksLoadedMsg{rows: rows, sortMode: mode}
}

// change runs a service call off the UI goroutine.
func (v *TaskListView) change(do func() (tasks.Outcome, error)) tea.Cmd {
	return func() tea.Msg {
		out, err := do()
		return resultMsg{out: out, err: err}
	}
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		inputWidth := clamp(styles.ContentWidth(v.width)-10, 20, 60)
		v.taskInput.Width = inputWidth
		v.searchInput.Width = clamp(inputWidth, 10, 30)
		return v, nil

	case tasksLoadedMsg:
		v.rows = msg.rows
		v.sortMode = msg.sortMode
		if v.cursor >= len(v.rows) {
			v.cursor = max(0, len(v.rows)-1)
		}
		v.ensureVisible()
		return v, nil

	case resultMsg:
		v.setStatus(msg.out, msg.err)
		return v, v.reload()

	case tea.KeyMsg:
		// Any key closes the help popup
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.creating {
			return v.updateCreating(msg)
		}

		if v.searching {
			return v.updateSearching(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		// Clear an applied search
		if v.searchInput.Value() != "" {
			v.searchInput.Reset()
			return v, v.reload()
		}
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.rows)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.startNewTask()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Search):
		v.searching = true
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil

	case key.Matches(msg, v.keys.SortPriority):
		return v, v.change(func() (tasks.Outcome, error) { return v.svc.Sort(v.ctx, app.SortPriority) })

	case key.Matches(msg, v.keys.SortType):
		return v, v.change(func() (tasks.Outcome, error) { return v.svc.Sort(v.ctx, app.SortType) })
	}

	// The remaining keys act on the selected task
	if len(v.rows) == 0 {
		return v, nil
	}
	index := v.rows[v.cursor].Index

	switch {
	case key.Matches(msg, v.keys.Done):
		return v, v.change(func() (tasks.Outcome, error) { return v.svc.MarkDone(v.ctx, index) })

	case key.Matches(msg, v.keys.Delete):
		v.confirmingDelete = true
		return v, nil

	case key.Matches(msg, v.keys.Raise):
		return v, v.change(func() (tasks.Outcome, error) { return v.svc.ShiftPriority(v.ctx, index, -1) })

	case key.Matches(msg, v.keys.Lower):
		return v, v.change(func() (tasks.Outcome, error) { return v.svc.ShiftPriority(v.ctx, index, 1) })
	}

	return v, nil
}

func (v *TaskListView) updateSearching(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.searching = false
		v.searchInput.Blur()
		v.searchInput.Reset()
		return v, v.reload()
	case key.Matches(msg, v.keys.Enter):
		v.searching = false
		v.searchInput.Blur()
		v.cursor = 0
		return v, v.reload()
	}

	var cmd tea.Cmd
	v.searchInput, cmd = v.searchInput.Update(msg)
	v.cursor = 0
	return v, tea.Batch(cmd, v.reload())
}

func (v *TaskListView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		v.taskInput.Blur()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.newKind = (v.newKind + 1) % len(models.Kinds())
		v.taskInput.Placeholder = formatHints[v.kind()]
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		input := strings.TrimSpace(v.taskInput.Value())
		if input == "" {
			return v, nil
		}
		kind := v.kind()
		t, err := v.svc.Parser().Task(kind, input)
		if err != nil {
			// Keep the dialog open so the input can be fixed
			v.setStatus(tasks.Outcome{}, err)
			return v, nil
		}
		v.creating = false
		v.taskInput.Blur()
		return v, v.change(func() (tasks.Outcome, error) { return v.svc.Add(v.ctx, t) })
	}

	var cmd tea.Cmd
	v.taskInput, cmd = v.taskInput.Update(msg)
	return v, cmd
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		if len(v.rows) == 0 {
			return v, nil
		}
		index := v.rows[v.cursor].Index
		return v, v.change(func() (tasks.Outcome, error) { return v.svc.Delete(v.ctx, index) })
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) kind() models.Kind {
	return models.Kinds()[v.newKind]
}

func (v *TaskListView) startNewTask() {
	v.creating = true
	v.status = ""
	// Todo is the default
	for i, k := range models.Kinds() {
		if k == models.KindTodo {
			v.newKind = i
		}
	}
	v.taskInput.Reset()
	v.taskInput.Placeholder = formatHints[v.kind()]
	v.taskInput.Focus()
}

func (v *TaskListView) setStatus(out tasks.Outcome, err error) {
	v.statusErr = err != nil
	switch {
	case err == nil:
		v.status = describe(out)
	case errors.Is(err, app.ErrNotSaved):
		v.status = describe(out) + " (not saved: will retry)"
	default:
		v.status = err.Error()
	}
}

func describe(out tasks.Outcome) string {
	switch out.Action {
	case tasks.ActionAdded:
		return fmt.Sprintf("Added %q. Now you have %d tasks.", out.Task.Description, out.Count)
	case tasks.ActionCompleted:
		return fmt.Sprintf("Task completed: %s", out.Task.Description)
	case tasks.ActionDeleted:
		return fmt.Sprintf("Removed %q. Now you have %d tasks.", out.Task.Description, out.Count)
	case tasks.ActionReprioritized:
		return fmt.Sprintf("%s is now <%s>", out.Task.Description, out.Task.Priority)
	case tasks.ActionSortedPriority:
		return "Tasks sorted by priority."
	case tasks.ActionSortedType:
		return "Tasks sorted by type."
	}
	return ""
}

func (v *TaskListView) visibleItems() int {
	// Header, search, status and help take about 8 lines
	return max(v.height-8, 1)
}

func (v *TaskListView) ensureVisible() {
	visible := v.visibleItems()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if v.creating {
		return v.renderNewTask()
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(v.renderTaskList())
	b.WriteString("\n")
	b.WriteString(v.renderStatus())
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles

	title := s.Title.Render("Erii")
	info := fmt.Sprintf("%d tasks", v.svc.Len())
	if v.sortMode != "" {
		info += " • last sorted by " + v.sortMode
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", s.TitleMuted.Render(info))

	if !v.searching && v.searchInput.Value() == "" {
		return header
	}
	searchStyle := s.Input
	if v.searching {
		searchStyle = s.InputFocused
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, searchStyle.Render(v.searchInput.View()))
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles

	if len(v.rows) == 0 {
		if v.searchInput.Value() != "" {
			return s.TitleMuted.Render("No matching tasks found.")
		}
		return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}

	var items []string
	endIdx := min(v.scrollY+v.visibleItems(), len(v.rows))
	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, v.renderTaskItem(v.rows[i], i == v.cursor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) renderTaskItem(m tasks.Match, selected bool) string {
	s := v.styles
	width := max(styles.ContentWidth(v.width)-2, 20)

	line := fmt.Sprintf("%2d. %s", m.Index+1, m.Task)
	line = truncate.StringWithTail(line, uint(width-2), "…")

	switch {
	case selected:
		return s.ListSelected.Width(width).Render(line)
	case m.Task.Done:
		return s.ListItem.Width(width).Render(s.TaskDone.Render(line))
	}
	// Tint the priority badge of open tasks
	badge := "<" + m.Task.Priority.String() + ">"
	if i := strings.LastIndex(line, badge); i >= 0 {
		line = line[:i] + s.Priority(m.Task.Priority).Render(badge) + line[i+len(badge):]
	}
	return s.ListItem.Width(width).Render(line)
}

func (v *TaskListView) renderStatus() string {
	if v.status == "" {
		return ""
	}
	style := v.styles.Success
	if v.statusErr {
		style = v.styles.Error
	}
	return v.styles.StatusBar.Render(style.Render(v.status)) + "\n"
}

func (v *TaskListView) renderHelp() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}

	var parts []string
	for _, b := range v.keys.ShortHelp() {
		parts = append(parts, s.HelpKey.Render(b.Help().Key)+" "+s.HelpDesc.Render(b.Help().Desc))
	}
	return s.Help.Render(strings.Join(parts, " • "))
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	var lines []string
	for _, column := range v.keys.FullHelp() {
		for _, b := range column {
			lines = append(lines, s.HelpKey.Render(fmt.Sprintf("%-6s", b.Help().Key))+" "+b.Help().Desc)
		}
	}
	lines = append(lines, "", s.TitleMuted.Render("Press any key to close"))

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, lines...)...,
	)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Dialog.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	target := ""
	if v.cursor < len(v.rows) {
		target = v.rows[v.cursor].Task.String()
	}
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Error.Render("Delete Task?"),
		"",
		s.TitleMuted.Render(truncate.StringWithTail(target, uint(max(contentWidth-8, 10)), "…")),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderNewTask() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	var kinds []string
	for i, k := range models.Kinds() {
		label := " " + string(k) + " "
		if i == v.newKind {
			kinds = append(kinds, s.ButtonPrimary.Render(label))
		} else {
			kinds = append(kinds, s.TitleMuted.Render(label))
		}
	}

	inputWidth := clamp(contentWidth-6, 20, 60)
	form := []string{
		s.Title.Render("New Task"),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center, kinds...),
		"",
		s.InputFocused.Width(inputWidth).Render(v.taskInput.View()),
	}
	if v.status != "" && v.statusErr {
		form = append(form, s.Error.Render(v.status))
	}
	form = append(form, "",
		s.TitleMuted.Render(formats[v.kind()]),
		s.TitleMuted.Render("Tab: change type • ↵: add • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Left, form...),
	)
	return styles.CenterView(centered, v.width, v.height)
}

var formats = map[models.Kind]string{
	models.KindTodo:     parse.TodoFormat,
	models.KindDeadline: parse.DeadlineFormat,
	models.KindEvent:    parse.EventFormat,
}
