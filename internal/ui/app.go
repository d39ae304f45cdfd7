package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/erii/internal/app"
	"github.com/tgienger/erii/internal/ui/views"
)

type App struct {
	taskList *views.TaskListView
}

// Creates a new application
func NewApp(ctx context.Context, svc *app.Service) *App {
	return &App{
		taskList: views.NewTaskListView(ctx, svc),
	}
}

func (a *App) Init() tea.Cmd {
	return a.taskList.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	_, cmd := a.taskList.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	return a.taskList.View()
}

// Run starts the full-screen program and blocks until the user quits.
func Run(ctx context.Context, svc *app.Service, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	p := tea.NewProgram(NewApp(ctx, svc), opts...)
	_, err := p.Run()
	return err
}
