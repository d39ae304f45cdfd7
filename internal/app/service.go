// Package app couples the in-memory task manager with a storage backend.
// Every mutation is followed by a save of the whole list.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/log"
	"github.com/tgienger/erii/internal/logging"
	"github.com/tgienger/erii/internal/models"
	"github.com/tgienger/erii/internal/parse"
	"github.com/tgienger/erii/internal/storage"
	"github.com/tgienger/erii/internal/tasks"
)

// ErrNotSaved is returned alongside a valid Outcome when the change was
// applied in memory but could not be written to storage. The next
// mutation retries the save.
var ErrNotSaved = errors.New("changes not saved")

// SortSettingKey is the settings key holding the last sort mode.
const SortSettingKey = "sort"

// Sort modes.
const (
	SortPriority = "priority"
	SortType     = "type"
)

// ErrUnknownSort is returned for a sort mode other than priority or type.
var ErrUnknownSort = errors.New("unknown sort mode")

// Options configure a Service.
type Options struct {
	Logger *log.Logger
	// Now is the clock used to check new deadlines and events.
	Now func() time.Time
}

// Service is the single entry point front ends use to read and change tasks.
// Mutations are serialized so that each one is saved before the next starts.
type Service struct {
	mu     sync.Mutex
	tasks  *tasks.Manager
	store  storage.Store
	log    *log.Logger
	parser parse.Parser
}

// New creates a service and loads the stored tasks into memory.
func New(ctx context.Context, store storage.Store, opts Options) (*Service, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Service{
		tasks:  tasks.NewManager(),
		store:  store,
		log:    logger,
		parser: parse.Parser{Now: opts.Now},
	}

	stored, err := store.LoadTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	for _, t := range stored {
		s.tasks.Load(t)
	}
	s.log.Debug("loaded tasks", "count", len(stored))
	return s, nil
}

// Close closes the underlying store.
func (s *Service) Close() error {
	return s.store.Close()
}

// Parser returns the parser used for free-text input.
func (s *Service) Parser() parse.Parser {
	return s.parser
}

// Add appends a task.
func (s *Service) Add(ctx context.Context, t models.Task) (tasks.Outcome, error) {
	if err := models.Validate(t); err != nil {
		return tasks.Outcome{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(ctx, s.tasks.Add(t))
}

// AddText parses input in the console syntax for kind and appends the result.
func (s *Service) AddText(ctx context.Context, kind models.Kind, input string) (tasks.Outcome, error) {
	t, err := s.parser.Task(kind, input)
	if err != nil {
		return tasks.Outcome{}, err
	}
	return s.Add(ctx, t)
}

func (s *Service) MarkDone(ctx context.Context, index int) (tasks.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.tasks.MarkDone(index)
	if err != nil {
		return tasks.Outcome{}, err
	}
	return s.commit(ctx, out)
}

func (s *Service) Delete(ctx context.Context, index int) (tasks.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.tasks.Delete(index)
	if err != nil {
		return tasks.Outcome{}, err
	}
	return s.commit(ctx, out)
}

func (s *Service) SetPriority(ctx context.Context, index int, p models.Priority) (tasks.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setPriority(ctx, index, p)
}

// ShiftPriority raises (delta < 0) or lowers (delta > 0) the priority of the
// task at index by one level. At either end of the scale the task is left as is.
func (s *Service) ShiftPriority(ctx context.Context, index, delta int) (tasks.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.tasks.All()
	if index < 0 || index >= len(all) {
		return tasks.Outcome{}, &tasks.IndexError{Index: index, Size: len(all)}
	}
	p := all[index].Priority
	switch {
	case delta < 0:
		p = p.Raise()
	case delta > 0:
		p = p.Lower()
	}
	return s.setPriority(ctx, index, p)
}

func (s *Service) setPriority(ctx context.Context, index int, p models.Priority) (tasks.Outcome, error) {
	out, err := s.tasks.SetPriority(index, p)
	if err != nil {
		return tasks.Outcome{}, err
	}
	return s.commit(ctx, out)
}

// Sort reorders the list by mode and remembers the mode in the settings.
func (s *Service) Sort(ctx context.Context, mode string) (tasks.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out tasks.Outcome
	switch mode {
	case SortPriority:
		out = s.tasks.SortByPriority()
	case SortType:
		out = s.tasks.SortByType()
	default:
		return tasks.Outcome{}, fmt.Errorf("%w: %q (valid: %s, %s)", ErrUnknownSort, mode, SortPriority, SortType)
	}
	if err := s.store.SetSetting(ctx, SortSettingKey, mode); err != nil {
		s.log.Warn("could not remember sort mode", "mode", mode, "err", err)
	}
	return s.commit(ctx, out)
}

// SortMode returns the last sort mode used, or "" if the list was never sorted.
func (s *Service) SortMode(ctx context.Context) (string, error) {
	return s.store.Setting(ctx, SortSettingKey)
}

// Len returns the number of tasks.
func (s *Service) Len() int {
	return s.tasks.Len()
}

// List returns a snapshot of the tasks in list order.
func (s *Service) List() []models.Task {
	return s.tasks.All()
}

func (s *Service) Find(keyword string) []tasks.Match {
	return s.tasks.Find(keyword)
}

func (s *Service) DeadlinesAt(dt civil.DateTime) []tasks.Match {
	return s.tasks.DeadlinesAt(dt)
}

func (s *Service) EventsOn(d civil.Date) []tasks.Match {
	return s.tasks.EventsOn(d)
}

// Export writes every task as a JSON document.
func (s *Service) Export(w io.Writer) error {
	return storage.Export(w, s.tasks.All())
}

// Import appends the tasks of a JSON export and saves once. Nothing is added
// if the document is invalid.
func (s *Service) Import(ctx context.Context, r io.Reader) (int, error) {
	imported, err := storage.Import(r)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range imported {
		s.tasks.Add(t)
	}
	s.log.Info("imported tasks", "count", len(imported))
	if err := s.save(ctx); err != nil {
		return len(imported), err
	}
	return len(imported), nil
}

func (s *Service) Profile(ctx context.Context) (storage.Profile, error) {
	return s.store.LoadProfile(ctx)
}

func (s *Service) SaveProfile(ctx context.Context, p storage.Profile) error {
	if err := s.store.SaveProfile(ctx, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	s.log.Debug("saved profile", "name", p.Name)
	return nil
}

// commit and save must be called with s.mu held.
func (s *Service) commit(ctx context.Context, out tasks.Outcome) (tasks.Outcome, error) {
	s.log.Debug("task list changed", "action", out.Action, "count", out.Count)
	if err := s.save(ctx); err != nil {
		return out, err
	}
	return out, nil
}

func (s *Service) save(ctx context.Context) error {
	snapshot := s.tasks.All()
	if err := s.store.SaveTasks(ctx, snapshot); err != nil {
		s.log.Error("save failed", "count", len(snapshot), "err", err)
		return fmt.Errorf("%w: %v", ErrNotSaved, err)
	}
	s.log.Debug("saved tasks", "count", len(snapshot))
	return nil
}
