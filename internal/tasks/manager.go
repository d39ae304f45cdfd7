// Package tasks holds the ordered, in-memory task list and the operations
// that query and mutate it. It never performs I/O; callers decide how to
// present the returned outcomes and when to persist.
package tasks

import (
	"cmp"
	"slices"
	"strings"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/tgienger/erii/internal/models"
)

// Action names what a mutating operation did.
type Action string

const (
	ActionAdded          Action = "added"
	ActionCompleted      Action = "completed"
	ActionDeleted        Action = "deleted"
	ActionReprioritized  Action = "reprioritized"
	ActionSortedPriority Action = "sorted_priority"
	ActionSortedType     Action = "sorted_type"
)

// Outcome describes the result of a mutating operation.
type Outcome struct {
	Action Action
	// Task is the affected task after the change (for deletes, the removed task).
	Task models.Task
	// Count is the number of tasks in the list after the change.
	Count int
}

// Match is a task found by a query together with its zero-based position.
type Match struct {
	Index int
	Task  models.Task
}

// Manager owns an ordered list of tasks. Insertion order is kept unless the
// list is explicitly sorted. It is safe for use from multiple goroutines.
type Manager struct {
	mu    sync.Mutex
	tasks []models.Task
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{}
}

// Add appends a task and reports the new list size.
func (m *Manager) Add(t models.Task) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks = append(m.tasks, t)
	return Outcome{Action: ActionAdded, Task: t, Count: len(m.tasks)}
}

// Load appends a task read back from storage.
func (m *Manager) Load(t models.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tasks = append(m.tasks, t)
}

// Len returns the number of tasks.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.tasks)
}

// List returns the tasks front to back.
func (m *Manager) List() []models.Task {
	return m.All()
}

// All returns a snapshot of the task list. Changing the returned slice does
// not affect the manager.
func (m *Manager) All() []models.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Clone(m.tasks)
}

// SortByPriority orders tasks from most to least urgent. Tasks with equal
// priority keep their relative order.
func (m *Manager) SortByPriority() Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	slices.SortStableFunc(m.tasks, func(a, b models.Task) int {
		return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
	})
	return Outcome{Action: ActionSortedPriority, Count: len(m.tasks)}
}

// SortByType orders tasks by their kind tag. Tasks of the same kind keep
// their relative order.
func (m *Manager) SortByType() Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	slices.SortStableFunc(m.tasks, func(a, b models.Task) int {
		return strings.Compare(string(a.Kind), string(b.Kind))
	})
	return Outcome{Action: ActionSortedType, Count: len(m.tasks)}
}

// MarkDone completes the task at index. Completing a done task is a no-op
// that still succeeds.
func (m *Manager) MarkDone(index int) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkIndex(index); err != nil {
		return Outcome{}, err
	}
	t := &m.tasks[index]
	if !t.Completable() {
		return Outcome{}, unsupported("mark as done", t.Kind)
	}
	t.SetDone(true)
	return Outcome{Action: ActionCompleted, Task: *t, Count: len(m.tasks)}, nil
}

// Delete removes the task at index, shifting later tasks left.
func (m *Manager) Delete(index int) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkIndex(index); err != nil {
		return Outcome{}, err
	}
	removed := m.tasks[index]
	m.tasks = slices.Delete(m.tasks, index, index+1)
	return Outcome{Action: ActionDeleted, Task: removed, Count: len(m.tasks)}, nil
}

// SetPriority changes the priority of the task at index.
func (m *Manager) SetPriority(index int, p models.Priority) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkIndex(index); err != nil {
		return Outcome{}, err
	}
	t := &m.tasks[index]
	if err := t.SetPriority(p); err != nil {
		return Outcome{}, err
	}
	return Outcome{Action: ActionReprioritized, Task: *t, Count: len(m.tasks)}, nil
}

// DeadlinesAt returns the deadlines due exactly at dt.
func (m *Manager) DeadlinesAt(dt civil.DateTime) []Match {
	return m.filter(func(t models.Task) bool {
		return t.Kind == models.KindDeadline && t.By == dt
	})
}

// EventsOn returns the events whose date span includes d.
func (m *Manager) EventsOn(d civil.Date) []Match {
	return m.filter(func(t models.Task) bool {
		return t.Kind == models.KindEvent && t.Span.Contains(d)
	})
}

// Find returns the tasks whose description contains keyword, ignoring case.
func (m *Manager) Find(keyword string) []Match {
	needle := strings.ToLower(keyword)
	return m.filter(func(t models.Task) bool {
		return strings.Contains(strings.ToLower(t.Description), needle)
	})
}

func (m *Manager) filter(keep func(models.Task) bool) []Match {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matches []Match
	for i, t := range m.tasks {
		if keep(t) {
			matches = append(matches, Match{Index: i, Task: t})
		}
	}
	return matches
}

func (m *Manager) checkIndex(index int) error {
	if index < 0 || index >= len(m.tasks) {
		return invalidIndex(index, len(m.tasks))
	}
	return nil
}
