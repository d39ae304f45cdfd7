package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/tgienger/erii/internal/models"
)

const (
	// TasksFile holds one encoded task per line.
	TasksFile = "tasks.txt"

	// StateFile holds the profile and preferences.
	StateFile = "state.toml"
)

type textState struct {
	Profile  Profile           `toml:"profile"`
	Settings map[string]string `toml:"settings"`
}

// TextStore keeps tasks in a line-per-task text file.
type TextStore struct {
	dir string
	mu  sync.Mutex
}

// OpenText uses dataDir for the task and state files, creating it if needed.
func OpenText(dataDir string) (*TextStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &TextStore{dir: dataDir}, nil
}

func (s *TextStore) LoadTasks(ctx context.Context) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, TasksFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	// The file is already in memory; lines have no length limit.
	var tasks []models.Task
	for i, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		t, err := models.DecodeLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, i+1, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (s *TextStore) SaveTasks(ctx context.Context, tasks []models.Task) error {
	var buf bytes.Buffer
	for i, t := range tasks {
		line, err := models.EncodeLine(t)
		if err != nil {
			return fmt.Errorf("encode task %d: %w", i+1, err)
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFileAtomic(filepath.Join(s.dir, TasksFile), buf.Bytes())
}

func (s *TextStore) LoadProfile(ctx context.Context) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.readState()
	if err != nil {
		return Profile{}, err
	}
	return state.Profile, nil
}

func (s *TextStore) SaveProfile(ctx context.Context, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.readState()
	if err != nil {
		return err
	}
	state.Profile = p
	return s.writeState(state)
}

func (s *TextStore) Setting(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.readState()
	if err != nil {
		return "", err
	}
	return state.Settings[key], nil
}

func (s *TextStore) SetSetting(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.readState()
	if err != nil {
		return err
	}
	if state.Settings == nil {
		state.Settings = make(map[string]string)
	}
	state.Settings[key] = value
	return s.writeState(state)
}

func (s *TextStore) Close() error {
	return nil
}

func (s *TextStore) readState() (textState, error) {
	path := filepath.Join(s.dir, StateFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return textState{}, nil
	}
	if err != nil {
		return textState{}, fmt.Errorf("read %s: %w", path, err)
	}

	var state textState
	if _, err := toml.Decode(string(data), &state); err != nil {
		return textState{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return state, nil
}

func (s *TextStore) writeState(state textState) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(state); err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	return writeFileAtomic(filepath.Join(s.dir, StateFile), buf.Bytes())
}

// writeFileAtomic replaces path so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
