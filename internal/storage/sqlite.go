package storage

import (
	"context"

	"github.com/tgienger/erii/internal/db"
	"github.com/tgienger/erii/internal/models"
)

const (
	profileNameKey     = "profile.name"
	profileBirthdayKey = "profile.birthday"
	profileGenderKey   = "profile.gender"
)

// SQLiteStore keeps tasks and settings in an sqlite database.
type SQLiteStore struct {
	db *db.DB
}

// OpenSQLite opens the database in dataDir, creating it if needed.
func OpenSQLite(dataDir string) (*SQLiteStore, error) {
	database, err := db.New(dataDir)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: database}, nil
}

func (s *SQLiteStore) LoadTasks(ctx context.Context) ([]models.Task, error) {
	return s.db.ListTasks(ctx)
}

func (s *SQLiteStore) SaveTasks(ctx context.Context, tasks []models.Task) error {
	return s.db.ReplaceTasks(ctx, tasks)
}

func (s *SQLiteStore) LoadProfile(ctx context.Context) (Profile, error) {
	var p Profile
	for _, field := range []struct {
		key  string
		dest *string
	}{
		{profileNameKey, &p.Name},
		{profileBirthdayKey, &p.Birthday},
		{profileGenderKey, &p.Gender},
	} {
		value, err := s.db.GetSetting(ctx, field.key)
		if err != nil {
			return Profile{}, err
		}
		*field.dest = value
	}
	return p, nil
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, p Profile) error {
	for key, value := range map[string]string{
		profileNameKey:     p.Name,
		profileBirthdayKey: p.Birthday,
		profileGenderKey:   p.Gender,
	} {
		if err := s.db.SetSetting(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Setting(ctx context.Context, key string) (string, error) {
	return s.db.GetSetting(ctx, key)
}

func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	return s.db.SetSetting(ctx, key, value)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
