package db

import (
	"context"
	"database/sql"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/tgienger/erii/internal/models"
)

// ReplaceTasks overwrites the stored task list with tasks, keeping their order
func (db *DB) ReplaceTasks(ctx context.Context, tasks []models.Task) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks"); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (position, kind, description, priority, done, due, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, t := range tasks {
		var due, start, end sql.NullString
		switch t.Kind {
		case models.KindDeadline:
			due = sql.NullString{String: t.By.String(), Valid: true}
		case models.KindEvent:
			start = sql.NullString{String: t.Span.Start.String(), Valid: true}
			end = sql.NullString{String: t.Span.End.String(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, i, string(t.Kind), t.Description, t.Priority.String(), t.Done, due, start, end); err != nil {
			return fmt.Errorf("insert task %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// ListTasks returns all stored tasks in list order
func (db *DB) ListTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT position, kind, description, priority, done, due, start_date, end_date
		FROM tasks
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var (
			position                int
			kind, desc, priority    string
			done                    bool
			due, startDate, endDate sql.NullString
		)
		if err := rows.Scan(&position, &kind, &desc, &priority, &done, &due, &startDate, &endDate); err != nil {
			return nil, err
		}
		t, err := scanTask(models.Kind(kind), desc, priority, due, startDate, endDate)
		if err != nil {
			return nil, fmt.Errorf("task at position %d: %w", position, err)
		}
		t.Done = done
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func scanTask(kind models.Kind, desc, priorityName string, due, startDate, endDate sql.NullString) (models.Task, error) {
	priority, err := models.ParsePriority(priorityName)
	if err != nil {
		return models.Task{}, err
	}

	switch kind {
	case models.KindTodo:
		return models.NewTodo(desc, priority)
	case models.KindDeadline:
		by, err := civil.ParseDateTime(due.String)
		if err != nil {
			return models.Task{}, fmt.Errorf("due: %w", err)
		}
		return models.NewDeadline(desc, by, priority)
	case models.KindEvent:
		start, err := civil.ParseDate(startDate.String)
		if err != nil {
			return models.Task{}, fmt.Errorf("start date: %w", err)
		}
		end, err := civil.ParseDate(endDate.String)
		if err != nil {
			return models.Task{}, fmt.Errorf("end date: %w", err)
		}
		return models.NewEvent(desc, start, end, priority)
	}
	return models.Task{}, fmt.Errorf("%w: %q", models.ErrUnknownKind, kind)
}
