package storage

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"cloud.google.com/go/civil"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tgienger/erii/internal/models"
)

//go:embed export.schema.json
var exportSchemaJSON string

const (
	exportSchemaURL = "erii-export.schema.json"
	exportVersion   = 1
)

// ErrInvalidExport is returned when an import document does not match the export schema.
var ErrInvalidExport = errors.New("invalid export document")

// Document is the JSON export format.
type Document struct {
	Version int      `json:"version"`
	Tasks   []Record `json:"tasks"`
}

// Record is a single task in a Document.
type Record struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Done        bool   `json:"done"`
	By          string `json:"by,omitempty"`
	Start       string `json:"start,omitempty"`
	End         string `json:"end,omitempty"`
}

// ToRecord converts a task into its export form.
func ToRecord(t models.Task) Record {
	r := Record{
		Kind:        string(t.Kind),
		Description: t.Description,
		Priority:    t.Priority.String(),
		Done:        t.Done,
	}
	switch t.Kind {
	case models.KindDeadline:
		r.By = t.By.String()
	case models.KindEvent:
		r.Start = t.Span.Start.String()
		r.End = t.Span.End.String()
	}
	return r
}

// Task converts a record back into a validated task.
func (r Record) Task() (models.Task, error) {
	priority, err := models.ParsePriority(r.Priority)
	if err != nil {
		return models.Task{}, err
	}

	var t models.Task
	switch models.Kind(r.Kind) {
	case models.KindTodo:
		t, err = models.NewTodo(r.Description, priority)
	case models.KindDeadline:
		var by civil.DateTime
		if by, err = civil.ParseDateTime(r.By); err != nil {
			return models.Task{}, fmt.Errorf("%w: by %q", models.ErrInvalidDate, r.By)
		}
		t, err = models.NewDeadline(r.Description, by, priority)
	case models.KindEvent:
		var start, end civil.Date
		if start, err = civil.ParseDate(r.Start); err != nil {
			return models.Task{}, fmt.Errorf("%w: start %q", models.ErrInvalidDate, r.Start)
		}
		if end, err = civil.ParseDate(r.End); err != nil {
			return models.Task{}, fmt.Errorf("%w: end %q", models.ErrInvalidDate, r.End)
		}
		t, err = models.NewEvent(r.Description, start, end, priority)
	default:
		return models.Task{}, fmt.Errorf("%w: %q", models.ErrUnknownKind, r.Kind)
	}
	if err != nil {
		return models.Task{}, err
	}
	t.Done = r.Done
	return t, nil
}

// Export writes tasks to w as an indented JSON document.
func Export(w io.Writer, tasks []models.Task) error {
	doc := Document{Version: exportVersion, Tasks: make([]Record, 0, len(tasks))}
	for _, t := range tasks {
		doc.Tasks = append(doc.Tasks, ToRecord(t))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// Import reads a JSON document, checks it against the export schema, and
// returns its tasks in document order.
func Import(r io.Reader) ([]models.Task, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}

	if err := validateExport(data); err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExport, err)
	}

	tasks := make([]models.Task, 0, len(doc.Tasks))
	for i, rec := range doc.Tasks {
		t, err := rec.Task()
		if err != nil {
			return nil, fmt.Errorf("%w: tasks/%d: %v", ErrInvalidExport, i, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

var (
	exportSchemaOnce sync.Once
	exportSchema     *jsonschema.Schema
	exportSchemaErr  error
)

func compiledExportSchema() (*jsonschema.Schema, error) {
	exportSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(exportSchemaURL, strings.NewReader(exportSchemaJSON)); err != nil {
			exportSchemaErr = fmt.Errorf("load export schema: %w", err)
			return
		}
		exportSchema, exportSchemaErr = compiler.Compile(exportSchemaURL)
	})
	return exportSchema, exportSchemaErr
}

func validateExport(data []byte) error {
	schema, err := compiledExportSchema()
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidExport, err)
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return fmt.Errorf("%w: %v", ErrInvalidExport, err)
		}
		var msgs []string
		collectSchemaErrors(ve, &msgs)
		return fmt.Errorf("%w: %s", ErrInvalidExport, strings.Join(msgs, "; "))
	}
	return nil
}

func collectSchemaErrors(err *jsonschema.ValidationError, msgs *[]string) {
	if len(err.Causes) == 0 {
		loc := strings.TrimPrefix(err.InstanceLocation, "/")
		if loc == "" {
			loc = "(root)"
		}
		*msgs = append(*msgs, fmt.Sprintf("%s: %s", loc, err.Message))
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, msgs)
	}
}
