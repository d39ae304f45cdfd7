package app_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/tgienger/erii/internal/app"
	"github.com/tgienger/erii/internal/models"
	"github.com/tgienger/erii/internal/storage"
	"github.com/tgienger/erii/internal/tasks"
)

var fixedNow = time.Date(2021, 9, 1, 12, 0, 0, 0, time.Local)

func clock() time.Time { return fixedNow }

func openService(t *testing.T, store storage.Store) *app.Service {
	t.Helper()
	svc, err := app.New(context.Background(), store, app.Options{Now: clock})
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	return svc
}

func textStore(t *testing.T, dir string) storage.Store {
	t.Helper()
	store, err := storage.Open(storage.BackendText, dir)
	if err != nil {
		t.Fatalf("storage.Open: %v", err)
	}
	return store
}

// failingStore wraps a store and fails every SaveTasks while fail is set.
type failingStore struct {
	storage.Store
	fail  bool
	saves int
}

func (f *failingStore) SaveTasks(ctx context.Context, ts []models.Task) error {
	f.saves++
	if f.fail {
		return errors.New("disk full")
	}
	return f.Store.SaveTasks(ctx, ts)
}

// gateStore holds the first SaveTasks call until release is closed.
type gateStore struct {
	storage.Store
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gateStore) SaveTasks(ctx context.Context, ts []models.Task) error {
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return g.Store.SaveTasks(ctx, ts)
}

func TestService_ConcurrentMutationsSaveInOrder(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	base := textStore(t, dir)
	for _, desc := range []string{"one", "two"} {
		todo, err := models.NewTodo(desc, models.PriorityA)
		if err != nil {
			t.Fatal(err)
		}
		if err := base.SaveTasks(ctx, append(mustLoad(t, base), todo)); err != nil {
			t.Fatal(err)
		}
	}

	gate := &gateStore{Store: base, entered: make(chan struct{}), release: make(chan struct{})}
	svc := openService(t, gate)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.MarkDone(ctx, 0)
		errs <- err
	}()
	<-gate.entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.Delete(ctx, 1)
		errs <- err
	}()
	// Give the delete a chance to overtake the held save.
	time.Sleep(50 * time.Millisecond)
	close(gate.release)
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("mutation failed: %v", err)
		}
	}
	svc.Close()

	reopened := openService(t, textStore(t, dir))
	defer reopened.Close()
	got := reopened.List()
	if len(got) != 1 || got[0].Description != "one" || !got[0].Done {
		t.Errorf("stored list = %v, want only the completed task one", got)
	}
}

func mustLoad(t *testing.T, store storage.Store) []models.Task {
	t.Helper()
	ts, err := store.LoadTasks(context.Background())
	if err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}
	return ts
}

func TestService_PersistsEveryMutation(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	svc := openService(t, textStore(t, dir))

	inputs := []struct {
		kind  models.Kind
		input string
	}{
		{models.KindTodo, "slain a dragon /C"},
		{models.KindDeadline, "submit report /by 2021-09-30 18:30 /SS"},
		{models.KindEvent, "project meeting /from 2021-09-30 /to 2021-10-02 /A"},
	}
	for _, in := range inputs {
		out, err := svc.AddText(ctx, in.kind, in.input)
		if err != nil {
			t.Fatalf("AddText(%q): %v", in.input, err)
		}
		if out.Action != tasks.ActionAdded {
			t.Errorf("Action = %q", out.Action)
		}
	}
	if _, err := svc.MarkDone(ctx, 0); err != nil {
		t.Fatalf("MarkDone: %v", err)
	}
	if _, err := svc.Sort(ctx, app.SortPriority); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if _, err := svc.Delete(ctx, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	want := svc.List()

	reopened := openService(t, textStore(t, dir))
	got := reopened.List()
	if len(got) != len(want) {
		t.Fatalf("reloaded %d tasks, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("task %d = %v, want %v", i, got[i], want[i])
		}
	}
	if got[0].Kind != models.KindDeadline || got[1].Description != "slain a dragon" || !got[1].Done {
		t.Errorf("unexpected reloaded list: %v", got)
	}

	mode, err := reopened.SortMode(ctx)
	if err != nil || mode != app.SortPriority {
		t.Errorf("SortMode = %q, %v", mode, err)
	}
}

func TestService_ParseErrorsLeaveListUnchanged(t *testing.T) {
	ctx := context.Background()
	svc := openService(t, textStore(t, t.TempDir()))

	if _, err := svc.AddText(ctx, models.KindDeadline, "report /by 2021-08-30 18:30 /A"); err == nil {
		t.Error("expected error for past deadline")
	}
	if _, err := svc.AddText(ctx, models.KindTodo, "no priority"); err == nil {
		t.Error("expected format error")
	}
	if svc.Len() != 0 {
		t.Errorf("Len = %d after failed adds", svc.Len())
	}
}

func TestService_InvalidIndex(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: textStore(t, t.TempDir())}
	svc := openService(t, store)

	if _, err := svc.MarkDone(ctx, 0); !errors.Is(err, tasks.ErrInvalidIndex) {
		t.Errorf("MarkDone error = %v", err)
	}
	if _, err := svc.Delete(ctx, -1); !errors.Is(err, tasks.ErrInvalidIndex) {
		t.Errorf("Delete error = %v", err)
	}
	if _, err := svc.ShiftPriority(ctx, 3, 1); !errors.Is(err, tasks.ErrInvalidIndex) {
		t.Errorf("ShiftPriority error = %v", err)
	}
	if store.saves != 0 {
		t.Errorf("failed operations triggered %d saves", store.saves)
	}
}

func TestService_SaveFailureKeepsChange(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: textStore(t, t.TempDir()), fail: true}
	svc := openService(t, store)

	todo, err := models.NewTodo("read book", models.PriorityB)
	if err != nil {
		t.Fatal(err)
	}
	out, err := svc.Add(ctx, todo)
	if !errors.Is(err, app.ErrNotSaved) {
		t.Fatalf("Add error = %v, want ErrNotSaved", err)
	}
	if out.Count != 1 || svc.Len() != 1 {
		t.Errorf("change was rolled back: outcome %+v, len %d", out, svc.Len())
	}

	store.fail = false
	if _, err := svc.ShiftPriority(ctx, 0, -1); err != nil {
		t.Fatalf("ShiftPriority: %v", err)
	}
	stored, err := store.LoadTasks(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 || stored[0].Priority != models.PriorityA {
		t.Errorf("retry did not save the full list: %v", stored)
	}
}

func TestService_ShiftPrioritySaturates(t *testing.T) {
	ctx := context.Background()
	svc := openService(t, textStore(t, t.TempDir()))
	if _, err := svc.AddText(ctx, models.KindTodo, "urgent /SS"); err != nil {
		t.Fatal(err)
	}
	out, err := svc.ShiftPriority(ctx, 0, -1)
	if err != nil {
		t.Fatal(err)
	}
	if out.Task.Priority != models.PrioritySS {
		t.Errorf("Priority = %v, want SS", out.Task.Priority)
	}
	out, err = svc.ShiftPriority(ctx, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if out.Task.Priority != models.PriorityS {
		t.Errorf("Priority = %v, want S", out.Task.Priority)
	}
}

func TestService_UnknownSort(t *testing.T) {
	svc := openService(t, textStore(t, t.TempDir()))
	if _, err := svc.Sort(context.Background(), "date"); !errors.Is(err, app.ErrUnknownSort) {
		t.Errorf("Sort(date) error = %v", err)
	}
}

func TestService_Queries(t *testing.T) {
	ctx := context.Background()
	svc := openService(t, textStore(t, t.TempDir()))
	for _, in := range []struct {
		kind  models.Kind
		input string
	}{
		{models.KindTodo, "Slain a Dragon /S"},
		{models.KindDeadline, "dragon report /by 2021-09-30 18:30 /A"},
		{models.KindEvent, "meeting /from 2021-09-30 /to 2021-10-02 /B"},
	} {
		if _, err := svc.AddText(ctx, in.kind, in.input); err != nil {
			t.Fatal(err)
		}
	}

	if got := svc.Find("DRAGON"); len(got) != 2 {
		t.Errorf("Find(DRAGON) = %v", got)
	}
	due := civil.DateTime{Date: civil.Date{Year: 2021, Month: 9, Day: 30}, Time: civil.Time{Hour: 18, Minute: 30}}
	if got := svc.DeadlinesAt(due); len(got) != 1 || got[0].Index != 1 {
		t.Errorf("DeadlinesAt = %v", got)
	}
	if got := svc.EventsOn(civil.Date{Year: 2021, Month: 10, Day: 2}); len(got) != 1 || got[0].Index != 2 {
		t.Errorf("EventsOn = %v", got)
	}
}

func TestService_ExportImport(t *testing.T) {
	ctx := context.Background()
	src := openService(t, textStore(t, t.TempDir()))
	if _, err := src.AddText(ctx, models.KindTodo, "read book /B"); err != nil {
		t.Fatal(err)
	}
	if _, err := src.AddText(ctx, models.KindEvent, "trip /from 2021-09-10 /to 2021-09-12 /A"); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := src.Export(&buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	dstDir := t.TempDir()
	dst := openService(t, textStore(t, dstDir))
	if _, err := dst.AddText(ctx, models.KindTodo, "existing /D"); err != nil {
		t.Fatal(err)
	}
	n, err := dst.Import(ctx, &buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 || dst.Len() != 3 {
		t.Errorf("imported %d, len %d", n, dst.Len())
	}

	if _, err := dst.Import(ctx, strings.NewReader(`{"version": 1, "tasks": [{"kind": "Todo"}]}`)); !errors.Is(err, storage.ErrInvalidExport) {
		t.Errorf("Import(invalid) error = %v", err)
	}
	if dst.Len() != 3 {
		t.Errorf("invalid import changed the list: len %d", dst.Len())
	}

	reopened := openService(t, textStore(t, dstDir))
	if reopened.Len() != 3 {
		t.Errorf("import was not saved: len %d", reopened.Len())
	}
}

func TestService_Profile(t *testing.T) {
	ctx := context.Background()
	svc := openService(t, textStore(t, t.TempDir()))

	p, err := svc.Profile(ctx)
	if err != nil || !p.IsZero() {
		t.Fatalf("Profile = %+v, %v", p, err)
	}
	want := storage.Profile{Name: "Erii Uesugi", Birthday: "01/02/2000", Gender: "Female"}
	if err := svc.SaveProfile(ctx, want); err != nil {
		t.Fatal(err)
	}
	if got, _ := svc.Profile(ctx); got != want {
		t.Errorf("Profile = %+v", got)
	}
}
