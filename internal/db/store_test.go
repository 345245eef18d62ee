package db

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/Joseda-hg/taskmanagerx/internal/model"
)

func TestCompanyRoundTrip(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	company, err := store.GetCompany(ctx)
	if err != nil {
		t.Fatalf("get company: %v", err)
	}
	if company != nil {
		t.Fatalf("expected no company before save, got %+v", company)
	}

	want := model.Company{
		ID:        "c1",
		Name:      "Padaria Central",
		CNPJ:      "12.345.678/0001-90",
		Address:   "Rua A, 10",
		Email:     "contato@padaria.com",
		Phone:     "11 99999-0000",
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if err := store.SaveCompany(ctx, want); err != nil {
		t.Fatalf("save company: %v", err)
	}
	got, err := store.GetCompany(ctx)
	if err != nil {
		t.Fatalf("get company: %v", err)
	}
	if got == nil || !reflect.DeepEqual(*got, want) {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestTasksRoundTripAndUpdate(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	tasks, err := store.GetTasks(ctx)
	if err != nil {
		t.Fatalf("get tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected empty collection, got %d", len(tasks))
	}

	task := model.Task{
		ID:          "t1",
		Title:       "Inventário",
		Description: "Contar estoque",
		PersonID:    "p1",
		StartDate:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Deadline:    time.Date(2024, 2, 10, 23, 59, 59, 0, time.UTC),
		Status:      model.StatusPending,
		History:     []model.HistoryEntry{{At: time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC), Action: "Atividade criada"}},
		Attachments: []string{},
		Reminder:    true,
		CreatedAt:   time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC),
	}
	if err := store.AddTask(ctx, task); err != nil {
		t.Fatalf("add task: %v", err)
	}
	tasks, err = store.GetTasks(ctx)
	if err != nil {
		t.Fatalf("get tasks: %v", err)
	}
	if len(tasks) != 1 || !reflect.DeepEqual(tasks[0], task) {
		t.Fatalf("expected round-tripped task %+v, got %+v", task, tasks)
	}

	task.Status = model.StatusStarted
	task.UpdatedAt = time.Time{}
	updated, err := store.UpdateTask(ctx, "t1", task)
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if !updated.UpdatedAt.Equal(fixed) {
		t.Fatalf("expected updated timestamp %v, got %v", fixed, updated.UpdatedAt)
	}

	stamped := time.Date(2024, 2, 5, 9, 0, 0, 0, time.UTC)
	task.UpdatedAt = stamped
	updated, err = store.UpdateTask(ctx, "t1", task)
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if !updated.UpdatedAt.Equal(stamped) {
		t.Fatalf("expected caller timestamp %v to be kept, got %v", stamped, updated.UpdatedAt)
	}

	if _, err := store.UpdateTask(ctx, "missing", task); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.DeleteTask(ctx, "t1"); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	tasks, err = store.GetTasks(ctx)
	if err != nil {
		t.Fatalf("get tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected task to be deleted, got %d", len(tasks))
	}
}

func TestPeopleHelpers(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	person := model.Person{ID: "p1", Name: "Ana", Role: "Gerente", TaskIDs: []string{}}
	if err := store.AddPerson(ctx, person); err != nil {
		t.Fatalf("add person: %v", err)
	}
	if err := store.AddPerson(ctx, model.Person{ID: "p2", Name: "Bruno", Role: "Caixa", TaskIDs: []string{}}); err != nil {
		t.Fatalf("add person: %v", err)
	}

	role := "Diretora"
	updated, err := store.UpdatePerson(ctx, "p1", model.PersonUpdate{Role: &role})
	if err != nil {
		t.Fatalf("update person: %v", err)
	}
	if updated.Role != "Diretora" || updated.Name != "Ana" {
		t.Fatalf("expected merged person, got %+v", updated)
	}

	if err := store.DeletePerson(ctx, "p2"); err != nil {
		t.Fatalf("delete person: %v", err)
	}
	people, err := store.GetPeople(ctx)
	if err != nil {
		t.Fatalf("get people: %v", err)
	}
	if len(people) != 1 || people[0].ID != "p1" || people[0].Role != "Diretora" {
		t.Fatalf("unexpected people %+v", people)
	}
}

func TestSettingsDefaultsAndRoundTrip(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	cfg, err := store.GetNotificationConfig(ctx)
	if err != nil {
		t.Fatalf("get notification config: %v", err)
	}
	if cfg != model.DefaultNotificationConfig() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}

	want := model.NotificationConfig{Enabled: true, DailySummary: false, DailySummaryTime: "07:30", TaskReminders: false}
	if err := store.SaveNotificationConfig(ctx, want); err != nil {
		t.Fatalf("save notification config: %v", err)
	}
	cfg, err = store.GetNotificationConfig(ctx)
	if err != nil {
		t.Fatalf("get notification config: %v", err)
	}
	if cfg != want {
		t.Fatalf("expected %+v, got %+v", want, cfg)
	}

	firstTime, err := store.IsFirstTime(ctx)
	if err != nil {
		t.Fatalf("is first time: %v", err)
	}
	if !firstTime {
		t.Fatalf("expected first time to default to true")
	}
	if err := store.SetFirstTime(ctx, false); err != nil {
		t.Fatalf("set first time: %v", err)
	}
	firstTime, err = store.IsFirstTime(ctx)
	if err != nil {
		t.Fatalf("is first time: %v", err)
	}
	if firstTime {
		t.Fatalf("expected first time to be false after saving")
	}
}

func TestClearAllRemovesEveryKey(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := store.SaveCompany(ctx, model.Company{ID: "c1", Name: "X"}); err != nil {
		t.Fatalf("save company: %v", err)
	}
	if err := store.SetFirstTime(ctx, false); err != nil {
		t.Fatalf("set first time: %v", err)
	}
	if err := store.SaveTasks(ctx, []model.Task{{ID: "t1"}}); err != nil {
		t.Fatalf("save tasks: %v", err)
	}

	if err := store.ClearAll(ctx); err != nil {
		t.Fatalf("clear all: %v", err)
	}

	company, err := store.GetCompany(ctx)
	if err != nil {
		t.Fatalf("get company: %v", err)
	}
	if company != nil {
		t.Fatalf("expected company to be cleared")
	}
	firstTime, err := store.IsFirstTime(ctx)
	if err != nil {
		t.Fatalf("is first time: %v", err)
	}
	if !firstTime {
		t.Fatalf("expected first time flag to be reset")
	}
	updatedAt, err := store.UpdatedAt(ctx, KeyTasks)
	if err != nil {
		t.Fatalf("updated at: %v", err)
	}
	if !updatedAt.IsZero() {
		t.Fatalf("expected tasks key to be gone, got %v", updatedAt)
	}
}

func TestGetReportsDecodeErrors(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.DB.ExecContext(ctx, "INSERT INTO kv (key, value) VALUES (?, ?)", KeyTasks, "{not json"); err != nil {
		t.Fatalf("insert raw value: %v", err)
	}
	if _, err := store.GetTasks(ctx); err == nil {
		t.Fatalf("expected decode error for malformed value")
	}
}

func newTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return NewStore(db), func() {
		_ = db.Close()
	}
}

func TestLinkTaskMovesBackReference(t *testing.T) {
	store, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	for _, person := range []model.Person{
		{ID: "p1", Name: "Ana", Role: "Gerente", TaskIDs: []string{"t0", "t1"}},
		{ID: "p2", Name: "Bia", Role: "Caixa"},
	} {
		if err := store.AddPerson(ctx, person); err != nil {
			t.Fatalf("add person: %v", err)
		}
	}

	people, err := store.LinkTask(ctx, "t1", "p1", "p2")
	if err != nil {
		t.Fatalf("link task: %v", err)
	}
	if !reflect.DeepEqual(people[0].TaskIDs, []string{"t0"}) || !reflect.DeepEqual(people[1].TaskIDs, []string{"t1"}) {
		t.Fatalf("expected t1 moved to p2, got %+v", people)
	}

	if _, err := store.LinkTask(ctx, "t1", "", "p2"); err != nil {
		t.Fatalf("relink task: %v", err)
	}
	if _, err := store.LinkTask(ctx, "t0", "p1", ""); err != nil {
		t.Fatalf("unlink task: %v", err)
	}
	stored, err := store.GetPeople(ctx)
	if err != nil {
		t.Fatalf("get people: %v", err)
	}
	if len(stored[0].TaskIDs) != 0 || !reflect.DeepEqual(stored[1].TaskIDs, []string{"t1"}) {
		t.Fatalf("expected no duplicates and an empty owner, got %+v", stored)
	}
}
