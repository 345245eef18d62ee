package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Joseda-hg/taskmanagerx/internal/db"
	"github.com/Joseda-hg/taskmanagerx/internal/model"
	"github.com/Joseda-hg/taskmanagerx/internal/taskmanager"
)

func TestAPITasksFiltersByStatus(t *testing.T) {
	server, task, cleanup := newTestServer(t)
	defer cleanup()

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks?status=pendente", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var tasks []model.Task
	if err := json.NewDecoder(rec.Body).Decode(&tasks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != task.ID {
		t.Fatalf("expected the pending task, got %+v", tasks)
	}

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks?status=concluida", nil))
	tasks = nil
	if err := json.NewDecoder(rec.Body).Decode(&tasks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no completed tasks, got %d", len(tasks))
	}

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks?status=bogus", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}
}

func TestAPITaskReturnsHistory(t *testing.T) {
	server, task, cleanup := newTestServer(t)
	defer cleanup()

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/"+task.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Task    model.Task           `json:"task"`
		History []model.HistoryEntry `json:"history"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Task.Title != "Inventário" || len(payload.History) != 1 {
		t.Fatalf("unexpected payload %+v", payload)
	}

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error"`) {
		t.Fatalf("expected JSON error body, got %q", rec.Body.String())
	}
}

func TestIndexAndTaskPagesRender(t *testing.T) {
	server, task, cleanup := newTestServer(t)
	defer cleanup()

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Padaria Central") || !strings.Contains(body, "Inventário") {
		t.Fatalf("expected company and task on dashboard, got %s", body)
	}
	if !strings.Contains(body, "Amanhã") {
		t.Fatalf("expected relative deadline on dashboard, got %s", body)
	}

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks/"+task.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Atividade criada") {
		t.Fatalf("expected history on task page")
	}
}

func TestSummaryPeopleAndCompany(t *testing.T) {
	server, _, cleanup := newTestServer(t)
	defer cleanup()

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))
	var summary struct {
		Summary struct {
			Pending int `json:"pending"`
		} `json:"summary"`
		Counts map[string]int `json:"counts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if summary.Summary.Pending != 1 || summary.Counts["pendente"] != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/people", nil))
	var people []model.Person
	if err := json.NewDecoder(rec.Body).Decode(&people); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(people) != 1 || people[0].Name != "Ana" {
		t.Fatalf("unexpected people %+v", people)
	}

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/company", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func newTestServer(t *testing.T) (*Server, model.Task, func()) {
	t.Helper()
	conn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	now := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	ctx := context.Background()

	manager := taskmanager.New(db.NewStore(conn), nil, taskmanager.WithClock(clock))
	if err := manager.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := manager.SaveCompany(ctx, model.Company{Name: "Padaria Central", CNPJ: "00.000.000/0001-00", Email: "a@b.com"}); err != nil {
		t.Fatalf("save company: %v", err)
	}
	person, err := manager.AddPerson(ctx, model.Person{Name: "Ana", Role: "Gerente"})
	if err != nil {
		t.Fatalf("add person: %v", err)
	}
	task, err := manager.AddTask(ctx, model.Task{
		Title:       "Inventário",
		Description: "Contar estoque",
		PersonID:    person.ID,
		StartDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Deadline:    time.Date(2024, 3, 5, 23, 59, 59, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("add task: %v", err)
	}

	server := NewServer(manager, "pt-BR")
	server.now = clock
	return server, task, func() {
		_ = conn.Close()
	}
}
