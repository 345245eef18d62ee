package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Joseda-hg/taskmanagerx/internal/dateutil"
	"github.com/Joseda-hg/taskmanagerx/internal/model"
	"github.com/Joseda-hg/taskmanagerx/internal/notify"
	"github.com/Joseda-hg/taskmanagerx/internal/taskmanager"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type Server struct {
	manager *taskmanager.Manager
	locale  string
	now     func() time.Time

	index *template.Template
	task  *template.Template
}

type taskRow struct {
	Task     model.Task
	Person   string
	Status   string
	Deadline string
	Overdue  bool
}

func NewServer(manager *taskmanager.Manager, locale string) *Server {
	s := &Server{manager: manager, locale: locale, now: time.Now}
	funcs := template.FuncMap{
		"date":     func(t time.Time) string { return dateutil.FormatDateTime(t, s.locale) },
		"relative": func(t time.Time) string { return dateutil.FormatRelative(t, s.now(), s.locale) },
		"ago":      humanize.Time,
		"status":   func(st model.Status) string { return dateutil.StatusLabel(st, s.locale) },
	}
	s.index = template.Must(template.New("index.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/index.tmpl"))
	s.task = template.Must(template.New("task.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/task.tmpl"))
	return s
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.indexHandler)
	mux.HandleFunc("/tasks/", s.taskHandler)
	mux.HandleFunc("/api/tasks", s.apiTasksHandler)
	mux.HandleFunc("/api/tasks/", s.apiTaskHandler)
	mux.HandleFunc("/api/people", s.apiPeopleHandler)
	mux.HandleFunc("/api/summary", s.apiSummaryHandler)
	mux.HandleFunc("/api/company", s.apiCompanyHandler)
	return mux
}

func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, fmt.Errorf("page %s: %w", r.URL.Path, model.ErrNotFound))
		return
	}

	tasks, err := s.filterTasks(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	data := struct {
		Company *model.Company
		Summary notify.Summary
		Counts  map[model.Status]int
		Total   int
		Rows    []taskRow
	}{
		Company: s.manager.Company(),
		Summary: s.manager.TaskSummary(),
		Counts:  s.manager.StatusCounts(),
		Total:   len(tasks),
		Rows:    s.buildTaskRows(tasks),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.index.Execute(w, data); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
}

// buildTaskRows orders tasks by deadline and resolves owner names.
func (s *Server) buildTaskRows(tasks []model.Task) []taskRow {
	if len(tasks) == 0 {
		return nil
	}

	names := make(map[string]string)
	for _, person := range s.manager.People() {
		names[person.ID] = person.Name
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Deadline.Before(tasks[j].Deadline)
	})

	now := s.now()
	rows := make([]taskRow, 0, len(tasks))
	for _, task := range tasks {
		rows = append(rows, taskRow{
			Task:     task,
			Person:   names[task.PersonID],
			Status:   dateutil.StatusLabel(task.Status, s.locale),
			Deadline: dateutil.FormatRelative(task.Deadline, now, s.locale),
			Overdue:  task.Status == model.StatusOverdue,
		})
	}
	return rows
}

func (s *Server) taskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.URL.Path, "/tasks/")
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	task, ok := s.manager.Task(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("task %s: %w", id, model.ErrNotFound))
		return
	}
	person, _ := s.manager.Person(task.PersonID)

	data := struct {
		Task     model.Task
		Person   model.Person
		DaysLeft int
	}{Task: task, Person: person, DaysLeft: dateutil.DaysUntil(task.Deadline, s.now())}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.task.Execute(w, data); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
}

func (s *Server) apiTasksHandler(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.filterTasks(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, tasks)
}

func (s *Server) apiTaskHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.URL.Path, "/api/tasks/")
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	task, ok := s.manager.Task(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("task %s: %w", id, model.ErrNotFound))
		return
	}

	payload := struct {
		Task    model.Task           `json:"task"`
		History []model.HistoryEntry `json:"history"`
	}{Task: task, History: task.History}

	writeJSON(w, payload)
}

func (s *Server) apiPeopleHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.manager.People())
}

func (s *Server) apiSummaryHandler(w http.ResponseWriter, r *http.Request) {
	payload := struct {
		Summary         notify.Summary       `json:"summary"`
		Counts          map[model.Status]int `json:"counts"`
		RemindersActive int                  `json:"remindersActive"`
	}{
		Summary:         s.manager.TaskSummary(),
		Counts:          s.manager.StatusCounts(),
		RemindersActive: s.manager.RemindersActive(),
	}
	writeJSON(w, payload)
}

func (s *Server) apiCompanyHandler(w http.ResponseWriter, r *http.Request) {
	company := s.manager.Company()
	if company == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("company: %w", model.ErrNotFound))
		return
	}
	writeJSON(w, company)
}

// filterTasks applies the status, person and q query parameters.
func (s *Server) filterTasks(r *http.Request) ([]model.Task, error) {
	status := model.Status(strings.TrimSpace(r.URL.Query().Get("status")))
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}
	personID := strings.TrimSpace(r.URL.Query().Get("person"))
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	tasks := []model.Task{}
	for _, task := range s.manager.TasksByStatus(status) {
		if personID != "" && task.PersonID != personID {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(task.Title+" "+task.Description), query) {
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func parseID(path, prefix string) (string, error) {
	if !strings.HasPrefix(path, prefix) {
		return "", fmt.Errorf("invalid path")
	}
	value := strings.TrimPrefix(path, prefix)
	value = strings.Trim(value, "/")
	if value == "" {
		return "", fmt.Errorf("missing id")
	}
	return value, nil
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
