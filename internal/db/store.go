package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/Joseda-hg/taskmanagerx/internal/model"
)

const (
	KeyCompany       = "@taskmanagerx_empresa"
	KeyPeople        = "@taskmanagerx_pessoas"
	KeyTasks         = "@taskmanagerx_atividades"
	KeyNotifications = "@taskmanagerx_notifications"
	KeyFirstTime     = "@taskmanagerx_first_time"
	KeyScheduled     = "@taskmanagerx_scheduled"
)

// Keys lists every key owned by the application.
var Keys = []string{KeyCompany, KeyPeople, KeyTasks, KeyNotifications, KeyFirstTime, KeyScheduled}

// Store is a JSON key-value store on top of the kv table. Every Get, Set and
// Remove is an independent whole-value operation. The collection helpers are
// read-modify-write cycles serialized per key.
type Store struct {
	DB *sql.DB

	now   func() time.Time
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, now: time.Now, locks: map[string]*sync.Mutex{}}
}

// Lock acquires the writer lock for key and returns its release function.
func (s *Store) Lock(key string) func() {
	s.mu.Lock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Get decodes the value stored under key into dest. found is false when the
// key has never been written.
func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	var raw string
	err := s.DB.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Store) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = s.DB.ExecContext(ctx, `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`, key, string(data))
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := s.DB.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
			return fmt.Errorf("remove %s: %w", key, err)
		}
	}
	return nil
}

// UpdatedAt returns when key was last written, or the zero time if it is absent.
func (s *Store) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var updatedAt time.Time
	err := s.DB.QueryRowContext(ctx, "SELECT updated_at FROM kv WHERE key = ?", key).Scan(&updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("updated_at %s: %w", key, err)
	}
	return updatedAt, nil
}

func (s *Store) SaveCompany(ctx context.Context, company model.Company) error {
	defer s.Lock(KeyCompany)()
	return s.Set(ctx, KeyCompany, company)
}

// GetCompany returns nil when no company has been registered.
func (s *Store) GetCompany(ctx context.Context) (*model.Company, error) {
	var company model.Company
	found, err := s.Get(ctx, KeyCompany, &company)
	if err != nil || !found {
		return nil, err
	}
	return &company, nil
}

func (s *Store) SavePeople(ctx context.Context, people []model.Person) error {
	defer s.Lock(KeyPeople)()
	return s.Set(ctx, KeyPeople, nonNil(people))
}

func (s *Store) GetPeople(ctx context.Context) ([]model.Person, error) {
	people := []model.Person{}
	if _, err := s.Get(ctx, KeyPeople, &people); err != nil {
		return nil, err
	}
	return people, nil
}

func (s *Store) AddPerson(ctx context.Context, person model.Person) error {
	defer s.Lock(KeyPeople)()
	people, err := s.GetPeople(ctx)
	if err != nil {
		return err
	}
	return s.Set(ctx, KeyPeople, append(people, person))
}

func (s *Store) UpdatePerson(ctx context.Context, id string, update model.PersonUpdate) (model.Person, error) {
	defer s.Lock(KeyPeople)()
	people, err := s.GetPeople(ctx)
	if err != nil {
		return model.Person{}, err
	}
	for i := range people {
		if people[i].ID != id {
			continue
		}
		people[i] = update.Apply(people[i])
		if err := s.Set(ctx, KeyPeople, people); err != nil {
			return model.Person{}, err
		}
		return people[i], nil
	}
	return model.Person{}, fmt.Errorf("person %s: %w", id, model.ErrNotFound)
}

func (s *Store) DeletePerson(ctx context.Context, id string) error {
	defer s.Lock(KeyPeople)()
	people, err := s.GetPeople(ctx)
	if err != nil {
		return err
	}
	kept := people[:0]
	for _, person := range people {
		if person.ID != id {
			kept = append(kept, person)
		}
	}
	return s.Set(ctx, KeyPeople, kept)
}

// LinkTask moves taskID from one person's back-references to another's and
// returns the stored people. Either id may be empty.
func (s *Store) LinkTask(ctx context.Context, taskID, from, to string) ([]model.Person, error) {
	defer s.Lock(KeyPeople)()
	people, err := s.GetPeople(ctx)
	if err != nil {
		return nil, err
	}
	for i := range people {
		ids := nonNil(people[i].TaskIDs)
		if people[i].ID == from && from != to {
			ids = slices.DeleteFunc(slices.Clone(ids), func(id string) bool { return id == taskID })
		}
		if people[i].ID == to && !slices.Contains(ids, taskID) {
			ids = append(ids, taskID)
		}
		people[i].TaskIDs = ids
	}
	if err := s.Set(ctx, KeyPeople, people); err != nil {
		return nil, err
	}
	return people, nil
}

func (s *Store) SaveTasks(ctx context.Context, tasks []model.Task) error {
	defer s.Lock(KeyTasks)()
	return s.Set(ctx, KeyTasks, nonNil(tasks))
}

func (s *Store) GetTasks(ctx context.Context) ([]model.Task, error) {
	tasks := []model.Task{}
	if _, err := s.Get(ctx, KeyTasks, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) AddTask(ctx context.Context, task model.Task) error {
	defer s.Lock(KeyTasks)()
	tasks, err := s.GetTasks(ctx)
	if err != nil {
		return err
	}
	return s.Set(ctx, KeyTasks, append(tasks, task))
}

// UpdateTask replaces the stored task with the same id. A zero UpdatedAt is
// stamped with the store clock.
func (s *Store) UpdateTask(ctx context.Context, id string, task model.Task) (model.Task, error) {
	defer s.Lock(KeyTasks)()
	tasks, err := s.GetTasks(ctx)
	if err != nil {
		return model.Task{}, err
	}
	for i := range tasks {
		if tasks[i].ID != id {
			continue
		}
		task.ID = id
		if task.UpdatedAt.IsZero() {
			task.UpdatedAt = s.now().UTC()
		}
		tasks[i] = task
		if err := s.Set(ctx, KeyTasks, tasks); err != nil {
			return model.Task{}, err
		}
		return task, nil
	}
	return model.Task{}, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	defer s.Lock(KeyTasks)()
	tasks, err := s.GetTasks(ctx)
	if err != nil {
		return err
	}
	kept := tasks[:0]
	for _, task := range tasks {
		if task.ID != id {
			kept = append(kept, task)
		}
	}
	return s.Set(ctx, KeyTasks, kept)
}

func (s *Store) SaveNotificationConfig(ctx context.Context, cfg model.NotificationConfig) error {
	defer s.Lock(KeyNotifications)()
	return s.Set(ctx, KeyNotifications, cfg)
}

// GetNotificationConfig returns the defaults when nothing has been saved.
func (s *Store) GetNotificationConfig(ctx context.Context) (model.NotificationConfig, error) {
	cfg := model.DefaultNotificationConfig()
	found, err := s.Get(ctx, KeyNotifications, &cfg)
	if err != nil {
		return model.NotificationConfig{}, err
	}
	if !found {
		return model.DefaultNotificationConfig(), nil
	}
	return cfg, nil
}

func (s *Store) SetFirstTime(ctx context.Context, firstTime bool) error {
	defer s.Lock(KeyFirstTime)()
	return s.Set(ctx, KeyFirstTime, firstTime)
}

// IsFirstTime is true until SetFirstTime(false) has been stored.
func (s *Store) IsFirstTime(ctx context.Context) (bool, error) {
	firstTime := true
	if _, err := s.Get(ctx, KeyFirstTime, &firstTime); err != nil {
		return false, err
	}
	return firstTime, nil
}

func (s *Store) ClearAll(ctx context.Context) error {
	return s.Remove(ctx, Keys...)
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
