// Package taskmanager owns the in-memory application state and keeps it in
// step with the persistence store and the notification scheduler.
package taskmanager

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Joseda-hg/taskmanagerx/internal/model"
	"github.com/Joseda-hg/taskmanagerx/internal/notify"
)

var ErrNotLoaded = errors.New("task manager not loaded")

// Store is the persistence the manager writes through. Single-record changes
// use the record helpers so the store merges them into what it currently
// holds; the Save methods are for whole-collection rewrites.
type Store interface {
	GetCompany(ctx context.Context) (*model.Company, error)
	SaveCompany(ctx context.Context, company model.Company) error
	GetPeople(ctx context.Context) ([]model.Person, error)
	SavePeople(ctx context.Context, people []model.Person) error
	AddPerson(ctx context.Context, person model.Person) error
	UpdatePerson(ctx context.Context, id string, update model.PersonUpdate) (model.Person, error)
	DeletePerson(ctx context.Context, id string) error
	LinkTask(ctx context.Context, taskID, from, to string) ([]model.Person, error)
	GetTasks(ctx context.Context) ([]model.Task, error)
	SaveTasks(ctx context.Context, tasks []model.Task) error
	AddTask(ctx context.Context, task model.Task) error
	UpdateTask(ctx context.Context, id string, task model.Task) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	GetNotificationConfig(ctx context.Context) (model.NotificationConfig, error)
	SaveNotificationConfig(ctx context.Context, cfg model.NotificationConfig) error
	IsFirstTime(ctx context.Context) (bool, error)
	SetFirstTime(ctx context.Context, firstTime bool) error
	ClearAll(ctx context.Context) error
}

// Reminders is the notification surface the manager drives.
type Reminders interface {
	ScheduleTaskReminder(ctx context.Context, task model.Task)
	CancelTaskNotifications(ctx context.Context, taskID string)
	ScheduleDailySummary(ctx context.Context, at model.TimeOfDay)
	CancelDailySummary(ctx context.Context)
	CheckOverdueTasks(tasks []model.Task) []model.Task
}

type Manager struct {
	store     Store
	reminders Reminders
	logger    *zap.Logger
	now       func() time.Time

	// writers; when several are needed they are taken in field order
	companyMu  sync.Mutex
	peopleMu   sync.Mutex
	tasksMu    sync.Mutex
	settingsMu sync.Mutex

	mu      sync.RWMutex
	loading bool
	loaded  bool
	company *model.Company
	people  []model.Person
	tasks   []model.Task
	notif   model.NotificationConfig
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// New builds a manager. A nil reminders value disables notifications but
// keeps overdue detection.
func New(store Store, reminders Reminders, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		logger:  zap.NewNop(),
		now:     time.Now,
		loading: true,
		people:  []model.Person{},
		tasks:   []model.Task{},
		notif:   model.DefaultNotificationConfig(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if reminders == nil {
		reminders = notify.NewScheduler(nil, notify.WithClock(m.now), notify.WithLogger(m.logger))
	}
	m.reminders = reminders
	return m
}

// Load reads every collection and then runs the overdue sweep.
func (m *Manager) Load(ctx context.Context) error {
	_, err := m.Refresh(ctx)
	return err
}

// Refresh replaces the snapshot with what the store holds now, then sweeps.
// Long-running callers use it instead of SweepOverdue so that writes made by
// another process since the last read are not overwritten.
func (m *Manager) Refresh(ctx context.Context) (int, error) {
	if err := m.read(ctx); err != nil {
		return 0, err
	}
	return m.SweepOverdue(ctx)
}

// read holds every writer lock so no local mutation lands between the store
// read and the snapshot swap.
func (m *Manager) read(ctx context.Context) error {
	m.companyMu.Lock()
	defer m.companyMu.Unlock()
	m.peopleMu.Lock()
	defer m.peopleMu.Unlock()
	m.tasksMu.Lock()
	defer m.tasksMu.Unlock()
	m.settingsMu.Lock()
	defer m.settingsMu.Unlock()

	m.mu.Lock()
	m.loading = true
	m.mu.Unlock()

	var (
		company *model.Company
		people  []model.Person
		tasks   []model.Task
		notif   model.NotificationConfig
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		company, err = m.store.GetCompany(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		people, err = m.store.GetPeople(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = m.store.GetTasks(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		notif, err = m.store.GetNotificationConfig(gctx)
		return err
	})
	err := g.Wait()

	m.mu.Lock()
	m.loading = false
	if err == nil {
		m.company = company
		m.people = nonNil(people)
		m.tasks = nonNil(tasks)
		m.notif = notif
		m.loaded = true
	}
	m.mu.Unlock()

	if err != nil {
		m.logger.Error("load data", zap.Error(err))
		return fmt.Errorf("load data: %w", err)
	}
	m.logger.Debug("data loaded", zap.Int("people", len(people)), zap.Int("tasks", len(tasks)))
	return nil
}

// Loading is true until the first Load has finished.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

func (m *Manager) requireLoaded() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.loaded {
		return ErrNotLoaded
	}
	return nil
}

func (m *Manager) stamp() time.Time {
	return m.now().UTC()
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
