// Package notify schedules task reminders and the daily summary on a
// notification platform.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Joseda-hg/taskmanagerx/internal/dateutil"
	"github.com/Joseda-hg/taskmanagerx/internal/model"
)

// reminderHour is the local hour at which task reminders fire.
const reminderHour = 9

type Summary struct {
	DueToday int `json:"today"`
	Overdue  int `json:"overdue"`
	Pending  int `json:"pending"`
}

// Scheduler adapts the domain to a Platform. Scheduling problems are logged
// and never returned.
type Scheduler struct {
	platform Platform
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	granted bool
}

type Option func(*Scheduler)

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

func NewScheduler(platform Platform, opts ...Option) *Scheduler {
	s := &Scheduler{platform: platform, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestPermissions asks the platform once per call and caches the answer.
// Every scheduling operation is a no-op until it returns true.
func (s *Scheduler) RequestPermissions(ctx context.Context) bool {
	if s.platform == nil {
		return false
	}
	granted, err := s.platform.RequestPermission(ctx)
	if err != nil {
		s.logger.Warn("request notification permission", zap.Error(err))
		granted = false
	}

	s.mu.Lock()
	s.granted = granted
	s.mu.Unlock()

	if !granted {
		s.logger.Info("notifications disabled: permission not granted")
	}
	return granted
}

func (s *Scheduler) enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.platform != nil && s.granted
}

func (s *Scheduler) ScheduleTaskReminder(ctx context.Context, task model.Task) {
	if !task.Reminder || !s.enabled() {
		return
	}

	now := s.now()
	deadline := task.Deadline.In(now.Location())
	deadlineDay := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), reminderHour, 0, 0, 0, now.Location())
	dayBefore := deadlineDay.AddDate(0, 0, -1)

	alerts := []Alert{
		{
			Title:   "Lembrete de Tarefa",
			Body:    fmt.Sprintf("A tarefa \"%s\" vence amanhã!", task.Title),
			Data:    map[string]string{DataTaskID: task.ID, DataType: TypeDayBefore},
			Trigger: Trigger{At: dayBefore},
		},
		{
			Title:   "Prazo Hoje!",
			Body:    fmt.Sprintf("A tarefa \"%s\" vence hoje!", task.Title),
			Data:    map[string]string{DataTaskID: task.ID, DataType: TypeDeadlineDay},
			Trigger: Trigger{At: deadlineDay},
		},
	}
	for _, alert := range alerts {
		if !alert.Trigger.At.After(now) {
			continue
		}
		id, err := s.platform.Schedule(ctx, alert)
		if err != nil {
			s.logger.Warn("schedule task reminder", zap.String("task_id", task.ID), zap.String("type", alert.Type()), zap.Error(err))
			continue
		}
		s.logger.Debug("scheduled task reminder",
			zap.String("task_id", task.ID),
			zap.String("type", alert.Type()),
			zap.String("alert_id", id),
			zap.Time("at", alert.Trigger.At))
	}
}

func (s *Scheduler) CancelTaskNotifications(ctx context.Context, taskID string) {
	if !s.enabled() {
		return
	}
	s.cancelMatching(ctx, func(alert Alert) bool { return alert.TaskID() == taskID })
}

// ScheduleDailySummary replaces any existing summary with one repeating at.
func (s *Scheduler) ScheduleDailySummary(ctx context.Context, at model.TimeOfDay) {
	if !s.enabled() {
		return
	}
	s.cancelMatching(ctx, isDailySummary)

	id, err := s.platform.Schedule(ctx, Alert{
		Title:   "Resumo Diário - TaskManagerX",
		Body:    "Confira suas tarefas de hoje e pendências",
		Data:    map[string]string{DataType: TypeDailySummary},
		Trigger: Trigger{Daily: &at},
	})
	if err != nil {
		s.logger.Warn("schedule daily summary", zap.Error(err))
		return
	}
	s.logger.Debug("scheduled daily summary", zap.String("alert_id", id), zap.Stringer("at", at))
}

func (s *Scheduler) CancelDailySummary(ctx context.Context) {
	if !s.enabled() {
		return
	}
	s.cancelMatching(ctx, isDailySummary)
}

func isDailySummary(alert Alert) bool {
	return alert.Type() == TypeDailySummary
}

func (s *Scheduler) cancelMatching(ctx context.Context, match func(Alert) bool) {
	scheduled, err := s.platform.List(ctx)
	if err != nil {
		s.logger.Warn("list scheduled notifications", zap.Error(err))
		return
	}
	for _, item := range scheduled {
		if !match(item.Alert) {
			continue
		}
		if err := s.platform.Cancel(ctx, item.ID); err != nil {
			s.logger.Warn("cancel notification", zap.String("alert_id", item.ID), zap.Error(err))
		}
	}
}

// CheckOverdueTasks returns the tasks that should transition to overdue now.
func (s *Scheduler) CheckOverdueTasks(tasks []model.Task) []model.Task {
	return OverdueTasks(tasks, s.now())
}

// OverdueTasks selects tasks past their deadline that are neither completed
// nor already overdue. The input is not modified.
func OverdueTasks(tasks []model.Task, now time.Time) []model.Task {
	var overdue []model.Task
	for _, task := range tasks {
		if task.Status == model.StatusCompleted || task.Status == model.StatusOverdue {
			continue
		}
		if dateutil.IsOverdue(task.Deadline, now) {
			overdue = append(overdue, task)
		}
	}
	return overdue
}

func GenerateTaskSummary(tasks []model.Task, now time.Time) Summary {
	var summary Summary
	for _, task := range tasks {
		if dateutil.IsDueToday(task.Deadline, now) && task.Status != model.StatusCompleted {
			summary.DueToday++
		}
		switch task.Status {
		case model.StatusOverdue:
			summary.Overdue++
		case model.StatusPending:
			summary.Pending++
		}
	}
	return summary
}
