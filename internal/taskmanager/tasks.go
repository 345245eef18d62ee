package taskmanager

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Joseda-hg/taskmanagerx/internal/dateutil"
	"github.com/Joseda-hg/taskmanagerx/internal/model"
)

const (
	actionCreated   = "Atividade criada"
	noteCreated     = "Nova atividade cadastrada"
	actionEdited    = "Atividade editada"
	noteEdited      = "Dados atualizados"
	actionOverdue   = `Status alterado automaticamente para "Atrasada"`
	noteOverdue     = "Prazo ultrapassado"
	statusNoteLabel = `Status alterado para "%s"`
)

// AddTask validates and stores a new task, schedules its reminders and links
// it to its owner.
func (m *Manager) AddTask(ctx context.Context, task model.Task) (model.Task, error) {
	if err := m.requireLoaded(); err != nil {
		return model.Task{}, err
	}
	if task.Status == "" {
		task.Status = model.StatusPending
	}
	if task.Status == model.StatusOverdue {
		return model.Task{}, model.ErrOverdueIsAutomatic
	}
	if err := model.ValidateTask(task); err != nil {
		return model.Task{}, err
	}

	created, err := m.addTask(ctx, task)
	if err != nil {
		return model.Task{}, err
	}

	if _, err := m.SweepOverdue(ctx); err != nil {
		return created, err
	}
	if current, ok := m.Task(created.ID); ok {
		created = current
	}
	return created, nil
}

func (m *Manager) addTask(ctx context.Context, task model.Task) (model.Task, error) {
	m.peopleMu.Lock()
	defer m.peopleMu.Unlock()
	m.tasksMu.Lock()
	defer m.tasksMu.Unlock()

	if _, ok := m.Person(task.PersonID); !ok {
		return model.Task{}, fmt.Errorf("%w: %s", model.ErrUnknownPerson, task.PersonID)
	}

	now := m.stamp()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	task.Attachments = nonNil(task.Attachments)
	task.History = append(nonNil(task.History), model.HistoryEntry{At: now, Action: actionCreated, Note: noteCreated})

	if err := m.store.AddTask(ctx, task); err != nil {
		return model.Task{}, fmt.Errorf("add task: %w", err)
	}
	m.setTasks(append(m.Tasks(), task))

	if m.NotificationConfig().RemindersEnabled() {
		m.reminders.ScheduleTaskReminder(ctx, task)
	}

	if err := m.linkTask(ctx, task.ID, "", task.PersonID); err != nil {
		return task, err
	}

	m.logger.Debug("task added", zap.String("task_id", task.ID), zap.String("person_id", task.PersonID))
	return task.Clone(), nil
}

// UpdateTask merges update into the stored task, records the edit in its
// history and reschedules reminders from the merged record.
func (m *Manager) UpdateTask(ctx context.Context, id string, update model.TaskUpdate) (model.Task, error) {
	if err := m.requireLoaded(); err != nil {
		return model.Task{}, err
	}
	if update.Empty() {
		return model.Task{}, model.ErrNoFieldsToUpdate
	}
	if update.Status != nil && *update.Status == model.StatusOverdue {
		return model.Task{}, model.ErrOverdueIsAutomatic
	}

	updated, err := m.updateTask(ctx, id, update)
	if err != nil {
		return model.Task{}, err
	}

	if _, err := m.SweepOverdue(ctx); err != nil {
		return updated, err
	}
	if current, ok := m.Task(id); ok {
		updated = current
	}
	return updated, nil
}

func (m *Manager) updateTask(ctx context.Context, id string, update model.TaskUpdate) (model.Task, error) {
	m.peopleMu.Lock()
	defer m.peopleMu.Unlock()
	m.tasksMu.Lock()
	defer m.tasksMu.Unlock()

	tasks := m.Tasks()
	i := indexTask(tasks, id)
	if i < 0 {
		return model.Task{}, fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}
	previous := tasks[i]
	merged := update.Apply(previous.Clone())
	if err := model.ValidateTask(merged); err != nil {
		return model.Task{}, err
	}
	if merged.PersonID != previous.PersonID {
		if _, ok := m.Person(merged.PersonID); !ok {
			return model.Task{}, fmt.Errorf("%w: %s", model.ErrUnknownPerson, merged.PersonID)
		}
	}

	now := m.stamp()
	note := update.Note
	if note == "" {
		note = noteEdited
	}
	merged.History = append(merged.History, model.HistoryEntry{At: now, Action: actionEdited, Note: note})
	merged.UpdatedAt = now

	stored, err := m.store.UpdateTask(ctx, id, merged)
	if err != nil {
		return model.Task{}, fmt.Errorf("update task: %w", err)
	}
	merged = stored
	tasks[i] = merged
	m.setTasks(tasks)

	m.reminders.CancelTaskNotifications(ctx, id)
	if merged.Status != model.StatusCompleted && m.NotificationConfig().RemindersEnabled() {
		m.reminders.ScheduleTaskReminder(ctx, merged)
	}

	if merged.PersonID != previous.PersonID {
		if err := m.linkTask(ctx, id, previous.PersonID, merged.PersonID); err != nil {
			return merged, err
		}
	}

	m.logger.Debug("task updated", zap.String("task_id", id))
	return merged.Clone(), nil
}

// SetStatus changes only the status of a task.
func (m *Manager) SetStatus(ctx context.Context, id string, status model.Status) (model.Task, error) {
	if !status.Valid() {
		return model.Task{}, fmt.Errorf("%w: %q", model.ErrInvalidStatus, status)
	}
	return m.UpdateTask(ctx, id, model.TaskUpdate{
		Status: &status,
		Note:   fmt.Sprintf(statusNoteLabel, dateutil.StatusLabel(status, dateutil.DefaultLocale)),
	})
}

func (m *Manager) DeleteTask(ctx context.Context, id string) error {
	if err := m.requireLoaded(); err != nil {
		return err
	}

	m.peopleMu.Lock()
	defer m.peopleMu.Unlock()
	m.tasksMu.Lock()
	defer m.tasksMu.Unlock()

	tasks := m.Tasks()
	i := indexTask(tasks, id)
	if i < 0 {
		return fmt.Errorf("task %s: %w", id, model.ErrNotFound)
	}
	owner := tasks[i].PersonID

	if err := m.store.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	m.setTasks(append(tasks[:i], tasks[i+1:]...))
	m.reminders.CancelTaskNotifications(ctx, id)

	if err := m.linkTask(ctx, id, owner, ""); err != nil {
		return err
	}
	m.logger.Debug("task deleted", zap.String("task_id", id))
	return nil
}

// SweepOverdue moves every task past its deadline to overdue and writes the
// collection once. Nothing is written when no task qualifies.
func (m *Manager) SweepOverdue(ctx context.Context) (int, error) {
	if err := m.requireLoaded(); err != nil {
		return 0, err
	}

	m.tasksMu.Lock()
	defer m.tasksMu.Unlock()

	tasks := m.Tasks()
	due := m.reminders.CheckOverdueTasks(tasks)
	if len(due) == 0 {
		return 0, nil
	}
	ids := make(map[string]struct{}, len(due))
	for _, task := range due {
		ids[task.ID] = struct{}{}
	}

	now := m.stamp()
	swept := 0
	for i := range tasks {
		if _, ok := ids[tasks[i].ID]; !ok {
			continue
		}
		if tasks[i].Status == model.StatusCompleted || tasks[i].Status == model.StatusOverdue {
			continue
		}
		tasks[i].Status = model.StatusOverdue
		tasks[i].History = append(tasks[i].History, model.HistoryEntry{At: now, Action: actionOverdue, Note: noteOverdue})
		tasks[i].UpdatedAt = now
		swept++
	}
	if swept == 0 {
		return 0, nil
	}

	if err := m.saveTasks(ctx, tasks); err != nil {
		return 0, err
	}
	m.logger.Info("overdue tasks flagged", zap.Int("count", swept))
	return swept, nil
}

// saveTasks writes the whole collection and then replaces the snapshot.
// Callers hold tasksMu.
func (m *Manager) saveTasks(ctx context.Context, tasks []model.Task) error {
	if err := m.store.SaveTasks(ctx, tasks); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	m.setTasks(tasks)
	return nil
}

func (m *Manager) setTasks(tasks []model.Task) {
	m.mu.Lock()
	m.tasks = tasks
	m.mu.Unlock()
}
