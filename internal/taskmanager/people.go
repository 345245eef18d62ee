package taskmanager

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Joseda-hg/taskmanagerx/internal/model"
)

func (m *Manager) AddPerson(ctx context.Context, person model.Person) (model.Person, error) {
	if err := m.requireLoaded(); err != nil {
		return model.Person{}, err
	}
	if err := model.ValidatePerson(person); err != nil {
		return model.Person{}, err
	}

	m.peopleMu.Lock()
	defer m.peopleMu.Unlock()

	if person.ID == "" {
		person.ID = uuid.NewString()
	}
	if person.CreatedAt.IsZero() {
		person.CreatedAt = m.stamp()
	}
	person.TaskIDs = nonNil(person.TaskIDs)

	if err := m.store.AddPerson(ctx, person); err != nil {
		return model.Person{}, fmt.Errorf("add person: %w", err)
	}
	m.setPeople(append(m.People(), person))

	m.logger.Debug("person added", zap.String("person_id", person.ID))
	return person.Clone(), nil
}

// UpdatePerson merges update into the stored person.
func (m *Manager) UpdatePerson(ctx context.Context, id string, update model.PersonUpdate) (model.Person, error) {
	if err := m.requireLoaded(); err != nil {
		return model.Person{}, err
	}

	m.peopleMu.Lock()
	defer m.peopleMu.Unlock()

	people := m.People()
	i := indexPerson(people, id)
	if i < 0 {
		return model.Person{}, fmt.Errorf("person %s: %w", id, model.ErrNotFound)
	}
	merged := update.Apply(people[i])
	if err := model.ValidatePerson(merged); err != nil {
		return model.Person{}, err
	}
	stored, err := m.store.UpdatePerson(ctx, id, update)
	if err != nil {
		return model.Person{}, fmt.Errorf("update person: %w", err)
	}
	people[i] = stored
	m.setPeople(people)
	return stored.Clone(), nil
}

// DeletePerson refuses to remove someone who still owns tasks.
func (m *Manager) DeletePerson(ctx context.Context, id string) error {
	if err := m.requireLoaded(); err != nil {
		return err
	}

	m.peopleMu.Lock()
	defer m.peopleMu.Unlock()
	m.tasksMu.Lock()
	defer m.tasksMu.Unlock()

	people := m.People()
	i := indexPerson(people, id)
	if i < 0 {
		return fmt.Errorf("person %s: %w", id, model.ErrNotFound)
	}
	if owned := len(m.TasksForPerson(id)); owned > 0 {
		return fmt.Errorf("%w: %d", model.ErrPersonHasTasks, owned)
	}

	if err := m.store.DeletePerson(ctx, id); err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	m.setPeople(append(people[:i], people[i+1:]...))
	m.logger.Debug("person deleted", zap.String("person_id", id))
	return nil
}

// PurgePerson deletes the person together with every task assigned to them.
func (m *Manager) PurgePerson(ctx context.Context, id string) (int, error) {
	if err := m.requireLoaded(); err != nil {
		return 0, err
	}

	m.peopleMu.Lock()
	defer m.peopleMu.Unlock()
	m.tasksMu.Lock()
	defer m.tasksMu.Unlock()

	people := m.People()
	i := indexPerson(people, id)
	if i < 0 {
		return 0, fmt.Errorf("person %s: %w", id, model.ErrNotFound)
	}
	if err := m.store.DeletePerson(ctx, id); err != nil {
		return 0, fmt.Errorf("delete person: %w", err)
	}
	m.setPeople(append(people[:i], people[i+1:]...))

	var removed []string
	kept := []model.Task{}
	for _, task := range m.Tasks() {
		if task.PersonID == id {
			removed = append(removed, task.ID)
			continue
		}
		kept = append(kept, task)
	}
	if len(removed) > 0 {
		if err := m.saveTasks(ctx, kept); err != nil {
			return 0, err
		}
	}
	for _, taskID := range removed {
		m.reminders.CancelTaskNotifications(ctx, taskID)
	}

	m.logger.Debug("person purged", zap.String("person_id", id), zap.Int("tasks", len(removed)))
	return len(removed), nil
}

func (m *Manager) setPeople(people []model.Person) {
	m.mu.Lock()
	m.people = people
	m.mu.Unlock()
}

// linkTask moves taskID from one owner's back-references to another's.
// Callers hold peopleMu.
func (m *Manager) linkTask(ctx context.Context, taskID, from, to string) error {
	people, err := m.store.LinkTask(ctx, taskID, from, to)
	if err != nil {
		return fmt.Errorf("link task %s: %w", taskID, err)
	}
	m.setPeople(people)
	return nil
}
