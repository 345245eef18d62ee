package taskmanager

import (
	"github.com/Joseda-hg/taskmanagerx/internal/model"
	"github.com/Joseda-hg/taskmanagerx/internal/notify"
)

// Company returns nil until a company has been saved.
func (m *Manager) Company() *model.Company {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.company == nil {
		return nil
	}
	company := *m.company
	return &company
}

func (m *Manager) People() []model.Person {
	m.mu.RLock()
	defer m.mu.RUnlock()
	people := make([]model.Person, 0, len(m.people))
	for _, person := range m.people {
		people = append(people, person.Clone())
	}
	return people
}

func (m *Manager) Person(id string) (model.Person, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexPerson(m.people, id)
	if i < 0 {
		return model.Person{}, false
	}
	return m.people[i].Clone(), true
}

func (m *Manager) Tasks() []model.Task {
	return m.filterTasks(func(model.Task) bool { return true })
}

func (m *Manager) Task(id string) (model.Task, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexTask(m.tasks, id)
	if i < 0 {
		return model.Task{}, false
	}
	return m.tasks[i].Clone(), true
}

// TasksByStatus returns every task when status is empty.
func (m *Manager) TasksByStatus(status model.Status) []model.Task {
	return m.filterTasks(func(task model.Task) bool {
		return status == "" || task.Status == status
	})
}

func (m *Manager) TasksForPerson(personID string) []model.Task {
	return m.filterTasks(func(task model.Task) bool {
		return task.PersonID == personID
	})
}

func (m *Manager) filterTasks(keep func(model.Task) bool) []model.Task {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tasks := []model.Task{}
	for _, task := range m.tasks {
		if keep(task) {
			tasks = append(tasks, task.Clone())
		}
	}
	return tasks
}

func (m *Manager) NotificationConfig() model.NotificationConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.notif
}

func (m *Manager) TaskSummary() notify.Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return notify.GenerateTaskSummary(m.tasks, m.now())
}

// StatusCounts counts tasks per status; every status is present.
func (m *Manager) StatusCounts() map[model.Status]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[model.Status]int, len(model.Statuses))
	for _, status := range model.Statuses {
		counts[status] = 0
	}
	for _, task := range m.tasks {
		counts[task.Status]++
	}
	return counts
}

// RemindersActive counts tasks with the reminder flag set.
func (m *Manager) RemindersActive() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, task := range m.tasks {
		if task.Reminder {
			n++
		}
	}
	return n
}

func indexPerson(people []model.Person, id string) int {
	for i, person := range people {
		if person.ID == id {
			return i
		}
	}
	return -1
}

func indexTask(tasks []model.Task, id string) int {
	for i, task := range tasks {
		if task.ID == id {
			return i
		}
	}
	return -1
}
