package model

import "time"

type Status string

const (
	StatusPending   Status = "pendente"
	StatusStarted   Status = "iniciada"
	StatusCompleted Status = "concluida"
	StatusOverdue   Status = "atrasada"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPending, StatusStarted, StatusCompleted, StatusOverdue}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusStarted, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"nome"`
	CNPJ      string    `json:"cnpj"`
	Address   string    `json:"endereco"`
	Email     string    `json:"email"`
	Phone     string    `json:"telefone"`
	Photo     string    `json:"fotoPerfil,omitempty"`
	CreatedAt time.Time `json:"criadoEm"`
}

type Person struct {
	ID        string    `json:"id"`
	Name      string    `json:"nome"`
	Role      string    `json:"cargo"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"telefone,omitempty"`
	Photo     string    `json:"fotoPerfil,omitempty"`
	TaskIDs   []string  `json:"historicoAtividades"`
	CreatedAt time.Time `json:"criadoEm"`
}

type HistoryEntry struct {
	At     time.Time `json:"data"`
	Action string    `json:"acao"`
	Note   string    `json:"observacao,omitempty"`
}

type Task struct {
	ID          string         `json:"id"`
	Title       string         `json:"titulo"`
	Description string         `json:"descricao"`
	PersonID    string         `json:"pessoaId"`
	StartDate   time.Time      `json:"dataInicio"`
	Deadline    time.Time      `json:"prazoFinal"`
	Status      Status         `json:"status"`
	History     []HistoryEntry `json:"historico"`
	Attachments []string       `json:"anexos"`
	Reminder    bool           `json:"lembreteNotificacao"`
	CreatedAt   time.Time      `json:"criadoEm"`
	UpdatedAt   time.Time      `json:"atualizadoEm"`
}

type NotificationConfig struct {
	Enabled          bool   `json:"enabled"`
	DailySummary     bool   `json:"resumoDiario"`
	DailySummaryTime string `json:"horarioResumoDiario"`
	TaskReminders    bool   `json:"lembreteIndividual"`
}

func DefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		Enabled:          true,
		DailySummary:     true,
		DailySummaryTime: "09:00",
		TaskReminders:    true,
	}
}

// RemindersEnabled reports whether per-task reminders may be scheduled.
func (c NotificationConfig) RemindersEnabled() bool {
	return c.Enabled && c.TaskReminders
}

// PersonUpdate carries a partial person edit. Nil fields are left untouched.
type PersonUpdate struct {
	Name    *string   `json:"nome,omitempty"`
	Role    *string   `json:"cargo,omitempty"`
	Email   *string   `json:"email,omitempty"`
	Phone   *string   `json:"telefone,omitempty"`
	Photo   *string   `json:"fotoPerfil,omitempty"`
	TaskIDs *[]string `json:"historicoAtividades,omitempty"`
}

func (u PersonUpdate) Apply(p Person) Person {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Role != nil {
		p.Role = *u.Role
	}
	if u.Email != nil {
		p.Email = *u.Email
	}
	if u.Phone != nil {
		p.Phone = *u.Phone
	}
	if u.Photo != nil {
		p.Photo = *u.Photo
	}
	if u.TaskIDs != nil {
		p.TaskIDs = cloneStrings(*u.TaskIDs)
	}
	return p
}

// TaskUpdate carries a partial task edit. Nil fields are left untouched.
type TaskUpdate struct {
	Title       *string    `json:"titulo,omitempty"`
	Description *string    `json:"descricao,omitempty"`
	PersonID    *string    `json:"pessoaId,omitempty"`
	StartDate   *time.Time `json:"dataInicio,omitempty"`
	Deadline    *time.Time `json:"prazoFinal,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	Reminder    *bool      `json:"lembreteNotificacao,omitempty"`
	Note        string     `json:"observacao,omitempty"`
}

func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.PersonID == nil &&
		u.StartDate == nil && u.Deadline == nil && u.Status == nil && u.Reminder == nil
}

func (u TaskUpdate) Apply(t Task) Task {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.PersonID != nil {
		t.PersonID = *u.PersonID
	}
	if u.StartDate != nil {
		t.StartDate = *u.StartDate
	}
	if u.Deadline != nil {
		t.Deadline = *u.Deadline
	}
	if u.Status != nil {
		t.Status = *u.Status
	}
	if u.Reminder != nil {
		t.Reminder = *u.Reminder
	}
	return t
}

// Clone returns a copy that shares no slices with t.
func (t Task) Clone() Task {
	if t.History != nil {
		t.History = append(make([]HistoryEntry, 0, len(t.History)), t.History...)
	}
	t.Attachments = cloneStrings(t.Attachments)
	return t
}

func (p Person) Clone() Person {
	p.TaskIDs = cloneStrings(p.TaskIDs)
	return p
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	return append(make([]string, 0, len(values)), values...)
}
