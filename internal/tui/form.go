package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/taskmanagerx/internal/dateutil"
	"github.com/Joseda-hg/taskmanagerx/internal/model"
)

type formKind int

const (
	formTask formKind = iota
	formPerson
	formCompany
	formSettings
)

type option struct {
	Label string
	Value string
}

// formField is free text unless Options is non-nil, in which case Value
// holds the selected option's Value.
type formField struct {
	Label   string
	Value   string
	Options []option
}

func (f formField) display() string {
	if f.Options == nil {
		return f.Value
	}
	for _, opt := range f.Options {
		if opt.Value == f.Value {
			return opt.Label
		}
	}
	return f.Value
}

type formState struct {
	kind       formKind
	id         string
	fields     []formField
	index      int
	onboarding bool
}

func (s *formState) title() string {
	switch s.kind {
	case formTask:
		if s.id != "" {
			return "Editar Atividade"
		}
		return "Nova Atividade"
	case formPerson:
		if s.id != "" {
			return "Editar Pessoa"
		}
		return "Nova Pessoa"
	case formCompany:
		if s.onboarding {
			return "Bem-vindo ao TaskManagerX: cadastre sua empresa"
		}
		return "Dados da Empresa"
	default:
		return "Notificações"
	}
}

const (
	yes = "sim"
	no  = "não"
)

var yesNoOptions = []option{{Label: yes, Value: yes}, {Label: no, Value: no}}

func yesNo(value bool) string {
	if value {
		return yes
	}
	return no
}

const dateLayout = "02/01/2006"

const (
	taskFieldTitle = iota
	taskFieldDescription
	taskFieldPerson
	taskFieldStart
	taskFieldDeadline
	taskFieldStatus
	taskFieldReminder
)

// buildTaskFields fills the task form. Overdue is never offered since the
// sweep owns it; an overdue task is edited as pending.
func buildTaskFields(task *model.Task, people []model.Person, now time.Time, locale string) []formField {
	personOptions := make([]option, 0, len(people))
	for _, person := range people {
		personOptions = append(personOptions, option{Label: person.Name, Value: person.ID})
	}
	statusOptions := make([]option, 0, 3)
	for _, status := range []model.Status{model.StatusPending, model.StatusStarted, model.StatusCompleted} {
		statusOptions = append(statusOptions, option{Label: dateutil.StatusLabel(status, locale), Value: string(status)})
	}

	fields := []formField{
		{Label: "Título"},
		{Label: "Descrição"},
		{Label: "Responsável (espaço/←→)", Options: personOptions},
		{Label: "Início (DD/MM/AAAA)"},
		{Label: "Prazo (DD/MM/AAAA)"},
		{Label: "Status (espaço/←→)", Options: statusOptions},
		{Label: "Lembrete (espaço/←→)", Options: yesNoOptions},
	}

	if task == nil {
		if len(personOptions) > 0 {
			fields[taskFieldPerson].Value = personOptions[0].Value
		}
		fields[taskFieldStart].Value = now.Format(dateLayout)
		fields[taskFieldStatus].Value = string(model.StatusPending)
		fields[taskFieldReminder].Value = yes
		return fields
	}

	loc := now.Location()
	status := task.Status
	if status == model.StatusOverdue {
		status = model.StatusPending
	}
	fields[taskFieldTitle].Value = task.Title
	fields[taskFieldDescription].Value = task.Description
	fields[taskFieldPerson].Value = task.PersonID
	fields[taskFieldStart].Value = task.StartDate.In(loc).Format(dateLayout)
	fields[taskFieldDeadline].Value = task.Deadline.In(loc).Format(dateLayout)
	fields[taskFieldStatus].Value = string(status)
	fields[taskFieldReminder].Value = yesNo(task.Reminder)
	return fields
}

// parseTaskFields maps the form onto a task. The start date is the first
// instant of its day and the deadline the last second of its day.
func parseTaskFields(fields []formField, now time.Time) (model.Task, error) {
	loc := now.Location()

	start := startOfDay(now)
	if value := strings.TrimSpace(fields[taskFieldStart].Value); value != "" {
		parsed, err := parseDate(value, loc)
		if err != nil {
			return model.Task{}, err
		}
		start = parsed
	}

	var deadline time.Time
	if value := strings.TrimSpace(fields[taskFieldDeadline].Value); value != "" {
		parsed, err := parseDate(value, loc)
		if err != nil {
			return model.Task{}, err
		}
		deadline = parsed.Add(24*time.Hour - time.Second)
	}

	return model.Task{
		Title:       strings.TrimSpace(fields[taskFieldTitle].Value),
		Description: strings.TrimSpace(fields[taskFieldDescription].Value),
		PersonID:    fields[taskFieldPerson].Value,
		StartDate:   start,
		Deadline:    deadline,
		Status:      model.Status(fields[taskFieldStatus].Value),
		Reminder:    fields[taskFieldReminder].Value == yes,
	}, nil
}

func taskUpdate(task model.Task) model.TaskUpdate {
	return model.TaskUpdate{
		Title:       &task.Title,
		Description: &task.Description,
		PersonID:    &task.PersonID,
		StartDate:   &task.StartDate,
		Deadline:    &task.Deadline,
		Status:      &task.Status,
		Reminder:    &task.Reminder,
	}
}

func parseDate(value string, loc *time.Location) (time.Time, error) {
	if parsed, err := time.ParseInLocation(dateLayout, value, loc); err == nil {
		return parsed, nil
	}
	if parsed, err := time.ParseInLocation(time.DateOnly, value, loc); err == nil {
		return parsed, nil
	}
	return time.Time{}, fmt.Errorf("data inválida %q: use DD/MM/AAAA", value)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

const (
	personFieldName = iota
	personFieldRole
	personFieldEmail
	personFieldPhone
)

func buildPersonFields(person *model.Person) []formField {
	fields := []formField{
		{Label: "Nome"},
		{Label: "Cargo"},
		{Label: "Email"},
		{Label: "Telefone"},
	}
	if person == nil {
		return fields
	}
	fields[personFieldName].Value = person.Name
	fields[personFieldRole].Value = person.Role
	fields[personFieldEmail].Value = person.Email
	fields[personFieldPhone].Value = person.Phone
	return fields
}

func parsePersonFields(fields []formField) model.Person {
	return model.Person{
		Name:  strings.TrimSpace(fields[personFieldName].Value),
		Role:  strings.TrimSpace(fields[personFieldRole].Value),
		Email: strings.TrimSpace(fields[personFieldEmail].Value),
		Phone: strings.TrimSpace(fields[personFieldPhone].Value),
	}
}

func personUpdate(person model.Person) model.PersonUpdate {
	return model.PersonUpdate{
		Name:  &person.Name,
		Role:  &person.Role,
		Email: &person.Email,
		Phone: &person.Phone,
	}
}

const (
	companyFieldName = iota
	companyFieldCNPJ
	companyFieldAddress
	companyFieldEmail
	companyFieldPhone
)

func buildCompanyFields(company *model.Company) []formField {
	fields := []formField{
		{Label: "Nome"},
		{Label: "CNPJ"},
		{Label: "Endereço"},
		{Label: "Email"},
		{Label: "Telefone"},
	}
	if company == nil {
		return fields
	}
	fields[companyFieldName].Value = company.Name
	fields[companyFieldCNPJ].Value = company.CNPJ
	fields[companyFieldAddress].Value = company.Address
	fields[companyFieldEmail].Value = company.Email
	fields[companyFieldPhone].Value = company.Phone
	return fields
}

func parseCompanyFields(fields []formField) model.Company {
	return model.Company{
		Name:    strings.TrimSpace(fields[companyFieldName].Value),
		CNPJ:    strings.TrimSpace(fields[companyFieldCNPJ].Value),
		Address: strings.TrimSpace(fields[companyFieldAddress].Value),
		Email:   strings.TrimSpace(fields[companyFieldEmail].Value),
		Phone:   strings.TrimSpace(fields[companyFieldPhone].Value),
	}
}

const (
	settingsFieldEnabled = iota
	settingsFieldSummary
	settingsFieldSummaryTime
	settingsFieldReminders
)

func buildSettingsFields(cfg model.NotificationConfig) []formField {
	return []formField{
		{Label: "Notificações (espaço/←→)", Value: yesNo(cfg.Enabled), Options: yesNoOptions},
		{Label: "Resumo diário (espaço/←→)", Value: yesNo(cfg.DailySummary), Options: yesNoOptions},
		{Label: "Horário do resumo (HH:MM)", Value: cfg.DailySummaryTime},
		{Label: "Lembretes por atividade (espaço/←→)", Value: yesNo(cfg.TaskReminders), Options: yesNoOptions},
	}
}

func parseSettingsFields(fields []formField) model.NotificationConfig {
	return model.NotificationConfig{
		Enabled:          fields[settingsFieldEnabled].Value == yes,
		DailySummary:     fields[settingsFieldSummary].Value == yes,
		DailySummaryTime: strings.TrimSpace(fields[settingsFieldSummaryTime].Value),
		TaskReminders:    fields[settingsFieldReminders].Value == yes,
	}
}

func cycleOption(options []option, current string, delta int) string {
	if len(options) == 0 {
		return current
	}
	index := 0
	for i, opt := range options {
		if opt.Value == current {
			index = i
			break
		}
	}
	index = (index + delta + len(options)) % len(options)
	return options[index].Value
}
