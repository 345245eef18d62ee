package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Joseda-hg/taskmanagerx/internal/dateutil"
	"github.com/Joseda-hg/taskmanagerx/internal/model"
)

func statusMarker(status model.Status) string {
	switch status {
	case model.StatusStarted:
		return "[>]"
	case model.StatusCompleted:
		return "[x]"
	case model.StatusOverdue:
		return "[!]"
	default:
		return "[ ]"
	}
}

func selectionPrefix(selected, focused bool) string {
	if !selected {
		return " "
	}
	if focused {
		return ">"
	}
	return "*"
}

func formatTaskLine(task model.Task, owner string, now time.Time, locale string) string {
	if owner == "" {
		owner = "sem responsável"
	}
	return fmt.Sprintf("%s %s | %s | %s", statusMarker(task.Status), task.Title, owner, dateutil.FormatRelative(task.Deadline, now, locale))
}

func formatPersonLine(person model.Person, taskCount int) string {
	return fmt.Sprintf("%s | %s | %d atividade(s)", person.Name, person.Role, taskCount)
}

// deadlineHint describes the deadline relative to now in calendar days.
func deadlineHint(deadline time.Time, now time.Time, status model.Status) string {
	if status == model.StatusCompleted {
		return ""
	}
	switch {
	case dateutil.IsOverdue(deadline, now):
		if dateutil.IsDueToday(deadline, now) {
			return "venceu hoje"
		}
		return fmt.Sprintf("atrasada há %d dia(s)", max(-dateutil.DaysUntil(deadline, now), 1))
	case dateutil.IsDueToday(deadline, now):
		return "vence hoje"
	case dateutil.IsDueTomorrow(deadline, now):
		return "vence amanhã"
	default:
		return fmt.Sprintf("faltam %d dias", dateutil.DaysUntil(deadline, now))
	}
}

func taskDetail(task model.Task, owner model.Person, now time.Time, locale string) string {
	local := func(t time.Time) time.Time { return t.In(now.Location()) }

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", task.Title)
	fmt.Fprintf(&b, "Status: %s\n", dateutil.StatusLabel(task.Status, locale))
	if owner.ID != "" {
		fmt.Fprintf(&b, "Responsável: %s (%s)\n", owner.Name, owner.Role)
	}
	fmt.Fprintf(&b, "Início: %s\n", dateutil.Format(local(task.StartDate), dateutil.DefaultPattern, locale))
	fmt.Fprintf(&b, "Prazo: %s", dateutil.FormatDateTime(local(task.Deadline), locale))
	if hint := deadlineHint(task.Deadline, now, task.Status); hint != "" {
		fmt.Fprintf(&b, " (%s)", hint)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Lembrete: %s\n", yesNo(task.Reminder))
	if !task.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "Atualizada em %s\n", dateutil.FormatDateTime(local(task.UpdatedAt), locale))
	}
	fmt.Fprintf(&b, "\n%s\n", task.Description)

	if len(task.History) > 0 {
		b.WriteString("\nHistórico:\n")
		for i := len(task.History) - 1; i >= 0; i-- {
			entry := task.History[i]
			fmt.Fprintf(&b, "  %s  %s", dateutil.FormatDateTime(local(entry.At), locale), entry.Action)
			if entry.Note != "" {
				fmt.Fprintf(&b, ": %s", entry.Note)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func personDetail(person model.Person, tasks []model.Task, locale string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", person.Name)
	fmt.Fprintf(&b, "Cargo: %s\n", person.Role)
	if person.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", person.Email)
	}
	if person.Phone != "" {
		fmt.Fprintf(&b, "Telefone: %s\n", person.Phone)
	}

	fmt.Fprintf(&b, "\nAtividades (%d):\n", len(tasks))
	if len(tasks) == 0 {
		b.WriteString("  nenhuma\n")
	}
	for _, task := range tasks {
		fmt.Fprintf(&b, "  %s %s (%s)\n", statusMarker(task.Status), task.Title, dateutil.StatusLabel(task.Status, locale))
	}
	return b.String()
}
