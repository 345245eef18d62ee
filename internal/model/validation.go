package model

import (
	"fmt"
	"strconv"
	"strings"
)

func ValidateCompany(c Company) error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrCompanyNameRequired
	}
	if strings.TrimSpace(c.CNPJ) == "" {
		return ErrCNPJRequired
	}
	if strings.TrimSpace(c.Email) == "" {
		return ErrEmailRequired
	}
	return nil
}

func ValidatePerson(p Person) error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(p.Role) == "" {
		return ErrRoleRequired
	}
	return nil
}

func ValidateTask(t Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrDescriptionRequired
	}
	if strings.TrimSpace(t.PersonID) == "" {
		return ErrPersonRequired
	}
	if t.Deadline.IsZero() {
		return ErrDeadlineRequired
	}
	if !t.Deadline.After(t.StartDate) {
		return ErrDeadlineBeforeStart
	}
	if t.Status != "" && !t.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	return nil
}

func ValidateNotificationConfig(cfg NotificationConfig) error {
	if _, err := ParseTimeOfDay(cfg.DailySummaryTime); err != nil {
		return err
	}
	return nil
}

type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func ParseTimeOfDay(value string) (TimeOfDay, error) {
	hours, minutes, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, value)
	}
	h, ok := clockField(hours, 23)
	if !ok {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, value)
	}
	m, ok := clockField(minutes, 59)
	if !ok {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, value)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// clockField accepts one or two ASCII digits no greater than limit.
func clockField(field string, limit int) (int, bool) {
	if len(field) == 0 || len(field) > 2 {
		return 0, false
	}
	for _, r := range field {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(field)
	if err != nil || n > limit {
		return 0, false
	}
	return n, true
}
