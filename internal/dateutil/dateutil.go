// Package dateutil formats and compares task dates. Functions never read the
// wall clock; callers pass now explicitly.
package dateutil

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Joseda-hg/taskmanagerx/internal/model"
)

const (
	DefaultPattern  = "%d/%m/%Y"
	DateTimePattern = "%d/%m/%Y %H:%M"
	DefaultLocale   = "pt-BR"
)

var (
	supported = []language.Tag{language.BrazilianPortuguese, language.English}
	matcher   = language.NewMatcher(supported)
)

type names struct {
	months      [12]string
	weekdays    [7]string
	today       string
	tomorrow    string
	yesterday   string
	statusNames map[model.Status]string
}

var localeNames = map[language.Tag]names{
	language.BrazilianPortuguese: {
		months:    [12]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"},
		weekdays:  [7]string{"domingo", "segunda-feira", "terça-feira", "quarta-feira", "quinta-feira", "sexta-feira", "sábado"},
		today:     "Hoje",
		tomorrow:  "Amanhã",
		yesterday: "Ontem",
		statusNames: map[model.Status]string{
			model.StatusPending:   "pendente",
			model.StatusStarted:   "iniciada",
			model.StatusCompleted: "concluída",
			model.StatusOverdue:   "atrasada",
		},
	},
	language.English: {
		months:    [12]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
		weekdays:  [7]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
		today:     "Today",
		tomorrow:  "Tomorrow",
		yesterday: "Yesterday",
		statusNames: map[model.Status]string{
			model.StatusPending:   "pending",
			model.StatusStarted:   "started",
			model.StatusCompleted: "completed",
			model.StatusOverdue:   "overdue",
		},
	},
}

// Locale resolves a BCP 47 string to the closest supported tag. Unknown or
// empty values fall back to pt-BR.
func Locale(locale string) language.Tag {
	if strings.TrimSpace(locale) == "" {
		return language.BrazilianPortuguese
	}
	_, index := language.MatchStrings(matcher, locale)
	return supported[index]
}

func lookup(locale string) names {
	return localeNames[Locale(locale)]
}

// Format renders t with a strftime pattern. Month and weekday names (%B %b %A
// %a) are localized; every other directive is handled by strftime.
func Format(t time.Time, pattern, locale string) string {
	if pattern == "" {
		pattern = DefaultPattern
	}
	n := lookup(locale)

	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '%' || i+1 >= len(pattern) {
			b.WriteByte(pattern[i])
			continue
		}
		switch pattern[i+1] {
		case 'B':
			b.WriteString(escape(n.months[t.Month()-1]))
		case 'b':
			b.WriteString(escape(abbreviate(n.months[t.Month()-1])))
		case 'A':
			b.WriteString(escape(n.weekdays[t.Weekday()]))
		case 'a':
			b.WriteString(escape(abbreviate(n.weekdays[t.Weekday()])))
		default:
			b.WriteByte('%')
			b.WriteByte(pattern[i+1])
		}
		i++
	}
	return strftime.Format(b.String(), t)
}

func FormatDateTime(t time.Time, locale string) string {
	return Format(t, DateTimePattern, locale)
}

func escape(value string) string {
	return strings.ReplaceAll(value, "%", "%%")
}

func abbreviate(value string) string {
	runes := []rune(value)
	if len(runes) <= 3 {
		return value
	}
	return string(runes[:3])
}

type Relative int

const (
	Other Relative = iota
	Today
	Tomorrow
	Yesterday
)

func (r Relative) String() string {
	switch r {
	case Today:
		return "today"
	case Tomorrow:
		return "tomorrow"
	case Yesterday:
		return "yesterday"
	default:
		return "other"
	}
}

// ClassifyRelative compares calendar days in now's location.
func ClassifyRelative(t, now time.Time) Relative {
	day := startOfDay(t.In(now.Location()))
	today := startOfDay(now)
	switch {
	case day.Equal(today):
		return Today
	case day.Equal(today.AddDate(0, 0, 1)):
		return Tomorrow
	case day.Equal(today.AddDate(0, 0, -1)):
		return Yesterday
	default:
		return Other
	}
}

func FormatRelative(t, now time.Time, locale string) string {
	n := lookup(locale)
	switch ClassifyRelative(t, now) {
	case Today:
		return n.today
	case Tomorrow:
		return n.tomorrow
	case Yesterday:
		return n.yesterday
	default:
		return Format(t.In(now.Location()), DefaultPattern, locale)
	}
}

// IsOverdue reports whether now is strictly after the deadline instant.
func IsOverdue(deadline, now time.Time) bool {
	return now.After(deadline)
}

func IsDueToday(deadline, now time.Time) bool {
	return ClassifyRelative(deadline, now) == Today
}

func IsDueTomorrow(deadline, now time.Time) bool {
	return ClassifyRelative(deadline, now) == Tomorrow
}

// DaysUntil rounds the remaining time up to whole days; negative when past.
func DaysUntil(deadline, now time.Time) int {
	return int(math.Ceil(float64(deadline.Sub(now)) / float64(24*time.Hour)))
}

// ParseISO accepts a date-only value or a full RFC 3339 timestamp.
func ParseISO(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}

// StatusLabel returns the capitalized display name of status.
func StatusLabel(status model.Status, locale string) string {
	tag := Locale(locale)
	name, ok := localeNames[tag].statusNames[status]
	if !ok {
		name = string(status)
	}
	return cases.Title(tag).String(name)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
