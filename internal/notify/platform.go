package notify

import (
	"context"
	"time"

	"github.com/Joseda-hg/taskmanagerx/internal/model"
)

const (
	TypeDayBefore    = "day_before"
	TypeDeadlineDay  = "deadline_day"
	TypeDailySummary = "daily_summary"

	DataTaskID = "atividadeId"
	DataType   = "type"
)

// Trigger fires once at At, or every day at Daily when Daily is set.
type Trigger struct {
	At    time.Time        `json:"at,omitzero"`
	Daily *model.TimeOfDay `json:"daily,omitempty"`
}

type Alert struct {
	Title   string            `json:"title"`
	Body    string            `json:"body"`
	Data    map[string]string `json:"data,omitempty"`
	Trigger Trigger           `json:"trigger"`
}

func (a Alert) Type() string {
	return a.Data[DataType]
}

func (a Alert) TaskID() string {
	return a.Data[DataTaskID]
}

type Scheduled struct {
	ID     string    `json:"id"`
	Alert  Alert     `json:"alert"`
	NextAt time.Time `json:"nextAt"`
}

// Platform is the device notification facility.
type Platform interface {
	RequestPermission(ctx context.Context) (bool, error)
	Schedule(ctx context.Context, alert Alert) (string, error)
	Cancel(ctx context.Context, id string) error
	List(ctx context.Context) ([]Scheduled, error)
}

// NextDaily returns the first occurrence of at strictly after now, in now's location.
func NextDaily(at model.TimeOfDay, now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), at.Hour, at.Minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
