package notify

import (
	"context"
	"testing"
	"time"

	"github.com/Joseda-hg/taskmanagerx/internal/db"
	"github.com/Joseda-hg/taskmanagerx/internal/model"
)

func TestScheduleTaskReminderCounts(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		deadline time.Time
		reminder bool
		want     int
	}{
		{"both reminders in the future", time.Date(2024, 5, 5, 23, 59, 59, 0, time.UTC), true, 2},
		{"day before already passed", time.Date(2024, 5, 2, 23, 59, 59, 0, time.UTC), true, 1},
		{"deadline today after nine", time.Date(2024, 5, 1, 23, 59, 59, 0, time.UTC), true, 0},
		{"reminder flag off", time.Date(2024, 5, 5, 23, 59, 59, 0, time.UTC), false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			scheduler, platform, cleanup := newTestScheduler(t, now)
			defer cleanup()
			ctx := context.Background()

			scheduler.ScheduleTaskReminder(ctx, model.Task{ID: "t1", Title: "Inventário", Deadline: tc.deadline, Reminder: tc.reminder})

			scheduled, err := platform.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(scheduled) != tc.want {
				t.Fatalf("expected %d reminders, got %d", tc.want, len(scheduled))
			}
			for _, item := range scheduled {
				if item.Alert.TaskID() != "t1" {
					t.Fatalf("expected reminder tagged with task id, got %+v", item.Alert.Data)
				}
				if item.NextAt.Hour() != 9 || item.NextAt.Minute() != 0 {
					t.Fatalf("expected reminder at 09:00, got %v", item.NextAt)
				}
			}
		})
	}
}

func TestReminderContent(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	scheduler, platform, cleanup := newTestScheduler(t, now)
	defer cleanup()
	ctx := context.Background()

	scheduler.ScheduleTaskReminder(ctx, model.Task{ID: "t1", Title: "Inventário", Deadline: time.Date(2024, 5, 5, 23, 59, 59, 0, time.UTC), Reminder: true})

	scheduled, err := platform.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	byType := map[string]Scheduled{}
	for _, item := range scheduled {
		byType[item.Alert.Type()] = item
	}
	dayBefore, ok := byType[TypeDayBefore]
	if !ok {
		t.Fatalf("expected a day_before reminder")
	}
	if dayBefore.Alert.Body != `A tarefa "Inventário" vence amanhã!` {
		t.Fatalf("unexpected body %q", dayBefore.Alert.Body)
	}
	if !dayBefore.NextAt.Equal(time.Date(2024, 5, 4, 9, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day_before time %v", dayBefore.NextAt)
	}
	deadlineDay, ok := byType[TypeDeadlineDay]
	if !ok {
		t.Fatalf("expected a deadline_day reminder")
	}
	if deadlineDay.Alert.Title != "Prazo Hoje!" {
		t.Fatalf("unexpected title %q", deadlineDay.Alert.Title)
	}
}

func TestPermissionDeniedMakesSchedulingNoOp(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store, cleanup := newTestKV(t)
	defer cleanup()
	ctx := context.Background()

	platform := NewLocalPlatform(store, LocalConfig{Now: func() time.Time { return now }})
	platform.Deny()
	scheduler := NewScheduler(platform, WithClock(func() time.Time { return now }))
	if scheduler.RequestPermissions(ctx) {
		t.Fatalf("expected permission to be denied")
	}

	scheduler.ScheduleTaskReminder(ctx, model.Task{ID: "t1", Deadline: now.AddDate(0, 0, 5), Reminder: true})
	scheduler.ScheduleDailySummary(ctx, model.TimeOfDay{Hour: 9})

	scheduled, err := platform.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(scheduled) != 0 {
		t.Fatalf("expected nothing scheduled without permission, got %d", len(scheduled))
	}

	if NewScheduler(nil).RequestPermissions(ctx) {
		t.Fatalf("expected nil platform to refuse permission")
	}
}

func TestScheduleDailySummaryKeepsOne(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	scheduler, platform, cleanup := newTestScheduler(t, now)
	defer cleanup()
	ctx := context.Background()

	scheduler.ScheduleTaskReminder(ctx, model.Task{ID: "t1", Deadline: now.AddDate(0, 0, 5), Reminder: true})
	scheduler.ScheduleDailySummary(ctx, model.TimeOfDay{Hour: 9})
	scheduler.ScheduleDailySummary(ctx, model.TimeOfDay{Hour: 18, Minute: 30})

	scheduled, err := platform.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var summaries []Scheduled
	for _, item := range scheduled {
		if item.Alert.Type() == TypeDailySummary {
			summaries = append(summaries, item)
		}
	}
	if len(summaries) != 1 {
		t.Fatalf("expected exactly one daily summary, got %d", len(summaries))
	}
	if got := summaries[0].Alert.Trigger.Daily; got == nil || got.Hour != 18 || got.Minute != 30 {
		t.Fatalf("expected summary at 18:30, got %+v", got)
	}
	if len(scheduled) != 3 {
		t.Fatalf("expected task reminders to survive, got %d alerts", len(scheduled))
	}

	scheduler.CancelDailySummary(ctx)
	scheduled, err = platform.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(scheduled) != 2 {
		t.Fatalf("expected only task reminders after cancel, got %d", len(scheduled))
	}
}

func TestCancelTaskNotificationsOnlyMatchingTask(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	scheduler, platform, cleanup := newTestScheduler(t, now)
	defer cleanup()
	ctx := context.Background()

	scheduler.ScheduleTaskReminder(ctx, model.Task{ID: "t1", Deadline: now.AddDate(0, 0, 5), Reminder: true})
	scheduler.ScheduleTaskReminder(ctx, model.Task{ID: "t2", Deadline: now.AddDate(0, 0, 5), Reminder: true})
	scheduler.CancelTaskNotifications(ctx, "t1")

	scheduled, err := platform.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(scheduled) != 2 {
		t.Fatalf("expected 2 remaining reminders, got %d", len(scheduled))
	}
	for _, item := range scheduled {
		if item.Alert.TaskID() != "t2" {
			t.Fatalf("expected only t2 reminders to remain, got %q", item.Alert.TaskID())
		}
	}
}

func TestOverdueTasksNeverReturnsCompleted(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	tasks := []model.Task{
		{ID: "pending", Status: model.StatusPending, Deadline: past},
		{ID: "started", Status: model.StatusStarted, Deadline: past},
		{ID: "completed", Status: model.StatusCompleted, Deadline: past},
		{ID: "overdue", Status: model.StatusOverdue, Deadline: past},
		{ID: "future", Status: model.StatusPending, Deadline: now.Add(time.Hour)},
		{ID: "exact", Status: model.StatusPending, Deadline: now},
	}

	got := OverdueTasks(tasks, now)
	if len(got) != 2 || got[0].ID != "pending" || got[1].ID != "started" {
		t.Fatalf("unexpected overdue tasks %+v", got)
	}
	if tasks[0].Status != model.StatusPending {
		t.Fatalf("expected input to be left untouched")
	}

	scheduler := NewScheduler(nil, WithClock(func() time.Time { return now }))
	if got := scheduler.CheckOverdueTasks(tasks); len(got) != 2 {
		t.Fatalf("expected scheduler clock to select 2 tasks, got %d", len(got))
	}
}

func TestGenerateTaskSummary(t *testing.T) {
	now := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	endOfToday := time.Date(2024, 5, 10, 23, 59, 59, 0, time.UTC)
	tasks := []model.Task{
		{Status: model.StatusPending, Deadline: endOfToday},
		{Status: model.StatusCompleted, Deadline: endOfToday},
		{Status: model.StatusStarted, Deadline: endOfToday},
		{Status: model.StatusOverdue, Deadline: now.AddDate(0, 0, -2)},
		{Status: model.StatusPending, Deadline: now.AddDate(0, 0, 3)},
	}

	got := GenerateTaskSummary(tasks, now)
	want := Summary{DueToday: 2, Overdue: 1, Pending: 2}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func newTestScheduler(t *testing.T, now time.Time) (*Scheduler, *LocalPlatform, func()) {
	t.Helper()
	store, cleanup := newTestKV(t)
	clock := func() time.Time { return now }
	platform := NewLocalPlatform(store, LocalConfig{Now: clock})
	scheduler := NewScheduler(platform, WithClock(clock))
	if !scheduler.RequestPermissions(context.Background()) {
		t.Fatalf("expected local platform to grant permission")
	}
	return scheduler, platform, cleanup
}

func newTestKV(t *testing.T) (*db.Store, func()) {
	t.Helper()
	conn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return db.NewStore(conn), func() {
		_ = conn.Close()
	}
}
