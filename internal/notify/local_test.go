package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Joseda-hg/taskmanagerx/internal/db"
	"github.com/Joseda-hg/taskmanagerx/internal/model"
)

func TestLocalPlatformDeliverDue(t *testing.T) {
	store, cleanup := newTestKV(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	var delivered []Scheduled
	platform := NewLocalPlatform(store, LocalConfig{
		Now: func() time.Time { return now },
		Deliverer: DelivererFunc(func(_ context.Context, alert Scheduled) error {
			delivered = append(delivered, alert)
			return nil
		}),
	})

	if _, err := platform.Schedule(ctx, Alert{Title: "once", Trigger: Trigger{At: now.Add(30 * time.Minute)}}); err != nil {
		t.Fatalf("schedule once: %v", err)
	}
	daily := model.TimeOfDay{Hour: 8, Minute: 15}
	if _, err := platform.Schedule(ctx, Alert{Title: "daily", Data: map[string]string{DataType: TypeDailySummary}, Trigger: Trigger{Daily: &daily}}); err != nil {
		t.Fatalf("schedule daily: %v", err)
	}

	n, err := platform.DeliverDue(ctx)
	if err != nil {
		t.Fatalf("deliver due: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected nothing due yet, got %d", n)
	}

	now = now.Add(time.Hour)
	n, err = platform.DeliverDue(ctx)
	if err != nil {
		t.Fatalf("deliver due: %v", err)
	}
	if n != 2 || len(delivered) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", n)
	}

	pending, err := platform.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 1 || pending[0].Alert.Title != "daily" {
		t.Fatalf("expected only the daily alert to remain, got %+v", pending)
	}
	if want := time.Date(2024, 5, 2, 8, 15, 0, 0, time.UTC); !pending[0].NextAt.Equal(want) {
		t.Fatalf("expected daily alert to roll to %v, got %v", want, pending[0].NextAt)
	}
}

func TestLocalPlatformSurvivesReopen(t *testing.T) {
	store, cleanup := newTestKV(t)
	defer cleanup()
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	first := NewLocalPlatform(store, LocalConfig{Now: func() time.Time { return now }})
	id, err := first.Schedule(ctx, Alert{Title: "later", Trigger: Trigger{At: now.Add(time.Hour)}})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	second := NewLocalPlatform(store, LocalConfig{Now: func() time.Time { return now }})
	pending, err := second.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != id {
		t.Fatalf("expected alert %s to persist, got %+v", id, pending)
	}
}

func TestMultiDelivererContinuesAfterFailure(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	multi := MultiDeliverer{
		DelivererFunc(func(context.Context, Scheduled) error { calls++; return boom }),
		DelivererFunc(func(context.Context, Scheduled) error { calls++; return nil }),
		LogDeliverer{},
	}

	err := multi.Deliver(context.Background(), Scheduled{ID: "a1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to wrap boom, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected both deliverers to run, got %d calls", calls)
	}
}

func TestNextDaily(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	if got := NextDaily(model.TimeOfDay{Hour: 9}, now); !got.Equal(now.AddDate(0, 0, 1)) {
		t.Fatalf("expected same minute to roll to tomorrow, got %v", got)
	}
	if got := NextDaily(model.TimeOfDay{Hour: 9, Minute: 1}, now); !got.Equal(now.Add(time.Minute)) {
		t.Fatalf("expected later today, got %v", got)
	}
}

func TestLocalPlatformStoresOnlyTheTriggerInUse(t *testing.T) {
	store, cleanup := newTestKV(t)
	defer cleanup()
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	platform := NewLocalPlatform(store, LocalConfig{Now: func() time.Time { return now }})
	daily := model.TimeOfDay{Hour: 18, Minute: 0}
	if _, err := platform.Schedule(ctx, Alert{Title: "daily", Trigger: Trigger{Daily: &daily}}); err != nil {
		t.Fatalf("schedule daily: %v", err)
	}
	if _, err := platform.Schedule(ctx, Alert{Title: "once", Trigger: Trigger{At: now.Add(time.Hour)}}); err != nil {
		t.Fatalf("schedule once: %v", err)
	}

	var raw []struct {
		Alert struct {
			Title   string                     `json:"title"`
			Trigger map[string]json.RawMessage `json:"trigger"`
		} `json:"alert"`
	}
	if _, err := store.Get(ctx, db.KeyScheduled, &raw); err != nil {
		t.Fatalf("get scheduled: %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("expected 2 stored alerts, got %d", len(raw))
	}
	for _, item := range raw {
		_, hasAt := item.Alert.Trigger["at"]
		_, hasDaily := item.Alert.Trigger["daily"]
		if hasAt == hasDaily {
			t.Fatalf("expected %q to store exactly one trigger, got %v", item.Alert.Title, item.Alert.Trigger)
		}
	}
}
