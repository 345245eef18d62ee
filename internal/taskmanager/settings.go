package taskmanager

import (
	"context"
	"fmt"

	"github.com/Joseda-hg/taskmanagerx/internal/model"
)

// UpdateNotificationConfig stores cfg and keeps the daily summary schedule in
// line with it.
func (m *Manager) UpdateNotificationConfig(ctx context.Context, cfg model.NotificationConfig) error {
	if err := m.requireLoaded(); err != nil {
		return err
	}
	if err := model.ValidateNotificationConfig(cfg); err != nil {
		return err
	}
	at, _ := model.ParseTimeOfDay(cfg.DailySummaryTime)

	m.settingsMu.Lock()
	defer m.settingsMu.Unlock()

	if err := m.store.SaveNotificationConfig(ctx, cfg); err != nil {
		return fmt.Errorf("save notification config: %w", err)
	}
	m.mu.Lock()
	m.notif = cfg
	m.mu.Unlock()

	if cfg.Enabled && cfg.DailySummary {
		m.reminders.ScheduleDailySummary(ctx, at)
	} else {
		m.reminders.CancelDailySummary(ctx)
	}
	return nil
}
