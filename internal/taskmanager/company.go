package taskmanager

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Joseda-hg/taskmanagerx/internal/model"
)

// SaveCompany persists the company profile, assigning an id and creation time
// on first save.
func (m *Manager) SaveCompany(ctx context.Context, company model.Company) (model.Company, error) {
	if err := m.requireLoaded(); err != nil {
		return model.Company{}, err
	}
	if err := model.ValidateCompany(company); err != nil {
		return model.Company{}, err
	}

	m.companyMu.Lock()
	defer m.companyMu.Unlock()

	if current := m.Company(); current != nil {
		if company.ID == "" {
			company.ID = current.ID
		}
		if company.CreatedAt.IsZero() {
			company.CreatedAt = current.CreatedAt
		}
	}
	if company.ID == "" {
		company.ID = uuid.NewString()
	}
	if company.CreatedAt.IsZero() {
		company.CreatedAt = m.stamp()
	}

	if err := m.store.SaveCompany(ctx, company); err != nil {
		return model.Company{}, fmt.Errorf("save company: %w", err)
	}

	m.mu.Lock()
	saved := company
	m.company = &saved
	m.mu.Unlock()

	m.logger.Debug("company saved", zap.String("company_id", company.ID))
	return company, nil
}

func (m *Manager) IsFirstRun(ctx context.Context) (bool, error) {
	firstTime, err := m.store.IsFirstTime(ctx)
	if err != nil {
		return false, fmt.Errorf("read first run flag: %w", err)
	}
	return firstTime, nil
}

// CompleteOnboarding registers the company and clears the first-run flag.
func (m *Manager) CompleteOnboarding(ctx context.Context, company model.Company) (model.Company, error) {
	saved, err := m.SaveCompany(ctx, company)
	if err != nil {
		return model.Company{}, err
	}
	if err := m.store.SetFirstTime(ctx, false); err != nil {
		return model.Company{}, fmt.Errorf("clear first run flag: %w", err)
	}
	return saved, nil
}

// Reset removes every stored key and returns the in-memory state to defaults.
func (m *Manager) Reset(ctx context.Context) error {
	m.companyMu.Lock()
	defer m.companyMu.Unlock()
	m.peopleMu.Lock()
	defer m.peopleMu.Unlock()
	m.tasksMu.Lock()
	defer m.tasksMu.Unlock()
	m.settingsMu.Lock()
	defer m.settingsMu.Unlock()

	if err := m.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}

	m.mu.Lock()
	m.company = nil
	m.people = []model.Person{}
	m.tasks = []model.Task{}
	m.notif = model.DefaultNotificationConfig()
	m.mu.Unlock()

	m.logger.Info("all data cleared")
	return nil
}
