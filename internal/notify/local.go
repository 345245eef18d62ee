package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Joseda-hg/taskmanagerx/internal/db"
)

const DefaultPollInterval = 30 * time.Second

// KV is the slice of the persistence store the local platform needs.
type KV interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

type LocalConfig struct {
	Interval  time.Duration
	Deliverer Deliverer
	Logger    *zap.Logger
	Now       func() time.Time
}

// LocalPlatform keeps pending alerts in the store and delivers them from Run.
type LocalPlatform struct {
	store     KV
	deliverer Deliverer
	logger    *zap.Logger
	now       func() time.Time
	interval  time.Duration

	mu     sync.Mutex
	denied bool
}

func NewLocalPlatform(store KV, cfg LocalConfig) *LocalPlatform {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultPollInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Deliverer == nil {
		cfg.Deliverer = LogDeliverer{Logger: cfg.Logger}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &LocalPlatform{
		store:     store,
		deliverer: cfg.Deliverer,
		logger:    cfg.Logger,
		now:       cfg.Now,
		interval:  cfg.Interval,
	}
}

// Deny makes every later permission request fail.
func (p *LocalPlatform) Deny() {
	p.mu.Lock()
	p.denied = true
	p.mu.Unlock()
}

func (p *LocalPlatform) RequestPermission(context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.denied, nil
}

func (p *LocalPlatform) Schedule(ctx context.Context, alert Alert) (string, error) {
	item := Scheduled{ID: uuid.NewString(), Alert: alert}
	if alert.Trigger.Daily != nil {
		item.NextAt = NextDaily(*alert.Trigger.Daily, p.now())
	} else {
		item.NextAt = alert.Trigger.At
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	pending, err := p.load(ctx)
	if err != nil {
		return "", err
	}
	if err := p.save(ctx, append(pending, item)); err != nil {
		return "", err
	}
	return item.ID, nil
}

func (p *LocalPlatform) Cancel(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	pending, err := p.load(ctx)
	if err != nil {
		return err
	}
	kept := pending[:0]
	for _, item := range pending {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	return p.save(ctx, kept)
}

func (p *LocalPlatform) List(ctx context.Context) ([]Scheduled, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.load(ctx)
}

// DeliverDue hands every alert whose time has come to the deliverer. One-shot
// alerts are dropped afterwards and daily ones move to their next occurrence.
func (p *LocalPlatform) DeliverDue(ctx context.Context) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pending, err := p.load(ctx)
	if err != nil {
		return 0, err
	}

	now := p.now()
	delivered := 0
	kept := make([]Scheduled, 0, len(pending))
	for _, item := range pending {
		if item.NextAt.After(now) {
			kept = append(kept, item)
			continue
		}
		if err := p.deliverer.Deliver(ctx, item); err != nil {
			p.logger.Warn("deliver notification", zap.String("alert_id", item.ID), zap.Error(err))
		}
		delivered++
		if item.Alert.Trigger.Daily != nil {
			item.NextAt = NextDaily(*item.Alert.Trigger.Daily, now)
			kept = append(kept, item)
		}
	}
	if delivered == 0 {
		return 0, nil
	}
	return delivered, p.save(ctx, kept)
}

// Run delivers due alerts every interval until ctx is canceled.
func (p *LocalPlatform) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("notification dispatcher started", zap.Duration("interval", p.interval))
	for {
		if n, err := p.DeliverDue(ctx); err != nil {
			p.logger.Error("deliver due notifications", zap.Error(err))
		} else if n > 0 {
			p.logger.Debug("delivered notifications", zap.Int("count", n))
		}

		select {
		case <-ctx.Done():
			p.logger.Info("notification dispatcher stopping", zap.Error(ctx.Err()))
			return nil
		case <-ticker.C:
		}
	}
}

func (p *LocalPlatform) load(ctx context.Context) ([]Scheduled, error) {
	pending := []Scheduled{}
	if _, err := p.store.Get(ctx, db.KeyScheduled, &pending); err != nil {
		return nil, fmt.Errorf("load scheduled notifications: %w", err)
	}
	return pending, nil
}

func (p *LocalPlatform) save(ctx context.Context, pending []Scheduled) error {
	if err := p.store.Set(ctx, db.KeyScheduled, pending); err != nil {
		return fmt.Errorf("save scheduled notifications: %w", err)
	}
	return nil
}
