package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Deliverer shows a due alert to the user.
type Deliverer interface {
	Deliver(ctx context.Context, alert Scheduled) error
}

type DelivererFunc func(ctx context.Context, alert Scheduled) error

func (f DelivererFunc) Deliver(ctx context.Context, alert Scheduled) error {
	return f(ctx, alert)
}

type LogDeliverer struct {
	Logger *zap.Logger
}

func (d LogDeliverer) Deliver(_ context.Context, alert Scheduled) error {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info(alert.Alert.Title,
		zap.String("body", alert.Alert.Body),
		zap.String("type", alert.Alert.Type()),
		zap.String("task_id", alert.Alert.TaskID()),
		zap.String("alert_id", alert.ID))
	return nil
}

// MultiDeliverer hands each alert to every deliverer, even after failures.
type MultiDeliverer []Deliverer

func (m MultiDeliverer) Deliver(ctx context.Context, alert Scheduled) error {
	var errs []error
	for _, d := range m {
		if err := d.Deliver(ctx, alert); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
