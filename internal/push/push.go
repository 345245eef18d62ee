// Package push delivers due notifications to devices through Firebase Cloud
// Messaging.
package push

import (
	"context"
	"fmt"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/Joseda-hg/taskmanagerx/internal/notify"
)

const webpushIcon = "/icon-192.svg"

type sender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// Deliverer sends every alert to a fixed set of device tokens. Tokens that
// FCM rejects are dropped for the rest of the process lifetime.
type Deliverer struct {
	client sender
	logger *zap.Logger

	mu     sync.Mutex
	tokens []string
}

func NewDeliverer(ctx context.Context, credentialsFile string, tokens []string, logger *zap.Logger) (*Deliverer, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}

	d := newDeliverer(client, tokens, logger)
	d.logger.Info("fcm deliverer initialized", zap.Int("tokens", len(tokens)))
	return d, nil
}

func newDeliverer(client sender, tokens []string, logger *zap.Logger) *Deliverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Deliverer{client: client, logger: logger, tokens: append([]string(nil), tokens...)}
}

func (d *Deliverer) Tokens() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.tokens...)
}

func (d *Deliverer) Deliver(ctx context.Context, alert notify.Scheduled) error {
	tokens := d.Tokens()
	if len(tokens) == 0 {
		return nil
	}

	response, err := d.client.SendEachForMulticast(ctx, buildMessage(tokens, alert))
	if err != nil {
		return fmt.Errorf("send fcm multicast: %w", err)
	}

	d.logger.Debug("fcm multicast sent",
		zap.String("alert_id", alert.ID),
		zap.Int("success", response.SuccessCount),
		zap.Int("failure", response.FailureCount))

	failed := map[string]struct{}{}
	for i, resp := range response.Responses {
		if i >= len(tokens) || resp.Success {
			continue
		}
		failed[tokens[i]] = struct{}{}
		d.logger.Warn("fcm delivery failed", zap.String("token", shorten(tokens[i])), zap.Error(resp.Error))
	}
	if len(failed) > 0 {
		d.dropTokens(failed)
	}
	return nil
}

func (d *Deliverer) dropTokens(failed map[string]struct{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	kept := d.tokens[:0]
	for _, token := range d.tokens {
		if _, ok := failed[token]; !ok {
			kept = append(kept, token)
		}
	}
	d.tokens = kept
}

func buildMessage(tokens []string, alert notify.Scheduled) *messaging.MulticastMessage {
	data := map[string]string{"alertId": alert.ID}
	for k, v := range alert.Alert.Data {
		data[k] = v
	}
	return &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: alert.Alert.Title,
			Body:  alert.Alert.Body,
		},
		Data: data,
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: alert.Alert.Title,
				Body:  alert.Alert.Body,
				Icon:  webpushIcon,
			},
		},
	}
}

func shorten(token string) string {
	if len(token) <= 20 {
		return token
	}
	return token[:20] + "..."
}
