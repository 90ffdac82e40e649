package services

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"skillbridge-server/internal/config"
)

// PushService sends notifications through Firebase Cloud Messaging. It is
// strictly best effort: failures are logged and never surfaced to callers.
type PushService struct {
	client *messaging.Client
}

func NewPushService(ctx context.Context, cfg *config.Config) (*PushService, error) {
	if cfg.FirebaseProjectID == "" {
		// Push disabled; Send becomes a no-op.
		return &PushService{}, nil
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID},
		option.WithCredentialsFile(cfg.FirebasePrivateKeyPath))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging client: %w", err)
	}

	return &PushService{client: client}, nil
}

// Send pushes a notification to a per-user topic. Clients subscribe to their
// own topic after login.
func (p *PushService) Send(ctx context.Context, userID uint, title, body string, data map[string]string) {
	if p.client == nil {
		return
	}

	message := &messaging.Message{
		Topic: fmt.Sprintf("user-%d", userID),
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := p.client.Send(ctx, message); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Failed to send push notification")
	}
}
