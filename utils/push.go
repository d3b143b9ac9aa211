package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
)

// PushService sends Firebase Cloud Messaging notifications to staff devices
type PushService struct {
	app *firebase.App
}

// NewPushService returns nil when app is nil so callers can skip pushes
func NewPushService(app *firebase.App) *PushService {
	if app == nil {
		return nil
	}
	return &PushService{app: app}
}

// Send pushes one notification to a device token
func (p *PushService) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return fmt.Errorf("device has no FCM token")
	}
	client, err := p.app.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize messaging client: %w", err)
	}

	response, err := client.Send(ctx, buildPushMessage(token, title, body, data))
	if err != nil {
		return fmt.Errorf("failed to send FCM notification: %w", err)
	}
	log.Printf("FCM notification sent: %s", response)
	return nil
}

func buildPushMessage(token, title, body string, data map[string]string) *messaging.Message {
	payload := map[string]string{
		"timestamp": time.Now().Format(time.RFC3339),
	}
	for k, v := range data {
		payload[k] = v
	}
	badge := 1
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: payload,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound:     "default",
				ChannelID: "salon_staff_channel",
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  body,
					},
					Sound: "default",
					Badge: &badge,
				},
			},
		},
	}
}
