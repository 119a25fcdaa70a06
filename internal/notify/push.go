package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/plateful/backend/config"
	"github.com/plateful/backend/internal/models"
)

// ErrExpired is returned when the push service reports the subscription no
// longer exists. The device should be deactivated; retrying is pointless.
var ErrExpired = errors.New("push subscription expired")

// PushPayload is the JSON document the service worker receives.
type PushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// PushSender delivers one payload to one registered device.
type PushSender interface {
	Send(ctx context.Context, device models.Device, payload PushPayload) error
}

// WebPushSender sends payloads over the Web Push protocol with VAPID
// authorization.
type WebPushSender struct {
	publicKey  string
	privateKey string
	subscriber string
}

// Ensure WebPushSender implements PushSender
var _ PushSender = (*WebPushSender)(nil)

func NewWebPushSender(cfg *config.Config) *WebPushSender {
	return &WebPushSender{
		publicKey:  cfg.VAPIDPublicKey,
		privateKey: cfg.VAPIDPrivateKey,
		subscriber: cfg.VAPIDSubject,
	}
}

// VAPIDPublicKey returns the key browsers need when subscribing.
func (s *WebPushSender) VAPIDPublicKey() string {
	return s.publicKey
}

// Send pushes the payload to the device's endpoint. Push services answer 404
// or 410 for subscriptions that no longer exist; both map to ErrExpired.
// Other non-2xx statuses come back as plain errors, which callers may retry.
func (s *WebPushSender) Send(ctx context.Context, device models.Device, payload PushPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, data, &webpush.Subscription{
		Endpoint: device.Endpoint,
		Keys: webpush.Keys{
			P256dh: device.P256dhKey,
			Auth:   device.AuthKey,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		Subscriber:      s.subscriber,
		TTL:             86400,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return ErrExpired
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}
