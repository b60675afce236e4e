// --- File: internal/platform/adm/sender.go ---
// Package adm sends Amazon Fire notifications through an SNS ADM platform application.
package adm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tinywideclouds/go-sns-push-service/internal/payload"
	"github.com/tinywideclouds/go-sns-push-service/internal/platform/sns"
	"github.com/tinywideclouds/go-sns-push-service/pkg/push"
)

// Gateway is satisfied by *sns.Dispatcher.
type Gateway interface {
	FanOut(ctx context.Context, target sns.Target, devices []push.Device) []push.DispatchResult
}

type Sender struct {
	gateway Gateway
	variant push.Variant
	logger  *slog.Logger
}

// NewSender creates a Sender bound to a single platform application.
func NewSender(gateway Gateway, variant push.Variant, logger *slog.Logger) *Sender {
	return &Sender{
		gateway: gateway,
		variant: variant,
		logger:  logger.With("component", "ADMSender"),
	}
}

// SendBatch sends the notification data to every device. ADM has no
// expiration in the payload, so ExpirationTime is ignored.
func (s *Sender) SendBatch(ctx context.Context, n push.Notification, devices []push.Device) ([]push.DispatchResult, error) {
	if len(devices) == 0 {
		return nil, nil
	}

	message, err := payload.Render(push.PlatformADM, n, s.variant)
	if err != nil {
		s.logger.Error("Failed to build ADM payload", "err", err)
		return nil, fmt.Errorf("adm: %w", err)
	}

	return s.gateway.FanOut(ctx, sns.Target{
		Platform:    push.PlatformADM,
		PlatformARN: s.variant.ARN,
		Variant:     s.variant,
		Message:     message,
	}, devices), nil
}
