// --- File: internal/platform/gcm/sender.go ---
// Package gcm sends Android notifications through an SNS GCM platform application.
package gcm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tinywideclouds/go-sns-push-service/internal/payload"
	"github.com/tinywideclouds/go-sns-push-service/internal/platform/sns"
	"github.com/tinywideclouds/go-sns-push-service/pkg/push"
)

// Gateway defines the subset of the SNS dispatcher we use.
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
		logger:  logger.With("component", "GCMSender"),
	}
}

// SendBatch builds one payload for the bucket and sends it to every device.
func (s *Sender) SendBatch(ctx context.Context, n push.Notification, devices []push.Device) ([]push.DispatchResult, error) {
	if len(devices) == 0 {
		return nil, nil
	}

	message, err := payload.Render(push.PlatformGCM, n, s.variant)
	if err != nil {
		s.logger.Error("Failed to build GCM payload", "err", err)
		return nil, fmt.Errorf("gcm: %w", err)
	}

	return s.gateway.FanOut(ctx, sns.Target{
		Platform:    push.PlatformGCM,
		PlatformARN: s.variant.ARN,
		Variant:     s.variant,
		Message:     message,
	}, devices), nil
}
