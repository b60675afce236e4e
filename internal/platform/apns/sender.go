// --- File: internal/platform/apns/sender.go ---
// Package apns sends iOS notifications through every configured SNS APNs
// platform application.
package apns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tinywideclouds/go-sns-push-service/internal/payload"
	"github.com/tinywideclouds/go-sns-push-service/internal/platform/sns"
	"github.com/tinywideclouds/go-sns-push-service/pkg/push"
	"golang.org/x/sync/errgroup"
)

// Gateway defines the subset of the SNS dispatcher we use.
// This allows mocking for unit tests.
type Gateway interface {
	FanOut(ctx context.Context, target sns.Target, devices []push.Device) []push.DispatchResult
}

// Sender fans iOS devices out across variants (one per bundle/environment).
type Sender struct {
	gateway  Gateway
	variants []push.Variant
	logger   *slog.Logger
}

type variantOutcome struct {
	results []push.DispatchResult
	err     error
}

// NewSender creates a Sender for the given iOS variants.
func NewSender(gateway Gateway, variants []push.Variant, logger *slog.Logger) *Sender {
	return &Sender{
		gateway:  gateway,
		variants: variants,
		logger:   logger.With("component", "APNSSender"),
	}
}

// SendBatch sends to every variant concurrently. A device is eligible for a
// variant when it has no app identifier or its identifier matches the
// variant's bundle id, so unscoped devices receive one push per variant.
func (s *Sender) SendBatch(ctx context.Context, n push.Notification, devices []push.Device) ([]push.DispatchResult, error) {
	if len(devices) == 0 {
		return nil, nil
	}

	outcomes := make(chan variantOutcome, len(s.variants))
	var g errgroup.Group
	for _, variant := range s.variants {
		g.Go(func() error {
			outcomes <- s.sendVariant(ctx, n, variant, devices)
			return nil
		})
	}
	_ = g.Wait()
	close(outcomes)

	var results []push.DispatchResult
	var errs []error
	for o := range outcomes {
		if o.err != nil {
			errs = append(errs, o.err)
			continue
		}
		results = append(results, o.results...)
	}
	return results, errors.Join(errs...)
}

func (s *Sender) sendVariant(ctx context.Context, n push.Notification, variant push.Variant, devices []push.Device) variantOutcome {
	message, err := payload.Render(push.PlatformIOS, n, variant)
	if err != nil {
		s.logger.Error("Failed to build APNs payload", "bundle_id", variant.BundleID, "err", err)
		return variantOutcome{err: fmt.Errorf("ios variant %q: %w", variant.BundleID, err)}
	}

	eligible := make([]push.Device, 0, len(devices))
	for _, d := range devices {
		if d.AppIdentifier == "" || d.AppIdentifier == variant.BundleID {
			eligible = append(eligible, d)
		}
	}
	if len(eligible) == 0 {
		return variantOutcome{}
	}

	s.logger.Debug("Sending to iOS variant", "bundle_id", variant.BundleID, "production", variant.Production, "devices", len(eligible))
	return variantOutcome{results: s.gateway.FanOut(ctx, sns.Target{
		Platform:    push.PlatformIOS,
		PlatformARN: variant.ARN,
		Variant:     variant,
		Message:     message,
	}, eligible)}
}
