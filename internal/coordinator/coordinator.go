// Package coordinator is the runtime entry point of push dispatch: it
// classifies installations, runs the platform senders concurrently and
// settles their results into one list.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/tinywideclouds/go-sns-push-service/internal/installation"
	"github.com/tinywideclouds/go-sns-push-service/internal/platform/adm"
	"github.com/tinywideclouds/go-sns-push-service/internal/platform/apns"
	"github.com/tinywideclouds/go-sns-push-service/internal/platform/gcm"
	"github.com/tinywideclouds/go-sns-push-service/internal/platform/sns"
	"github.com/tinywideclouds/go-sns-push-service/pkg/dispatch"
	"github.com/tinywideclouds/go-sns-push-service/pkg/push"
	"golang.org/x/sync/errgroup"
)

// Gateway is the fan-out primitive every platform sender is built on.
// *sns.Dispatcher satisfies it.
type Gateway interface {
	FanOut(ctx context.Context, target sns.Target, devices []push.Device) []push.DispatchResult
}

// Config is everything needed to construct a Coordinator against SNS.
type Config struct {
	AccessKey   string
	SecretKey   string
	Region      string
	Endpoint    string
	MaxAttempts int
	PushTypes   push.PushTypes
}

// Coordinator implements dispatch.Adapter.
type Coordinator struct {
	senders   map[push.Platform]dispatch.Sender
	platforms []push.Platform
	logger    *slog.Logger
}

var _ dispatch.Adapter = (*Coordinator)(nil)

type bucketOutcome struct {
	platform push.Platform
	results  []push.DispatchResult
	err      error
}

// NewFromConfig validates credentials, builds the SNS client and wires the
// senders. Every error wraps push.ErrMisconfigured except SDK setup failures.
func NewFromConfig(ctx context.Context, cfg Config, logger *slog.Logger) (*Coordinator, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("%w: need to provide AWS keys", push.ErrMisconfigured)
	}

	client, err := sns.NewClient(ctx, sns.Config{
		AccessKey:   cfg.AccessKey,
		SecretKey:   cfg.SecretKey,
		Region:      cfg.Region,
		Endpoint:    cfg.Endpoint,
		MaxAttempts: cfg.MaxAttempts,
	})
	if err != nil {
		return nil, err
	}

	return New(cfg.PushTypes, sns.NewDispatcher(client, logger), logger)
}

// New builds one sender per configured platform. Unknown platform keys and
// platforms without a usable variant are rejected here, never at send time.
func New(pushTypes push.PushTypes, gateway Gateway, logger *slog.Logger) (*Coordinator, error) {
	c := &Coordinator{
		senders: make(map[push.Platform]dispatch.Sender, len(pushTypes)),
		logger:  logger.With("component", "Coordinator"),
	}

	for key, variants := range pushTypes {
		platform, err := push.ParsePlatform(key)
		if err != nil {
			return nil, err
		}
		if len(variants) == 0 {
			return nil, fmt.Errorf("%w: %s has no platform application configured", push.ErrMisconfigured, key)
		}
		for _, v := range variants {
			if v.ARN == "" {
				return nil, fmt.Errorf("%w: %s variant is missing an arn", push.ErrMisconfigured, key)
			}
		}

		switch platform {
		case push.PlatformIOS:
			c.senders[platform] = apns.NewSender(gateway, variants, logger)
		case push.PlatformGCM:
			c.senders[platform] = gcm.NewSender(gateway, variants[0], logger)
		case push.PlatformADM:
			c.senders[platform] = adm.NewSender(gateway, variants[0], logger)
		}
		c.platforms = append(c.platforms, platform)
	}
	slices.Sort(c.platforms)

	c.logger.Info("Push coordinator configured", "platforms", c.platforms)
	return c, nil
}

// Platforms returns the configured platforms in sorted order.
func (c *Coordinator) Platforms() []push.Platform {
	return slices.Clone(c.platforms)
}

// Send dispatches one notification to a batch of installations. Installations
// for platforms that are not configured produce no results. Per-device
// failures are reported in the results; the returned error only carries
// payload construction failures, alongside the results of unaffected buckets.
func (c *Coordinator) Send(ctx context.Context, n push.Notification, installations []push.Installation) ([]push.DispatchResult, error) {
	buckets := installation.Classify(installations, c.platforms)

	outcomes := make(chan bucketOutcome, len(buckets))
	var g errgroup.Group
	for platform, devices := range buckets {
		if len(devices) == 0 {
			continue
		}
		sender := c.senders[platform]
		g.Go(func() error {
			results, err := sender.SendBatch(ctx, n, devices)
			outcomes <- bucketOutcome{platform: platform, results: results, err: err}
			return nil
		})
	}
	_ = g.Wait()
	close(outcomes)

	var results []push.DispatchResult
	var errs []error
	for o := range outcomes {
		if o.err != nil {
			c.logger.Error("Platform batch failed", "platform", o.platform, "err", o.err)
			errs = append(errs, o.err)
		}
		results = append(results, o.results...)
	}

	c.logger.Debug("Send settled", "installations", len(installations), "results", len(results))
	return results, errors.Join(errs...)
}
