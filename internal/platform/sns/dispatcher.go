package sns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/smithy-go"
	"github.com/tinywideclouds/go-sns-push-service/pkg/push"
	"golang.org/x/sync/errgroup"
)

// messageStructureJSON tells SNS the message is a platform-keyed object.
const messageStructureJSON = "json"

var (
	errNoEndpointARN = errors.New("response carried no endpoint arn")
	errNoMessageID   = errors.New("response carried no message id")
)

// Endpoint is a resolved platform endpoint for one device.
type Endpoint struct {
	ARN    string
	Device push.Device
}

// Target is one publish destination: a platform application and the
// payload every device in the batch receives.
type Target struct {
	Platform    push.Platform
	PlatformARN string
	Variant     push.Variant
	Message     string
}

// Dispatcher runs resolve-then-publish chains against SNS.
type Dispatcher struct {
	client Client
	logger *slog.Logger
}

// NewDispatcher accepts the concrete client but stores it as the interface.
func NewDispatcher(client Client, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		client: client,
		logger: logger.With("component", "SNSDispatcher"),
	}
}

// Resolve creates (or fetches, SNS is idempotent here) the platform endpoint
// for a device token.
func (d *Dispatcher) Resolve(ctx context.Context, device push.Device, platformARN string) (Endpoint, error) {
	out, err := d.client.CreatePlatformEndpoint(ctx, &awssns.CreatePlatformEndpointInput{
		PlatformApplicationArn: aws.String(platformARN),
		Token:                  aws.String(device.Token),
	})
	if err != nil {
		return Endpoint{}, fmt.Errorf("failed to create platform endpoint: %w", err)
	}
	if out == nil || aws.ToString(out.EndpointArn) == "" {
		return Endpoint{}, errNoEndpointARN
	}
	return Endpoint{ARN: aws.ToString(out.EndpointArn), Device: device}, nil
}

// Publish sends a prepared envelope to one endpoint and returns the message id.
func (d *Dispatcher) Publish(ctx context.Context, endpointARN, message string) (string, error) {
	out, err := d.client.Publish(ctx, &awssns.PublishInput{
		Message:          aws.String(message),
		MessageStructure: aws.String(messageStructureJSON),
		TargetArn:        aws.String(endpointARN),
	})
	if err != nil {
		return "", fmt.Errorf("failed to publish: %w", err)
	}
	if out == nil || aws.ToString(out.MessageId) == "" {
		return "", errNoMessageID
	}
	return aws.ToString(out.MessageId), nil
}

// FanOut runs one resolve-then-publish chain per device concurrently and
// waits for all of them. Every chain yields exactly one result; results come
// back in completion order.
func (d *Dispatcher) FanOut(ctx context.Context, target Target, devices []push.Device) []push.DispatchResult {
	if len(devices) == 0 {
		return nil
	}

	resultsCh := make(chan push.DispatchResult, len(devices))
	var g errgroup.Group
	for _, device := range devices {
		g.Go(func() error {
			resultsCh <- d.send(ctx, target, device)
			return nil
		})
	}
	_ = g.Wait()
	close(resultsCh)

	results := make([]push.DispatchResult, 0, len(devices))
	for r := range resultsCh {
		results = append(results, r)
	}
	return results
}

func (d *Dispatcher) send(ctx context.Context, target Target, device push.Device) push.DispatchResult {
	result := push.DispatchResult{
		Device:  push.NewDeviceInfo(target.Platform, device.Token),
		Variant: target.Variant.BundleID,
	}

	endpoint, err := d.Resolve(ctx, device, target.PlatformARN)
	if err != nil {
		d.logger.Error("Failed to resolve endpoint", "platform", target.Platform, "token", device.Token, "err", err)
		result.Response = describe(err)
		return result
	}

	messageID, err := d.Publish(ctx, endpoint.ARN, target.Message)
	if err != nil {
		d.logger.Error("Failed to publish", "platform", target.Platform, "endpoint", endpoint.ARN, "err", err)
		result.Response = describe(err)
		return result
	}

	d.logger.Debug("Published", "platform", target.Platform, "endpoint", endpoint.ARN, "message_id", messageID)
	result.Transmitted = true
	result.Response = messageID
	return result
}

// describe prefers the gateway's error code and message over the SDK's
// wrapped operation error.
func describe(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("%s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return err.Error()
}
