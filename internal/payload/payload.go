// Package payload builds the platform-tagged envelopes published to SNS.
//
// SNS receives a JSON object keyed by platform (APNS, APNS_SANDBOX, GCM, ADM)
// with MessageStructure "json". Each value must itself be JSON text, so the
// platform bodies are serialized here rather than by the publish call.
package payload

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tinywideclouds/go-sns-push-service/pkg/push"
)

// ErrUnserializable is returned when notification data cannot be encoded.
var ErrUnserializable = errors.New("notification data is not serializable")

// Envelope keys understood by SNS.
const (
	KeyAPNS        = "APNS"
	KeyAPNSSandbox = "APNS_SANDBOX"
	KeyGCM         = "GCM"
	KeyADM         = "ADM"
)

// Envelope is a platform-tagged payload with exactly one key.
type Envelope map[string]string

// Message renders the envelope as the JSON text SNS expects in Message.
func (e Envelope) Message() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("failed to marshal envelope: %w", err)
	}
	return string(b), nil
}

// Build creates the envelope for one platform/variant pair.
func Build(platform push.Platform, n push.Notification, variant push.Variant) (Envelope, error) {
	switch platform {
	case push.PlatformIOS:
		return IOS(n, variant.Production)
	case push.PlatformGCM:
		return GCM(n, "", zeroTime)
	case push.PlatformADM:
		return ADM(n)
	default:
		return nil, fmt.Errorf("%w: no payload builder for %q", push.ErrMisconfigured, platform)
	}
}

// Render builds the envelope and returns its message text.
func Render(platform push.Platform, n push.Notification, variant push.Variant) (string, error) {
	env, err := Build(platform, n, variant)
	if err != nil {
		return "", err
	}
	return env.Message()
}

func marshalBody(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnserializable, err)
	}
	return string(b), nil
}
