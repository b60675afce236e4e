// --- File: pkg/push/types.go ---
// Package push contains the domain model shared by the dispatch pipeline:
// installations, notifications, platform configuration and per-device results.
package push

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ErrMisconfigured marks a fatal configuration error. It is raised when an
// adapter is constructed, never at send time.
var ErrMisconfigured = errors.New("push misconfigured")

// Platform identifies a device family routed through the gateway.
type Platform string

const (
	PlatformIOS Platform = "ios"
	PlatformGCM Platform = "gcm"
	PlatformADM Platform = "adm"
)

// ValidPlatforms lists every platform the adapter knows how to send to.
var ValidPlatforms = []Platform{PlatformIOS, PlatformGCM, PlatformADM}

// ParsePlatform maps a configuration key onto a Platform.
func ParsePlatform(key string) (Platform, error) {
	switch Platform(key) {
	case PlatformIOS:
		return PlatformIOS, nil
	case PlatformGCM:
		return PlatformGCM, nil
	case PlatformADM:
		return PlatformADM, nil
	default:
		return "", fmt.Errorf("%w: push to %q is not supported", ErrMisconfigured, key)
	}
}

// Installation is a device registration supplied by the caller.
type Installation struct {
	DeviceToken   string `json:"deviceToken"`
	DeviceType    string `json:"deviceType"`
	PushType      string `json:"pushType,omitempty"`
	AppIdentifier string `json:"appIdentifier,omitempty"`
}

// EffectivePlatform is the routing key: PushType overrides DeviceType.
func (i Installation) EffectivePlatform() string {
	if i.PushType != "" {
		return i.PushType
	}
	return i.DeviceType
}

// Notification is the generic notification description. It is shared
// read-only across every platform, variant and device.
type Notification struct {
	Data           map[string]any `json:"data"`
	ExpirationTime *time.Time     `json:"expiration_time,omitempty"`
}

// Device is a classified installation: what a sender needs to reach it.
type Device struct {
	Token         string `json:"deviceToken"`
	AppIdentifier string `json:"appIdentifier,omitempty"`
}

// Variant is one gateway configuration for a platform. iOS commonly has
// several (one per bundle/environment pair).
type Variant struct {
	ARN        string `json:"arn"`
	Production bool   `json:"production,omitempty"`
	BundleID   string `json:"bundle_id,omitempty"`
}

// PushTypes is the raw per-platform configuration. Keys are validated when
// the coordinator is constructed.
type PushTypes map[string][]Variant

// DeviceInfo identifies the device a result belongs to.
type DeviceInfo struct {
	DeviceType  Platform `json:"deviceType" firestore:"device_type"`
	DeviceToken string   `json:"deviceToken" firestore:"device_token"`
}

// NewDeviceInfo hex-encodes the raw token for reporting.
func NewDeviceInfo(platform Platform, token string) DeviceInfo {
	return DeviceInfo{
		DeviceType:  platform,
		DeviceToken: hex.EncodeToString([]byte(token)),
	}
}

// DispatchResult is the terminal outcome of one send attempt to one device.
type DispatchResult struct {
	Device      DeviceInfo `json:"device" firestore:"device"`
	Transmitted bool       `json:"transmitted" firestore:"transmitted"`
	// Response is the gateway message id on success, or the error detail.
	Response string `json:"response,omitempty" firestore:"response,omitempty"`
	// Variant is the iOS bundle id the result was sent through.
	Variant string `json:"variant,omitempty" firestore:"variant,omitempty"`
}

// SendRequest is a batch send as accepted by the pipeline and the HTTP API.
type SendRequest struct {
	RequestID     string         `json:"request_id,omitempty"`
	Notification  Notification   `json:"notification"`
	Installations []Installation `json:"installations"`
}

// DispatchRecord is the audit trail of one send.
type DispatchRecord struct {
	RequestID   string           `json:"request_id" firestore:"request_id"`
	RequestedBy string           `json:"requested_by,omitempty" firestore:"requested_by,omitempty"`
	CreatedAt   time.Time        `json:"created_at" firestore:"created_at"`
	Transmitted int              `json:"transmitted" firestore:"transmitted"`
	Failed      int              `json:"failed" firestore:"failed"`
	Results     []DispatchResult `json:"results" firestore:"results"`
}

// NewDispatchRecord tallies results into a record.
func NewDispatchRecord(requestID, requestedBy string, results []DispatchResult) *DispatchRecord {
	record := &DispatchRecord{
		RequestID:   requestID,
		RequestedBy: requestedBy,
		CreatedAt:   time.Now().UTC(),
		Results:     results,
	}
	for _, r := range results {
		if r.Transmitted {
			record.Transmitted++
		} else {
			record.Failed++
		}
	}
	return record
}
