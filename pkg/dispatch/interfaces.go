// --- File: pkg/dispatch/interfaces.go ---
package dispatch

import (
	"context"
	"errors"

	"github.com/tinywideclouds/go-sns-push-service/pkg/push"
)

// ErrNotFound is returned by a ResultStore when no record exists.
var ErrNotFound = errors.New("dispatch record not found")

// Sender defines the contract for a component that delivers one notification
// to a bucket of devices of a single platform (iOS, GCM, ADM).
type Sender interface {
	// SendBatch returns one result per device per attempted send. Device
	// failures are reported as results; the error is reserved for payloads
	// that could not be built.
	SendBatch(ctx context.Context, n push.Notification, devices []push.Device) ([]push.DispatchResult, error)
}

// Adapter is the single runtime entry point: classify, fan out, settle.
type Adapter interface {
	Send(ctx context.Context, n push.Notification, installations []push.Installation) ([]push.DispatchResult, error)
}

// ResultStore keeps the audit record of each send.
type ResultStore interface {
	Save(ctx context.Context, record *push.DispatchRecord) error
	Fetch(ctx context.Context, requestID string) (*push.DispatchRecord, error)
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]*push.DispatchRecord, error)
}
