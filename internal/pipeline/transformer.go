// --- File: internal/pipeline/transformer.go ---
// Package pipeline contains the core message processing components for the service.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/tinywideclouds/go-sns-push-service/pkg/push"
)

var errNoInstallations = errors.New("send request carries no installations")

// SendRequestTransformer is a dataflow Transformer that unmarshals a raw
// message payload into a push.SendRequest.
//
// Malformed payloads return skip=true with an error so the StreamingService
// can route them to the dead-letter topic. A request without an id takes the
// Pub/Sub message id, which is stable across redeliveries.
func SendRequestTransformer(
	_ context.Context,
	msg *messagepipeline.Message,
) (*push.SendRequest, bool, error) {
	var req push.SendRequest

	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return nil, true, fmt.Errorf("failed to unmarshal send request from message %s: %w", msg.ID, err)
	}
	if len(req.Installations) == 0 {
		return nil, true, fmt.Errorf("message %s: %w", msg.ID, errNoInstallations)
	}

	if req.RequestID == "" {
		req.RequestID = msg.ID
	}
	return &req, false, nil
}
