package pipeline

import (
	"context"
	"log/slog"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/tinywideclouds/go-sns-push-service/pkg/dispatch"
	"github.com/tinywideclouds/go-sns-push-service/pkg/push"
)

// NewProcessor creates the stage that sends each request and records the outcome.
//
// Device failures are results, not errors, and payload construction failures
// will not succeed on redelivery, so the processor always acknowledges. The
// store is optional.
func NewProcessor(
	adapter dispatch.Adapter,
	store dispatch.ResultStore,
	logger *slog.Logger,
) messagepipeline.StreamProcessor[push.SendRequest] {

	return func(ctx context.Context, original messagepipeline.Message, request *push.SendRequest) error {
		procLogger := logger.With(
			"request_id", request.RequestID,
			"pubsub_msg_id", original.ID,
		)

		results, err := adapter.Send(ctx, request.Notification, request.Installations)
		if err != nil {
			procLogger.Error("Payload construction failed; acknowledging", "err", err)
		}

		record := push.NewDispatchRecord(request.RequestID, "", results)
		if store != nil {
			if err := store.Save(ctx, record); err != nil {
				procLogger.Warn("Failed to save dispatch record", "err", err)
			}
		}

		procLogger.Info("Push dispatched", "transmitted", record.Transmitted, "failed", record.Failed)
		return nil
	}
}
