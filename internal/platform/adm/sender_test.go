package adm_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-sns-push-service/internal/payload"
	"github.com/tinywideclouds/go-sns-push-service/internal/platform/adm"
	"github.com/tinywideclouds/go-sns-push-service/internal/platform/sns"
	"github.com/tinywideclouds/go-sns-push-service/pkg/push"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) FanOut(ctx context.Context, target sns.Target, devices []push.Device) []push.DispatchResult {
	args := m.Called(ctx, target, devices)
	return args.Get(0).([]push.DispatchResult)
}

func TestSender_SendBatch(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gateway := new(MockGateway)
	sender := adm.NewSender(gateway, push.Variant{ARN: "arn:adm"}, logger)

	exp := time.Now().Add(time.Hour)
	n := push.Notification{Data: map[string]any{"alert": "Hi"}, ExpirationTime: &exp}
	devices := []push.Device{{Token: "kindle"}}

	gateway.On("FanOut", mock.Anything, mock.MatchedBy(func(t sns.Target) bool {
		var env map[string]string
		if err := json.Unmarshal([]byte(t.Message), &env); err != nil {
			return false
		}
		return t.Platform == push.PlatformADM && env[payload.KeyADM] == `{"data":{"alert":"Hi"}}`
	}), devices).Return([]push.DispatchResult{
		{Device: push.NewDeviceInfo(push.PlatformADM, "kindle"), Transmitted: true, Response: "m-1"},
	})

	results, err := sender.SendBatch(context.Background(), n, devices)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "m-1", results[0].Response)
	gateway.AssertExpectations(t)
}
