package push_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-sns-push-service/pkg/push"
)

func TestParsePlatform(t *testing.T) {
	for _, p := range push.ValidPlatforms {
		got, err := push.ParsePlatform(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}

	_, err := push.ParsePlatform("wns")
	require.Error(t, err)
	assert.True(t, errors.Is(err, push.ErrMisconfigured))
	assert.Contains(t, err.Error(), "wns")
}

func TestInstallation_EffectivePlatform(t *testing.T) {
	assert.Equal(t, "ios", push.Installation{DeviceType: "ios"}.EffectivePlatform())
	assert.Equal(t, "adm", push.Installation{DeviceType: "android", PushType: "adm"}.EffectivePlatform())
}

func TestNewDispatchRecord(t *testing.T) {
	results := []push.DispatchResult{
		{Device: push.NewDeviceInfo(push.PlatformIOS, "a"), Transmitted: true},
		{Device: push.NewDeviceInfo(push.PlatformGCM, "b"), Transmitted: false},
		{Device: push.NewDeviceInfo(push.PlatformGCM, "c"), Transmitted: true},
	}

	record := push.NewDispatchRecord("req-1", "urn:sm:user:1", results)

	assert.Equal(t, "req-1", record.RequestID)
	assert.Equal(t, 2, record.Transmitted)
	assert.Equal(t, 1, record.Failed)
	assert.False(t, record.CreatedAt.IsZero())
	assert.Equal(t, "61", record.Results[0].Device.DeviceToken)
}
