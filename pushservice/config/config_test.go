// --- File: pushservice/config/config_test.go ---
package config_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-sns-push-service/pushservice/config"
	"github.com/tinywideclouds/go-sns-push-service/pkg/push"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// clearAWSEnv keeps a developer's shell credentials out of the tests.
func clearAWSEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_REGION", "AWS_SNS_ENDPOINT", "AWS_MAX_ATTEMPTS", "PROJECT_ID", "SUBSCRIPTION_ID"} {
		t.Setenv(key, "")
	}
}

func TestUpdateConfigWithEnvOverrides(t *testing.T) {
	logger := newTestLogger()

	baseConfig := func() *config.Config {
		return &config.Config{
			ProjectID:          "base-project",
			ListenAddr:         ":8080",
			SubscriptionID:     "base-sub",
			NumPipelineWorkers: 2,
			AWS: config.AWSConfig{
				AccessKey: "base-access",
				SecretKey: "base-secret",
			},
		}
	}

	t.Run("Success - All overrides applied", func(t *testing.T) {
		clearAWSEnv(t)
		cfg := baseConfig()

		t.Setenv("PROJECT_ID", "env-project")
		t.Setenv("PORT", "9090")
		t.Setenv("SUBSCRIPTION_ID", "env-sub")
		t.Setenv("AWS_ACCESS_KEY_ID", "env-access")
		t.Setenv("AWS_SECRET_ACCESS_KEY", "env-secret")
		t.Setenv("AWS_REGION", "eu-west-1")
		t.Setenv("AWS_SNS_ENDPOINT", "http://localhost:4566")
		t.Setenv("AWS_MAX_ATTEMPTS", "5")

		finalCfg, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		require.NoError(t, err)

		assert.Equal(t, "env-project", finalCfg.ProjectID)
		assert.Equal(t, ":9090", finalCfg.ListenAddr)
		assert.Equal(t, "env-sub", finalCfg.SubscriptionID)
		assert.Equal(t, "env-sub", finalCfg.PubsubConsumerConfig.SubscriptionID)

		assert.Equal(t, "env-access", finalCfg.AWS.AccessKey)
		assert.Equal(t, "env-secret", finalCfg.AWS.SecretKey)
		assert.Equal(t, "eu-west-1", finalCfg.AWS.Region)
		assert.Equal(t, "http://localhost:4566", finalCfg.AWS.Endpoint)
		assert.Equal(t, 5, finalCfg.AWS.MaxAttempts)
	})

	t.Run("Success - Defaults applied", func(t *testing.T) {
		clearAWSEnv(t)
		cfg := baseConfig()
		finalCfg, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		require.NoError(t, err)

		assert.Equal(t, "base-project", finalCfg.ProjectID)
		assert.Equal(t, "base-access", finalCfg.AWS.AccessKey)
		assert.Equal(t, "us-east-1", finalCfg.AWS.Region)
		assert.Equal(t, time.Hour, finalCfg.Redis.TTL)
		assert.Equal(t, "http://localhost:3000", finalCfg.IdentityServiceURL)
	})

	t.Run("Validation Failure - Missing ProjectID", func(t *testing.T) {
		clearAWSEnv(t)
		cfg := &config.Config{SubscriptionID: "sub", AWS: config.AWSConfig{AccessKey: "a", SecretKey: "s"}}
		_, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		assert.Error(t, err)
	})

	t.Run("Validation Failure - Missing AWS keys", func(t *testing.T) {
		clearAWSEnv(t)
		cfg := baseConfig()
		cfg.AWS.SecretKey = ""
		_, err := config.UpdateConfigWithEnvOverrides(cfg, logger)
		require.Error(t, err)
		assert.True(t, errors.Is(err, push.ErrMisconfigured))
	})
}
