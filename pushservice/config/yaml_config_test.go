// --- File: pushservice/config/yaml_config_test.go ---
package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"github.com/tinywideclouds/go-sns-push-service/pushservice/config"
	"github.com/tinywideclouds/go-sns-push-service/pkg/push"
	"gopkg.in/yaml.v3"
)

func TestNewConfigFromYaml(t *testing.T) {
	logger := newTestLogger()

	t.Run("Success - maps all fields correctly", func(t *testing.T) {
		yamlCfg := &config.YamlConfig{
			ProjectID:              "yaml-project",
			ListenAddr:             ":9000",
			TopicID:                "yaml-topic",
			SubscriptionID:         "yaml-subscription",
			SubscriptionDLQTopicID: "yaml-dlq",
			NumPipelineWorkers:     5,
			CorsConfig: config.YamlCorsConfig{
				AllowedOrigins: []string{"http://yaml.com"},
				Role:           "editor",
			},
			RedisConfig: config.YamlRedisConfig{Enabled: true, Addr: "localhost:6379", TTL: "30m"},
			AWSConfig: config.YamlAWSConfig{
				Region:      "eu-west-1",
				MaxAttempts: 3,
			},
			PushTypes: map[string]config.YamlVariantList{
				"gcm": {{ARN: "arn:gcm"}},
			},
		}

		cfg, err := config.NewConfigFromYaml(yamlCfg, logger)

		require.NoError(t, err)
		require.NotNil(t, cfg)

		// 1. Direct Field Mapping
		assert.Equal(t, "yaml-project", cfg.ProjectID)
		assert.Equal(t, ":9000", cfg.ListenAddr)
		assert.Equal(t, "yaml-topic", cfg.TopicID)
		assert.Equal(t, "yaml-subscription", cfg.SubscriptionID)
		assert.Equal(t, "yaml-dlq", cfg.SubscriptionDLQTopicID)
		assert.Equal(t, 5, cfg.NumPipelineWorkers)

		// 2. CORS
		assert.Equal(t, []string{"http://yaml.com"}, cfg.CorsConfig.AllowedOrigins)
		assert.Equal(t, middleware.CorsRoleEditor, cfg.CorsConfig.Role)

		// 3. Redis, AWS and platforms
		assert.Equal(t, 30*time.Minute, cfg.Redis.TTL)
		assert.Equal(t, "eu-west-1", cfg.AWS.Region)
		assert.Equal(t, 3, cfg.AWS.MaxAttempts)
		assert.Equal(t, push.PushTypes{"gcm": {{ARN: "arn:gcm"}}}, cfg.PushTypes)

		assert.NotNil(t, cfg.PubsubConsumerConfig)
	})

	t.Run("Failure - Invalid redis ttl", func(t *testing.T) {
		_, err := config.NewConfigFromYaml(&config.YamlConfig{RedisConfig: config.YamlRedisConfig{TTL: "soon"}}, logger)
		assert.Error(t, err)
	})

	t.Run("Success - Handles missing optional fields gracefully", func(t *testing.T) {
		yamlCfg := &config.YamlConfig{
			ProjectID:      "minimal-project",
			SubscriptionID: "minimal-sub",
		}

		cfg, err := config.NewConfigFromYaml(yamlCfg, logger)

		require.NoError(t, err)
		assert.Equal(t, "minimal-project", cfg.ProjectID)
		assert.Equal(t, 0, cfg.NumPipelineWorkers)
		assert.Empty(t, cfg.ListenAddr)
		assert.Empty(t, cfg.PushTypes)
	})
}

func TestYamlVariantList(t *testing.T) {
	raw := `
push_types:
  gcm:
    arn: arn:aws:sns:us-east-1:1:app/GCM/android
  ios:
    - arn: arn:aws:sns:us-east-1:1:app/APNS/prod
      production: true
      bundle_id: com.example.app
    - arn: arn:aws:sns:us-east-1:1:app/APNS_SANDBOX/dev
      bundle_id: com.example.app.dev
`
	var yamlCfg config.YamlConfig
	require.NoError(t, yaml.Unmarshal([]byte(raw), &yamlCfg))

	require.Len(t, yamlCfg.PushTypes["gcm"], 1)
	assert.Equal(t, "arn:aws:sns:us-east-1:1:app/GCM/android", yamlCfg.PushTypes["gcm"][0].ARN)

	require.Len(t, yamlCfg.PushTypes["ios"], 2)
	assert.True(t, yamlCfg.PushTypes["ios"][0].Production)
	assert.Equal(t, "com.example.app.dev", yamlCfg.PushTypes["ios"][1].BundleID)

	t.Run("Failure - Scalar is rejected", func(t *testing.T) {
		var bad config.YamlConfig
		err := yaml.Unmarshal([]byte("push_types:\n  gcm: arn:only\n"), &bad)
		assert.Error(t, err)
	})
}
