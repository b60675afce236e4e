// --- File: pushservice/config/yaml_config.go ---
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/illmade-knight/go-dataflow/pkg/messagepipeline"
	"github.com/tinywideclouds/go-microservice-base/pkg/middleware"
	"github.com/tinywideclouds/go-sns-push-service/pkg/push"
	"gopkg.in/yaml.v3"
)

type YamlCorsConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	Role           string   `yaml:"role"`
}

type YamlRedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Enabled  bool   `yaml:"enabled"`
	TTL      string `yaml:"ttl"`
}

type YamlAWSConfig struct {
	AccessKey   string `yaml:"access_key"`
	SecretKey   string `yaml:"secret_key"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	MaxAttempts int    `yaml:"max_attempts"`
}

type YamlVariant struct {
	ARN        string `yaml:"arn"`
	Production bool   `yaml:"production"`
	BundleID   string `yaml:"bundle_id"`
}

// YamlVariantList accepts either a single variant mapping or a sequence of them:
//
//	gcm: {arn: ...}
//	ios: [{arn: ..., bundle_id: ...}, ...]
type YamlVariantList []YamlVariant

func (l *YamlVariantList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		var v YamlVariant
		if err := node.Decode(&v); err != nil {
			return err
		}
		*l = YamlVariantList{v}
		return nil
	case yaml.SequenceNode:
		var vs []YamlVariant
		if err := node.Decode(&vs); err != nil {
			return err
		}
		*l = vs
		return nil
	default:
		return fmt.Errorf("line %d: push type must be a mapping or a sequence", node.Line)
	}
}

// YamlConfig is the structure that mirrors the raw config.yaml file.
type YamlConfig struct {
	ProjectID              string                     `yaml:"project_id"`
	ListenAddr             string                     `yaml:"listen_addr"`
	IdentityServiceURL     string                     `yaml:"identity_service_url"`
	TopicID                string                     `yaml:"topic_id"`
	SubscriptionID         string                     `yaml:"subscription_id"`
	SubscriptionDLQTopicID string                     `yaml:"subscription_dlq_topic_id"`
	CorsConfig             YamlCorsConfig             `yaml:"cors"`
	RedisConfig            YamlRedisConfig            `yaml:"redis"`
	AWSConfig              YamlAWSConfig              `yaml:"aws"`
	PushTypes              map[string]YamlVariantList `yaml:"push_types"`
	NumPipelineWorkers     int                        `yaml:"num_pipeline_workers"`
}

// NewConfigFromYaml converts the YamlConfig into a clean, base Config struct.
// Platform keys are not validated here; the coordinator rejects unknown ones.
func NewConfigFromYaml(baseCfg *YamlConfig, logger *slog.Logger) (*Config, error) {
	logger.Debug("Mapping YAML config to base config struct")

	var ttl time.Duration
	if baseCfg.RedisConfig.TTL != "" {
		parsed, err := time.ParseDuration(baseCfg.RedisConfig.TTL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis ttl %q: %w", baseCfg.RedisConfig.TTL, err)
		}
		ttl = parsed
	}

	cfg := &Config{
		ProjectID:          baseCfg.ProjectID,
		ListenAddr:         baseCfg.ListenAddr,
		IdentityServiceURL: baseCfg.IdentityServiceURL,
		TopicID:            baseCfg.TopicID,
		SubscriptionID:     baseCfg.SubscriptionID,
		CorsConfig: middleware.CorsConfig{
			AllowedOrigins: baseCfg.CorsConfig.AllowedOrigins,
			Role:           middleware.CorsRole(baseCfg.CorsConfig.Role),
		},
		Redis: RedisConfig{
			Addr:     baseCfg.RedisConfig.Addr,
			Password: baseCfg.RedisConfig.Password,
			DB:       baseCfg.RedisConfig.DB,
			Enabled:  baseCfg.RedisConfig.Enabled,
			TTL:      ttl,
		},
		AWS: AWSConfig{
			AccessKey:   baseCfg.AWSConfig.AccessKey,
			SecretKey:   baseCfg.AWSConfig.SecretKey,
			Region:      baseCfg.AWSConfig.Region,
			Endpoint:    baseCfg.AWSConfig.Endpoint,
			MaxAttempts: baseCfg.AWSConfig.MaxAttempts,
		},
		PushTypes:              make(push.PushTypes, len(baseCfg.PushTypes)),
		SubscriptionDLQTopicID: baseCfg.SubscriptionDLQTopicID,
		NumPipelineWorkers:     baseCfg.NumPipelineWorkers,
	}

	for key, list := range baseCfg.PushTypes {
		variants := make([]push.Variant, 0, len(list))
		for _, v := range list {
			variants = append(variants, push.Variant{ARN: v.ARN, Production: v.Production, BundleID: v.BundleID})
		}
		cfg.PushTypes[key] = variants
	}

	if cfg.SubscriptionID != "" {
		cfg.PubsubConsumerConfig = messagepipeline.NewGooglePubsubConsumerDefaults(cfg.SubscriptionID)
	}

	logger.Debug("YAML config mapping complete",
		"project_id", cfg.ProjectID,
		"listen_addr", cfg.ListenAddr,
		"subscription_id", cfg.SubscriptionID,
		"push_types", len(cfg.PushTypes),
	)

	return cfg, nil
}
