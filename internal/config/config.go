package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the function configuration. It is read once at cold start.
type Config struct {
	BedrockRegion  string        `mapstructure:"bedrock_region"`
	ModelID        string        `mapstructure:"model_id"`
	MaxGenLen      int           `mapstructure:"max_gen_len"`
	Temperature    float64       `mapstructure:"temperature"`
	TopP           float64       `mapstructure:"top_p"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	MaxAttempts    int           `mapstructure:"max_attempts"`
	Bucket         string        `mapstructure:"blog_bucket"`
	KeyPrefix      string        `mapstructure:"blog_key_prefix"`
	MaxTopicLength int           `mapstructure:"max_topic_length"`
	ParamPrefix    string        `mapstructure:"param_prefix"`
	IndexTable     string        `mapstructure:"index_table"`
	LogLevel       string        `mapstructure:"log_level"`
}

var defaults = map[string]any{
	"bedrock_region":   "us-east-1",
	"model_id":         "meta.llama2-13b-chat-v1",
	"max_gen_len":      512,
	"temperature":      0.7,
	"top_p":            0.9,
	"read_timeout":     300 * time.Second,
	"max_attempts":     3,
	"blog_bucket":      "aws-bedrock-usecase-blog-generation",
	"blog_key_prefix":  "blog_output",
	"max_topic_length": 200,
	"param_prefix":     "",
	"index_table":      "",
	"log_level":        "info",
}

// Load reads the configuration from the environment. Every key is looked up
// under its upper-cased name, e.g. model_id -> MODEL_ID.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() {
	c.BedrockRegion = strings.TrimSpace(c.BedrockRegion)
	c.ModelID = strings.TrimSpace(c.ModelID)
	c.Bucket = strings.TrimSpace(c.Bucket)
	c.KeyPrefix = strings.Trim(strings.TrimSpace(c.KeyPrefix), "/")
	c.ParamPrefix = strings.TrimRight(strings.TrimSpace(c.ParamPrefix), "/")
	c.IndexTable = strings.TrimSpace(c.IndexTable)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

func (c *Config) validate() error {
	switch {
	case c.BedrockRegion == "":
		return errors.New("config: BEDROCK_REGION must not be empty")
	case c.ModelID == "":
		return errors.New("config: MODEL_ID must not be empty")
	case c.Bucket == "":
		return errors.New("config: BLOG_BUCKET must not be empty")
	case c.KeyPrefix == "":
		return errors.New("config: BLOG_KEY_PREFIX must not be empty")
	case c.MaxGenLen <= 0:
		return fmt.Errorf("config: MAX_GEN_LEN must be positive, got %d", c.MaxGenLen)
	case c.Temperature < 0 || c.Temperature > 1:
		return fmt.Errorf("config: TEMPERATURE must be within [0, 1], got %g", c.Temperature)
	case c.TopP < 0 || c.TopP > 1:
		return fmt.Errorf("config: TOP_P must be within [0, 1], got %g", c.TopP)
	case c.ReadTimeout <= 0:
		return fmt.Errorf("config: READ_TIMEOUT must be positive, got %s", c.ReadTimeout)
	case c.MaxAttempts <= 0:
		return fmt.Errorf("config: MAX_ATTEMPTS must be positive, got %d", c.MaxAttempts)
	case c.MaxTopicLength <= 0:
		return fmt.Errorf("config: MAX_TOPIC_LENGTH must be positive, got %d", c.MaxTopicLength)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto a slog level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: LOG_LEVEL: %w", err)
	}
	return lvl, nil
}
