package config

import (
	"fmt"

	"github.com/yurixander/minimal/pkg/domain"
	"github.com/yurixander/minimal/pkg/schema"
)

// Schema describes the type of every key in Defaults.
func Schema() schema.Schema {
	logLevel := schema.Custom("log level", func(v any) error {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		_, err := domain.ParseLogLevel(s)
		return err
	})

	return schema.Schema{
		"log_level":               logLevel,
		"history_file":            schema.String(),
		"storage.backend":         schema.OneOf("file", "memory", "sqlite", "redis"),
		"storage.path":            schema.String(),
		"storage.redis.addr":      schema.String(),
		"storage.redis.password":  schema.String(),
		"storage.redis.db":        schema.IntAtLeast(0),
		"storage.redis.prefix":    schema.String(),
		"storage.encryption_key":  schema.String(),
		"engine.max_iterations":   schema.IntAtLeast(1),
		"engine.command_timeout":  schema.Duration(),
		"engine.listener_timeout": schema.Duration(),
		"engine.init_timeout":     schema.Duration(),
		"gpt.model":               schema.String(),
		"gpt.max_tokens":          schema.IntAtLeast(1),
		"gpt.max_history":         schema.IntAtLeast(0),
		"gpt.system_prompt":       schema.String(),
		"splash.fetch_headlines":  schema.Bool(),
		"splash.headline_count":   schema.IntAtLeast(0),
		"splash.timeout":          schema.Duration(),
		"metrics.addr":            schema.String(),
	}
}
