// Package config defines service configuration and loading.
//
// Conventions:
// - Defaults come from New; Load layers file and env values on top.
// - External errors are wrapped via this package's sentinel errors.
package config

import (
	"runtime"

	"github.com/okian/delega/internal/advisory"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory completion queue.
	QueueSize int `koanf:"queue_size"`

	// ShardCount sets the number of completion fold shards.
	ShardCount int `koanf:"shard_count"`

	// ShardBuffer sets the per-shard channel buffer.
	ShardBuffer int `koanf:"shard_buffer"`

	// DedupeSize caps the completion event dedupe cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxRankingLimit caps GET /rankings?limit.
	MaxRankingLimit int `koanf:"max_ranking_limit"`

	// AdvisoryAPIKey authenticates against the completion endpoint. An
	// empty key leaves the service running on local fallback plans only.
	AdvisoryAPIKey string `koanf:"advisory_api_key"`

	// AdvisoryBaseURL points at an OpenAI-compatible endpoint.
	AdvisoryBaseURL string `koanf:"advisory_base_url"`

	// AdvisoryModel names the completion model.
	AdvisoryModel string `koanf:"advisory_model"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":8080",
		QueueSize:       10_000,
		ShardCount:      runtime.NumCPU(),
		ShardBuffer:     256,
		DedupeSize:      50_000,
		MaxRankingLimit: 100,
		AdvisoryBaseURL: advisory.DefaultBaseURL,
		AdvisoryModel:   advisory.DefaultModel,
	}
}
