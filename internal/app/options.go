package service

import (
	"time"

	"github.com/okian/delega/internal/advisory"
	"github.com/okian/delega/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize sets the completion queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithShardCount sets the number of fold shards.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithShardBuffer sets the per-shard channel buffer.
func WithShardBuffer(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.shardBuffer = size
		}
	}
}

// WithDedupeSize sets the size of the idempotency cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithAdvisory sets the advisory client used for planning and extraction.
func WithAdvisory(adv advisory.Advisory) Option {
	return func(s *Service) {
		if adv != nil {
			s.adv = adv
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock overrides the service clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
