package worker

import "github.com/okian/delega/pkg/logger"

// Option applies a configuration option to the Pool.
type Option func(*Pool)

// WithShardBuffer sets the per-shard channel buffer.
func WithShardBuffer(size int) Option {
	return func(p *Pool) {
		if size > 0 {
			p.buffer = size
		}
	}
}

// WithLogger sets a custom logger for the pool.
func WithLogger(log logger.Logger) Option {
	return func(p *Pool) {
		if log != nil {
			p.log = log
		}
	}
}
