package extract

import "github.com/okian/delega/pkg/logger"

// Option applies a configuration option to the Extractor.
type Option func(*Extractor)

// WithLogger sets a custom logger for the extractor.
func WithLogger(log logger.Logger) Option {
	return func(x *Extractor) {
		if log != nil {
			x.log = log
		}
	}
}
