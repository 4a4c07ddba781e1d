package advisory

import (
	"context"
	"errors"
)

// ErrDisabled is returned by the disabled client.
var ErrDisabled = errors.New("advisory disabled: no API key configured")

// Disabled is an Advisory that always fails, forcing callers onto their
// local fallbacks. Used when no API key is configured.
type Disabled struct{}

func (Disabled) Complete(ctx context.Context, req Request) (string, error) {
	return "", ErrDisabled
}
