// Package advisory talks to an OpenAI-compatible chat completion endpoint
// and turns its free-form answers into structured assignment plans. Every
// caller must be able to proceed when this package fails: the advisory is
// a hint, never a dependency.
package advisory

import "context"

// Request is a single chat completion exchange.
type Request struct {
	System      string
	User        string
	Temperature float32
}

// Advisory produces a raw completion for a request.
type Advisory interface {
	Complete(ctx context.Context, req Request) (string, error)
}
