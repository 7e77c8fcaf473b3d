package session

import "context"

type retriedKey struct{}

// WithRetried marks requests made with ctx as already retried after a refresh.
// The guard never starts a refresh for such a request.
func WithRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retriedKey{}, true)
}

// IsRetried reports whether ctx was marked by WithRetried.
func IsRetried(ctx context.Context) bool {
	retried, _ := ctx.Value(retriedKey{}).(bool)
	return retried
}
