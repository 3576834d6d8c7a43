package interceptor

import (
	"context"
	"sync/atomic"
)

type exemptKey struct{}

// WithExempt marks the call made with ctx as exempt from the 401/403 guard.
// The mark is one-shot: the first response or failure observed on ctx
// consumes it, so reusing ctx for a second call is guarded again.
func WithExempt(ctx context.Context) context.Context {
	flag := &atomic.Bool{}
	flag.Store(true)
	return context.WithValue(ctx, exemptKey{}, flag)
}

// IsExempt reports whether ctx still carries an unconsumed exempt mark
func IsExempt(ctx context.Context) bool {
	flag, ok := ctx.Value(exemptKey{}).(*atomic.Bool)
	return ok && flag.Load()
}

// consumeExempt resets the mark and reports whether it was set
func consumeExempt(ctx context.Context) bool {
	flag, ok := ctx.Value(exemptKey{}).(*atomic.Bool)
	if !ok {
		return false
	}
	return flag.Swap(false)
}
