// Package resilience provides failure-handling patterns for upstream
// completion calls.
//
// # Patterns
//
//   - Retry: retries failed operations with configurable backoff strategies
//     (exponential, linear, constant). MaxAttempts of zero retries until the
//     operation succeeds or the context is canceled, which mirrors how
//     unattended batch callers typically ride out provider hiccups.
//
//   - Rate Limiter: token-bucket limiting to stay inside provider quotas.
//
// # Usage
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts:  5,
//	    InitialDelay: 100 * time.Millisecond,
//	    MaxDelay:     30 * time.Second,
//	})
//
//	err := retry.Execute(ctx, func(ctx context.Context) error {
//	    return callProvider(ctx)
//	})
package resilience
