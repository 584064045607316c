// Package testutil holds helpers for tests that wait on asynchronous work,
// such as the ticker-driven decision loop or the serial writer.
package testutil

import (
	"context"
	"fmt"
	"time"
)

// DefaultTimeout and DefaultInterval are what most tests should poll with.
const (
	DefaultTimeout  = 5 * time.Second
	DefaultInterval = 5 * time.Millisecond
)

// Poll checks condition until it holds, timeout passes or ctx ends.
func Poll(ctx context.Context, condition func() bool, timeout, interval time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if condition() {
			return nil
		}
		if !time.Now().Before(deadline) {
			return fmt.Errorf("timeout waiting for condition (threshold: %v)", timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// WaitForState polls getter until predicate accepts its value, returning
// that value.
//
//	n, err := WaitForState(ctx, act.Count,
//		func(n int) bool { return n >= 10 },
//		testutil.DefaultTimeout, testutil.DefaultInterval)
func WaitForState[T any](ctx context.Context, getter func() T, predicate func(T) bool, timeout, interval time.Duration) (T, error) {
	var last T
	err := Poll(ctx, func() bool {
		last = getter()
		return predicate(last)
	}, timeout, interval)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("waiting for %T: %w", zero, err)
	}
	return last, nil
}

// WithTimeoutContext is context.WithTimeout, kept so test call sites read
// the same as the polling helpers.
func WithTimeoutContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}
