package db

import (
	"context"
	"fmt"
	"time"
)

const readyPollInterval = 100 * time.Millisecond

// WaitForReady polls p until a ping succeeds or timeout expires.
// The last ping error is reported on timeout.
func WaitForReady(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("timeout waiting for database: %w (last ping: %w)", ctx.Err(), lastErr)
			}
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if lastErr = p.Ping(ctx); lastErr == nil {
				return nil
			}
		}
	}
}

// appendUnique appends the keys of batch not yet in seen. SCAN may return a key more than once.
func appendUnique(dst []string, seen map[string]struct{}, batch []string) []string {
	for _, k := range batch {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		dst = append(dst, k)
	}
	return dst
}

// ScanPage is one SCAN reply.
type ScanPage struct {
	Cursor uint64
	Keys   []string
}

// ScanAll drives a SCAN cursor to completion and returns each matching key once.
func ScanAll(ctx context.Context, next func(ctx context.Context, cursor uint64) (ScanPage, error)) ([]string, error) {
	var keys []string
	seen := make(map[string]struct{})

	var cursor uint64
	for {
		page, err := next(ctx, cursor)
		if err != nil {
			return nil, &Error{Op: OpScan, Err: err}
		}
		keys = appendUnique(keys, seen, page.Keys)
		if cursor = page.Cursor; cursor == 0 {
			return keys, nil
		}
	}
}
