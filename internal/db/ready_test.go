package db

import (
	"context"
	"errors"
	"testing"
	"time"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestWaitForReady_SucceedsAfterRetries(t *testing.T) {
	calls := 0
	p := pingFunc(func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("loading")
		}
		return nil
	})

	if err := WaitForReady(context.Background(), p, 2*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 pings, got %d", calls)
	}
}

func TestWaitForReady_TimeoutKeepsLastError(t *testing.T) {
	errDown := errors.New("connection refused")
	p := pingFunc(func(context.Context) error { return errDown })

	err := WaitForReady(context.Background(), p, 250*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
	if !errors.Is(err, errDown) {
		t.Errorf("expected last ping error in chain, got %v", err)
	}
}

func TestScanAll_DedupesAcrossPages(t *testing.T) {
	pages := map[uint64]ScanPage{
		0: {Cursor: 7, Keys: []string{"a", "b"}},
		7: {Cursor: 0, Keys: []string{"b", "c"}},
	}
	keys, err := ScanAll(context.Background(), func(_ context.Context, cursor uint64) (ScanPage, error) {
		return pages[cursor], nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"a", "b", "c"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestScanAll_WrapsError(t *testing.T) {
	_, err := ScanAll(context.Background(), func(context.Context, uint64) (ScanPage, error) {
		return ScanPage{}, errors.New("boom")
	})
	var dbErr *Error
	if !errors.As(err, &dbErr) || dbErr.Op != OpScan {
		t.Errorf("expected *db.Error with Op SCAN, got %v", err)
	}
}
