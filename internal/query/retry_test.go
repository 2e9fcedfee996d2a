package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"nac_patrimony_crawler/internal/logging"
)

func TestWithRetrySecondAttemptSucceeds(t *testing.T) {
	calls := 0
	page, err := WithRetry(context.Background(), logging.Discard(), "t", 1, time.Second, func(ctx context.Context) (*Page, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("boom")
		}
		return &Page{URL: "ok"}, nil
	})
	if err != nil {
		t.Fatalf("WithRetry: %v", err)
	}
	if page.URL != "ok" || calls != 2 {
		t.Errorf("page=%v calls=%d", page, calls)
	}
}

func TestWithRetryGivesUpAfterBound(t *testing.T) {
	calls := 0
	_, err := WithRetry(context.Background(), logging.Discard(), "t", 1, time.Second, func(ctx context.Context) (*Page, error) {
		calls++
		return nil, ErrUnexpectedPage
	})
	if !errors.Is(err, ErrUnexpectedPage) {
		t.Fatalf("expected ErrUnexpectedPage, got %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestWithRetryTimeout(t *testing.T) {
	_, err := WithRetry(context.Background(), logging.Discard(), "t", 0, 20*time.Millisecond, func(ctx context.Context) (*Page, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := WithRetry(ctx, logging.Discard(), "t", 1, time.Second, func(ctx context.Context) (*Page, error) {
		calls++
		cancel()
		return nil, errors.New("interrupted")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
