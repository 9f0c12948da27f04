package restapi

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 5, time.Millisecond, func(context.Context) error {
		calls++
		if calls < 3 {
			return statusError("GET", "/x", 503, nil)
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("err = %v, calls = %d", err, calls)
	}
}

func TestRetrySkipsPermanentErrors(t *testing.T) {
	for _, code := range []int{401, 403, 404, 422} {
		calls := 0
		err := Retry(context.Background(), 5, time.Millisecond, func(context.Context) error {
			calls++
			return statusError("GET", "/x", code, nil)
		})
		if err == nil || calls != 1 {
			t.Errorf("%d: err = %v, calls = %d", code, err, calls)
		}
	}
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func(context.Context) error {
		calls++
		return statusError("GET", "/x", 500, nil)
	})
	var apiErr *Error
	if !errors.As(err, &apiErr) || calls != 3 {
		t.Fatalf("err = %v, calls = %d", err, calls)
	}
}

func TestRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Hour, func(context.Context) error {
		return statusError("GET", "/x", 500, nil)
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestChunk(t *testing.T) {
	got := Chunk([]int{1, 2, 3, 4, 5}, 2)
	if len(got) != 3 || len(got[2]) != 1 || got[2][0] != 5 {
		t.Fatalf("Chunk = %v", got)
	}
	if Chunk([]int{}, 3) != nil {
		t.Fatal("empty input produced batches")
	}
	if got := Chunk([]int{1, 2}, 0); len(got) != 1 {
		t.Fatalf("Chunk size 0 = %v", got)
	}
}
