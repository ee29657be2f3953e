package httputil

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/matzehuels/heatposter/pkg/errors"
)

var errTransient = stderrors.New("transient")

func TestRetry(t *testing.T) {
	ctx := context.Background()
	permanent := stderrors.New("permanent")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   bool
	}{
		{"success first try", 0, nil, 1, false},
		{"retryable then success", 2, Retryable(errTransient), 3, false},
		{"permanent stops", 5, permanent, 1, true},
		{"exhausted", 5, Retryable(errTransient), 3, true},
		{"rate limited retried", 1, &errors.RateLimitedError{}, 2, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(ctx, 3, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error { return Retryable(errTransient) })
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestRetryableNil(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(errTransient)
	if !stderrors.Is(err, errTransient) {
		t.Error("Retryable should unwrap to the original error")
	}
}

func TestRetryDelayHonorsRetryAfter(t *testing.T) {
	wait, ok := retryDelay(&errors.RateLimitedError{RetryAfter: 7}, time.Second)
	if !ok || wait != 7*time.Second {
		t.Errorf("retryDelay = %v, %v; want 7s, true", wait, ok)
	}
	if _, ok := retryDelay(stderrors.New("x"), time.Second); ok {
		t.Error("plain errors should not be retried")
	}
}

func TestLimiter(t *testing.T) {
	ctx := context.Background()

	var nilLim *Limiter
	if err := nilLim.Wait(ctx); err != nil {
		t.Errorf("nil limiter Wait: %v", err)
	}

	unlimited := NewLimiter(0, 0)
	for range 100 {
		if err := unlimited.Wait(ctx); err != nil {
			t.Fatalf("unlimited Wait: %v", err)
		}
	}

	lim := NewLimiter(1, 1)
	if err := lim.Wait(ctx); err != nil {
		t.Fatalf("first Wait: %v", err)
	}
	short, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	if err := lim.Wait(short); err == nil {
		t.Error("second Wait within the same second should fail on a short deadline")
	}
}

func TestLimiterAllow(t *testing.T) {
	var nilLim *Limiter
	if !nilLim.Allow() {
		t.Error("nil limiter should allow")
	}

	lim := NewLimiter(1, 2)
	if !lim.Allow() || !lim.Allow() {
		t.Error("burst of 2 should allow two requests")
	}
	if lim.Allow() {
		t.Error("third request within the same second should be refused")
	}
}
