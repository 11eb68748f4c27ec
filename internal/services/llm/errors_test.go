package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{name: "nil", err: nil, want: ErrorClassNone},
		{name: "deadline", err: fmt.Errorf("gemini: %w", context.DeadlineExceeded), want: ErrorClassTimeout},
		{name: "canceled", err: context.Canceled, want: ErrorClassCanceled},
		{name: "no provider", err: ErrNoProvider, want: ErrorClassNoProvider},
		{name: "empty", err: fmt.Errorf("x: %w", ErrEmptyResponse), want: ErrorClassEmpty},
		{name: "quota", err: errors.New("Error 429, Status: RESOURCE_EXHAUSTED"), want: ErrorClassRateLimited},
		{name: "limiter", err: errors.New("rate: Wait(n=1) would exceed context deadline"), want: ErrorClassRateLimited},
		{name: "auth", err: errors.New("Error 403, Status: PERMISSION_DENIED"), want: ErrorClassAuth},
		{name: "transport", err: &net.OpError{Op: "dial", Err: errors.New("connection refused")}, want: ErrorClassTransport},
		{name: "other", err: errors.New("boom"), want: ErrorClassOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestExtractRetryDelay(t *testing.T) {
	err := errors.New("Error 429, Message: quota. Please retry in 45.5s., Status: RESOURCE_EXHAUSTED")
	assert.Equal(t, 45500*time.Millisecond, ExtractRetryDelay(err))
	assert.Equal(t, time.Duration(0), ExtractRetryDelay(errors.New("boom")))
	assert.Equal(t, time.Duration(0), ExtractRetryDelay(nil))
}
