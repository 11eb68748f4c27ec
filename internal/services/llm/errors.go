package llm

import (
	"context"
	"errors"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

var (
	// ErrNoProvider is returned by Generate when no provider is configured
	ErrNoProvider = errors.New("no text provider configured")
	// ErrEmptyResponse is returned when the provider answered with no text
	ErrEmptyResponse = errors.New("empty response from text provider")
)

// ErrorClass labels an outbound failure for logs. Failures are never retried;
// the class only explains why the local result was used.
type ErrorClass string

const (
	ErrorClassNone        ErrorClass = ""
	ErrorClassTimeout     ErrorClass = "timeout"
	ErrorClassCanceled    ErrorClass = "canceled"
	ErrorClassRateLimited ErrorClass = "rate_limited"
	ErrorClassAuth        ErrorClass = "auth"
	ErrorClassTransport   ErrorClass = "transport"
	ErrorClassNoProvider  ErrorClass = "no_provider"
	ErrorClassEmpty       ErrorClass = "empty"
	ErrorClassOther       ErrorClass = "other"
)

// ClassifyError maps an outbound error onto an ErrorClass
func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassNone
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorClassTimeout
	case errors.Is(err, context.Canceled):
		return ErrorClassCanceled
	case errors.Is(err, ErrNoProvider):
		return ErrorClassNoProvider
	case errors.Is(err, ErrEmptyResponse):
		return ErrorClassEmpty
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 401 || apiErr.StatusCode == 403:
			return ErrorClassAuth
		case apiErr.StatusCode == 429:
			return ErrorClassRateLimited
		}
	}

	if IsRateLimitError(err) {
		return ErrorClassRateLimited
	}
	if isAuthError(err) {
		return ErrorClassAuth
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrorClassTimeout
		}
		return ErrorClassTransport
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ErrorClassTransport
	}

	return ErrorClassOther
}

// IsRateLimitError reports whether err looks like a provider quota error or a
// local limiter refusal. Matches 429 status codes and RESOURCE_EXHAUSTED.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "quota") ||
		strings.Contains(errStr, "rate: Wait")
}

func isAuthError(err error) bool {
	errStr := err.Error()
	return strings.Contains(errStr, "Error 401") ||
		strings.Contains(errStr, "Error 403") ||
		strings.Contains(errStr, "UNAUTHENTICATED") ||
		strings.Contains(errStr, "PERMISSION_DENIED") ||
		strings.Contains(errStr, "API key not valid") ||
		strings.Contains(errStr, "API key")
}

// retryDelayRegex matches "Please retry in Xs" or "retryDelay:Xs" patterns
var retryDelayRegex = regexp.MustCompile(`(?i)(?:Please retry in |retryDelay[:\s]+)(\d+(?:\.\d+)?)\s*s`)

// ExtractRetryDelay parses the provider-suggested retry delay from an error.
// Returns 0 if none is present. The value is logged, not acted on.
//
// Example error message:
// "Error 429, Message: ... Please retry in 45.387061394s., Status: RESOURCE_EXHAUSTED"
func ExtractRetryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}

	matches := retryDelayRegex.FindStringSubmatch(err.Error())
	if len(matches) < 2 {
		return 0
	}

	seconds, parseErr := strconv.ParseFloat(matches[1], 64)
	if parseErr != nil {
		return 0
	}

	return time.Duration(seconds * float64(time.Second))
}
