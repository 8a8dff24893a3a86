package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"google.golang.org/genai"
)

var (
	// ErrRateLimited means the provider asked us to back off. Callers stop the current batch.
	ErrRateLimited = errors.New("llm rate limit exceeded")
	// ErrConnectivity means the provider could not be reached.
	ErrConnectivity = errors.New("llm provider unreachable")
	// ErrService covers every other provider failure, including empty responses.
	ErrService = errors.New("llm service error")
	// ErrNotConfigured means no API key is available.
	ErrNotConfigured = errors.New("llm client not configured")
)

// classify wraps err with exactly one of the sentinel errors above.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrRateLimited, ErrConnectivity, ErrService, ErrNotConfigured} {
		if errors.Is(err, known) {
			return err
		}
	}

	if code, status, ok := apiErrorCode(err); ok {
		if code == http.StatusTooManyRequests || status == "RESOURCE_EXHAUSTED" {
			return fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
		return fmt.Errorf("%w: %w", ErrService, err)
	}

	var netErr net.Error
	var urlErr *url.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) || errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %w", ErrConnectivity, err)
	}

	return fmt.Errorf("%w: %w", ErrService, err)
}

func apiErrorCode(err error) (int, string, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Status, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Status, true
	}
	return 0, "", false
}

// IsRateLimited reports whether err is a rate-limit failure.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
