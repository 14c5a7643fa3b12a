package apperrors

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// FromGoogleAPI classifies an error returned by a Google API client.
// service labels the public message ("Gemini", "Translation API"); the raw
// error is kept only as the cause.
func FromGoogleAPI(service string, err error) error {
	if err == nil {
		return nil
	}
	wrapped := fmt.Errorf("%s call failed: %w", service, err)

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch code := gerr.Code; {
		case code == 400:
			return New(KindBadRequest, fmt.Sprintf("%s request rejected (400).", service), wrapped)
		case code == 404:
			return New(KindBadRequest, fmt.Sprintf("%s resource not found or no access (404).", service), wrapped)
		case code == 401 || code == 403:
			return New(KindAuth, fmt.Sprintf("%s authentication/authorization failed (%d).", service, code), wrapped)
		case code == 429:
			return New(KindRateLimit, fmt.Sprintf("%s rate limit exceeded (429).", service), wrapped)
		case code >= 500:
			return New(KindTransient, fmt.Sprintf("%s temporary error (%d).", service, code), wrapped)
		default:
			return New(KindBadRequest, fmt.Sprintf("%s error (%d).", service, code), wrapped)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return New(KindTransient, fmt.Sprintf("%s request timed out.", service), wrapped)
	}
	// DNS, socket and other runtime failures.
	return New(KindTransient, fmt.Sprintf("%s request failed due to a temporary network/runtime error.", service), wrapped)
}
