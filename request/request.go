package request

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/amonks/albumengine/refresh"
	"resty.dev/v3"
)

// maxBody is how much of an error response's body is kept in a StatusError.
const maxBody = 512

// ErrFetch matches any failure to get a usable response from upstream.
var ErrFetch = errors.New("fetch error")

// StatusError is an unexpected, non-2xx HTTP response.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http status code %d from '%s'", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("http status code %d from '%s': %s", e.StatusCode, e.URL, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrFetch
}

// Unwrap makes a 429 match refresh.ErrRateLimited.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return refresh.ErrRateLimited
	}
	return nil
}

// Error checks the given http response for an error code, and, if one is
// present, reads the start of the body and returns a *StatusError.
func Error(resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= 200 && code < 300 {
		return nil
	}

	err := &StatusError{StatusCode: code}
	if resp.Request != nil {
		err.URL = resp.Request.URL
	}
	if resp.RawResponse != nil && resp.RawResponse.Body != nil {
		bs, readErr := io.ReadAll(io.LimitReader(resp.RawResponse.Body, maxBody))
		if readErr == nil {
			err.Body = strings.TrimSpace(string(bs))
		}
	}
	return err
}
