package tululu

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrRedirect is returned when the site answered with a redirect. The site redirects
// unknown books and withheld texts to the homepage instead of answering 404.
var ErrRedirect = errors.New("redirected, resource not found")

// ConnectionError means the HTTP exchange could not complete. It is the only retryable error.
type ConnectionError struct {
	Url string
	Err error
}

func (e *ConnectionError) Error() string {
	return "connection to " + e.Url + " failed: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

type StatusError struct {
	Url  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded with %d %s", e.Url, e.Code, http.StatusText(e.Code))
}

// ExtractionError means an expected element of a page is absent or malformed.
type ExtractionError struct {
	What   string
	Reason string
}

func (e *ExtractionError) Error() string {
	return "extracting " + e.What + ": " + e.Reason
}

func IsRetryable(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}
