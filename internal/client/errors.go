package client

import (
	"errors"
	"net/http"
	"strings"
)

// HTTPError is returned for any backend response outside 200..299.
type HTTPError struct {
	StatusCode int
	Status     string // status text without the code, e.g. "Not Found"
	Method     string
	Endpoint   string
}

func (e *HTTPError) Error() string {
	return "API Error: " + e.Status
}

func newHTTPError(resp *http.Response, method, endpoint string) *HTTPError {
	return &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     statusText(resp),
		Method:     method,
		Endpoint:   endpoint,
	}
}

// statusText prefers the reason phrase the server sent.
func statusText(resp *http.Response) string {
	if _, text, ok := strings.Cut(resp.Status, " "); ok && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// StatusCode reports the backend status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}
	return 0, false
}
