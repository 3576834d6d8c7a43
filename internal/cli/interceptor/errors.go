package interceptor

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrAuthExpired is matched by every error raised for a 401/403 response
var ErrAuthExpired = errors.New("authentication failed, please log in again")

// AuthExpiredError is returned after the guard has cleared the session
type AuthExpiredError struct {
	Status int
	URL    string
}

func (e *AuthExpiredError) Error() string {
	return fmt.Sprintf("%s (status %d from %s)", ErrAuthExpired.Error(), e.Status, e.URL)
}

func (e *AuthExpiredError) Unwrap() error {
	return ErrAuthExpired
}

// StatusError is any other unsuccessful response. The guard logs these and
// leaves handling to the caller.
type StatusError struct {
	Status int
	URL    string
	Body   string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("request to %s failed (status %d)", e.URL, e.Status)
	}
	return fmt.Sprintf("request to %s failed (status %d): %s", e.URL, e.Status, body)
}

// CheckResponse returns nil for 2xx/3xx and a *StatusError otherwise.
// The body is consumed on error.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return &StatusError{
		Status: resp.StatusCode,
		URL:    resp.Request.URL.String(),
		Body:   string(body),
	}
}

// IsAuthStatus reports whether status means the credentials are no longer accepted
func IsAuthStatus(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
