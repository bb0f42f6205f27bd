package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSessionExpired is returned after the interceptor has given up on a
	// request: refresh failed (or was disabled) and the local session was
	// cleared. The original caller still sees its request fail.
	ErrSessionExpired = errors.New("session expired")

	// ErrBadProfile means an auth response did not contain a usable user
	// profile. The client never fabricates one.
	ErrBadProfile = errors.New("response did not include a valid profile")
)

// StatusError is any non-2xx backend response the interceptor did not
// consume. Message carries the backend's {"message": ...} body when present.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

func statusError(code int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &payload)
	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}
	return &StatusError{StatusCode: code, Message: msg}
}

// IsUnauthorized reports whether err is a propagated 401, e.g. bad
// credentials surfaced inline on the login view.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized
}
