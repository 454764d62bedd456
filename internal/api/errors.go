package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// genericErrorMessage is shown when the server provides no usable error body.
const genericErrorMessage = "something went wrong, please try again"

// Error is a non-2xx response from the backend, carrying whatever detail
// the server reported.
type Error struct {
	Detail     string
	StatusCode int
}

func (e *Error) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Detail)
}

// decodeError turns an error response into an *Error, surfacing the
// server-provided message when one exists and a generic fallback otherwise.
func decodeError(resp *http.Response) error {
	defer func() { _ = resp.Body.Close() }()

	detail := genericErrorMessage
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err == nil && len(body) > 0 {
		if msg := extractErrorDetail(body); msg != "" {
			detail = msg
		}
	}

	return &Error{StatusCode: resp.StatusCode, Detail: detail}
}

// extractErrorDetail pulls a human-readable message out of a structured
// error body. The backend uses "detail" for auth errors and "error" or
// "message" elsewhere.
func extractErrorDetail(body []byte) string {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}

	for _, key := range []string{"detail", "error", "message"} {
		if v, ok := parsed[key].(string); ok && v != "" {
			return v
		}
	}

	// Field-validation errors arrive as {"field": ["msg", ...]}.
	for field, v := range parsed {
		if list, ok := v.([]any); ok && len(list) > 0 {
			if msg, ok := list[0].(string); ok && msg != "" {
				return fmt.Sprintf("%s: %s", field, msg)
			}
		}
	}

	return ""
}
