package requester

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"
)

const maxTextMessage = 200

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError builds an APIError from a response, deriving the message from the body
func NewAPIError(resp *Response) *APIError {
	return &APIError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Message:    ErrorMessage(resp.StatusCode, reasonPhrase(resp.StatusCode, resp.Status), resp.Body),
		Body:       resp.Body,
	}
}

// IsStatus reports whether err is an APIError with the given status code
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

// IsNotFound reports whether err is a 404 APIError
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

type validationIssue struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// ErrorMessage returns a human readable message for a failed response. It is
// never empty.
func ErrorMessage(status int, statusText string, body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil {
		if msg := detailMessage(fields["detail"]); msg != "" {
			return msg
		}
		if msg := stringField(fields["error"]); msg != "" {
			return msg
		}
		if msg := detailsMessage(fields["details"]); msg != "" {
			return msg
		}
		if msg := stringField(fields["message"]); msg != "" {
			return msg
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && !json.Valid(body) {
		return truncate(text, maxTextMessage)
	}

	if statusText == "" {
		statusText = http.StatusText(status)
	}
	if statusText != "" {
		return statusText
	}
	return "HTTP " + strconv.Itoa(status)
}

func detailMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var issues []validationIssue
	if err := json.Unmarshal(raw, &issues); err == nil {
		parts := make([]string, 0, len(issues))
		for _, issue := range issues {
			loc := make([]string, 0, len(issue.Loc))
			for _, l := range issue.Loc {
				loc = append(loc, fmt.Sprint(l))
			}
			parts = append(parts, strings.Join(loc, ".")+": "+issue.Msg)
		}
		return strings.Join(parts, ", ")
	}
	return stringField(raw)
}

func detailsMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if item = strings.TrimSpace(item); item != "" {
				parts = append(parts, item)
			}
		}
		return strings.Join(parts, ", ")
	}
	return stringField(raw)
}

func stringField(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}

// reasonPhrase strips the status code from an HTTP status line
func reasonPhrase(code int, status string) string {
	return strings.TrimSpace(strings.TrimPrefix(status, strconv.Itoa(code)))
}
