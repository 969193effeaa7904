package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrUnauthorized matches any error produced by a 401 response.
var ErrUnauthorized = errors.New("not authenticated")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
	Body    []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	return &APIError{
		Status:  resp.StatusCode,
		Message: extractMessage(resp.Header.Get("Content-Type"), body),
		Body:    body,
	}
}

// Message returns the backend-provided message carried by err, or fallback
// when there is none (transport failures, empty bodies).
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func extractMessage(contentType string, body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	if strings.Contains(contentType, "html") || trimmed[0] == '<' {
		return htmlMessage(trimmed)
	}

	var payload any
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return ""
	}
	return jsonMessage(payload)
}

func jsonMessage(payload any) string {
	switch v := payload.(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			return jsonMessage(v[0])
		}
	case map[string]any:
		for _, key := range []string{"error", "detail", "message", "non_field_errors"} {
			if msg := jsonMessage(v[key]); msg != "" {
				return msg
			}
		}
		// DRF validation errors: {"field": ["message", ...], ...}
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if msg := jsonMessage(v[key]); msg != "" {
				return key + ": " + msg
			}
		}
	}
	return ""
}

// htmlMessage pulls a readable line out of an HTML error page, e.g. Django's
// "Forbidden (403)" CSRF page or a debug 500 page.
func htmlMessage(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	clean := func(s string) string {
		return strings.Join(strings.Fields(s), " ")
	}

	heading := clean(doc.Find("h1").First().Text())
	detail := clean(doc.Find("p").First().Text())
	title := clean(doc.Find("title").First().Text())

	switch {
	case heading != "" && detail != "":
		return heading + ": " + detail
	case heading != "":
		return heading
	default:
		return title
	}
}
