package llm

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

const maxErrorBodyBytes = 2048

// APIError is the error envelope returned by the hosted API.
type APIError struct {
	StatusCode int
	Type       string
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("openai error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("openai error %d: %s", e.StatusCode, e.Message)
}

type errorEnvelope struct {
	Error struct {
		Message string          `json:"message"`
		Type    string          `json:"type"`
		Code    json.RawMessage `json:"code"`
	} `json:"error"`
}

func readErrorBody(resp *http.Response) string {
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func parseAPIError(resp *http.Response) error {
	body := readErrorBody(resp)
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: body}
	var env errorEnvelope
	if err := json.Unmarshal([]byte(body), &env); err == nil && env.Error.Message != "" {
		apiErr.Message = env.Error.Message
		apiErr.Type = env.Error.Type
		apiErr.Code = rawCode(env.Error.Code)
	}
	if apiErr.Message == "" {
		apiErr.Message = resp.Status
	}
	return apiErr
}

// rawCode accepts both string and numeric codes.
func rawCode(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

var expiredCodes = map[string]bool{
	"container_expired": true,
}

// IsContainerExpired reports whether err says the session container lapsed.
// Structured codes are checked first.
func IsContainerExpired(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return expiredCodes[apiErr.Code] || expiredMessage(apiErr.Message)
	}
	var oaErr *openai.APIError
	if errors.As(err, &oaErr) {
		if code, ok := oaErr.Code.(string); ok && expiredCodes[code] {
			return true
		}
	}
	return expiredMessage(err.Error())
}

// expiredMessage is the compatibility shim for providers that only report
// expiry in free text.
func expiredMessage(msg string) bool {
	return strings.Contains(msg, "Container is expired")
}
