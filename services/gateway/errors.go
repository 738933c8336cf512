package gateway

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Kind classifies a failed request.
type Kind string

const (
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindValidation   Kind = "validation_failed"
	KindRateLimited  Kind = "rate_limited"
	KindServer       Kind = "server_error"
	KindNetwork      Kind = "network_unreachable"
	KindBadRequest   Kind = "bad_request"
	KindDecode       Kind = "decode_error"
)

var userMessages = map[Kind]string{
	KindUnauthorized: "Your session has expired. Please sign in again.",
	KindForbidden:    "You do not have permission to perform this action.",
	KindNotFound:     "The requested resource was not found.",
	KindValidation:   "Some of the information provided is invalid.",
	KindRateLimited:  "Too many requests. Please try again later.",
	KindServer:       "Something went wrong on our side. Please try again later.",
	KindNetwork:      "Unable to reach the server. Please check your connection.",
	KindBadRequest:   "The request could not be processed.",
	KindDecode:       "The server sent an unexpected response.",
}

// APIError is every failure returned by Client. Fields carries the
// field-level messages of a validation failure when the server sent them.
type APIError struct {
	Kind    Kind
	Status  int
	Method  string
	Path    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, msg)
	}
	if e.Method == "" {
		if len(e.Fields) > 0 {
			return msg + " (" + strings.Join(e.FieldMessages(), ", ") + ")"
		}
		return msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Method, e.Path, msg, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, msg)
}

// NewValidationError reports input rejected locally, before any request is
// made, in the same shape as a 422 from the server.
func NewValidationError(fields map[string]string) *APIError {
	return &APIError{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

func (e *APIError) Unwrap() error { return e.Err }

// UserMessage is the text to show at the point of the failed action.
func (e *APIError) UserMessage() string {
	if e.Kind == KindValidation && e.Message != "" {
		return e.Message
	}
	return userMessages[e.Kind]
}

// FieldMessages returns the validation messages ordered by field name.
func (e *APIError) FieldMessages() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+": "+e.Fields[k])
	}
	return out
}

// Retryable reports whether the user may reasonably try the same action again.
func (e *APIError) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindServer || e.Kind == KindNetwork
}

// KindOf returns the Kind of err, or "" when err is not an APIError.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsKind reports whether err is an APIError of kind k.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// FieldErrors returns the validation messages carried by err, if any.
func FieldErrors(err error) map[string]string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Fields
	}
	return nil
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status >= 500:
		return KindServer
	}
	return KindBadRequest
}

// errorBody is the error document the API returns. "errors" is either a
// field -> message map or a field -> []message map.
type errorBody struct {
	Message string                 `json:"message"`
	Error   string                 `json:"error"`
	Errors  map[string]interface{} `json:"errors"`
}

func classify(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{Kind: kindForStatus(status), Status: status, Method: method, Path: path}

	var eb errorBody
	if len(body) > 0 && json.Unmarshal(body, &eb) == nil {
		apiErr.Message = eb.Message
		if apiErr.Message == "" {
			apiErr.Message = eb.Error
		}
		if len(eb.Errors) > 0 {
			apiErr.Fields = make(map[string]string, len(eb.Errors))
			for field, raw := range eb.Errors {
				switch v := raw.(type) {
				case string:
					apiErr.Fields[field] = v
				case []interface{}:
					parts := make([]string, 0, len(v))
					for _, p := range v {
						parts = append(parts, fmt.Sprint(p))
					}
					apiErr.Fields[field] = strings.Join(parts, "; ")
				default:
					apiErr.Fields[field] = fmt.Sprint(v)
				}
			}
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
