package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/bookauth/internal/common"
)

// ResponseError is a non-2xx answer from the backend.
type ResponseError struct {
	StatusCode int
	Message    string
	Errors     map[string]string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server responded with %d", e.StatusCode)
	}
	return fmt.Sprintf("server responded with %d: %s", e.StatusCode, e.Message)
}

// Is makes a 401 match common.ErrSessionExpired.
func (e *ResponseError) Is(target error) bool {
	return target == common.ErrSessionExpired && e.StatusCode == http.StatusUnauthorized
}

// TransportError means no response was received (refused, reset, timeout).
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: no response: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is makes every transport failure match common.ErrNetwork.
func (e *TransportError) Is(target error) bool { return target == common.ErrNetwork }

// IsUnauthorized reports whether err is a 401 from the backend.
func IsUnauthorized(err error) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.StatusCode == http.StatusUnauthorized
}

// errorBody covers both {"message", "errors"} bodies and FastAPI's
// {"detail": "..."} or {"detail": [{"loc": [...], "msg": "..."}]}.
type errorBody struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
	Detail  json.RawMessage   `json:"detail"`
}

type detailItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

func newResponseError(status int, body []byte) *ResponseError {
	re := &ResponseError{StatusCode: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return re
	}
	re.Message = eb.Message
	re.Errors = eb.Errors

	if len(eb.Detail) == 0 {
		return re
	}

	var detail string
	if err := json.Unmarshal(eb.Detail, &detail); err == nil {
		if re.Message == "" {
			re.Message = detail
		}
		return re
	}

	var items []detailItem
	if err := json.Unmarshal(eb.Detail, &items); err == nil && len(items) > 0 {
		if re.Errors == nil {
			re.Errors = make(map[string]string, len(items))
		}
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			msgs = append(msgs, it.Msg)
			if n := len(it.Loc); n > 0 {
				re.Errors[fmt.Sprint(it.Loc[n-1])] = it.Msg
			}
		}
		if re.Message == "" {
			re.Message = strings.Join(msgs, "; ")
		}
	}
	return re
}
