package ecom

import (
	"errors"
	"fmt"
)

// ErrUnexpectedResponse marks a 2xx response whose body lacks what the call
// needs.
var ErrUnexpectedResponse = errors.New("unexpected API response")

// RequestError describes a failed platform call with whatever upstream
// context was available.
type RequestError struct {
	Method string
	URL    string
	Status int
	Body   string
	Err    error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("API request failed: %s %s: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("API request failed: %s %s: %d - %s", e.Method, e.URL, e.Status, e.Body)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Fields returns the error context in a shape suitable for log fields and
// sync metadata.
func (e *RequestError) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"method": e.Method,
		"url":    e.URL,
	}
	if e.Status != 0 {
		fields["status"] = e.Status
	}
	if e.Body != "" {
		fields["response"] = e.Body
	}
	return fields
}

// ErrorFields extracts request context from err when it is (or wraps) a
// RequestError.
func ErrorFields(err error) map[string]interface{} {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Fields()
	}
	return map[string]interface{}{"error": err.Error()}
}
