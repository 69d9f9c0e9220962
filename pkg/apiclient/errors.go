package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-salon/components/salon"
)

// APIError is returned for every non-2xx response.
type APIError struct {
	Status int
	Detail string
	Body   string
}

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Body
	}
	return fmt.Sprintf("apiclient: remote error %d: %s", e.Status, msg)
}

// Is maps backend statuses onto the salon sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case salon.ErrNotFound:
		return e.Status == http.StatusNotFound
	case salon.ErrNoInitData:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func newAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status, Body: strings.TrimSpace(string(raw))}
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Detail) == 0 {
		return apiErr
	}
	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		apiErr.Detail = detail
		return apiErr
	}
	// validation errors arrive as a list of objects
	apiErr.Detail = string(envelope.Detail)
	return apiErr
}
