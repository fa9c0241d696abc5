package anthropic

import (
	"errors"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
)

// ErrNoAPIKey is returned when no API credential is configured. It is
// checked before any network call is made.
var ErrNoAPIKey = errors.New("anthropic: api key not configured")

// UpstreamError reports a non-2xx response from the model endpoint. The
// status code is preserved so boundary layers can mirror it.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("anthropic: upstream status %d: %s", e.StatusCode, e.Message)
}

// TransportError reports a network-level failure (dial, TLS, timeout,
// canceled context) reaching the model endpoint.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "anthropic: transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// classifyError maps SDK errors into the adapter's error taxonomy.
func classifyError(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return &UpstreamError{
			StatusCode: apiErr.StatusCode,
			Message:    apiErr.Error(),
		}
	}
	return &TransportError{Err: err}
}
