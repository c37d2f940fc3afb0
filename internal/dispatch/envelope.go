// ABOUTME: Transport-neutral result envelope returned by every dispatch.
// ABOUTME: Exactly one of result/error is set on failure; error is null on success.

package dispatch

import "fmt"

// Envelope is the uniform success/error wrapper both transports serialize.
// When Success is true, Result carries the handler payload and Error is null;
// when false, Result is null and Error carries a descriptive message.
type Envelope struct {
	Success bool    `json:"success"`
	Result  any     `json:"result"`
	Error   *string `json:"error"`
}

// OK wraps a handler payload in a success envelope.
func OK(result any) Envelope {
	return Envelope{Success: true, Result: result}
}

// Failf builds a failure envelope with a formatted message.
func Failf(format string, args ...any) Envelope {
	msg := fmt.Sprintf(format, args...)
	return Envelope{Success: false, Error: &msg}
}

// ErrMessage returns the failure message, or "" for a success envelope.
func (e Envelope) ErrMessage() string {
	if e.Error == nil {
		return ""
	}
	return *e.Error
}
