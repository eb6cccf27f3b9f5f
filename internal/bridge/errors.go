package bridge

import "fmt"

// Kind is a stable error tag returned to the agent. The set is closed:
// every tool-call failure maps to exactly one of these.
type Kind string

const (
	KindProtocol       Kind = "protocol"
	KindValidation     Kind = "validation"
	KindToolNotFound   Kind = "tool_not_found"
	KindForemanRequest Kind = "foreman_request"
	KindForemanDecode  Kind = "foreman_decode"
	KindInternal       Kind = "internal"
)

// Error is a tool-call failure in a form safe to return to the agent.
// Internal faults never carry detail here, only a correlation id that
// matches the server-side log entry.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	// Status is Foreman's HTTP status for foreman_request errors.
	Status int `json:"status,omitempty"`
	// Timeout marks the timeout variant of foreman_request.
	Timeout bool `json:"timeout,omitempty"`
	// CorrelationID links an internal error to the server log.
	CorrelationID string `json:"correlation_id,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
