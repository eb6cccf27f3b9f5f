package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theforeman/foreman-mcp/internal/foreman"
	"github.com/theforeman/foreman-mcp/internal/logging"
)

// Dispatcher routes a decoded tool-call request through the registry:
// resolve, validate arguments against the tool's schema, execute the
// handler, classify the outcome. Every request yields exactly one
// result.
type Dispatcher struct {
	registry *Registry
	client   foreman.Caller
	logger   logging.Logger
	// timeout bounds handler execution per call; zero disables the
	// dispatcher-level bound (the Foreman client still enforces its
	// own request timeout).
	timeout time.Duration
}

// NewDispatcher creates a Dispatcher. The client is shared across all
// concurrent calls.
func NewDispatcher(registry *Registry, client foreman.Caller, logger logging.Logger, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		client:   client,
		logger:   logger,
		timeout:  timeout,
	}
}

// Dispatch executes one tool call. The returned payload is the
// handler's success result; on failure the *Error carries a stable
// kind tag safe to relay to the agent. An unknown tool name
// short-circuits before validation; validation failures never reach
// Foreman.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, rawArgs json.RawMessage) (any, *Error) {
	spec, ok := d.registry.Resolve(name)
	if !ok {
		return nil, &Error{Kind: KindToolNotFound, Message: fmt.Sprintf("unknown tool %q", name)}
	}

	args, derr := decodeArgs(rawArgs)
	if derr != nil {
		return nil, derr
	}
	if derr := validateArgs(spec, args); derr != nil {
		return nil, derr
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	payload, err := spec.Handler(ctx, d.client, args)
	if err != nil {
		return nil, d.classify(name, err)
	}
	return payload, nil
}

// decodeArgs parses the raw argument frame. A missing frame means no
// arguments; anything that is not a JSON object is a protocol error.
func decodeArgs(raw json.RawMessage) (map[string]any, *Error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, &Error{Kind: KindProtocol, Message: "arguments are not a JSON object"}
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// validateArgs checks args against the tool's resolved schema. Missing
// required fields are reported by name before the full schema check so
// the message is precise.
func validateArgs(spec *ToolSpec, args map[string]any) *Error {
	var missing []string
	for _, field := range spec.required {
		if _, ok := args[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &Error{
			Kind:    KindValidation,
			Message: fmt.Sprintf("missing required field(s): %s", strings.Join(missing, ", ")),
		}
	}

	if err := spec.resolved.Validate(args); err != nil {
		return &Error{Kind: KindValidation, Message: err.Error()}
	}
	return nil
}

// classify converts a handler error into the agent-facing taxonomy.
// Foreman request and decode failures are expected conditions and keep
// their detail; anything else is logged with a correlation id and
// surfaced opaquely.
func (d *Dispatcher) classify(tool string, err error) *Error {
	var argErr *ArgumentError
	if errors.As(err, &argErr) {
		return &Error{Kind: KindValidation, Message: argErr.Error()}
	}

	var reqErr *foreman.RequestError
	if errors.As(err, &reqErr) {
		msg := reqErr.Error()
		if reqErr.Body != "" {
			msg = fmt.Sprintf("%s: %s", msg, reqErr.Body)
		}
		return &Error{
			Kind:    KindForemanRequest,
			Message: msg,
			Status:  reqErr.Status,
			Timeout: reqErr.Timeout,
		}
	}

	var decErr *foreman.DecodeError
	if errors.As(err, &decErr) {
		return &Error{Kind: KindForemanDecode, Message: decErr.Error()}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindForemanRequest, Message: "foreman request timed out", Timeout: true}
	}

	cid := uuid.NewString()
	d.logger.Error("tool execution failed", "tool", tool, "correlation_id", cid, "error", err)
	return &Error{Kind: KindInternal, Message: "internal error", CorrelationID: cid}
}

// ArgumentError reports an argument problem a handler detects after
// schema validation (for example a value outside the allowed set). It
// maps to the validation kind.
type ArgumentError struct {
	Field  string
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Reason)
}
