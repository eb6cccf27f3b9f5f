package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theforeman/foreman-mcp/internal/foreman"
	"github.com/theforeman/foreman-mcp/internal/logging"
)

// stubCaller records every outbound call and answers with a pluggable
// respond func.
type stubCaller struct {
	mu      sync.Mutex
	calls   int
	method  string
	path    string
	query   url.Values
	body    any
	respond func(ctx context.Context, method, apiPath string) (int, json.RawMessage, error)
}

func (s *stubCaller) Call(ctx context.Context, method, apiPath string, query url.Values, body any) (int, json.RawMessage, error) {
	s.mu.Lock()
	s.calls++
	s.method = method
	s.path = apiPath
	s.query = query
	s.body = body
	s.mu.Unlock()
	if s.respond != nil {
		return s.respond(ctx, method, apiPath)
	}
	return 200, json.RawMessage(`{}`), nil
}

func (s *stubCaller) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestDispatcher(t *testing.T, stub *stubCaller) *Dispatcher {
	t.Helper()
	reg, err := NewToolRegistry()
	require.NoError(t, err)
	return NewDispatcher(reg, stub, logging.Nop(), 0)
}

func TestDispatch_UnknownTool(t *testing.T) {
	stub := &stubCaller{}
	d := newTestDispatcher(t, stub)

	_, derr := d.Dispatch(context.Background(), "definitely_not_a_tool", nil)
	require.NotNil(t, derr)

	assert.Equal(t, KindToolNotFound, derr.Kind)
	assert.Contains(t, derr.Message, "definitely_not_a_tool")
	assert.Zero(t, stub.callCount())
}

func TestDispatch_MissingRequiredField(t *testing.T) {
	stub := &stubCaller{}
	d := newTestDispatcher(t, stub)

	_, derr := d.Dispatch(context.Background(), "get_host", json.RawMessage(`{}`))
	require.NotNil(t, derr)

	assert.Equal(t, KindValidation, derr.Kind)
	assert.Contains(t, derr.Message, "id")
	assert.Zero(t, stub.callCount())
}

func TestDispatch_TypeMismatch(t *testing.T) {
	stub := &stubCaller{}
	d := newTestDispatcher(t, stub)

	_, derr := d.Dispatch(context.Background(), "get_host", json.RawMessage(`{"id": 42}`))
	require.NotNil(t, derr)

	assert.Equal(t, KindValidation, derr.Kind)
	assert.Zero(t, stub.callCount())
}

func TestDispatch_UnknownProperty(t *testing.T) {
	stub := &stubCaller{}
	d := newTestDispatcher(t, stub)

	_, derr := d.Dispatch(context.Background(), "list_hosts", json.RawMessage(`{"serach": "typo"}`))
	require.NotNil(t, derr)

	assert.Equal(t, KindValidation, derr.Kind)
	assert.Zero(t, stub.callCount())
}

func TestDispatch_NonObjectArguments(t *testing.T) {
	stub := &stubCaller{}
	d := newTestDispatcher(t, stub)

	_, derr := d.Dispatch(context.Background(), "list_hosts", json.RawMessage(`[1, 2, 3]`))
	require.NotNil(t, derr)

	assert.Equal(t, KindProtocol, derr.Kind)
	assert.Zero(t, stub.callCount())
}

func TestDispatch_EmptyArguments(t *testing.T) {
	stub := &stubCaller{}
	d := newTestDispatcher(t, stub)

	payload, derr := d.Dispatch(context.Background(), "list_hosts", nil)
	require.Nil(t, derr)

	assert.Equal(t, json.RawMessage(`{}`), payload)
	assert.Equal(t, 1, stub.callCount())
}

func TestDispatch_PayloadRoundTrip(t *testing.T) {
	stub := &stubCaller{
		respond: func(ctx context.Context, method, apiPath string) (int, json.RawMessage, error) {
			return 200, json.RawMessage(`{"id": 7, "name": "host1"}`), nil
		},
	}
	d := newTestDispatcher(t, stub)

	payload, derr := d.Dispatch(context.Background(), "get_host", json.RawMessage(`{"id": "7"}`))
	require.Nil(t, derr)

	assert.Equal(t, json.RawMessage(`{"id": 7, "name": "host1"}`), payload)
	assert.Equal(t, "/api/hosts/7", stub.path)
}

func TestDispatch_ForemanRequestError(t *testing.T) {
	stub := &stubCaller{
		respond: func(ctx context.Context, method, apiPath string) (int, json.RawMessage, error) {
			return 422, nil, &foreman.RequestError{Status: 422, Body: `{"error": {"message": "Name has already been taken"}}`}
		},
	}
	d := newTestDispatcher(t, stub)

	_, derr := d.Dispatch(context.Background(), "create_host", json.RawMessage(`{"host": {"name": "dup"}}`))
	require.NotNil(t, derr)

	assert.Equal(t, KindForemanRequest, derr.Kind)
	assert.Equal(t, 422, derr.Status)
	assert.Contains(t, derr.Message, "Name has already been taken")
	assert.False(t, derr.Timeout)
}

func TestDispatch_ForemanTimeout(t *testing.T) {
	stub := &stubCaller{
		respond: func(ctx context.Context, method, apiPath string) (int, json.RawMessage, error) {
			return 0, nil, &foreman.RequestError{Timeout: true, Err: context.DeadlineExceeded}
		},
	}
	d := newTestDispatcher(t, stub)

	_, derr := d.Dispatch(context.Background(), "list_hosts", nil)
	require.NotNil(t, derr)

	assert.Equal(t, KindForemanRequest, derr.Kind)
	assert.True(t, derr.Timeout)
}

func TestDispatch_ForemanDecodeError(t *testing.T) {
	stub := &stubCaller{
		respond: func(ctx context.Context, method, apiPath string) (int, json.RawMessage, error) {
			return 200, nil, &foreman.DecodeError{Snippet: "<html>"}
		},
	}
	d := newTestDispatcher(t, stub)

	_, derr := d.Dispatch(context.Background(), "list_hosts", nil)
	require.NotNil(t, derr)

	assert.Equal(t, KindForemanDecode, derr.Kind)
}

func TestDispatch_HandlerArgumentError(t *testing.T) {
	stub := &stubCaller{}
	d := newTestDispatcher(t, stub)

	_, derr := d.Dispatch(context.Background(), "power_host", json.RawMessage(`{"id": "7", "action": "explode"}`))
	require.NotNil(t, derr)

	assert.Equal(t, KindValidation, derr.Kind)
	assert.Contains(t, derr.Message, "action")
	assert.Zero(t, stub.callCount())
}

func TestDispatch_InternalErrorIsOpaque(t *testing.T) {
	stub := &stubCaller{
		respond: func(ctx context.Context, method, apiPath string) (int, json.RawMessage, error) {
			return 0, nil, errors.New("slice index out of range in some deep helper")
		},
	}
	d := newTestDispatcher(t, stub)

	_, derr := d.Dispatch(context.Background(), "list_hosts", nil)
	require.NotNil(t, derr)

	assert.Equal(t, KindInternal, derr.Kind)
	assert.Equal(t, "internal error", derr.Message)
	assert.NotContains(t, derr.Message, "slice index")
	assert.NotEmpty(t, derr.CorrelationID)
}

func TestDispatch_CorrelationIDsDiffer(t *testing.T) {
	stub := &stubCaller{
		respond: func(ctx context.Context, method, apiPath string) (int, json.RawMessage, error) {
			return 0, nil, errors.New("boom")
		},
	}
	d := newTestDispatcher(t, stub)

	_, first := d.Dispatch(context.Background(), "list_hosts", nil)
	_, second := d.Dispatch(context.Background(), "list_hosts", nil)
	require.NotNil(t, first)
	require.NotNil(t, second)

	assert.NotEqual(t, first.CorrelationID, second.CorrelationID)
}

func TestDispatch_TimeoutBoundsHandler(t *testing.T) {
	stub := &stubCaller{
		respond: func(ctx context.Context, method, apiPath string) (int, json.RawMessage, error) {
			<-ctx.Done()
			return 0, nil, ctx.Err()
		},
	}
	reg, err := NewToolRegistry()
	require.NoError(t, err)
	d := NewDispatcher(reg, stub, logging.Nop(), 20*time.Millisecond)

	_, derr := d.Dispatch(context.Background(), "list_hosts", nil)
	require.NotNil(t, derr)

	assert.Equal(t, KindForemanRequest, derr.Kind)
	assert.True(t, derr.Timeout)
}

func TestDispatch_ConcurrentCalls(t *testing.T) {
	stub := &stubCaller{
		respond: func(ctx context.Context, method, apiPath string) (int, json.RawMessage, error) {
			return 200, json.RawMessage(`{"results": []}`), nil
		},
	}
	d := newTestDispatcher(t, stub)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			payload, derr := d.Dispatch(context.Background(), "list_hosts", nil)
			assert.Nil(t, derr)
			assert.Equal(t, json.RawMessage(`{"results": []}`), payload)
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, stub.callCount())
}
