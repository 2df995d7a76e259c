package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Transport executes resolved requests. Implementations own retries,
// cancellation and authentication; errors they return reach the caller
// unchanged.
type Transport interface {
	Do(ctx context.Context, req Request) (Response, error)
}

// TransportFunc adapts a function into a Transport.
type TransportFunc func(ctx context.Context, req Request) (Response, error)

// Do implements Transport.
func (fn TransportFunc) Do(ctx context.Context, req Request) (Response, error) {
	return fn(ctx, req)
}

// MetricsRecorder observes completed invocations.
type MetricsRecorder interface {
	ObserveInvocation(family, action, method, outcome string, elapsed time.Duration)
}

// Invocation outcomes reported to a MetricsRecorder.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// UnknownLabel replaces family and action names that are not in the registry
// when a rejected invocation is reported.
const UnknownLabel = "unknown"

// RequestIDHeader carries the per-call request id.
const RequestIDHeader = "X-Request-ID"

// Option configures a Client.
type Option func(*Client)

// WithLogger routes client logs to logger. The default discards output.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics reports every invocation to recorder.
func WithMetrics(recorder MetricsRecorder) Option {
	return func(c *Client) {
		c.metrics = recorder
	}
}

// WithHeader adds a static header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if key == "" {
			return
		}
		c.headers.Set(key, value)
	}
}

// WithRequestIDs toggles the generated X-Request-ID header. Enabled by
// default.
func WithRequestIDs(enabled bool) Option {
	return func(c *Client) {
		c.requestIDs = enabled
	}
}

// Client issues registry actions through a Transport.
type Client struct {
	registry   *Registry
	transport  Transport
	logger     logrus.FieldLogger
	metrics    MetricsRecorder
	headers    http.Header
	requestIDs bool
}

// NewClient wires a registry to a transport. Both are required.
func NewClient(registry *Registry, transport Transport, options ...Option) (*Client, error) {
	if registry == nil {
		return nil, errors.New("resource: registry is required")
	}
	if transport == nil {
		return nil, errors.New("resource: transport is required")
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	client := &Client{
		registry:   registry,
		transport:  transport,
		logger:     discard,
		headers:    make(http.Header),
		requestIDs: true,
	}
	for _, option := range options {
		if option != nil {
			option(client)
		}
	}
	return client, nil
}

// Registry returns the catalog backing the client.
func (c *Client) Registry() *Registry {
	return c.registry
}

// Call is the pending outcome of an Invoke. It completes exactly once.
type Call struct {
	Request Request

	done   chan struct{}
	result Result
	err    error
}

// Done is closed when the call completes.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Wait blocks until the call completes or ctx is done. Cancelling ctx only
// stops waiting; the request itself is governed by the context given to
// Invoke. A nil ctx waits without a deadline.
func (c *Call) Wait(ctx context.Context) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-c.done:
		return c.result, c.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Completed reports whether the call has finished without blocking.
func (c *Call) Completed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Invoke looks up family/action, builds the request and dispatches it on a
// separate goroutine. Lookup and template errors are returned immediately and
// no request is issued. body is the object acted upon: identity-bound
// placeholders are read from it and it is sent as the JSON payload for
// methods that carry one.
//
// Completion order between concurrent calls is not guaranteed. A nil ctx is
// treated as context.Background().
func (c *Client) Invoke(ctx context.Context, familyName, actionName string, params Params, body any) (*Call, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := c.registry.Build(familyName, actionName, params, body)
	if err != nil {
		labelFamily, labelAction := c.rejectedLabels(familyName, actionName, err)
		c.observe(labelFamily, labelAction, "", OutcomeRejected, 0)
		c.logger.WithFields(logrus.Fields{
			"resource": familyName,
			"action":   actionName,
		}).WithError(err).Debug("invocation rejected")
		return nil, err
	}

	for key, values := range c.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	log := c.logger.WithFields(logrus.Fields{
		"resource": req.Family,
		"action":   req.Action,
		"method":   req.Method,
		"target":   req.Target(),
	})
	if c.requestIDs && req.Header.Get(RequestIDHeader) == "" {
		reqID := uuid.NewString()
		req.Header.Set(RequestIDHeader, reqID)
		log = log.WithField("request_id", reqID)
	}

	call := &Call{Request: req, done: make(chan struct{})}
	go c.run(ctx, call, log)
	return call, nil
}

// Do invokes an action and waits for it to complete.
func (c *Client) Do(ctx context.Context, familyName, actionName string, params Params, body any) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	call, err := c.Invoke(ctx, familyName, actionName, params, body)
	if err != nil {
		return Result{}, err
	}
	return call.Wait(ctx)
}

// rejectedLabels keeps metric labels bounded to registered names.
func (c *Client) rejectedLabels(familyName, actionName string, err error) (string, string) {
	if errors.Is(err, ErrUnknownResource) || errors.Is(err, ErrUnknownAction) {
		return UnknownLabel, UnknownLabel
	}
	desc, action, lookupErr := c.registry.Lookup(familyName, actionName)
	if lookupErr != nil {
		return UnknownLabel, UnknownLabel
	}
	return desc.Name, action.Name
}

func (c *Client) run(ctx context.Context, call *Call, log logrus.FieldLogger) {
	defer close(call.done)

	started := time.Now()
	log.Debug("dispatching request")

	resp, err := c.transport.Do(ctx, call.Request)
	if err != nil {
		call.err = err
		c.observe(call.Request.Family, call.Request.Action, call.Request.Method, OutcomeError, time.Since(started))
		log.WithError(err).Warn("request failed")
		return
	}

	result, err := Shape(call.Request.Arity, resp)
	if err != nil {
		call.err = fmt.Errorf("resource %q action %q: %w", call.Request.Family, call.Request.Action, err)
		c.observe(call.Request.Family, call.Request.Action, call.Request.Method, OutcomeError, time.Since(started))
		log.WithError(err).Warn("response did not match declared arity")
		return
	}

	call.result = result
	outcome := OutcomeOK
	if result.NotFound {
		outcome = OutcomeNotFound
	}
	c.observe(call.Request.Family, call.Request.Action, call.Request.Method, outcome, time.Since(started))
	log.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"records": result.Len(),
	}).Debug("request completed")
}

func (c *Client) observe(familyName, actionName, method, outcome string, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveInvocation(familyName, actionName, method, outcome, elapsed)
}

// Shape turns a raw response into a Result according to the declared arity.
//
// List arity: an array becomes the records, an empty or null body becomes an
// empty list and a lone object becomes a one-element list. Single arity: an
// object becomes the record, an empty or null body is reported as NotFound and
// an array is rejected with ErrUnexpectedShape.
func Shape(arity Arity, resp Response) (Result, error) {
	result := Result{Arity: arity, StatusCode: resp.StatusCode}
	trimmed := bytes.TrimSpace(resp.Body)
	empty := len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
	if !empty {
		result.Raw = json.RawMessage(append([]byte(nil), trimmed...))
	}

	if arity == ArityList {
		result.Records = []map[string]any{}
		if empty {
			return result, nil
		}
		switch trimmed[0] {
		case '[':
			var items []any
			if err := decodeJSON(trimmed, &items); err != nil {
				return Result{}, err
			}
			for idx, item := range items {
				record, ok := item.(map[string]any)
				if !ok {
					return Result{}, fmt.Errorf("%w: list item %d is %T, want object", ErrUnexpectedShape, idx, item)
				}
				result.Records = append(result.Records, record)
			}
		case '{':
			var record map[string]any
			if err := decodeJSON(trimmed, &record); err != nil {
				return Result{}, err
			}
			result.Records = append(result.Records, record)
		default:
			return Result{}, fmt.Errorf("%w: list action returned a scalar", ErrUnexpectedShape)
		}
		return result, nil
	}

	if empty {
		result.NotFound = true
		return result, nil
	}
	switch trimmed[0] {
	case '[':
		return Result{}, fmt.Errorf("%w: single action returned an array", ErrUnexpectedShape)
	case '{':
		var record map[string]any
		if err := decodeJSON(trimmed, &record); err != nil {
			return Result{}, err
		}
		result.Record = record
	default:
		var value any
		if err := decodeJSON(trimmed, &value); err != nil {
			return Result{}, err
		}
		result.Value = value
	}
	return result, nil
}

func decodeJSON(data []byte, v any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("resource: decode payload: %w", err)
	}
	return nil
}
