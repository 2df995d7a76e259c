package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-mdsclient/pkg/resource"
)

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes int64 = 16 << 20

// ErrUnexpectedStatus is wrapped by StatusError.
var ErrUnexpectedStatus = errors.New("transport: unexpected status")

// StatusError reports a non-2xx response. The body is kept so callers can
// surface the service's error payload.
type StatusError struct {
	Code   int
	Status string
	Method string
	URL    string
	Body   []byte
}

func (e *StatusError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("transport: %s %s: unexpected status %s", e.Method, e.URL, status)
}

// StatusCode returns the HTTP status code.
func (e *StatusError) StatusCode() int { return e.Code }

func (e *StatusError) Unwrap() error { return ErrUnexpectedStatus }

// Option configures an HTTP transport.
type Option func(*HTTP)

// WithClient replaces the underlying http.Client.
func WithClient(client *http.Client) Option {
	return func(t *HTTP) {
		if client != nil {
			clone := *client
			t.client = &clone
		}
	}
}

// WithTimeout bounds each request. Zero disables the per-request deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(t *HTTP) {
		if timeout >= 0 {
			t.timeout = timeout
		}
	}
}

// WithLogger routes transport logs to logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(t *HTTP) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMaxBodyBytes caps the response size read into memory.
func WithMaxBodyBytes(limit int64) Option {
	return func(t *HTTP) {
		if limit > 0 {
			t.maxBody = limit
		}
	}
}

// HTTP is a net/http implementation of resource.Transport. Request targets are
// resolved against the base URL; it never retries.
type HTTP struct {
	base    *url.URL
	client  *http.Client
	timeout time.Duration
	maxBody int64
	logger  logrus.FieldLogger
}

var _ resource.Transport = (*HTTP)(nil)

// New constructs a transport rooted at baseURL (http or https).
func New(baseURL string, options ...Option) (*HTTP, error) {
	base, err := parseBase(baseURL)
	if err != nil {
		return nil, err
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	t := &HTTP{
		base:    base,
		client:  &http.Client{},
		maxBody: DefaultMaxBodyBytes,
		logger:  discard,
	}
	for _, option := range options {
		if option != nil {
			option(t)
		}
	}
	return t, nil
}

func parseBase(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.New("transport: base url is required")
	}
	base, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("transport: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("transport: base url %q must use http or https", raw)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("transport: base url %q has no host", raw)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base, nil
}

// BaseURL returns the normalised base URL (always ending in "/").
func (t *HTTP) BaseURL() string {
	return t.base.String()
}

// URL resolves a request target against the base URL. Relative targets keep
// the base path; targets starting with "/" replace it. Dot segments are
// rejected so a target never escapes the path it names.
func (t *HTTP) URL(req resource.Request) (string, error) {
	ref, err := url.Parse(req.Target())
	if err != nil {
		return "", fmt.Errorf("transport: parse target %q: %w", req.Target(), err)
	}
	if ref.IsAbs() || ref.Host != "" {
		return "", fmt.Errorf("transport: target %q must be relative", req.Target())
	}
	for _, segment := range strings.Split(ref.Path, "/") {
		if segment == "." || segment == ".." {
			return "", fmt.Errorf("transport: target %q contains a dot segment", req.Target())
		}
	}
	return t.base.ResolveReference(ref).String(), nil
}

// Do implements resource.Transport.
func (t *HTTP) Do(ctx context.Context, req resource.Request) (resource.Response, error) {
	target, err := t.URL(req)
	if err != nil {
		return resource.Response{}, err
	}

	reqCtx := ctx
	var cancel context.CancelFunc
	if t.timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(reqCtx, method, target, body)
	if err != nil {
		return resource.Response{}, err
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	log := t.logger.WithFields(logrus.Fields{"method": method, "url": target})
	started := time.Now()
	resp, err := t.client.Do(httpReq)
	if err != nil {
		log.WithError(err).Debug("http request failed")
		return resource.Response{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, t.maxBody+1))
	if err != nil {
		return resource.Response{}, err
	}
	if int64(len(data)) > t.maxBody {
		return resource.Response{}, fmt.Errorf("transport: %s %s: response exceeds %d bytes", method, target, t.maxBody)
	}

	log.WithFields(logrus.Fields{
		"status":  resp.StatusCode,
		"elapsed": time.Since(started).String(),
	}).Debug("http request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resource.Response{}, &StatusError{
			Code:   resp.StatusCode,
			Status: resp.Status,
			Method: method,
			URL:    target,
			Body:   data,
		}
	}

	return resource.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       data,
	}, nil
}
