package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goliatone/go-mdsclient/pkg/resource"
)

func TestHTTP_ResolvesTargetAgainstBase(t *testing.T) {
	t.Parallel()

	tr, err := New("http://mds.example.com/mds")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if tr.BaseURL() != "http://mds.example.com/mds/" {
		t.Fatalf("base = %q", tr.BaseURL())
	}

	cases := []struct {
		req  resource.Request
		want string
	}{
		{resource.Request{Path: "entities/7/wip"}, "http://mds.example.com/mds/entities/7/wip"},
		{resource.Request{Path: "settings/get", Query: "id=5"}, "http://mds.example.com/mds/settings/get?id=5"},
		{resource.Request{Path: "entities/a%2Fb/fields"}, "http://mds.example.com/mds/entities/a%2Fb/fields"},
		{resource.Request{Path: "/health"}, "http://mds.example.com/health"},
	}
	for _, tc := range cases {
		got, err := tr.URL(tc.req)
		if err != nil {
			t.Fatalf("url %q: %v", tc.req.Target(), err)
		}
		if got != tc.want {
			t.Fatalf("url %q = %q, want %q", tc.req.Target(), got, tc.want)
		}
	}

	if _, err := tr.URL(resource.Request{Path: "http://evil.example.com/x"}); err == nil {
		t.Fatalf("expected absolute target to be rejected")
	}
}

func TestNew_RejectsBadBase(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "ftp://host/", "localhost:8080", "http:///path"} {
		if _, err := New(raw); err == nil {
			t.Fatalf("New(%q): expected error", raw)
		}
	}
}

func TestHTTP_DoSendsRequest(t *testing.T) {
	t.Parallel()

	var (
		mu        sync.Mutex
		gotMethod string
		gotPath   string
		gotBody   string
		gotHeader string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		gotMethod = r.Method
		gotPath = r.URL.RequestURI()
		gotBody = string(data)
		gotHeader = r.Header.Get("X-Request-ID")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":9}`))
	}))
	defer server.Close()

	tr, err := New(server.URL + "/mds/")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	header := http.Header{}
	header.Set("X-Request-ID", "req-1")
	resp, err := tr.Do(context.Background(), resource.Request{
		Method: http.MethodPost,
		Path:   "entities/9/commit",
		Header: header,
		Body:   []byte(`{"id":9}`),
	})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if gotMethod != http.MethodPost || gotPath != "/mds/entities/9/commit" {
		t.Fatalf("server saw %s %s", gotMethod, gotPath)
	}
	if gotBody != `{"id":9}` || gotHeader != "req-1" {
		t.Fatalf("server saw body %q header %q", gotBody, gotHeader)
	}
	if resp.StatusCode != http.StatusOK || string(resp.Body) != `{"id":9}` {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Fatalf("response headers not copied")
	}
}

func TestHTTP_RejectsDotSegments(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	tr, err := New(server.URL + "/mds/")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, path := range []string{"entities/../wip", "entities/./wip", "../admin"} {
		if _, err := tr.Do(context.Background(), resource.Request{Method: http.MethodGet, Path: path}); err == nil {
			t.Fatalf("path %q: expected error", path)
		}
	}
	if got := requests.Load(); got != 0 {
		t.Fatalf("expected no requests, got %d", got)
	}

	if _, err := tr.URL(resource.Request{Path: "entities/.../wip"}); err != nil {
		t.Fatalf("dots inside a segment must pass: %v", err)
	}
}

func TestHTTP_StatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"missing"}`))
	}))
	defer server.Close()

	tr, err := New(server.URL)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = tr.Do(context.Background(), resource.Request{Method: http.MethodGet, Path: "entities/1/getEntity"})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.StatusCode() != http.StatusNotFound || string(statusErr.Body) != `{"message":"missing"}` {
		t.Fatalf("unexpected status error %+v", statusErr)
	}
	if !errors.Is(err, ErrUnexpectedStatus) {
		t.Fatalf("expected ErrUnexpectedStatus")
	}
}

func TestHTTP_TimeoutAndBodyLimit(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(release)

	tr, err := New(slow.URL, WithTimeout(20*time.Millisecond))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := tr.Do(context.Background(), resource.Request{Path: "x"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	big := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer big.Close()

	tr, err = New(big.URL, WithMaxBodyBytes(4))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := tr.Do(context.Background(), resource.Request{Path: "x"}); err == nil {
		t.Fatalf("expected body limit error")
	}
}

func TestHTTP_WithClientRoundTripper(t *testing.T) {
	t.Parallel()

	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.String() != "http://localhost:8080/mds/entities/7/wip" {
			t.Errorf("unexpected url %s", r.URL)
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader("[]")),
		}, nil
	})}

	tr, err := New("http://localhost:8080/mds/", WithClient(client))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	resp, err := tr.Do(context.Background(), resource.Request{Method: http.MethodGet, Path: "entities/7/wip"})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if string(resp.Body) != "[]" {
		t.Fatalf("body = %q", resp.Body)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (fn roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return fn(r) }
