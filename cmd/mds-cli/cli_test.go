package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-mdsclient/components/datepicker"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInvoke_ListAction(t *testing.T) {
	t.Parallel()

	var (
		mu                 sync.Mutex
		gotPath, gotAccept string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath = r.Method + " " + r.URL.RequestURI()
		gotAccept = r.Header.Get("Accept")
		mu.Unlock()
		_, _ = w.Write([]byte(`{"id":1,"name":"draft"}`))
	}))
	defer server.Close()

	out, err := execute(t, NewMDSCommand(), "invoke", "entity", "getWorkInProggress",
		"--base-url", server.URL+"/mds/", "--log-level", "error", "-p", "id=7", "-p", "page=2")
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, "GET /mds/entities/7/wip?page=2", gotPath)
	assert.Equal(t, "application/json", gotAccept)
	mu.Unlock()

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "draft", records[0]["name"])
}

func TestInvoke_BodyFromFileAndYAMLOutput(t *testing.T) {
	t.Parallel()

	var (
		mu               sync.Mutex
		gotPath, gotBody string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data := new(bytes.Buffer)
		_, _ = data.ReadFrom(r.Body)
		mu.Lock()
		gotPath = r.Method + " " + r.URL.Path
		gotBody = data.String()
		mu.Unlock()
		_, _ = w.Write([]byte(`{"id":3,"state":"committed","version":4}`))
	}))
	defer server.Close()

	bodyFile := filepath.Join(t.TempDir(), "entity.json")
	require.NoError(t, os.WriteFile(bodyFile, []byte(`{"id":3,"name":"invoice"}`), 0o600))

	out, err := execute(t, NewMDSCommand(), "invoke", "entities", "commit",
		"--base-url", server.URL, "--log-level", "error", "--body", "@"+bodyFile, "-o", "yaml")
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, "POST /entities/3/commit", gotPath)
	assert.JSONEq(t, `{"id":3,"name":"invoice"}`, gotBody)
	mu.Unlock()

	var record map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &record))
	assert.Equal(t, "committed", record["state"])
	assert.Equal(t, 4, record["version"])
}

func TestInvoke_Errors(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := execute(t, NewMDSCommand(), "invoke", "entity", "doesNotExist", "--base-url", server.URL, "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown action")
	assert.Equal(t, int32(0), requests.Load())

	_, err = execute(t, NewMDSCommand(), "invoke", "entity", "getEntity", "-p", "id=1", "--base-url", server.URL, "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")

	_, err = execute(t, NewMDSCommand(), "invoke", "entity", "getEntity", "--base-url", server.URL, "-o", "xml")
	require.Error(t, err)

	_, err = execute(t, NewMDSCommand(), "invoke", "entity", "getEntity", "--base-url", server.URL, "--body", "{not json")
	require.Error(t, err)
}

func TestCatalog_ListAndOpenAPI(t *testing.T) {
	t.Parallel()

	out, err := execute(t, NewMDSCommand(), "catalog", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 16)
	assert.Contains(t, lines[0], "FAMILY")
	assert.Contains(t, out, "getWorkInProggress")
	assert.Contains(t, out, "entities/:id/:action/:param/:params")

	out, err = execute(t, NewMDSCommand(), "catalog", "openapi", "--title", "Metadata Service")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Metadata Service", doc["info"].(map[string]any)["title"])
	assert.Contains(t, doc["paths"], "/entities/{id}/fields/{param}")
}

func TestDate_Conversions(t *testing.T) {
	t.Parallel()

	out, err := execute(t, NewMDSCommand(), "date", "to-display", "1735084800000")
	require.NoError(t, err)
	assert.Contains(t, out, `"display": "25/12/2024"`)

	out, err = execute(t, NewMDSCommand(), "date", "from-display", "25/12/2024", "--time-zone", "Europe/Warsaw")
	require.NoError(t, err)
	assert.Contains(t, out, `"stored": 1735081200000`)

	_, err = execute(t, NewMDSCommand(), "date", "from-display", "2024-12-25")
	require.Error(t, err)
}

func TestDate_Zones(t *testing.T) {
	t.Parallel()

	out, err := execute(t, NewMDSCommand(), "date", "zones", "warsaw")
	require.NoError(t, err)
	var zones []string
	require.NoError(t, json.Unmarshal([]byte(out), &zones))
	assert.Equal(t, []string{"Europe/Warsaw"}, zones)

	out, err = execute(t, NewMDSCommand(), "date", "zones", "europe", "--limit", "2")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &zones))
	assert.Len(t, zones, 2)

	_, err = execute(t, NewMDSCommand(), "date", "to-display", "0", "--time-zone", "Europe/Warsa")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Europe/Warsaw")
}

type scriptedPrompter struct {
	answer string
}

func (s scriptedPrompter) Ask(_ context.Context, _ datepicker.PromptConfig) (string, error) {
	return s.answer, nil
}

func TestDate_PickUsesBinding(t *testing.T) {
	t.Parallel()

	cmd := newDateCommand("pick", "", cobra.NoArgs, (*DateOptions).RunPick, scriptedPrompter{answer: "01/03/2024"})
	out, err := execute(t, cmd, "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, `"display": "01/03/2024"`)
	assert.Contains(t, out, `"stored": 1709251200000`)

	cmd = newDateCommand("pick", "", cobra.NoArgs, (*DateOptions).RunPick, scriptedPrompter{answer: "31/02/2024"})
	_, err = execute(t, cmd, "--log-level", "error")
	require.Error(t, err)
}
