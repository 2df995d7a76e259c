package mds

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-mdsclient/pkg/catalog"
	"github.com/goliatone/go-mdsclient/pkg/resource"
)

type recordingTransport struct {
	mu       sync.Mutex
	requests []resource.Request
	body     string
}

func (r *recordingTransport) Do(_ context.Context, req resource.Request) (resource.Response, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	return resource.Response{StatusCode: 200, Body: []byte(r.body)}, nil
}

func (r *recordingTransport) targets() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.requests))
	for _, req := range r.requests {
		out = append(out, req.Method+" "+req.Target())
	}
	return out
}

func newService(t *testing.T, body string) (*Service, *recordingTransport) {
	t.Helper()
	reg, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	tr := &recordingTransport{body: body}
	client, err := resource.NewClient(reg, tr)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return New(client), tr
}

func waiter(t *testing.T) func(*resource.Call, error) resource.Result {
	return func(call *resource.Call, err error) resource.Result {
		t.Helper()
		if err != nil {
			t.Fatalf("invoke: %v", err)
		}
		result, err := call.Wait(context.Background())
		if err != nil {
			t.Fatalf("wait: %v", err)
		}
		return result
	}
}

func TestService_IssuesCatalogRequests(t *testing.T) {
	t.Parallel()

	svc, tr := newService(t, "")
	wait := waiter(t)
	ctx := context.Background()
	entity := map[string]any{"id": 3, "name": "invoice"}

	wait(svc.Entities.GetAdvanced(ctx, ID(1)))
	wait(svc.Entities.GetWorkInProggress(ctx, ID(7)))
	wait(svc.Entities.GetFields(ctx, ID(7)))
	wait(svc.Entities.GetField(ctx, resource.Params{"id": 7, "param": "title"}))
	wait(svc.Entities.GetEntity(ctx, ID(7)))
	wait(svc.Entities.SelectInstance(ctx, ID(7)))
	wait(svc.Entities.Draft(ctx, nil, entity))
	wait(svc.Entities.Abandon(ctx, nil, entity))
	wait(svc.Entities.Commit(ctx, nil, entity))
	wait(svc.Instances.GetHistory(ctx, ID(11)))
	wait(svc.Instances.GetPreviousVersion(ctx, resource.Params{"id": 11, "param": 2}))
	wait(svc.Settings.ImportFile(ctx, nil, map[string]any{"file": "a.json"}))
	wait(svc.Settings.ExportData(ctx, nil, nil))
	wait(svc.Settings.SaveSettings(ctx, nil, map[string]any{"theme": "dark"}))
	wait(svc.Settings.GetSettings(ctx, nil))

	want := []string{
		"GET entities/1/advanced",
		"GET entities/7/wip",
		"GET entities/7/fields",
		"GET entities/7/fields/title",
		"GET entities/7/getEntity",
		"GET entities/7/instance",
		"POST entities/3/draft",
		"POST entities/3/abandon",
		"POST entities/3/commit",
		"GET instances/11/history",
		"GET instances/11/previousVersion/2",
		"POST settings/importFile",
		"POST settings/exportData",
		"POST settings/saveSettings",
		"GET settings/get",
	}
	if diff := cmp.Diff(want, tr.targets()); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
}

func TestService_ListActionsAlwaysYieldLists(t *testing.T) {
	t.Parallel()

	for _, body := range []string{"", "[]", `{"id":1}`, `[{"id":1},{"id":2}]`} {
		svc, _ := newService(t, body)
		wait := waiter(t)
		result := wait(svc.Entities.GetWorkInProggress(context.Background(), ID(7)))
		if result.Records == nil {
			t.Fatalf("body %q: records must never be nil", body)
		}
		if result.Arity != resource.ArityList {
			t.Fatalf("body %q: arity = %s", body, result.Arity)
		}
	}
}

func TestService_GetSettingsDecodes(t *testing.T) {
	t.Parallel()

	wait := waiter(t)
	svc, _ := newService(t, `{"theme":"dark","pageSize":25}`)
	result := wait(svc.Settings.GetSettings(context.Background(), nil))

	var settings struct {
		Theme    string `json:"theme"`
		PageSize int    `json:"pageSize"`
	}
	if err := result.Decode(&settings); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if settings.Theme != "dark" || settings.PageSize != 25 {
		t.Fatalf("unexpected settings %+v", settings)
	}
	if result.Record["pageSize"] != json.Number("25") {
		t.Fatalf("record numbers must decode as json.Number, got %T", result.Record["pageSize"])
	}
}

func TestService_EntityBodyIsSent(t *testing.T) {
	t.Parallel()

	wait := waiter(t)
	svc, tr := newService(t, `{"id":3,"state":"committed"}`)
	result := wait(svc.Entities.Commit(context.Background(), resource.Params{"id": 99}, map[string]any{"id": 3}))
	if result.Record["state"] != "committed" {
		t.Fatalf("unexpected record %v", result.Record)
	}

	tr.mu.Lock()
	req := tr.requests[0]
	tr.mu.Unlock()
	if req.Path != "entities/3/commit" {
		t.Fatalf("identity field must win over explicit param, path = %q", req.Path)
	}
	if string(req.Body) != `{"id":3}` {
		t.Fatalf("body = %s", req.Body)
	}
}

func TestService_UnknownFamilyWithoutCatalog(t *testing.T) {
	t.Parallel()

	reg := resource.MustRegistry(resource.Descriptor{
		Name:     "other",
		Template: "other/:id",
		Actions:  []resource.Action{{Name: "get"}},
	})
	tr := &recordingTransport{}
	client, err := resource.NewClient(reg, tr)
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	svc := New(client)
	if _, err := svc.Entities.GetEntity(context.Background(), ID(1)); !errors.Is(err, resource.ErrUnknownResource) {
		t.Fatalf("expected ErrUnknownResource, got %v", err)
	}
	if len(tr.targets()) != 0 {
		t.Fatalf("no request may be issued")
	}
}
