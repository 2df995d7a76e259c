package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-mdsclient/pkg/resource"
)

func TestInvocationCollector_CountsOutcomes(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewPedanticRegistry()
	c, err := Register(reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	c.ObserveInvocation("entities", "getWorkInProggress", "GET", resource.OutcomeOK, 15*time.Millisecond)
	c.ObserveInvocation("entities", "getWorkInProggress", "GET", resource.OutcomeOK, 5*time.Millisecond)
	c.ObserveInvocation("entities", "getEntity", "GET", resource.OutcomeNotFound, time.Millisecond)
	c.ObserveInvocation(resource.UnknownLabel, resource.UnknownLabel, "", resource.OutcomeRejected, 0)

	if got := testutil.ToFloat64(c.invocations.WithLabelValues("entities", "getWorkInProggress", "GET", "ok")); got != 2 {
		t.Fatalf("ok invocations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.invocations.WithLabelValues(resource.UnknownLabel, resource.UnknownLabel, "none", "rejected")); got != 1 {
		t.Fatalf("rejected invocations = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(c.latency); got != 2 {
		t.Fatalf("latency series = %d, want 2", got)
	}
	if got := testutil.CollectAndCount(reg, "mds_client_invocations_total"); got != 3 {
		t.Fatalf("counter series = %d, want 3", got)
	}
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	if _, err := Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := Register(reg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if _, err := Register(nil); err != nil {
		t.Fatalf("nil registerer: %v", err)
	}
}
