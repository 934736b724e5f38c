package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersCollectors(t *testing.T) {
	m := New()
	m.SessionsActive.Set(2)
	m.Connections.WithLabelValues(ConnThrottled).Inc()

	if got := testutil.ToFloat64(m.SessionsActive); got != 2 {
		t.Fatalf("expected 2 active sessions, got %v", got)
	}
	if got := testutil.ToFloat64(m.Connections.WithLabelValues(ConnThrottled)); got != 1 {
		t.Fatalf("expected 1 throttled connection, got %v", got)
	}
	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "agadir_sessions_active" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected agadir_sessions_active to be gathered")
	}
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.Keys.Inc()
	if got := testutil.ToFloat64(b.Keys); got != 0 {
		t.Fatalf("expected separate registries, got %v", got)
	}
}
