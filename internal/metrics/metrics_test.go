package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectors_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c.Switched("console")
	c.Switched("console")
	c.Delivered("new-thread")
	c.Panicked("new-thread", "mi2")
	c.InitFailed("tui")

	if got := testutil.ToFloat64(c.Switches.WithLabelValues("console")); got != 2 {
		t.Errorf("switches = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.Notifications.WithLabelValues("new-thread")); got != 1 {
		t.Errorf("notifications = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.NotifyPanics.WithLabelValues("new-thread", "mi2")); got != 1 {
		t.Errorf("panics = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.InitFailures.WithLabelValues("tui")); got != 1 {
		t.Errorf("init failures = %v, want 1", got)
	}
}

func TestCollectors_DoubleRegisterFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := New(reg); err != nil {
		t.Fatalf("first New: %v", err)
	}
	if _, err := New(reg); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}

func TestCollectors_NilIsNoop(t *testing.T) {
	var c *Collectors
	c.Switched("x")
	c.Delivered("x")
	c.Panicked("x", "y")
	c.InitFailed("x")
}
