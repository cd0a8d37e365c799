// Package metrics provides the Prometheus collectors used by the
// interpreter core.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors groups the counters updated by interpreter switches and
// notification broadcasts. A nil *Collectors is valid and records nothing.
type Collectors struct {
	Switches      *prometheus.CounterVec
	Notifications *prometheus.CounterVec
	NotifyPanics  *prometheus.CounterVec
	InitFailures  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// A nil reg leaves the collectors unregistered.
func New(reg prometheus.Registerer) (*Collectors, error) {
	c := &Collectors{
		Switches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dbgfront",
				Name:      "interp_switches_total",
				Help:      "Current interpreter changes, by target interpreter.",
			},
			[]string{"to"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dbgfront",
				Name:      "notifications_total",
				Help:      "Notification hooks delivered, by event kind.",
			},
			[]string{"event"},
		),
		NotifyPanics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dbgfront",
				Name:      "notify_panics_total",
				Help:      "Notification hooks that panicked, by event kind and interpreter.",
			},
			[]string{"event", "interp"},
		),
		InitFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dbgfront",
				Name:      "interp_init_failures_total",
				Help:      "Interpreter Init calls that returned an error.",
			},
			[]string{"interp"},
		),
	}
	if reg == nil {
		return c, nil
	}
	for _, col := range []prometheus.Collector{c.Switches, c.Notifications, c.NotifyPanics, c.InitFailures} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// MustNew is like New but panics on registration failure.
func MustNew(reg prometheus.Registerer) *Collectors {
	c, err := New(reg)
	if err != nil {
		panic(err)
	}
	return c
}

// Switched records a change of current interpreter.
func (c *Collectors) Switched(to string) {
	if c == nil {
		return
	}
	c.Switches.WithLabelValues(to).Inc()
}

// Delivered records one notification hook call that returned normally.
func (c *Collectors) Delivered(event string) {
	if c == nil {
		return
	}
	c.Notifications.WithLabelValues(event).Inc()
}

// Panicked records a notification hook that panicked.
func (c *Collectors) Panicked(event, interp string) {
	if c == nil {
		return
	}
	c.NotifyPanics.WithLabelValues(event, interp).Inc()
}

// InitFailed records an interpreter that failed to initialize.
func (c *Collectors) InitFailed(interp string) {
	if c == nil {
		return
	}
	c.InitFailures.WithLabelValues(interp).Inc()
}
