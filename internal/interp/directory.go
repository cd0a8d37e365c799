package interp

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/dshills/dbgfront/internal/metrics"
)

// Directory is the process's set of UIs and the single active UI.
type Directory struct {
	registry *Registry
	uis      []*UI
	active   *UI
	logger   *zap.Logger
	metrics  *metrics.Collectors
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) DirectoryOption {
	return func(d *Directory) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMetrics sets the collectors switches and notifications are counted
// on.
func WithMetrics(m *metrics.Collectors) DirectoryOption {
	return func(d *Directory) {
		d.metrics = m
	}
}

// NewDirectory creates a directory whose UIs create interpreters from reg.
// A nil reg uses the process-wide registry.
func NewDirectory(reg *Registry, opts ...DirectoryOption) *Directory {
	if reg == nil {
		reg = Default()
	}
	d := &Directory{
		registry: reg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.Named("interp")
	return d
}

// Registry returns the registry the directory creates interpreters from.
func (d *Directory) Registry() *Registry { return d.registry }

// Logger returns the directory's logger.
func (d *Directory) Logger() *zap.Logger { return d.logger }

// NewUI creates a UI and adds it to the directory. The first UI becomes
// the active one.
func (d *Directory) NewUI(opts ...UIOption) *UI {
	ui := newUI(d, opts...)
	d.uis = append(d.uis, ui)
	if d.active == nil {
		d.active = ui
	}
	d.logger.Debug("ui added", zap.String("ui", ui.id), zap.Int("count", len(d.uis)))
	return ui
}

// RemoveUI closes ui and removes it. If it was active, the first remaining
// UI becomes active.
func (d *Directory) RemoveUI(ui *UI) error {
	idx := d.index(ui)
	if idx < 0 {
		return ErrUnknownUI
	}
	d.uis = append(d.uis[:idx], d.uis[idx+1:]...)
	if d.active == ui {
		d.active = nil
		if len(d.uis) > 0 {
			d.active = d.uis[0]
		}
	}
	return ui.Close()
}

// UIs returns the directory's UIs in creation order.
func (d *Directory) UIs() []*UI {
	list := make([]*UI, len(d.uis))
	copy(list, d.uis)
	return list
}

// Active returns the UI that has the process-wide focus, or nil.
func (d *Directory) Active() *UI { return d.active }

// SetActive gives ui the process-wide focus.
func (d *Directory) SetActive(ui *UI) error {
	if d.index(ui) < 0 {
		return ErrUnknownUI
	}
	d.active = ui
	return nil
}

func (d *Directory) index(ui *UI) int {
	for i, x := range d.uis {
		if x == ui {
			return i
		}
	}
	return -1
}

// CompleteInterpreterNames returns the registered interpreter names that
// start with word, sorted.
func (d *Directory) CompleteInterpreterNames(word string) []string {
	var matches []string
	for _, name := range d.registry.Names() {
		if strings.HasPrefix(name, word) {
			matches = append(matches, name)
		}
	}
	return matches
}

// Close closes every UI.
func (d *Directory) Close() error {
	var errs []error
	for _, ui := range d.uis {
		if err := ui.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	d.uis = nil
	d.active = nil
	return errors.Join(errs...)
}
