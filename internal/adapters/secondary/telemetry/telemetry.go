// Package telemetry provides ports.Telemetry sinks.
package telemetry

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
	"github.com/fredcamaral/slidedeck/internal/domain/ports"
)

// Kind distinguishes recorded telemetry entries
type Kind string

const (
	KindPageView  Kind = "pageview"
	KindEvent     Kind = "event"
	KindException Kind = "exception"
)

// Entry is one recorded telemetry call
type Entry struct {
	Kind     Kind      `json:"kind"`
	Category string    `json:"category,omitempty"`
	Label    string    `json:"label"`
	At       time.Time `json:"at"`
}

// LogSink writes telemetry as structured log lines
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a sink on top of logger
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "telemetry").Logger()}
}

// RecordPageView implements ports.Telemetry
func (s *LogSink) RecordPageView(name string) {
	s.logger.Info().Str("kind", string(KindPageView)).Str("page", name).Msg("page view")
}

// RecordEvent implements ports.Telemetry
func (s *LogSink) RecordEvent(category, label string) {
	s.logger.Info().Str("kind", string(KindEvent)).Str("category", category).Str("label", label).Msg("event")
}

// RecordException implements ports.Telemetry
func (s *LogSink) RecordException(message string) {
	s.logger.Warn().Str("kind", string(KindException)).Str("description", message).Msg("exception")
}

// Recorder keeps the most recent telemetry entries in memory
type Recorder struct {
	mu      sync.Mutex
	clock   ports.Clock
	entries []Entry
	limit   int
}

// NewRecorder creates a recorder bounded to limit entries (0 means 1000)
func NewRecorder(clock ports.Clock, limit int) *Recorder {
	if clock == nil {
		clock = ports.RealClock{}
	}
	if limit <= 0 {
		limit = 1000
	}
	return &Recorder{clock: clock, limit: limit}
}

// RecordPageView implements ports.Telemetry
func (r *Recorder) RecordPageView(name string) {
	r.add(Entry{Kind: KindPageView, Label: name})
}

// RecordEvent implements ports.Telemetry
func (r *Recorder) RecordEvent(category, label string) {
	r.add(Entry{Kind: KindEvent, Category: category, Label: label})
}

// RecordException implements ports.Telemetry
func (r *Recorder) RecordException(message string) {
	r.add(Entry{Kind: KindException, Label: message})
}

// Entries returns a copy of the recorded entries, oldest first
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Count returns how many entries of kind are held
func (r *Recorder) Count(kind Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (r *Recorder) add(e Entry) {
	e.At = r.clock.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, e)
	if len(r.entries) > r.limit {
		r.entries = r.entries[len(r.entries)-r.limit:]
	}
}

// Multi fans out every call to several sinks. A panicking sink is isolated.
type Multi []ports.Telemetry

// RecordPageView implements ports.Telemetry
func (m Multi) RecordPageView(name string) {
	m.each(func(t ports.Telemetry) { t.RecordPageView(name) })
}

// RecordEvent implements ports.Telemetry
func (m Multi) RecordEvent(category, label string) {
	m.each(func(t ports.Telemetry) { t.RecordEvent(category, label) })
}

// RecordException implements ports.Telemetry
func (m Multi) RecordException(message string) {
	m.each(func(t ports.Telemetry) { t.RecordException(message) })
}

func (m Multi) each(fn func(ports.Telemetry)) {
	for _, sink := range m {
		if sink == nil {
			continue
		}
		func() {
			defer func() { _ = recover() }()
			fn(sink)
		}()
	}
}

// New returns the sink for cfg: the log sink when enabled, otherwise a no-op
func New(cfg entities.TelemetryConfig, logger zerolog.Logger) ports.Telemetry {
	if !cfg.Enabled {
		return ports.NopTelemetry{}
	}
	return NewLogSink(logger)
}

var (
	_ ports.Telemetry = (*LogSink)(nil)
	_ ports.Telemetry = (*Recorder)(nil)
	_ ports.Telemetry = Multi(nil)
)
