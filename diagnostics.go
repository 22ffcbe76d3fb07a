package bms

import "fmt"

// Sink is the injected capability for non-fatal warnings (duplicate
// definitions, unmatched control markers, unknown commands, non-positive
// scalar fields). It is the only side channel the core writes to; there is
// no package-level logger.
type Sink interface {
	Warnf(format string, args ...any)
}

// NopSink discards every warning. Useful when a caller doesn't care about
// diagnostics.
type NopSink struct{}

func (NopSink) Warnf(string, ...any) {}

// Collector is a Sink that records every warning in order, for tests and
// for callers that want to inspect what happened after a parse.
type Collector struct {
	Messages []string
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector { return &Collector{} }

func (c *Collector) Warnf(format string, args ...any) {
	c.Messages = append(c.Messages, fmt.Sprintf(format, args...))
}
