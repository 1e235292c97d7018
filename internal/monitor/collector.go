// Package monitor keeps in-process counters and timers for analysis
// sessions and selection scans, and summarizes them when a command exits.
package monitor

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/yildizm/qupid/internal/logger"
	"github.com/yildizm/qupid/internal/qupid"
)

// Collector aggregates operation metrics. All methods are safe for
// concurrent use.
type Collector struct {
	started time.Time

	mu        sync.RWMutex
	timers    map[OperationType]*Timer
	successes map[OperationType]*Counter
	errors    map[OperationType]*Counter
	failures  map[qupid.ErrorKind]*Counter

	superseded *Counter
	files      *Counter
	bytes      *Counter
}

// Snapshot is a point-in-time copy of the collector
type Snapshot struct {
	Timestamp  time.Time                 `json:"timestamp"`
	Uptime     time.Duration             `json:"uptime_ns"`
	Operations []OperationMetrics        `json:"operations"`
	Failures   map[qupid.ErrorKind]int64 `json:"failures,omitempty"`
	Superseded int64                     `json:"superseded"`
	Files      int64                     `json:"files_submitted"`
	Bytes      int64                     `json:"bytes_submitted"`
}

// New creates an empty collector
func New() *Collector {
	return &Collector{
		started:    time.Now(),
		timers:     make(map[OperationType]*Timer),
		successes:  make(map[OperationType]*Counter),
		errors:     make(map[OperationType]*Counter),
		failures:   make(map[qupid.ErrorKind]*Counter),
		superseded: NewCounter("superseded"),
		files:      NewCounter("files_submitted"),
		bytes:      NewCounter("bytes_submitted"),
	}
}

func (c *Collector) timer(op OperationType) (*Timer, *Counter, *Counter) {
	c.mu.RLock()
	t, ok := c.timers[op]
	s, e := c.successes[op], c.errors[op]
	c.mu.RUnlock()
	if ok {
		return t, s, e
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok = c.timers[op]; !ok {
		t = NewTimer(string(op))
		c.timers[op] = t
		c.successes[op] = NewCounter(string(op) + "_success")
		c.errors[op] = NewCounter(string(op) + "_error")
	}
	return t, c.successes[op], c.errors[op]
}

// RecordOperation records one finished operation. Failures that carry a
// qupid error kind are also counted per kind.
func (c *Collector) RecordOperation(op OperationType, elapsed time.Duration, err error) {
	t, success, failure := c.timer(op)
	t.Record(elapsed)
	if err == nil {
		success.Inc()
		return
	}
	failure.Inc()

	kind := qupid.KindOf(err)
	if kind == "" {
		return
	}
	c.mu.Lock()
	counter, ok := c.failures[kind]
	if !ok {
		counter = NewCounter(string(kind))
		c.failures[kind] = counter
	}
	c.mu.Unlock()
	counter.Inc()
}

// RecordSubmission counts screenshots sent to the service
func (c *Collector) RecordSubmission(files int, bytes int64) {
	c.files.Add(int64(files))
	c.bytes.Add(bytes)
}

// RecordSuperseded counts an outcome that arrived after a newer attempt began
func (c *Collector) RecordSuperseded() {
	c.superseded.Inc()
}

// Operation returns the metrics for one operation type
func (c *Collector) Operation(op OperationType) OperationMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.operationLocked(op)
}

func (c *Collector) operationLocked(op OperationType) OperationMetrics {
	m := OperationMetrics{Operation: op}
	t, ok := c.timers[op]
	if !ok {
		return m
	}
	m.Count = t.Count()
	m.TotalTime = int64(t.TotalTime())
	m.MinTime = int64(t.MinTime())
	m.MaxTime = int64(t.MaxTime())
	m.LastTime = int64(t.LastTime())
	m.SuccessCount = c.successes[op].Get()
	m.ErrorCount = c.errors[op].Get()
	return m
}

// Snapshot copies the current values
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		Timestamp:  time.Now(),
		Uptime:     time.Since(c.started),
		Superseded: c.superseded.Get(),
		Files:      c.files.Get(),
		Bytes:      c.bytes.Get(),
	}

	ops := make([]OperationType, 0, len(c.timers))
	for op := range c.timers {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	for _, op := range ops {
		snap.Operations = append(snap.Operations, c.operationLocked(op))
	}

	if len(c.failures) > 0 {
		snap.Failures = make(map[qupid.ErrorKind]int64, len(c.failures))
		for kind, counter := range c.failures {
			snap.Failures[kind] = counter.Get()
		}
	}
	return snap
}

// Operation finds one operation in the snapshot
func (s Snapshot) Operation(op OperationType) (OperationMetrics, bool) {
	for _, m := range s.Operations {
		if m.Operation == op {
			return m, true
		}
	}
	return OperationMetrics{Operation: op}, false
}

// Summary renders a one-line description of the session activity
func (s Snapshot) Summary() string {
	sessions, ok := s.Operation(OperationSession)
	if !ok || sessions.Count == 0 {
		return "no sessions run"
	}

	parts := []string{
		fmt.Sprintf("%d session(s): %d succeeded, %d failed", sessions.Count, sessions.SuccessCount, sessions.ErrorCount),
		fmt.Sprintf("avg %s, max %s",
			sessions.AvgTime().Round(time.Millisecond),
			time.Duration(sessions.MaxTime).Round(time.Millisecond)),
	}
	if s.Files > 0 {
		parts = append(parts, fmt.Sprintf("%d screenshot(s), %s submitted", s.Files, humanize.Bytes(uint64(s.Bytes))))
	}
	if len(s.Failures) > 0 {
		kinds := make([]string, 0, len(s.Failures))
		for kind, n := range s.Failures {
			kinds = append(kinds, fmt.Sprintf("%s=%d", kind, n))
		}
		sort.Strings(kinds)
		parts = append(parts, strings.Join(kinds, " "))
	}
	return strings.Join(parts, "; ")
}

// Log writes the snapshot as one structured info line
func (s Snapshot) Log(log *logger.Logger) {
	fields := []logger.Field{
		logger.F("uptime", s.Uptime.Round(time.Second).String()),
		logger.F("files", s.Files),
		logger.F("bytes", s.Bytes),
	}
	if s.Superseded > 0 {
		fields = append(fields, logger.F("superseded", s.Superseded))
	}
	for _, op := range s.Operations {
		fields = append(fields,
			logger.F(string(op.Operation)+"_count", op.Count),
			logger.F(string(op.Operation)+"_errors", op.ErrorCount),
			logger.F(string(op.Operation)+"_avg", op.AvgTime().String()),
		)
	}
	log.InfoWithFields("metrics summary", fields)
}
