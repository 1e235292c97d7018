package monitor

import (
	"sync/atomic"
	"time"
)

// OperationType names a kind of tracked operation
type OperationType string

const (
	OperationSession OperationType = "session"
	OperationScan    OperationType = "scan"
)

// OperationMetrics holds metrics for one operation type
type OperationMetrics struct {
	Operation    OperationType `json:"operation"`
	Count        int64         `json:"count"`
	TotalTime    int64         `json:"total_time_ns"`
	MinTime      int64         `json:"min_time_ns"`
	MaxTime      int64         `json:"max_time_ns"`
	LastTime     int64         `json:"last_time_ns"`
	ErrorCount   int64         `json:"error_count"`
	SuccessCount int64         `json:"success_count"`
}

// AvgTime is the mean duration, or 0 with no samples
func (o OperationMetrics) AvgTime() time.Duration {
	if o.Count == 0 {
		return 0
	}
	return time.Duration(o.TotalTime / o.Count)
}

// Counter is a thread-safe counter metric
type Counter struct {
	value int64
	name  string
}

// NewCounter creates a new counter metric
func NewCounter(name string) *Counter {
	return &Counter{name: name}
}

// Inc increments the counter by 1
func (c *Counter) Inc() {
	atomic.AddInt64(&c.value, 1)
}

// Add adds the given value to the counter
func (c *Counter) Add(value int64) {
	atomic.AddInt64(&c.value, value)
}

// Get returns the current counter value
func (c *Counter) Get() int64 {
	return atomic.LoadInt64(&c.value)
}

func (c *Counter) Reset() {
	atomic.StoreInt64(&c.value, 0)
}

func (c *Counter) Name() string {
	return c.name
}

const noMin = int64(^uint64(0) >> 1)

// Timer is a thread-safe timer for measuring operation durations
type Timer struct {
	count     int64
	totalTime int64
	minTime   int64
	maxTime   int64
	lastTime  int64
	name      string
}

// NewTimer creates a new timer metric
func NewTimer(name string) *Timer {
	return &Timer{name: name, minTime: noMin}
}

// Record records a duration measurement
func (t *Timer) Record(duration time.Duration) {
	nanos := duration.Nanoseconds()

	atomic.AddInt64(&t.count, 1)
	atomic.AddInt64(&t.totalTime, nanos)
	atomic.StoreInt64(&t.lastTime, nanos)

	for {
		current := atomic.LoadInt64(&t.minTime)
		if nanos >= current || atomic.CompareAndSwapInt64(&t.minTime, current, nanos) {
			break
		}
	}
	for {
		current := atomic.LoadInt64(&t.maxTime)
		if nanos <= current || atomic.CompareAndSwapInt64(&t.maxTime, current, nanos) {
			break
		}
	}
}

// Count returns the number of recorded measurements
func (t *Timer) Count() int64 {
	return atomic.LoadInt64(&t.count)
}

// TotalTime returns the total time of all measurements
func (t *Timer) TotalTime() time.Duration {
	return time.Duration(atomic.LoadInt64(&t.totalTime))
}

// MinTime returns the minimum recorded time, 0 before the first sample
func (t *Timer) MinTime() time.Duration {
	minTime := atomic.LoadInt64(&t.minTime)
	if minTime == noMin {
		return 0
	}
	return time.Duration(minTime)
}

// MaxTime returns the maximum recorded time
func (t *Timer) MaxTime() time.Duration {
	return time.Duration(atomic.LoadInt64(&t.maxTime))
}

// LastTime returns the most recent measurement
func (t *Timer) LastTime() time.Duration {
	return time.Duration(atomic.LoadInt64(&t.lastTime))
}

// AvgTime returns the average time of all measurements
func (t *Timer) AvgTime() time.Duration {
	count := atomic.LoadInt64(&t.count)
	if count == 0 {
		return 0
	}
	return time.Duration(atomic.LoadInt64(&t.totalTime) / count)
}

// Reset resets all timer metrics
func (t *Timer) Reset() {
	atomic.StoreInt64(&t.count, 0)
	atomic.StoreInt64(&t.totalTime, 0)
	atomic.StoreInt64(&t.minTime, noMin)
	atomic.StoreInt64(&t.maxTime, 0)
	atomic.StoreInt64(&t.lastTime, 0)
}

func (t *Timer) Name() string {
	return t.name
}
