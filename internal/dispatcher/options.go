package dispatcher

import "time"

// WriteType selects the scheduling behavior of Dispatcher.Write (spec
// §4.4 "Scheduling model").
type WriteType int

const (
	Synchronous WriteType = iota
	Batching
	Asynchronous
)

// Options configures a Dispatcher. Field names and defaults follow spec
// §8's "Write options" table exactly.
type Options struct {
	BatchSize       int
	FlushInterval   time.Duration
	JitterInterval  time.Duration
	RetryInterval   time.Duration
	MaxRetries      int
	MaxRetryDelay   time.Duration
	MaxRetryTime    time.Duration
	MaxCloseWait    time.Duration
	ExponentialBase float64
	WriteType       WriteType
	Workers         int
	QueueDepth      int
	Debug           bool // gates verbose per-batch Debugf lines (SPEC_FULL.md §3)
}

// DefaultOptions returns the defaults table from spec §8.
func DefaultOptions() Options {
	return Options{
		BatchSize:       1000,
		FlushInterval:   1000 * time.Millisecond,
		JitterInterval:  0,
		RetryInterval:   5000 * time.Millisecond,
		ExponentialBase: 2,
		MaxRetryDelay:   30000 * time.Millisecond,
		MaxRetries:      5,
		MaxRetryTime:    180000 * time.Millisecond,
		MaxCloseWait:    300000 * time.Millisecond,
		WriteType:       Synchronous,
		Workers:         1,
		QueueDepth:      16,
	}
}
