package influxdb3

import (
	"time"

	"github.com/InfluxCommunity/influxdb3-go/internal/dispatcher"
	"github.com/InfluxCommunity/influxdb3-go/internal/frame"
	"github.com/InfluxCommunity/influxdb3-go/internal/httpwrite"
	"github.com/InfluxCommunity/influxdb3-go/internal/model"
)

// ClientOptions configures a Client at construction (spec §6
// Configuration keys, reified as a plain option struct with a builder
// per spec §9: "Reify these as plain option structs with a builder").
type ClientOptions struct {
	Host        string
	Token       string
	Database    string
	Org         string // defaults to "default"
	AuthScheme  string // defaults to "Token"

	// Timeout is the client-level default deadline for Query/QueryAsync
	// calls (populated from INFLUX_QUERY_TIMEOUT by FromEnv), used
	// whenever a call's CallOptions.Timeout is zero (spec.md §6 "per-call
	// override beats per-client setting" implies a client default to
	// override). Write's per-request deadline is governed by
	// WriteOptions.Timeout instead, since writes go through the
	// dispatcher/submitter, not this field.
	Timeout time.Duration

	DefaultTags map[string]string

	// Executor overrides the HTTP executor used for writes and Ping,
	// matching spec.md §1's treatment of HTTP transport as an opaque,
	// swappable collaborator. Leave nil to use the default net/http
	// executor with a shared connection pool (spec §5 "Shared-resource
	// policy").
	Executor httpwrite.Executor

	// Debug gates the verbose per-request Debugf lines in the dispatcher
	// and submitter (SPEC_FULL.md §3 "debug flag" supplemented feature).
	Debug bool
}

// WriteType selects the scheduling behavior of Client.Write (spec §4.4
// "Scheduling model").
type WriteType = dispatcher.WriteType

const (
	Synchronous  = dispatcher.Synchronous
	Batching     = dispatcher.Batching
	Asynchronous = dispatcher.Asynchronous
)

// WriteOptions is the builder-style bag of write knobs from spec §6
// "Write options", with the documented defaults.
type WriteOptions struct {
	BatchSize          int
	FlushInterval       time.Duration
	JitterInterval      time.Duration
	RetryInterval       time.Duration
	MaxRetries          int
	MaxRetryDelay       time.Duration
	MaxRetryTime        time.Duration
	MaxCloseWait        time.Duration
	ExponentialBase     float64
	WriteType           WriteType
	WritePrecision      Precision
	PrecisionFromPoint  bool
	NoSync              bool
	Timeout             time.Duration
	EnableGzip          bool
	GzipThreshold       int
}

// DefaultWriteOptions returns the defaults table from spec §6.
func DefaultWriteOptions() WriteOptions {
	d := dispatcher.DefaultOptions()
	return WriteOptions{
		BatchSize:       d.BatchSize,
		FlushInterval:   d.FlushInterval,
		JitterInterval:  d.JitterInterval,
		RetryInterval:   d.RetryInterval,
		MaxRetries:      d.MaxRetries,
		MaxRetryDelay:   d.MaxRetryDelay,
		MaxRetryTime:    d.MaxRetryTime,
		MaxCloseWait:    d.MaxCloseWait,
		ExponentialBase: d.ExponentialBase,
		WriteType:       d.WriteType,
		WritePrecision:  model.Nanosecond,
		NoSync:          false,
		Timeout:         10000 * time.Millisecond,
		EnableGzip:      false,
		GzipThreshold:   0,
	}
}

// merge returns a copy of defaults with every non-zero field of override
// applied on top (SPEC_FULL.md §3 "WriteOptions.merge()" supplemented
// feature, reifying the source's module-level `_deep_merge` /
// `_merge_options` helpers per spec §9's design note). Zero-value fields
// on override are treated as "not set" and left at the default; callers
// who genuinely want zero for a numeric option (e.g. JitterInterval=0)
// get it for free since that already is the default.
func (defaults WriteOptions) merge(override WriteOptions) WriteOptions {
	out := defaults
	if override.BatchSize != 0 {
		out.BatchSize = override.BatchSize
	}
	if override.FlushInterval != 0 {
		out.FlushInterval = override.FlushInterval
	}
	if override.JitterInterval != 0 {
		out.JitterInterval = override.JitterInterval
	}
	if override.RetryInterval != 0 {
		out.RetryInterval = override.RetryInterval
	}
	if override.MaxRetries != 0 {
		out.MaxRetries = override.MaxRetries
	}
	if override.MaxRetryDelay != 0 {
		out.MaxRetryDelay = override.MaxRetryDelay
	}
	if override.MaxRetryTime != 0 {
		out.MaxRetryTime = override.MaxRetryTime
	}
	if override.MaxCloseWait != 0 {
		out.MaxCloseWait = override.MaxCloseWait
	}
	if override.ExponentialBase != 0 {
		out.ExponentialBase = override.ExponentialBase
	}
	if override.WriteType != Synchronous {
		out.WriteType = override.WriteType
	}
	if override.Timeout != 0 {
		out.Timeout = override.Timeout
	}
	if override.GzipThreshold != 0 {
		out.GzipThreshold = override.GzipThreshold
	}
	if override.WritePrecision != model.Nanosecond {
		out.WritePrecision = override.WritePrecision
	}
	if override.PrecisionFromPoint {
		out.PrecisionFromPoint = true
	}
	if override.NoSync {
		out.NoSync = true
	}
	if override.EnableGzip {
		out.EnableGzip = true
	}
	return out
}

func (o WriteOptions) toDispatcherOptions(debug bool) dispatcher.Options {
	return dispatcher.Options{
		BatchSize:       o.BatchSize,
		FlushInterval:   o.FlushInterval,
		JitterInterval:  o.JitterInterval,
		RetryInterval:   o.RetryInterval,
		MaxRetries:      o.MaxRetries,
		MaxRetryDelay:   o.MaxRetryDelay,
		MaxRetryTime:    o.MaxRetryTime,
		MaxCloseWait:    o.MaxCloseWait,
		ExponentialBase: o.ExponentialBase,
		WriteType:       o.WriteType,
		Workers:         1,
		QueueDepth:      16,
		Debug:           debug,
	}
}

// FrameWriteOptions configures how a Frame record is projected into
// lines when written directly (spec §4.2).
type FrameWriteOptions struct {
	Measurement     string
	TagColumns      []string
	TimestampColumn string
}

func (o FrameWriteOptions) toFrameOptions(precision Precision) frame.Options {
	return frame.Options{
		Measurement:     o.Measurement,
		TagColumns:      o.TagColumns,
		TimestampColumn: o.TimestampColumn,
		Precision:       precision,
	}
}

// QueryOptions configures one Query/QueryAsync call (spec §4.6).
type QueryOptions struct {
	QueryType string // QueryTypeSQL or QueryTypeInfluxQL; defaults to SQL
	Mode      string // "", "all", "pandas", "polars", "chunk", "reader", "schema"
	Params    map[string]any
	Call      CallOptions
}

// CallOptions are the per-call knobs spec §3 describes: headers that
// extend (never remove) the standard set, and a deadline. Cancellation
// is carried by the context.Context argument to Query/QueryAsync rather
// than a field here.
type CallOptions struct {
	Headers map[string]string
	Timeout time.Duration
}
