package influxdb3

import (
	"context"
	"net/http"
	"strings"
	"sync"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"

	"github.com/InfluxCommunity/influxdb3-go/internal/dispatcher"
	"github.com/InfluxCommunity/influxdb3-go/internal/frame"
	"github.com/InfluxCommunity/influxdb3-go/internal/httpwrite"
	"github.com/InfluxCommunity/influxdb3-go/internal/model"
	"github.com/InfluxCommunity/influxdb3-go/internal/normalize"
)

// Client is the public entry point: a write path (Write/WriteBatching/
// Flush/Close) wired onto internal/dispatcher and internal/httpwrite,
// and a query path (Query/QueryAsync, see query.go) wired onto
// internal/flightquery. One Client owns one HTTP connection pool and one
// Flight channel, both shared across calls (spec §5 "Shared-resource
// policy").
type Client struct {
	opts      ClientOptions
	writeOpts WriteOptions
	submitter *httpwrite.Submitter
	dispatch  *dispatcher.Dispatcher
	query     *queryClient // set lazily by ensureQueryClient, see query.go

	mu sync.Mutex
}

// dispatcherAdapter adapts httpwrite.Submitter (which needs a per-call
// Config) onto dispatcher.Submitter's narrower Submit(ctx, key, payload)
// signature, so the dispatcher package stays ignorant of HTTP/auth
// details entirely.
type dispatcherAdapter struct {
	submitter *httpwrite.Submitter
	opts      WriteOptions
	clientOpts ClientOptions
}

func (a *dispatcherAdapter) Submit(ctx context.Context, key model.PartitionKey, payload []byte) error {
	cfg := httpwrite.Config{
		Token:         a.clientOpts.Token,
		AuthScheme:    a.clientOpts.AuthScheme,
		Org:           key.Org,
		Database:      a.clientOpts.Database,
		NoSync:        a.opts.NoSync,
		EnableGzip:    a.opts.EnableGzip,
		GzipThreshold: a.opts.GzipThreshold,
		Timeout:       a.opts.Timeout,
		Debug:         a.clientOpts.Debug,
	}
	return a.submitter.Submit(ctx, cfg, key, payload)
}

// New constructs a Client from explicit options. Use FromEnv to build
// ClientOptions/WriteOptions from the environment instead (spec §6).
func New(clientOpts ClientOptions, writeOpts WriteOptions) (*Client, error) {
	if strings.TrimSpace(clientOpts.Host) == "" {
		return nil, model.Misuse("client host must not be empty")
	}
	if strings.TrimSpace(clientOpts.Token) == "" {
		return nil, model.Misuse("client token must not be empty")
	}
	if strings.TrimSpace(clientOpts.Database) == "" {
		return nil, model.Misuse("client database must not be empty")
	}
	if clientOpts.Org == "" {
		clientOpts.Org = "default"
	}

	exec := clientOpts.Executor
	if exec == nil {
		httpClient := &http.Client{Timeout: 0} // per-call timeout applied by Submitter
		exec = httpwrite.NewDefaultExecutor(clientOpts.Host, httpClient)
	}
	submitter := httpwrite.New(exec)

	adapter := &dispatcherAdapter{submitter: submitter, opts: writeOpts, clientOpts: clientOpts}
	d := dispatcher.New(writeOpts.toDispatcherOptions(clientOpts.Debug), adapter)

	return &Client{
		opts:      clientOpts,
		writeOpts: writeOpts,
		submitter: submitter,
		dispatch:  d,
	}, nil
}

// Write normalizes rec and enqueues (or synchronously submits) the
// resulting payload(s), per the Client's configured WriteType (spec
// §4.3, §4.4).
func (c *Client) Write(ctx context.Context, rec Record) error {
	return c.write(ctx, rec, c.writeOpts)
}

// WriteWithOptions writes rec using override merged over the Client's
// default WriteOptions (SPEC_FULL.md §3 "WriteOptions.merge()"). Of the
// merged options only WritePrecision and PrecisionFromPoint take effect
// for this call; WriteType, Timeout, NoSync, gzip and retry settings stay
// as configured at New.
func (c *Client) WriteWithOptions(ctx context.Context, rec Record, override WriteOptions) error {
	return c.write(ctx, rec, c.writeOpts.merge(override))
}

// WriteBatching writes rec through the batching path regardless of the
// Client's configured WriteType: the record joins its partition's open
// batch and WriteBatching returns as soon as it is enqueued (spec §4.4
// "Scheduling model").
func (c *Client) WriteBatching(ctx context.Context, rec Record) error {
	normalizeOpts := normalize.Options{
		Precision:          c.writeOpts.WritePrecision,
		PrecisionFromPoint: c.writeOpts.PrecisionFromPoint,
		DefaultTags:        defaultTagKVs(c.opts.DefaultTags),
		FrameOptions:       FrameWriteOptions{}.toFrameOptions(c.writeOpts.WritePrecision),
	}

	payloads, err := normalize.Normalize(rec, normalizeOpts, nil)
	if err != nil {
		return err
	}

	key := model.PartitionKey{Database: c.opts.Database, Org: c.opts.Org, Precision: c.writeOpts.WritePrecision}
	for _, p := range payloads {
		pKey := key
		pKey.Precision = p.Precision
		if err := c.dispatch.WriteBatching(ctx, pKey, p.Bytes); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) write(ctx context.Context, rec Record, opts WriteOptions) error {
	normalizeOpts := normalize.Options{
		Precision:          opts.WritePrecision,
		PrecisionFromPoint: opts.PrecisionFromPoint,
		DefaultTags:        defaultTagKVs(c.opts.DefaultTags),
		FrameOptions:       FrameWriteOptions{}.toFrameOptions(opts.WritePrecision),
	}

	payloads, err := normalize.Normalize(rec, normalizeOpts, nil)
	if err != nil {
		return err
	}
	if len(payloads) == 0 {
		return nil
	}

	key := model.PartitionKey{Database: c.opts.Database, Org: c.opts.Org, Precision: opts.WritePrecision}

	// Scheduling follows the WriteType the dispatcher was built with at
	// New; opts.WriteType has no effect here. Only opts.WritePrecision and
	// opts.PrecisionFromPoint apply per call: retry, timeout, no-sync and
	// gzip settings were fixed at New as well.
	for _, p := range payloads {
		pKey := key
		pKey.Precision = p.Precision
		if err := c.dispatch.Write(ctx, pKey, p.Bytes); err != nil {
			return err
		}
	}
	return nil
}

// WriteFrame writes a Frame directly using frameOpts to select the
// measurement/tag/timestamp columns (spec §4.2), bypassing the
// per-record normalizer dispatch since the caller already knows the
// record is a Frame.
func (c *Client) WriteFrame(ctx context.Context, f Frame, frameOpts FrameWriteOptions) error {
	s := frame.New(frameOpts.toFrameOptions(c.writeOpts.WritePrecision))
	lines, err := s.Lines(f)
	if err != nil {
		return err
	}
	key := model.PartitionKey{Database: c.opts.Database, Org: c.opts.Org, Precision: c.writeOpts.WritePrecision}
	for _, line := range lines {
		if err := c.dispatch.Write(ctx, key, line); err != nil {
			return err
		}
	}
	return nil
}

// Flush blocks until all previously-enqueued writes reach a terminal
// outcome (spec §4.4 Shutdown, §8 idempotence law).
func (c *Client) Flush(ctx context.Context) error {
	return c.dispatch.Flush(ctx)
}

// Close stops accepting writes, flushes open batches, waits up to
// MaxCloseWait, then drops and logs anything left (spec §4.4 Shutdown).
// It also closes the Flight channel if Query/QueryAsync was ever called.
// A second Close is a no-op (spec §8 idempotence law).
func (c *Client) Close() error {
	c.mu.Lock()
	q := c.query
	c.mu.Unlock()

	flushErr := c.dispatch.Close()
	if q != nil {
		if err := q.client.Close(); err != nil {
			cclog.Warnf("closing flight channel: %s", err.Error())
		}
	}
	return flushErr
}

// Stats returns the dispatcher's close-time counters (SPEC_FULL.md §3
// "Close-time stats" supplemented feature).
func (c *Client) Stats() dispatcher.Stats {
	return c.dispatch.Stats()
}

// Callbacks exposes the dispatcher's success/retry/error event channels
// (spec §4.4, §9 design note on channel-based callbacks).
func (c *Client) Callbacks() *dispatcher.Callbacks {
	return c.dispatch.Callbacks
}

// Ping performs an unauthenticated health-check request against the
// configured host (SPEC_FULL.md §3 "Ping/health-check" supplemented
// feature).
func (c *Client) Ping(ctx context.Context) error {
	return c.submitter.Ping(ctx)
}

func defaultTagKVs(m map[string]string) []model.KV {
	if len(m) == 0 {
		return nil
	}
	out := make([]model.KV, 0, len(m))
	for k, v := range m {
		out = append(out, model.KV{Key: k, Value: v})
	}
	return out
}
