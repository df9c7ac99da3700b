package influxdb3

import (
	"context"
	"net/url"
	"strings"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"

	"github.com/InfluxCommunity/influxdb3-go/internal/flightquery"
	"github.com/InfluxCommunity/influxdb3-go/internal/model"
)

// QueryResult is the polymorphic return shape of a query call, re-
// exported from internal/flightquery so callers never import the
// internal package directly (spec §4.6 Modes).
type QueryResult = flightquery.Result

// Mode selects the return shape of a query (spec §4.6).
type Mode = flightquery.Mode

const (
	ModeAll    = flightquery.ModeAll
	ModePandas = flightquery.ModePandas
	ModePolars = flightquery.ModePolars
	ModeChunk  = flightquery.ModeChunk
	ModeReader = flightquery.ModeReader
	ModeSchema = flightquery.ModeSchema
)

// queryClient lazily owns the Flight channel; it is only dialed the
// first time Query or QueryAsync is called, so a write-only Client never
// pays for a gRPC connection it doesn't use.
type queryClient struct {
	client *flightquery.Client
}

func (c *Client) ensureQueryClient() (*queryClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.query != nil {
		return c.query, nil
	}

	cfg, err := flightConfigFromHost(c.opts)
	if err != nil {
		return nil, err
	}
	fc, err := flightquery.New(cfg)
	if err != nil {
		return nil, err
	}
	c.query = &queryClient{client: fc}
	return c.query, nil
}

// flightConfigFromHost derives the Flight dial config from the client's
// HTTP host URL (spec §4.6 "TLS and proxy": "if the client URL scheme is
// grpc+tls / https, the Flight channel is TLS; otherwise cleartext").
func flightConfigFromHost(opts ClientOptions) (flightquery.Config, error) {
	u, err := url.Parse(opts.Host)
	if err != nil {
		return flightquery.Config{}, model.Misuse("invalid host URL %q: %s", opts.Host, err)
	}

	tls := false
	switch strings.ToLower(u.Scheme) {
	case "https", "grpc+tls":
		tls = true
	case "http", "grpc+tcp", "":
		tls = false
	default:
		return flightquery.Config{}, model.Misuse("unrecognized host scheme %q", u.Scheme)
	}

	address := u.Host
	if address == "" {
		address = u.Path // scheme-less bare host; "host:port" without a scheme parses "host" as the scheme and is rejected above
	}

	return flightquery.Config{
		Address: address,
		TLS:     tls,
		Token:   opts.Token,
	}, nil
}

// Query runs sql (or influxQL, per queryType) against the client's
// configured database and returns the result shaped per opts.Mode (spec
// §4.6). It blocks until the stream is drained (mode all) or the schema
// arrives (mode schema); modes chunk and reader return once the stream is
// open, and modes pandas and polars fail with CLIENT_MISUSE without
// opening a stream.
func (c *Client) Query(ctx context.Context, query string, opts QueryOptions) (*QueryResult, error) {
	qc, err := c.ensureQueryClient()
	if err != nil {
		return nil, err
	}

	queryType := opts.QueryType
	if queryType == "" {
		queryType = flightquery.QueryTypeSQL
	}
	ticket := flightquery.Ticket{
		Database:  c.opts.Database,
		SQLQuery:  query,
		QueryType: queryType,
		Params:    opts.Params,
	}

	mode, recognized := flightquery.ParseMode(opts.Mode)
	if !recognized && opts.Mode != "" {
		cclog.Warnf("unrecognized query mode %q, falling back to \"all\"", opts.Mode)
	}

	callOpts := flightquery.CallOptions{
		Headers: opts.Call.Headers,
		Timeout: resolveCallTimeout(opts.Call, c.opts.Timeout),
	}

	return qc.client.Query(ctx, ticket, mode, callOpts)
}

// resolveCallTimeout applies spec.md §6's "per-call override beats
// per-client setting" rule: an explicit CallOptions.Timeout always wins,
// and only an unset (zero) per-call timeout falls back to the client's
// configured default (itself populated from INFLUX_QUERY_TIMEOUT by
// FromEnv). A zero clientDefault leaves the call with no deadline at all,
// matching the underlying gRPC call's own default of none.
func resolveCallTimeout(call CallOptions, clientDefault time.Duration) time.Duration {
	if call.Timeout != 0 {
		return call.Timeout
	}
	return clientDefault
}

// AsyncQueryResult is the future QueryAsync returns: Result blocks the
// calling goroutine until the query completes, but unlike Query itself
// it does not block the caller's goroutine at the point QueryAsync is
// invoked — the Flight call runs on its own goroutine from the moment
// QueryAsync returns (spec §4.6 "Async variant", §9 design note: "in a
// language with native async gRPC, use the native streaming API directly
// and remove the offload" — Go's goroutine+channel pair is exactly that
// native mechanism, so no separate executor type is introduced).
type AsyncQueryResult struct {
	done chan struct{}
	res  *QueryResult
	err  error
}

// Result blocks until the query completes or ctx is done, whichever
// comes first. If ctx is done first, the underlying Flight stream is not
// guaranteed to have closed yet — cancel the context passed to
// QueryAsync itself to bound that.
func (a *AsyncQueryResult) Result(ctx context.Context) (*QueryResult, error) {
	select {
	case <-a.done:
		return a.res, a.err
	case <-ctx.Done():
		return nil, model.Wrap(model.KindTimeout, "waiting for async query result", ctx.Err())
	}
}

// QueryAsync starts query on its own goroutine and returns immediately
// with a future. Cancelling ctx closes the underlying Flight stream
// within a bounded time (spec §5 "Cancellation and timeouts").
func (c *Client) QueryAsync(ctx context.Context, query string, opts QueryOptions) *AsyncQueryResult {
	a := &AsyncQueryResult{done: make(chan struct{})}
	go func() {
		defer close(a.done)
		a.res, a.err = c.Query(ctx, query, opts)
	}()
	return a
}
