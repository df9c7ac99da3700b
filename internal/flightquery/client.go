package flightquery

import (
	"bufio"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/apache/arrow/go/v12/arrow"
	"github.com/apache/arrow/go/v12/arrow/array"
	"github.com/apache/arrow/go/v12/arrow/flight"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"

	"github.com/InfluxCommunity/influxdb3-go/internal/model"
)

// Config configures the Flight channel, shared across every query made
// through one Client (spec §4.6 "TLS and proxy").
type Config struct {
	Address            string // host:port, no scheme
	TLS                bool
	InsecureSkipVerify bool
	RootCAs            *x509.CertPool
	ProxyURL           string
	AuthScheme         string // default "Bearer"
	Token              string
}

// CallOptions are the per-call knobs (spec §3 CallOptions): headers
// extend but never remove the standard ones, and params are folded into
// the ticket body, never the headers.
type CallOptions struct {
	Headers map[string]string
	Timeout time.Duration
}

// Client wraps one Arrow Flight gRPC channel, shared across all queries
// made through it (spec §5 "Shared-resource policy").
type Client struct {
	fc  flight.Client
	cfg Config
}

// New dials the Flight endpoint described by cfg. Transport is grounded
// on github.com/apache/arrow/go/v12's flight package and
// google.golang.org/grpc; the DoGet/NewRecordReader usage mirrors the
// server-side Flight handling in the other_examples hugr-lab-airport-go
// reference files, read from the client's side of the same RPC.
func New(cfg Config) (*Client, error) {
	var dialOpts []grpc.DialOption

	if cfg.TLS {
		tlsCfg := &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify, RootCAs: cfg.RootCAs}
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(credentials.NewTLS(tlsCfg)))
	} else {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	if cfg.ProxyURL != "" {
		proxyURL, err := url.Parse(cfg.ProxyURL)
		if err != nil {
			return nil, model.Misuse("invalid proxy URL %q: %s", cfg.ProxyURL, err)
		}
		dialOpts = append(dialOpts, grpc.WithContextDialer(proxyDialer(proxyURL)))
	}

	fc, err := flight.NewClientWithMiddleware(cfg.Address, nil, nil, dialOpts...)
	if err != nil {
		return nil, model.Wrap(model.KindQueryError, "failed to dial flight endpoint", err)
	}

	return &Client{fc: fc, cfg: cfg}, nil
}

// Close closes the shared Flight channel; all outstanding streams opened
// through it are closed along with it (spec §3 Lifecycle).
func (c *Client) Close() error {
	return c.fc.Close()
}

func (c *Client) authScheme() string {
	if c.cfg.AuthScheme == "" {
		return "Bearer"
	}
	return c.cfg.AuthScheme
}

func (c *Client) withCallOptions(ctx context.Context, opts CallOptions) (context.Context, context.CancelFunc) {
	md := metadata.MD{}
	md.Set("authorization", fmt.Sprintf("%s %s", c.authScheme(), c.cfg.Token))
	for k, v := range opts.Headers {
		md.Append(k, v)
	}
	ctx = metadata.NewOutgoingContext(ctx, md)

	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	return context.WithCancel(ctx)
}

// Result is the polymorphic return shape a query call produces, per the
// selected Mode (spec §4.6).
type Result struct {
	Mode   Mode
	Table  arrow.Table
	Schema *arrow.Schema
	Reader *flight.Reader
	Stream flight.FlightService_DoGetClient

	cancel context.CancelFunc
}

// Close releases the underlying stream/context. It is always safe to
// call, including on a Result whose mode already fully drained.
func (r *Result) Close() error {
	cclog.Debugf("flightquery: closing stream (mode=%d)", r.Mode)
	if r.Reader != nil {
		r.Reader.Release()
	}
	if r.cancel != nil {
		r.cancel()
	}
	return nil
}

// Query opens a DoGet stream for ticket and decodes it per mode (spec
// §4.6). ModePandas and ModePolars have no equivalent in-memory frame
// type in Go and always fail CLIENT_MISUSE, mirroring the spec's own
// "if the frame dependency is absent" fallback for an environment that
// simply never has one.
func (c *Client) Query(ctx context.Context, ticket Ticket, mode Mode, opts CallOptions) (*Result, error) {
	if mode == ModePandas || mode == ModePolars {
		return nil, model.Misuse("mode %q has no in-memory frame equivalent in this runtime", modeName(mode))
	}

	callCtx, cancel := c.withCallOptions(ctx, opts)

	body, err := json.Marshal(ticket)
	if err != nil {
		cancel()
		return nil, model.Wrap(model.KindClientMisuse, "failed to encode ticket", err)
	}

	cclog.Debugf("flightquery: opening stream for database %q", ticket.Database)
	stream, err := c.fc.DoGet(callCtx, &flight.Ticket{Ticket: body})
	if err != nil {
		cancel()
		return nil, wrapFlightError(err)
	}

	if mode == ModeChunk {
		return &Result{Mode: mode, Stream: stream, cancel: cancel}, nil
	}

	reader, err := flight.NewRecordReader(stream)
	if err != nil {
		cancel()
		return nil, wrapFlightError(err)
	}

	switch mode {
	case ModeSchema:
		schema := reader.Schema()
		result := &Result{Mode: mode, Schema: schema, cancel: cancel}
		reader.Release()
		return result, nil

	case ModeReader:
		return &Result{Mode: mode, Reader: reader, cancel: cancel}, nil

	default: // ModeAll
		var records []arrow.Record
		for reader.Next() {
			rec := reader.Record()
			rec.Retain()
			records = append(records, rec)
		}
		if err := reader.Err(); err != nil && err.Error() != "EOF" {
			reader.Release()
			cancel()
			return nil, wrapFlightError(err)
		}
		table := array.NewTableFromRecords(reader.Schema(), records)
		for _, rec := range records {
			rec.Release()
		}
		reader.Release()
		return &Result{Mode: mode, Table: table, cancel: cancel}, nil
	}
}

func modeName(m Mode) string {
	switch m {
	case ModePandas:
		return "pandas"
	case ModePolars:
		return "polars"
	default:
		return "unknown"
	}
}

// wrapFlightError maps gRPC/Flight errors onto the domain error taxonomy
// (spec §4.6 "Errors"): deadline exceeded becomes TIMEOUT, everything
// else becomes QUERY_ERROR with the upstream reason folded into the
// message.
func wrapFlightError(err error) *model.Error {
	if errors.Is(err, context.DeadlineExceeded) || status.Code(err) == codes.DeadlineExceeded {
		return model.Wrap(model.KindTimeout, "query deadline exceeded", err)
	}
	return model.Wrap(model.KindQueryError, "flight query failed", err)
}

// proxyDialer routes the gRPC connection through an HTTP CONNECT proxy,
// configured once at construction (spec §4.6 "TLS and proxy": the proxy
// URL "flows into Flight's generic options as grpc.http_proxy").
func proxyDialer(proxyURL *url.URL) func(context.Context, string) (net.Conn, error) {
	return func(ctx context.Context, addr string) (net.Conn, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", proxyURL.Host)
		if err != nil {
			return nil, err
		}

		req := &http.Request{
			Method: http.MethodConnect,
			URL:    &url.URL{Opaque: addr},
			Host:   addr,
			Header: make(http.Header),
		}
		if user := proxyURL.User; user != nil {
			req.Header.Set("Proxy-Authorization", "Basic "+basicAuth(user))
		}
		if err := req.Write(conn); err != nil {
			conn.Close()
			return nil, err
		}

		resp, err := http.ReadResponse(bufio.NewReader(conn), req)
		if err != nil {
			conn.Close()
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			conn.Close()
			return nil, fmt.Errorf("proxy CONNECT to %s failed: %s", addr, resp.Status)
		}
		return conn, nil
	}
}

func basicAuth(user *url.Userinfo) string {
	password, _ := user.Password()
	return base64.StdEncoding.EncodeToString([]byte(user.Username() + ":" + password))
}
